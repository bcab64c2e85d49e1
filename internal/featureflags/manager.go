// Package featureflags evaluates FEATURE_FLAGS rollouts per viewer.
//
// A flag list is comma separated, each entry name=rule:
//
//	ws_notifications=on
//	new_feed=25%
//	beta_stories=users:3|8|21
//	legacy_ui=off
//
// Names are case-insensitive. Malformed entries are skipped.
package featureflags

import (
	"hash/fnv"
	"strconv"
	"strings"
)

// WSNotifications gates the live notification websocket.
const WSNotifications = "ws_notifications"

type ruleKind int

const (
	ruleOff ruleKind = iota
	ruleOn
	rulePercent
	ruleUsers
)

type rule struct {
	kind    ruleKind
	percent int
	users   map[uint]struct{}
	raw     string
}

// Manager holds the parsed rules. A nil Manager reports every flag off.
type Manager struct {
	rules map[string]rule
}

// NewManager parses a flag list.
func NewManager(raw string) *Manager {
	m := &Manager{rules: make(map[string]rule)}
	for _, entry := range strings.Split(raw, ",") {
		name, value, ok := strings.Cut(entry, "=")
		if !ok {
			continue
		}
		name = normalize(name)
		if name == "" {
			continue
		}
		if r, ok := parseRule(normalize(value)); ok {
			m.rules[name] = r
		}
	}
	return m
}

func parseRule(v string) (rule, bool) {
	switch v {
	case "":
		return rule{}, false
	case "on", "true", "1":
		return rule{kind: ruleOn, raw: v}, true
	case "off", "false", "0":
		return rule{kind: ruleOff, raw: v}, true
	}

	if pct, ok := strings.CutSuffix(v, "%"); ok {
		n, err := strconv.Atoi(pct)
		if err != nil {
			return rule{}, false
		}
		return rule{kind: rulePercent, percent: min(max(n, 0), 100), raw: v}, true
	}

	if list, ok := strings.CutPrefix(v, "users:"); ok {
		users := make(map[uint]struct{})
		for _, id := range strings.Split(list, "|") {
			n, err := strconv.ParseUint(strings.TrimSpace(id), 10, 64)
			if err != nil || n == 0 {
				continue
			}
			users[uint(n)] = struct{}{}
		}
		return rule{kind: ruleUsers, users: users, raw: v}, true
	}
	return rule{}, false
}

// Enabled evaluates name for userID. Anonymous viewers (userID 0) only see
// flags that are fully on.
func (m *Manager) Enabled(name string, userID uint) bool {
	if m == nil {
		return false
	}
	r, ok := m.rules[normalize(name)]
	if !ok {
		return false
	}

	switch r.kind {
	case ruleOn:
		return true
	case rulePercent:
		if r.percent >= 100 {
			return true
		}
		return userID != 0 && bucket(normalize(name), userID) < r.percent
	case ruleUsers:
		_, ok := r.users[userID]
		return ok
	default:
		return false
	}
}

// Raw returns the configured rule text per flag.
func (m *Manager) Raw() map[string]string {
	out := make(map[string]string)
	if m == nil {
		return out
	}
	for name, r := range m.rules {
		out[name] = r.raw
	}
	return out
}

// Snapshot evaluates every configured flag for userID.
func (m *Manager) Snapshot(userID uint) map[string]bool {
	out := make(map[string]bool)
	if m == nil {
		return out
	}
	for name := range m.rules {
		out[name] = m.Enabled(name, userID)
	}
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// bucket maps (flag, user) to [0,100) so rollouts are sticky per user and
// independent across flags.
func bucket(name string, userID uint) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(name))
	_, _ = h.Write([]byte{':'})
	_, _ = h.Write(strconv.AppendUint(nil, uint64(userID), 10))
	return int(h.Sum32() % 100)
}
