package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"fbclone/internal/models"

	"gopkg.in/yaml.v3"
)

// Scenario is a hand-written data set, typically loaded from YAML:
//
//	users:
//	  - {username: ann, email: ann@example.com, password: secret123}
//	  - {username: ben}
//	friendships:
//	  - {from: ann, to: ben}
//	posts:
//	  - author: ann
//	    text: hello
//	    tagged: [ben]
//	    reactions: {ben: love}
//	    comments:
//	      - {author: ben, text: hi!}
type Scenario struct {
	Users       []ScenarioUser   `yaml:"users"`
	Friendships []ScenarioFriend `yaml:"friendships"`
	Posts       []ScenarioPost   `yaml:"posts"`
	Stories     []ScenarioStory  `yaml:"stories"`
}

type ScenarioUser struct {
	Username string `yaml:"username"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
}

// ScenarioFriend is an edge. Pending edges stay in-progress.
type ScenarioFriend struct {
	From    string `yaml:"from"`
	To      string `yaml:"to"`
	Pending bool   `yaml:"pending"`
}

type ScenarioPost struct {
	Author    string            `yaml:"author"`
	Text      string            `yaml:"text"`
	Tagged    []string          `yaml:"tagged"`
	Reactions map[string]string `yaml:"reactions"`
	Comments  []ScenarioComment `yaml:"comments"`
}

type ScenarioComment struct {
	Author string `yaml:"author"`
	Text   string `yaml:"text"`
}

type ScenarioStory struct {
	Author string `yaml:"author"`
	Text   string `yaml:"text"`
}

// LoadScenario decodes a scenario. Unknown keys are rejected so typos surface.
func LoadScenario(r io.Reader) (*Scenario, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var sc Scenario
	if err := dec.Decode(&sc); err != nil {
		if errors.Is(err, io.EOF) {
			return &sc, nil
		}
		return nil, fmt.Errorf("decode scenario: %w", err)
	}
	if err := sc.validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

// LoadScenarioFile reads a scenario from path.
func LoadScenarioFile(path string) (*Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadScenario(f)
}

func (sc *Scenario) validate() error {
	known := make(map[string]struct{}, len(sc.Users))
	for _, u := range sc.Users {
		if u.Username == "" {
			return errors.New("scenario: user without username")
		}
		if _, dup := known[u.Username]; dup {
			return fmt.Errorf("scenario: duplicate user %q", u.Username)
		}
		known[u.Username] = struct{}{}
	}

	check := func(where, name string) error {
		if _, ok := known[name]; !ok {
			return fmt.Errorf("scenario: %s references unknown user %q", where, name)
		}
		return nil
	}
	for _, fr := range sc.Friendships {
		if err := check("friendship", fr.From); err != nil {
			return err
		}
		if err := check("friendship", fr.To); err != nil {
			return err
		}
	}
	for _, p := range sc.Posts {
		if err := check("post", p.Author); err != nil {
			return err
		}
		for _, name := range p.Tagged {
			if err := check("tag", name); err != nil {
				return err
			}
		}
		for name, kind := range p.Reactions {
			if err := check("reaction", name); err != nil {
				return err
			}
			if _, ok := models.ParseReactionKind(kind); !ok {
				return fmt.Errorf("scenario: unknown reaction %q", kind)
			}
		}
		for _, c := range p.Comments {
			if err := check("comment", c.Author); err != nil {
				return err
			}
		}
	}
	for _, st := range sc.Stories {
		if err := check("story", st.Author); err != nil {
			return err
		}
	}
	return nil
}

// ApplyScenario inserts sc. Accounts without a password get DefaultPassword.
func (s *Seeder) ApplyScenario(ctx context.Context, sc *Scenario) (Result, error) {
	var res Result
	f := s.factory
	byName := make(map[string]*models.User, len(sc.Users))

	for _, su := range sc.Users {
		email := su.Email
		if email == "" {
			email = su.Username + "@example.com"
		}
		u, err := f.CreateUserWithPassword(ctx, su.Username, email, su.Password)
		if err != nil {
			return res, fmt.Errorf("create user %s: %w", su.Username, err)
		}
		byName[su.Username] = u
		res.Users++
	}

	for _, fr := range sc.Friendships {
		ok, err := f.Befriend(ctx, byName[fr.From], byName[fr.To], fr.Pending)
		if err != nil {
			return res, fmt.Errorf("befriend %s->%s: %w", fr.From, fr.To, err)
		}
		if ok {
			res.Friendships++
		}
	}

	for _, sp := range sc.Posts {
		author := byName[sp.Author]
		tagged := make([]uint, 0, len(sp.Tagged))
		for _, name := range sp.Tagged {
			tagged = append(tagged, byName[name].ID)
		}
		post, err := f.CreatePost(ctx, author, sp.Text, tagged...)
		if err != nil {
			return res, fmt.Errorf("create post by %s: %w", sp.Author, err)
		}
		res.Posts++

		for name, raw := range sp.Reactions {
			kind, _ := models.ParseReactionKind(raw)
			if err := f.React(ctx, byName[name], post, kind); err != nil {
				return res, fmt.Errorf("react %s: %w", name, err)
			}
			res.Reactions++
		}
		for _, sc := range sp.Comments {
			if _, err := f.CreateComment(ctx, byName[sc.Author], post, sc.Text); err != nil {
				return res, fmt.Errorf("comment by %s: %w", sc.Author, err)
			}
			res.Comments++
		}
	}

	for _, st := range sc.Stories {
		if _, err := f.CreateStory(ctx, byName[st.Author], st.Text); err != nil {
			return res, fmt.Errorf("story by %s: %w", st.Author, err)
		}
		res.Stories++
	}
	return res, nil
}
