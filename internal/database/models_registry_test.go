package database

import (
	"testing"

	modelspkg "fbclone/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestPersistentModels_IncludesEdgesAndReactions(t *testing.T) {
	var hasEdges, hasReactions bool
	for _, model := range PersistentModels() {
		switch model.(type) {
		case *modelspkg.FriendRequest:
			hasEdges = true
		case *modelspkg.Reaction:
			hasReactions = true
		}
	}
	assert.True(t, hasEdges, "PersistentModels should include FriendRequest")
	assert.True(t, hasReactions, "PersistentModels should include Reaction")
}
