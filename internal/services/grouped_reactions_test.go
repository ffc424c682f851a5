package services

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yuzuru-dev/fedilike/backend/internal/models"
	"github.com/yuzuru-dev/fedilike/backend/internal/repositories"
)

type groupedEnv struct {
	svc       *GroupedReactionService
	reactions repositories.EmojiReactionRepository
	emojis    repositories.CustomEmojiRepository
	mr        *miniredis.Miniredis
}

func newGroupedEnv(t *testing.T) *groupedEnv {
	db := setupTestDB(t)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	reactions := repositories.NewPostgresEmojiReactionRepository(db)
	return &groupedEnv{
		svc:       NewGroupedReactionService(reactions, rdb, time.Hour),
		reactions: reactions,
		emojis:    repositories.NewPostgresCustomEmojiRepository(db),
		mr:        mr,
	}
}

func (e *groupedEnv) react(t *testing.T, accountID, statusID uint, name string, emojiID *uint) {
	require.NoError(t, e.reactions.CreateEmojiReaction(&models.EmojiReaction{
		AccountID:     accountID,
		StatusID:      statusID,
		Name:          name,
		CustomEmojiID: emojiID,
	}))
}

func TestRebuild_GroupsByNameAndDomain(t *testing.T) {
	env := newGroupedEnv(t)
	ctx := context.Background()

	remote := "remote.example"
	remoteSmile := &models.CustomEmoji{Shortcode: "smile", Domain: &remote}
	require.NoError(t, env.emojis.SaveCustomEmoji(remoteSmile))
	localSmile := &models.CustomEmoji{Shortcode: "smile"}
	require.NoError(t, env.emojis.SaveCustomEmoji(localSmile))

	env.react(t, 1, 7, "smile", &remoteSmile.ID)
	env.react(t, 2, 7, "smile", &remoteSmile.ID)
	env.react(t, 3, 7, "smile", &localSmile.ID)
	env.react(t, 1, 7, "👍", nil)

	groups, err := env.svc.Rebuild(ctx, 7)
	require.NoError(t, err)
	require.Len(t, groups, 3)

	remoteGroup := Find(groups, "smile", "remote.example")
	require.NotNil(t, remoteGroup)
	assert.Equal(t, 2, remoteGroup.Count)
	assert.ElementsMatch(t, []string{"1", "2"}, remoteGroup.AccountIDs)

	localGroup := Find(groups, "smile", "")
	require.NotNil(t, localGroup)
	assert.Equal(t, 1, localGroup.Count)

	unicode := Find(groups, "👍", "")
	require.NotNil(t, unicode)
	assert.Equal(t, 1, unicode.Count)
}

func TestRebuild_ScopedToOneStatus(t *testing.T) {
	env := newGroupedEnv(t)
	ctx := context.Background()

	env.react(t, 1, 7, "👍", nil)
	env.react(t, 1, 8, "👍", nil)

	groups, err := env.svc.Rebuild(ctx, 7)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, 1, groups[0].Count)
}

func TestGet_ReadsThroughTheCache(t *testing.T) {
	env := newGroupedEnv(t)
	ctx := context.Background()

	env.react(t, 1, 7, "👍", nil)

	// Miss populates the cache.
	require.False(t, env.mr.Exists("emoji_reactions_grouped:7"))
	groups, err := env.svc.Get(ctx, 7)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	require.True(t, env.mr.Exists("emoji_reactions_grouped:7"))

	// A later row is invisible until the next rebuild.
	env.react(t, 2, 7, "👍", nil)
	groups, err = env.svc.Get(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, 1, groups[0].Count)

	_, err = env.svc.Rebuild(ctx, 7)
	require.NoError(t, err)
	groups, err = env.svc.Get(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, 2, groups[0].Count)
}

func TestGet_RepairsCorruptCacheEntry(t *testing.T) {
	env := newGroupedEnv(t)
	ctx := context.Background()

	env.react(t, 1, 7, "👍", nil)
	require.NoError(t, env.mr.Set("emoji_reactions_grouped:7", "not json"))

	groups, err := env.svc.Get(ctx, 7)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, 1, groups[0].Count)
}
