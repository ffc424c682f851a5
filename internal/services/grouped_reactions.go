package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/yuzuru-dev/fedilike/backend/internal/repositories"
)

// GroupedReaction is one entry of the per-status reaction aggregation: the
// count and participants for a distinct (name, emoji domain) pair
type GroupedReaction struct {
	Name       string   `json:"name"`
	Domain     string   `json:"domain,omitempty"`
	Count      int      `json:"count"`
	AccountIDs []string `json:"account_ids"`
	StatusID   string   `json:"status_id,omitempty"`
}

// GroupedReactionService maintains the derived per-status reaction
// aggregation, cached in Redis and force-recomputed after every reaction
// create or destroy
type GroupedReactionService struct {
	reactions repositories.EmojiReactionRepository
	rdb       *redis.Client
	ttl       time.Duration
}

func NewGroupedReactionService(reactions repositories.EmojiReactionRepository, rdb *redis.Client, ttl time.Duration) *GroupedReactionService {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &GroupedReactionService{reactions: reactions, rdb: rdb, ttl: ttl}
}

func groupedReactionKey(statusID uint) string {
	return fmt.Sprintf("emoji_reactions_grouped:%d", statusID)
}

// Rebuild recomputes the aggregation from the reaction rows and replaces the
// cache entry
func (s *GroupedReactionService) Rebuild(ctx context.Context, statusID uint) ([]GroupedReaction, error) {
	rows, err := s.reactions.ListByStatus(statusID)
	if err != nil {
		return nil, err
	}

	type groupKey struct{ name, domain string }
	index := make(map[groupKey]int)
	groups := make([]GroupedReaction, 0, len(rows))
	for _, row := range rows {
		key := groupKey{name: row.Name}
		if row.CustomEmoji != nil {
			key.domain = row.CustomEmoji.DomainOrEmpty()
		}
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, GroupedReaction{Name: key.name, Domain: key.domain})
		}
		groups[i].Count++
		groups[i].AccountIDs = append(groups[i].AccountIDs, strconv.FormatUint(uint64(row.AccountID), 10))
	}

	payload, err := json.Marshal(groups)
	if err != nil {
		return nil, err
	}
	if err := s.rdb.Set(ctx, groupedReactionKey(statusID), payload, s.ttl).Err(); err != nil {
		return nil, err
	}
	return groups, nil
}

// Get returns the cached aggregation, rebuilding on a cache miss
func (s *GroupedReactionService) Get(ctx context.Context, statusID uint) ([]GroupedReaction, error) {
	data, err := s.rdb.Get(ctx, groupedReactionKey(statusID)).Bytes()
	if err == nil {
		var groups []GroupedReaction
		if uErr := json.Unmarshal(data, &groups); uErr == nil {
			return groups, nil
		}
	}
	return s.Rebuild(ctx, statusID)
}

// Find locates the entry for one (name, domain) pair within a rebuilt
// aggregation
func Find(groups []GroupedReaction, name, domain string) *GroupedReaction {
	for i := range groups {
		if groups[i].Name == name && (groups[i].Domain == "" || groups[i].Domain == domain) {
			return &groups[i]
		}
	}
	return nil
}
