package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/yuzuru-dev/fedilike/backend/internal/activitypub"
	"github.com/yuzuru-dev/fedilike/backend/internal/lock"
	"github.com/yuzuru-dev/fedilike/backend/internal/models"
	"github.com/yuzuru-dev/fedilike/backend/internal/repositories"
)

const testLocalDomain = "local.example"

type fakeDeliverer struct {
	mu   sync.Mutex
	urls []string
}

func (f *fakeDeliverer) Enqueue(raw []byte, inboxURL string) {
	if inboxURL == "" {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.urls = append(f.urls, inboxURL)
}

func (f *fakeDeliverer) EnqueueBulk(raw []byte, inboxURLs []string) {
	for _, u := range inboxURLs {
		f.Enqueue(raw, u)
	}
}

func (f *fakeDeliverer) URLs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.urls...)
}

type fakeFetcher struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (f *fakeFetcher) FetchImage(ctx context.Context, imageURL string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.err
}

func (f *fakeFetcher) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeTrends struct {
	mu       sync.Mutex
	statuses []uint
}

func (f *fakeTrends) RegisterStatus(statusID uint) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statuses = append(f.statuses, statusID)
}

func (f *fakeTrends) Count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.statuses)
}

type likeEnv struct {
	t        *testing.T
	db       *gorm.DB
	rdb      *redis.Client
	mr       *miniredis.Miniredis
	delivery *fakeDeliverer
	fetcher  *fakeFetcher
	trends   *fakeTrends
	dedup    *DedupGate
	grouped  *GroupedReactionService
	svc      *LikeService
}

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Account{},
		&models.Status{},
		&models.Favourite{},
		&models.EmojiReaction{},
		&models.CustomEmoji{},
		&models.DomainBlock{},
		&models.Relay{},
		&models.FriendDomain{},
		&models.Notification{},
	))
	return db
}

func newLikeEnv(t *testing.T, flags ReactionFlags) *likeEnv {
	db := setupTestDB(t)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	reactionRepo := repositories.NewPostgresEmojiReactionRepository(db)
	blockRepo := repositories.NewPostgresDomainBlockRepository(db)

	env := &likeEnv{
		t:        t,
		db:       db,
		rdb:      rdb,
		mr:       mr,
		delivery: &fakeDeliverer{},
		fetcher:  &fakeFetcher{},
		trends:   &fakeTrends{},
		dedup:    NewDedupGate(rdb, time.Hour),
		grouped:  NewGroupedReactionService(reactionRepo, rdb, time.Hour),
	}

	env.svc = NewLikeService(flags, LikeServiceDeps{
		Accounts:   repositories.NewPostgresAccountRepository(db),
		Statuses:   repositories.NewPostgresStatusRepository(db),
		Favourites: repositories.NewPostgresFavouriteRepository(db),
		Reactions:  reactionRepo,
		Blocks:     blockRepo,
		Relays:     repositories.NewPostgresRelayRepository(db),
		Friends:    repositories.NewPostgresFriendDomainRepository(db),
		Dedup:      env.dedup,
		Resolver:   NewEmojiResolver(repositories.NewPostgresCustomEmojiRepository(db), blockRepo, env.fetcher, testLocalDomain),
		Locker:     lock.NewLocker(rdb, 2*time.Second, 10*time.Second),
		Grouped:    env.grouped,
		Stream:     NewStreamPublisher(rdb),
		Notifier:   NewNotifier(repositories.NewPostgresNotificationRepository(db), nil),
		Delivery:   env.delivery,
		Trends:     env.trends,
	})
	return env
}

func defaultFlags() ReactionFlags {
	return ReactionFlags{
		EnableEmojiReaction:        true,
		ReceiveRemoteEmojiReaction: true,
		StreamRemoteEmojiReaction:  false,
	}
}

func (e *likeEnv) createAccount(username, domain string) *models.Account {
	uriDomain := domain
	if uriDomain == "" {
		uriDomain = testLocalDomain
	}
	account := &models.Account{
		Username: username,
		Domain:   domain,
		URI:      fmt.Sprintf("https://%s/users/%s", uriDomain, username),
	}
	if domain != "" {
		account.InboxURL = fmt.Sprintf("https://%s/users/%s/inbox", domain, username)
		account.SharedInboxURL = fmt.Sprintf("https://%s/inbox", domain)
	}
	require.NoError(e.t, e.db.Create(account).Error)
	return account
}

func (e *likeEnv) createStatus(owner *models.Account, visibility string) *models.Status {
	status := &models.Status{
		AccountID:  owner.ID,
		Visibility: visibility,
	}
	domain := owner.Domain
	if domain == "" {
		domain = testLocalDomain
	}
	require.NoError(e.t, e.db.Create(status).Error)
	status.URI = fmt.Sprintf("https://%s/statuses/%d", domain, status.ID)
	require.NoError(e.t, e.db.Save(status).Error)
	status.Account = *owner
	return status
}

type docOptions struct {
	id       string
	content  string
	misskey  string
	tag      string
	signed   bool
	actorURI string
}

func (e *likeEnv) buildActivity(sender *models.Account, status *models.Status, opts docOptions) *activitypub.Activity {
	if opts.id == "" {
		opts.id = fmt.Sprintf("https://%s/activities/%s", sender.Domain, sender.Username)
	}
	actor := opts.actorURI
	if actor == "" {
		actor = sender.URI
	}
	doc := fmt.Sprintf(`{"id":%q,"type":"Like","actor":%q,"object":%q`, opts.id, actor, status.URI)
	if opts.content != "" {
		doc += fmt.Sprintf(`,"content":%q`, opts.content)
	}
	if opts.misskey != "" {
		doc += fmt.Sprintf(`,"_misskey_reaction":%q`, opts.misskey)
	}
	if opts.tag != "" {
		doc += `,"tag":` + opts.tag
	}
	if opts.signed {
		doc += `,"signature":{"type":"RsaSignature2017","signatureValue":"sig"}`
	}
	doc += "}"

	activity, err := activitypub.Parse([]byte(doc))
	require.NoError(e.t, err)
	return activity
}

func emojiTag(shortcode, imageURL string) string {
	return fmt.Sprintf(`[{"type":"Emoji","name":":%s:","icon":{"url":%q}}]`, shortcode, imageURL)
}

func (e *likeEnv) countFavourites() int64 {
	var count int64
	require.NoError(e.t, e.db.Model(&models.Favourite{}).Count(&count).Error)
	return count
}

func (e *likeEnv) countReactions() int64 {
	var count int64
	require.NoError(e.t, e.db.Model(&models.EmojiReaction{}).Count(&count).Error)
	return count
}

func (e *likeEnv) countNotifications() int64 {
	var count int64
	require.NoError(e.t, e.db.Model(&models.Notification{}).Count(&count).Error)
	return count
}
