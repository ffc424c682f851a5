package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/yuzuru-dev/fedilike/backend/internal/activitypub"
	"github.com/yuzuru-dev/fedilike/backend/internal/lock"
	"github.com/yuzuru-dev/fedilike/backend/internal/models"
	"github.com/yuzuru-dev/fedilike/backend/internal/repositories"
	"github.com/yuzuru-dev/fedilike/backend/pkg/logger"
)

// ReactionFlags are the deployment toggles the pipeline consults. They are
// threaded in explicitly so tests can vary them per case.
type ReactionFlags struct {
	EnableEmojiReaction        bool
	ReceiveRemoteEmojiReaction bool
	StreamRemoteEmojiReaction  bool
}

// TrendRegistry is the trend-signal collaborator contract
type TrendRegistry interface {
	RegisterStatus(statusID uint)
}

// NoopTrendRegistry satisfies TrendRegistry when no trending scorer is wired
type NoopTrendRegistry struct{}

func (NoopTrendRegistry) RegisterStatus(uint) {}

// CleanupInvalidator is the moderation-tooling cache invalidation contract,
// consulted when a reaction is destroyed
type CleanupInvalidator interface {
	InvalidateLastInspected(statusID, accountID uint, reason string)
}

// NoopCleanupInvalidator satisfies CleanupInvalidator
type NoopCleanupInvalidator struct{}

func (NoopCleanupInvalidator) InvalidateLastInspected(uint, uint, string) {}

// LikeService turns an inbound Like-class activity into a favourite or emoji
// reaction and re-distributes it. Every outcome except a persistence failure
// is "activity accepted, possibly no visible effect".
type LikeService struct {
	flags ReactionFlags

	accounts   repositories.AccountRepository
	statuses   repositories.StatusRepository
	favourites repositories.FavouriteRepository
	reactions  repositories.EmojiReactionRepository
	blocks     repositories.DomainBlockRepository
	relays     repositories.RelayRepository
	friends    repositories.FriendDomainRepository

	dedup    *DedupGate
	resolver *EmojiResolver
	locker   *lock.Locker
	grouped  *GroupedReactionService
	stream   *StreamPublisher
	notifier *Notifier
	delivery Deliverer
	trends   TrendRegistry
	cleanup  CleanupInvalidator
}

// LikeServiceDeps bundles the collaborators of LikeService
type LikeServiceDeps struct {
	Accounts   repositories.AccountRepository
	Statuses   repositories.StatusRepository
	Favourites repositories.FavouriteRepository
	Reactions  repositories.EmojiReactionRepository
	Blocks     repositories.DomainBlockRepository
	Relays     repositories.RelayRepository
	Friends    repositories.FriendDomainRepository

	Dedup    *DedupGate
	Resolver *EmojiResolver
	Locker   *lock.Locker
	Grouped  *GroupedReactionService
	Stream   *StreamPublisher
	Notifier *Notifier
	Delivery Deliverer
	Trends   TrendRegistry
	Cleanup  CleanupInvalidator
}

func NewLikeService(flags ReactionFlags, deps LikeServiceDeps) *LikeService {
	if deps.Trends == nil {
		deps.Trends = NoopTrendRegistry{}
	}
	if deps.Cleanup == nil {
		deps.Cleanup = NoopCleanupInvalidator{}
	}
	return &LikeService{
		flags:      flags,
		accounts:   deps.Accounts,
		statuses:   deps.Statuses,
		favourites: deps.Favourites,
		reactions:  deps.Reactions,
		blocks:     deps.Blocks,
		relays:     deps.Relays,
		friends:    deps.Friends,
		dedup:      deps.Dedup,
		resolver:   deps.Resolver,
		locker:     deps.Locker,
		grouped:    deps.Grouped,
		stream:     deps.Stream,
		notifier:   deps.Notifier,
		delivery:   deps.Delivery,
		trends:     deps.Trends,
		cleanup:    deps.Cleanup,
	}
}

// ProcessLike runs the full ingestion pipeline for one Like-class activity.
// It returns an error only when persistence or coordination stores fail;
// policy rejections, replays, malformed sub-documents and cap hits all drop
// silently, which is what a federation receiver owes its peers.
func (s *LikeService) ProcessLike(ctx context.Context, activity *activitypub.Activity) error {
	sender, err := s.accounts.GetByURI(activity.Actor)
	if err != nil {
		return fmt.Errorf("resolve actor: %w", err)
	}
	if sender == nil {
		return nil
	}

	status, err := s.statuses.GetByURI(activity.Object)
	if err != nil {
		return fmt.Errorf("resolve status: %w", err)
	}
	if status == nil {
		return nil
	}

	if raced, err := s.dedup.DeleteArrivedFirst(ctx, activity.ID); err != nil {
		return fmt.Errorf("dedup gate: %w", err)
	} else if raced {
		return nil
	}

	if blocked, err := s.blocks.Blocked(sender.Domain); err != nil {
		return fmt.Errorf("domain policy: %w", err)
	} else if blocked {
		return nil
	}

	// The variant is decided once, here: a shortcode with the feature enabled
	// means an emoji reaction, everything else is a plain favourite.
	shortcode := activity.Shortcode()
	if shortcode == "" || !s.flags.EnableEmojiReaction {
		return s.processFavourite(ctx, sender, status)
	}
	if len([]rune(shortcode)) > models.EmojiReactionNameLimit {
		return nil
	}
	return s.processEmojiReaction(ctx, activity, sender, status, shortcode)
}

func (s *LikeService) processFavourite(ctx context.Context, sender *models.Account, status *models.Status) error {
	if reject, err := s.blocks.RejectFavourite(sender.Domain); err != nil {
		return fmt.Errorf("domain policy: %w", err)
	} else if reject {
		return nil
	}

	already, err := s.favourites.HasFavourited(sender.ID, status.ID)
	if err != nil {
		return fmt.Errorf("favourite lookup: %w", err)
	}
	if already {
		return nil
	}

	favourite := &models.Favourite{AccountID: sender.ID, StatusID: status.ID}
	if err := s.favourites.CreateFavourite(favourite); err != nil {
		return fmt.Errorf("create favourite: %w", err)
	}

	if status.Local() {
		if err := s.notifier.Notify(ctx, &status.Account, sender.ID, models.NotificationFavourite, favourite.ID, "Favourite"); err != nil {
			return fmt.Errorf("notify favourite: %w", err)
		}
	}
	s.trends.RegisterStatus(status.ID)
	return nil
}

func (s *LikeService) processEmojiReaction(ctx context.Context, activity *activitypub.Activity, sender *models.Account, status *models.Status, shortcode string) error {
	if !status.Local() && !s.flags.ReceiveRemoteEmojiReaction {
		return nil
	}

	// Resolve any custom emoji before entering the lock: the remote fetch is
	// slow I/O and must not extend the lock hold time.
	var emoji *models.CustomEmoji
	if tag := activity.EmojiTag(); tag != nil {
		resolved, err := s.resolver.Resolve(ctx, tag, sender.Domain)
		if err != nil {
			return fmt.Errorf("resolve emoji: %w", err)
		}
		if resolved == nil {
			return nil
		}
		emoji = resolved
	}
	return s.createEmojiReaction(ctx, activity, sender, status, shortcode, emoji)
}

func (s *LikeService) createEmojiReaction(ctx context.Context, activity *activitypub.Activity, sender *models.Account, status *models.Status, shortcode string, emoji *models.CustomEmoji) error {
	var created *models.EmojiReaction
	err := s.locker.WithLock(ctx, lock.StatusKey(status.ID), func() error {
		count, err := s.reactions.CountByAccountAndStatus(sender.ID, status.ID)
		if err != nil {
			return err
		}
		if count >= models.EmojiReactionPerAccountLimit {
			return nil
		}

		existing, err := s.reactions.FindByAccountStatusName(sender.ID, status.ID, shortcode)
		if err != nil {
			return err
		}
		if existing != nil {
			return nil
		}

		reaction := &models.EmojiReaction{
			AccountID: sender.ID,
			StatusID:  status.ID,
			Name:      shortcode,
			URI:       activity.ID,
		}
		if emoji != nil {
			reaction.CustomEmojiID = &emoji.ID
		}
		if err := s.reactions.CreateEmojiReaction(reaction); err != nil {
			return err
		}
		created = reaction
		return nil
	})
	if err != nil {
		return fmt.Errorf("emoji reaction store: %w", err)
	}
	if created == nil {
		return nil
	}

	s.trends.RegisterStatus(status.ID)
	s.writeStream(ctx, status, created, emoji)

	if status.Local() {
		if err := s.notifier.Notify(ctx, &status.Account, sender.ID, models.NotificationEmojiReaction, created.ID, "EmojiReaction"); err != nil {
			return fmt.Errorf("notify emoji reaction: %w", err)
		}
		s.fanOut(activity, sender, status)
	}
	return nil
}

// writeStream rebuilds the grouped view and publishes the entry for the new
// reaction. Publishing is best effort; a streaming outage must not fail the
// already-committed reaction.
func (s *LikeService) writeStream(ctx context.Context, status *models.Status, reaction *models.EmojiReaction, emoji *models.CustomEmoji) {
	groups, err := s.grouped.Rebuild(ctx, status.ID)
	if err != nil {
		logger.Warn("grouped reaction rebuild failed", zap.Uint("status_id", status.ID), zap.Error(err))
		return
	}

	if !status.Local() && !s.flags.StreamRemoteEmojiReaction {
		return
	}

	domain := ""
	if emoji != nil {
		domain = emoji.DomainOrEmpty()
	}
	group := Find(groups, reaction.Name, domain)
	if group == nil {
		return
	}
	entry := *group
	entry.StatusID = fmt.Sprintf("%d", status.ID)
	if err := s.stream.PublishEmojiReaction(ctx, status.ID, entry); err != nil {
		logger.Warn("stream publish failed", zap.Uint("status_id", status.ID), zap.Error(err))
	}
}

// fanOut re-broadcasts the original signed document to the three independent
// distribution targets. Each gate is evaluated separately and every delivery
// is an independent fire-and-forget task.
func (s *LikeService) fanOut(activity *activitypub.Activity, sender *models.Account, status *models.Status) {
	if !activity.Signed() {
		return
	}
	raw := activity.Raw()

	// Forward to the original recipients: single preferred inbox.
	s.delivery.Enqueue(raw, sender.PreferredInboxURL())

	if status.PublicVisibility() {
		urls, err := s.relays.ListEnabledInboxURLs()
		if err != nil {
			logger.Warn("relay directory lookup failed", zap.Error(err))
		} else {
			s.delivery.EnqueueBulk(raw, urls)
		}
	}

	if status.DistributableFriend() {
		urls, err := s.friends.ListDistributableInboxURLs()
		if err != nil {
			logger.Warn("friend directory lookup failed", zap.Error(err))
		} else {
			s.delivery.EnqueueBulk(raw, urls)
		}
	}
}

// DestroyEmojiReaction removes a reaction on behalf of the user or moderation
// tooling, refreshes the grouped view and invalidates moderation cleanup
// state
func (s *LikeService) DestroyEmojiReaction(ctx context.Context, reactionID uint) error {
	reaction, err := s.reactions.FindByID(reactionID)
	if err != nil {
		return fmt.Errorf("reaction lookup: %w", err)
	}
	if reaction == nil {
		return nil
	}
	if err := s.reactions.DestroyEmojiReaction(reaction.ID); err != nil {
		return fmt.Errorf("destroy reaction: %w", err)
	}
	if _, err := s.grouped.Rebuild(ctx, reaction.StatusID); err != nil {
		logger.Warn("grouped reaction rebuild failed", zap.Uint("status_id", reaction.StatusID), zap.Error(err))
	}
	s.cleanup.InvalidateLastInspected(reaction.StatusID, reaction.AccountID, "unfav")
	return nil
}
