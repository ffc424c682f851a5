package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/yuzuru-dev/fedilike/backend/internal/activitypub"
	"github.com/yuzuru-dev/fedilike/backend/internal/models"
	"github.com/yuzuru-dev/fedilike/backend/internal/repositories"
	"github.com/yuzuru-dev/fedilike/backend/pkg/logger"
)

// RemoteFetcher downloads a remote emoji asset so it can be served locally.
// Failures are treated as transient and never abort resolution.
type RemoteFetcher interface {
	FetchImage(ctx context.Context, imageURL string) error
}

// HTTPRemoteFetcher implements RemoteFetcher over plain HTTP
type HTTPRemoteFetcher struct {
	client *http.Client
}

func NewHTTPRemoteFetcher(timeout time.Duration) *HTTPRemoteFetcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPRemoteFetcher{client: &http.Client{Timeout: timeout}}
}

// FetchImage validates that the remote asset is reachable. Storage of the
// bytes belongs to the media collaborator.
func (f *HTTPRemoteFetcher) FetchImage(ctx context.Context, imageURL string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("fetch emoji image: unexpected status %d", resp.StatusCode)
	}
	return nil
}

// EmojiResolver resolves a remote custom-emoji tag to a local cache entry,
// fetching metadata only when the cached entry is stale or absent
type EmojiResolver struct {
	emojis       repositories.CustomEmojiRepository
	blocks       repositories.DomainBlockRepository
	fetcher      RemoteFetcher
	localDomains []string
}

func NewEmojiResolver(emojis repositories.CustomEmojiRepository, blocks repositories.DomainBlockRepository, fetcher RemoteFetcher, localDomains ...string) *EmojiResolver {
	return &EmojiResolver{emojis: emojis, blocks: blocks, fetcher: fetcher, localDomains: localDomains}
}

// Resolve returns the cache entry for the tag, refreshing it when stale.
// A nil result with nil error means the emoji cannot be materialized
// (malformed tag, media policy, or a miss that could not be stored) and the
// caller decides whether the activity survives without it.
func (r *EmojiResolver) Resolve(ctx context.Context, tag *activitypub.Tag, senderDomain string) (*models.CustomEmoji, error) {
	shortcode := tag.Shortcode()
	if shortcode == "" || tag.Icon == nil || tag.Icon.URL == "" {
		return nil, nil
	}

	domain := r.owningDomain(tag, senderDomain)
	if domain != nil {
		skip, err := r.blocks.RejectMedia(*domain)
		if err != nil {
			return nil, err
		}
		if skip {
			return nil, nil
		}
	}

	emoji, err := r.emojis.FindByShortcodeAndDomain(shortcode, domain)
	if err != nil {
		return nil, err
	}
	if emoji != nil && !stale(emoji, tag) {
		return emoji, nil
	}

	if emoji == nil {
		emoji = &models.CustomEmoji{
			Shortcode: shortcode,
			Domain:    domain,
			URI:       tag.ID,
		}
	}
	emoji.ImageRemoteURL = tag.Icon.URL
	emoji.License = tag.License
	emoji.IsSensitive = tag.IsSensitive

	if err := r.fetcher.FetchImage(ctx, tag.Icon.URL); err != nil {
		// Best effort: a transient fetch failure never raises past this
		// boundary, resolution yields whatever entry exists.
		logger.Warn("error fetching emoji image", zap.String("shortcode", shortcode), zap.Error(err))
		if emoji.ID == 0 {
			return nil, nil
		}
		return emoji, nil
	}

	if err := r.emojis.SaveCustomEmoji(emoji); err != nil {
		return nil, err
	}
	return emoji, nil
}

// owningDomain computes which domain owns the emoji: the tag's explicit
// domain, else the authority of the tag's id URI, else the sender's domain.
// Local domains normalize to nil.
func (r *EmojiResolver) owningDomain(tag *activitypub.Tag, senderDomain string) *string {
	domain := tag.Domain
	if domain == "" {
		if u, err := url.Parse(tag.ID); err == nil {
			domain = u.Host
		}
	}
	if domain == "" {
		domain = senderDomain
	}
	if domain == "" {
		return nil
	}
	for _, local := range r.localDomains {
		if local != "" && domain == local {
			return nil
		}
	}
	return &domain
}

// stale reports whether the cached entry must be refreshed against the tag
func stale(emoji *models.CustomEmoji, tag *activitypub.Tag) bool {
	if tag.Icon.URL != emoji.ImageRemoteURL {
		return true
	}
	if tag.Updated != nil && !tag.Updated.Before(emoji.UpdatedAt) {
		return true
	}
	if tag.License != emoji.License {
		return true
	}
	return false
}
