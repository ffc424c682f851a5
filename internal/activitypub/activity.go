package activitypub

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// MisskeyFavouriteGlyph is the reserved reaction marker Misskey-compatible
// servers send for a plain favourite. An activity carrying it is treated as a
// favourite even when emoji reactions are enabled.
const MisskeyFavouriteGlyph = "⭐"

// TagTypeEmoji marks a tag entry describing a custom emoji
const TagTypeEmoji = "Emoji"

// Icon carries the image reference of an emoji tag
type Icon struct {
	URL string `json:"url"`
}

// Tag is an entry of an activity's tag list. For Like-class activities only
// Emoji tags are meaningful.
type Tag struct {
	Type        string     `json:"type"`
	ID          string     `json:"id,omitempty"`
	Name        string     `json:"name,omitempty"`
	Icon        *Icon      `json:"icon,omitempty"`
	Domain      string     `json:"domain,omitempty"`
	License     string     `json:"license,omitempty"`
	IsSensitive bool       `json:"isSensitive,omitempty"`
	Updated     *time.Time `json:"updated,omitempty"`
}

// Shortcode returns the tag name stripped of its framing colons
func (t *Tag) Shortcode() string {
	return strings.Trim(t.Name, ":")
}

// TagList accepts both a single tag object and an array of tags, which remote
// implementations use interchangeably
type TagList []Tag

func (l *TagList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*l = nil
		return nil
	}
	if data[0] == '[' {
		return json.Unmarshal(data, (*[]Tag)(l))
	}
	var single Tag
	if err := json.Unmarshal(data, &single); err != nil {
		return err
	}
	*l = TagList{single}
	return nil
}

// Activity is an immutable view of a received Like-class document. The raw
// bytes are retained so fan-out can re-serialize the document verbatim.
type Activity struct {
	ID              string          `json:"id" validate:"required,uri"`
	Type            string          `json:"type" validate:"required"`
	Actor           string          `json:"actor" validate:"required,uri"`
	Object          string          `json:"object" validate:"required,uri"`
	Content         string          `json:"content,omitempty"`
	Tag             TagList         `json:"tag,omitempty"`
	MisskeyReaction string          `json:"_misskey_reaction,omitempty"`
	Signature       json.RawMessage `json:"signature,omitempty"`

	raw []byte
}

var validate = validator.New()

// Parse decodes and validates an inbound activity document
func Parse(data []byte) (*Activity, error) {
	var activity Activity
	if err := json.Unmarshal(data, &activity); err != nil {
		return nil, fmt.Errorf("malformed activity document: %w", err)
	}
	if err := validate.Struct(&activity); err != nil {
		return nil, fmt.Errorf("invalid activity document: %w", err)
	}
	activity.raw = data
	return &activity, nil
}

// Raw returns the original document bytes as received
func (a *Activity) Raw() []byte {
	if a.raw != nil {
		return a.raw
	}
	data, _ := json.Marshal(a)
	return data
}

// Signed reports whether the document carries an LD signature. Unsigned
// activities are never re-distributed, since relaying implies vouching for
// their origin.
func (a *Activity) Signed() bool {
	sig := bytes.TrimSpace(a.Signature)
	return len(sig) > 0 && !bytes.Equal(sig, []byte("null"))
}

// Shortcode extracts the reaction shortcode, or "" when the activity is a
// plain favourite. The reserved Misskey star marker always maps to "". When
// neither reaction field is set the shortcode comes from the Emoji tag, which
// some implementations send alone.
func (a *Activity) Shortcode() string {
	if a.MisskeyReaction == MisskeyFavouriteGlyph || a.Content == MisskeyFavouriteGlyph {
		return ""
	}
	if a.Content != "" {
		return strings.ReplaceAll(a.Content, ":", "")
	}
	if a.MisskeyReaction != "" {
		return strings.ReplaceAll(a.MisskeyReaction, ":", "")
	}
	if tag := a.EmojiTag(); tag != nil {
		return tag.Shortcode()
	}
	return ""
}

// EmojiTag returns the first Emoji tag on the document, or nil. A tag with no
// type at all counts: remote servers routinely omit it on reaction documents.
func (a *Activity) EmojiTag() *Tag {
	for i := range a.Tag {
		if a.Tag[i].Type == TagTypeEmoji || a.Tag[i].Type == "" {
			return &a.Tag[i]
		}
	}
	return nil
}
