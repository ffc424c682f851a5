package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// StreamEvent is the realtime payload published alongside a new emoji
// reaction
type StreamEvent struct {
	Event   string          `json:"event"`
	Payload GroupedReaction `json:"payload"`
}

// StreamPublisher pushes realtime events to the streaming layer over Redis
// pub/sub; the websocket frontend subscribes per timeline channel
type StreamPublisher struct {
	rdb *redis.Client
}

func NewStreamPublisher(rdb *redis.Client) *StreamPublisher {
	return &StreamPublisher{rdb: rdb}
}

// PublishEmojiReaction publishes the updated grouped entry to the status's
// timeline channel
func (p *StreamPublisher) PublishEmojiReaction(ctx context.Context, statusID uint, group GroupedReaction) error {
	event := StreamEvent{Event: "emoji_reaction", Payload: group}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.rdb.Publish(ctx, fmt.Sprintf("timeline:%d", statusID), payload).Err()
}
