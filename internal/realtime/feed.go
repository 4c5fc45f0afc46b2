// Package realtime implements backend.Feed over the platform's change
// channels. Row changes are published as JSON on one pub/sub channel per
// table ("changes:<table>"), each payload carrying the event type with the
// new and old rows.
package realtime

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"atelier/storefront/internal/backend"
)

const channelPrefix = "changes:"

type Feed struct {
	client *redis.Client
	log    zerolog.Logger
}

var _ backend.Feed = (*Feed)(nil)

func NewFeed(client *redis.Client, log zerolog.Logger) *Feed {
	return &Feed{client: client, log: log}
}

func (f *Feed) Subscribe(ctx context.Context, table string) (backend.Subscription, error) {
	pubsub := f.client.Subscribe(ctx, channelPrefix+table)

	// Force the SUBSCRIBE round trip so a broken connection surfaces here
	// instead of as a silently empty stream.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, err
	}

	sub := &subscription{
		pubsub: pubsub,
		events: make(chan backend.Event, 64),
	}

	go sub.pump(f.log.With().Str("table", table).Logger())

	return sub, nil
}

type subscription struct {
	pubsub *redis.PubSub
	events chan backend.Event
}

func (s *subscription) Events() <-chan backend.Event {
	return s.events
}

func (s *subscription) Close() error {
	return s.pubsub.Close()
}

func (s *subscription) pump(log zerolog.Logger) {
	defer close(s.events)

	for msg := range s.pubsub.Channel() {
		var ev backend.Event
		if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
			log.Error().Err(err).Msg("malformed change payload")
			continue
		}

		switch ev.Type {
		case backend.EventInsert, backend.EventUpdate, backend.EventDelete:
			s.events <- ev
		default:
			log.Warn().Str("type", string(ev.Type)).Msg("unknown change type")
		}
	}
}
