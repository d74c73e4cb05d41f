package store

import (
	"context"
	"encoding/json"
	"time"

	"knaxim-client/internal/pkg/logger"
	"knaxim-client/pkg/events"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

const feedTopic = "store.mutations"

// changeFeed publishes one StoreEvent per applied mutation. Publishing never
// blocks the committer; with no subscriber the message is dropped.
type changeFeed struct {
	pubsub *gochannel.GoChannel
	log    logger.ILogger
}

func newChangeFeed(log logger.ILogger) *changeFeed {
	return &changeFeed{
		pubsub: gochannel.NewGoChannel(
			gochannel.Config{OutputChannelBuffer: 256},
			logger.NewWatermillAdapter(log, "STORE_FEED"),
		),
		log: log,
	}
}

func (f *changeFeed) publish(module string, kind MutationKind) {
	evt := events.StoreEvent{
		Module:     module,
		Mutation:   kind.String(),
		OccurredAt: time.Now(),
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		return
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	if err := f.pubsub.Publish(feedTopic, msg); err != nil {
		f.log.Debug("STORE_FEED", "publish dropped", map[string]interface{}{
			"event": evt.EventType(),
			"error": err.Error(),
		})
	}
}

func (f *changeFeed) subscribe(ctx context.Context) (<-chan events.StoreEvent, error) {
	msgs, err := f.pubsub.Subscribe(ctx, feedTopic)
	if err != nil {
		return nil, err
	}

	out := make(chan events.StoreEvent)
	go func() {
		defer close(out)
		for msg := range msgs {
			var evt events.StoreEvent
			err := json.Unmarshal(msg.Payload, &evt)
			msg.Ack()
			if err != nil {
				continue
			}
			select {
			case out <- evt:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

func (f *changeFeed) close() error {
	return f.pubsub.Close()
}
