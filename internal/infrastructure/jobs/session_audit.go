package jobs

import (
	"context"
	"encoding/json"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"luxe-estates.backend/internal/usecases"
	"luxe-estates.backend/pkg/logger"
)

// Subscriber opens a pub/sub subscription.
type Subscriber func(ctx context.Context, channels ...string) (*goredis.PubSub, error)

// SessionAuditJob writes every published session event to the log.
type SessionAuditJob struct {
	subscribe Subscriber
	handle    func(ctx context.Context, ev usecases.SessionEvent)
}

func NewSessionAuditJob(subscribe Subscriber) *SessionAuditJob {
	return &SessionAuditJob{subscribe: subscribe, handle: logSessionEvent}
}

// Start blocks until ctx is done or the subscription closes.
func (j *SessionAuditJob) Start(ctx context.Context) error {
	sub, err := j.subscribe(ctx, usecases.AuthEventsChannel)
	if err != nil {
		return err
	}
	defer sub.Close()

	logger.Info(ctx, "Listening for session events", zap.String("channel", usecases.AuthEventsChannel))
	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var ev usecases.SessionEvent
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				logger.Warn(ctx, "Malformed session event", zap.String("payload", msg.Payload), zap.Error(err))
				continue
			}
			j.handle(ctx, ev)
		}
	}
}

func logSessionEvent(ctx context.Context, ev usecases.SessionEvent) {
	logger.Info(ctx, "Session event",
		zap.String("event", ev.Event),
		zap.String("profile_id", ev.ProfileID.String()),
		zap.String("role", ev.Role),
		zap.Time("at", ev.At),
	)
}
