package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"luxe-estates.backend/internal/usecases"
	redispkg "luxe-estates.backend/pkg/redis"
)

func TestSessionAuditJob_ReceivesPublishedEvents(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	redispkg.SetClient(client)
	t.Cleanup(func() {
		redispkg.SetClient(nil)
		_ = client.Close()
	})

	got := make(chan usecases.SessionEvent, 8)
	job := NewSessionAuditJob(redispkg.Subscribe)
	job.handle = func(_ context.Context, ev usecases.SessionEvent) { got <- ev }

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- job.Start(ctx) }()

	id := uuid.New()
	ev := usecases.SessionEvent{Event: usecases.EventSignedIn, ProfileID: id, Role: "user", At: time.Now().UTC()}
	var received usecases.SessionEvent
	require.Eventually(t, func() bool {
		_ = redispkg.Publish(context.Background(), usecases.AuthEventsChannel, "not json")
		_ = redispkg.Publish(context.Background(), usecases.AuthEventsChannel, ev)
		select {
		case received = <-got:
			return true
		default:
			return false
		}
	}, 2*time.Second, 20*time.Millisecond)
	require.Equal(t, id, received.ProfileID)
	require.Equal(t, usecases.EventSignedIn, received.Event)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("job did not stop")
	}
}

func TestSessionAuditJob_SubscribeError(t *testing.T) {
	job := NewSessionAuditJob(func(context.Context, ...string) (*goredis.PubSub, error) {
		return nil, errors.New("redis down")
	})
	require.EqualError(t, job.Start(context.Background()), "redis down")
}
