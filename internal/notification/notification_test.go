package notification

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/congo-pay/transfers/internal/logging"
)

func sampleMessage() Message {
	return Message{
		ID:            uuid.NewString(),
		Kind:          KindTransferDebit,
		Destination:   "Id-123",
		TransactionID: uuid.NewString(),
		Body:          "Account Id-123 was debited 10. Now it has balance: 0.1",
		CreatedAt:     time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestRedisNotifierPushesJSON(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer cache.Close()

	msg := sampleMessage()
	require.NoError(t, NewRedisNotifier(cache, "").Send(context.Background(), msg))

	items, err := cache.LRange(context.Background(), DefaultRedisKey, 0, -1).Result()
	require.NoError(t, err)
	require.Len(t, items, 1)

	var got Message
	require.NoError(t, json.Unmarshal([]byte(items[0]), &got))
	assert.Equal(t, msg.ID, got.ID)
	assert.Equal(t, msg.TransactionID, got.TransactionID)
	assert.Equal(t, msg.Body, got.Body)
	assert.True(t, msg.CreatedAt.Equal(got.CreatedAt))
}

func TestRedisNotifierReportsOutage(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer cache.Close()
	mr.Close()

	err = NewRedisNotifier(cache, "custom").Send(context.Background(), sampleMessage())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "push notification")
}

type fakeExecer struct {
	sql  string
	args []any
	err  error
}

func (f *fakeExecer) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.sql, f.args = sql, args
	if f.err != nil {
		return pgconn.CommandTag{}, f.err
	}
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func TestPostgresNotifierInsertsOutboxRow(t *testing.T) {
	db := &fakeExecer{}
	msg := sampleMessage()

	require.NoError(t, NewPostgresNotifier(db).Send(context.Background(), msg))
	assert.Contains(t, db.sql, "notification_outbox")
	require.Len(t, db.args, 6)
	assert.Equal(t, uuid.MustParse(msg.ID), db.args[0])
	assert.Equal(t, msg.Kind, db.args[1])
	assert.Equal(t, msg.Destination, db.args[2])
	assert.Equal(t, msg.Body, db.args[4])
}

func TestPostgresNotifierErrors(t *testing.T) {
	msg := sampleMessage()
	msg.ID = "not-a-uuid"
	require.Error(t, NewPostgresNotifier(&fakeExecer{}).Send(context.Background(), msg))

	boom := errors.New("connection reset")
	err := NewPostgresNotifier(&fakeExecer{err: boom}).Send(context.Background(), sampleMessage())
	require.ErrorIs(t, err, boom)
}

type fakePublisher struct {
	subject string
	data    []byte
	err     error
}

func (f *fakePublisher) Publish(subject string, data []byte) error {
	f.subject, f.data = subject, data
	return f.err
}

func TestNATSNotifierPublishesByKind(t *testing.T) {
	pub := &fakePublisher{}
	msg := sampleMessage()

	require.NoError(t, NewNATSNotifier(pub, "").Send(context.Background(), msg))
	assert.Equal(t, DefaultSubject+"."+KindTransferDebit, pub.subject)

	var got Message
	require.NoError(t, json.Unmarshal(pub.data, &got))
	assert.Equal(t, msg.Body, got.Body)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, NewNATSNotifier(pub, "x").Send(ctx, msg), context.Canceled)
}

type countingNotifier struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (c *countingNotifier) Send(context.Context, Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return c.err
}

func (c *countingNotifier) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	sink := &countingNotifier{err: errors.New("down")}
	b := NewBreaker("test", sink, BreakerSettings{ConsecutiveFailures: 2, Cooldown: time.Hour}, logging.Discard())

	for i := 0; i < 2; i++ {
		require.Error(t, b.Send(context.Background(), sampleMessage()))
	}
	err := b.Send(context.Background(), sampleMessage())
	require.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, 2, sink.count())
}

func TestBreakerRecoversAfterCooldown(t *testing.T) {
	sink := &countingNotifier{err: errors.New("down")}
	b := NewBreaker("test", sink, BreakerSettings{ConsecutiveFailures: 1, Cooldown: 10 * time.Millisecond}, nil)

	require.Error(t, b.Send(context.Background(), sampleMessage()))
	require.ErrorIs(t, b.Send(context.Background(), sampleMessage()), gobreaker.ErrOpenState)

	time.Sleep(20 * time.Millisecond)
	sink.mu.Lock()
	sink.err = nil
	sink.mu.Unlock()
	require.NoError(t, b.Send(context.Background(), sampleMessage()))
	assert.Equal(t, 2, sink.count())
}

func TestFanoutDeliversToAllAndJoinsErrors(t *testing.T) {
	ok := &countingNotifier{}
	broken := &countingNotifier{err: errors.New("broken sink")}
	f := NewFanout(ok, nil, broken, NewLoggerNotifier(logging.Discard()))

	err := f.Send(context.Background(), sampleMessage())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken sink")
	assert.Equal(t, 1, ok.count())
	assert.Equal(t, 1, broken.count())

	require.NoError(t, NewFanout().Send(context.Background(), sampleMessage()))
}

func TestLoggerNotifierToleratesNil(t *testing.T) {
	var n *LoggerNotifier
	assert.NoError(t, n.Send(context.Background(), sampleMessage()))
	assert.NoError(t, NewLoggerNotifier(nil).Send(context.Background(), sampleMessage()))
}
