package kafka

import (
	"context"
	"errors"
	"fmt"
	"staydesk/pkg/logger"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	mu     sync.Mutex
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	return nil
}

func (w *fakeWriter) written() []kafka.Message {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]kafka.Message(nil), w.msgs...)
}

type fakeReader struct {
	mu        sync.Mutex
	pending   []kafka.Message
	committed []kafka.Message
	drained   chan struct{}
}

func newFakeReader(msgs ...kafka.Message) *fakeReader {
	return &fakeReader{pending: msgs, drained: make(chan struct{})}
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	if len(r.pending) > 0 {
		msg := r.pending[0]
		r.pending = r.pending[1:]
		r.mu.Unlock()
		return msg, nil
	}
	r.mu.Unlock()
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.committed = append(r.committed, msgs...)
	if len(r.pending) == 0 {
		select {
		case <-r.drained:
		default:
			close(r.drained)
		}
	}
	return nil
}

func (r *fakeReader) Close() error { return nil }

func buildMessage(t *testing.T, key string) Message {
	t.Helper()
	msg, err := NewMessage().
		WithKey(key).
		WithValue(map[string]string{"unit_id": key}).
		WithEventType(EventHoldCreated).
		WithSchemaVersion(SchemaVersion).
		Build()
	require.NoError(t, err)
	return msg
}

func TestMessageBuilder_FillsDefaults(t *testing.T) {
	msg := buildMessage(t, "unit-1")

	assert.NotEmpty(t, msg.GetEventID())
	assert.Equal(t, EventHoldCreated, msg.GetEventType())
	assert.NotEmpty(t, msg.Headers[HeaderTimestamp])

	var payload map[string]string
	require.NoError(t, msg.DecodeValue(&payload))
	assert.Equal(t, "unit-1", payload["unit_id"])
}

func TestMessageBuilder_ReportsEncodingError(t *testing.T) {
	_, err := NewMessage().WithKey("k").WithValue(make(chan int)).Build()
	assert.Error(t, err)
}

func TestMessage_RetryCount(t *testing.T) {
	msg := Message{}
	assert.Equal(t, 0, msg.GetRetryCount())

	msg.IncrementRetryCount()
	msg.IncrementRetryCount()
	assert.Equal(t, 2, msg.GetRetryCount())
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorType
	}{
		{"nil", nil, ErrorTypeUnknown},
		{"explicit transient", NewTransientError("mongo down", nil), ErrorTypeTransient},
		{"explicit permanent", NewPermanentError("bad payload", nil), ErrorTypePermanent},
		{"deadline", fmt.Errorf("send: %w", context.DeadlineExceeded), ErrorTypeTransient},
		{"connection reset", errors.New("read tcp: connection reset by peer"), ErrorTypeTransient},
		{"unknown", errors.New("json: cannot unmarshal"), ErrorTypePermanent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyError(tt.err))
		})
	}
}

func TestShouldRetry(t *testing.T) {
	transient := NewTransientError("blip", nil)
	assert.True(t, ShouldRetry(transient, 0, 3))
	assert.False(t, ShouldRetry(transient, 3, 3))
	assert.False(t, ShouldRetry(NewPermanentError("bad", nil), 0, 3))
}

func TestProducer_PublishSetsTopicAndHeaders(t *testing.T) {
	w := &fakeWriter{}
	p := newProducer(w, nil, "reservation-events", logger.Discard())

	require.NoError(t, p.Publish(context.Background(), buildMessage(t, "unit-1")))

	written := w.written()
	require.Len(t, written, 1)
	assert.Equal(t, "unit-1", string(written[0].Key))

	headers := map[string]string{}
	for _, h := range written[0].Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, EventHoldCreated, headers[HeaderEventType])
}

func TestProducer_RejectsEmptyKeyAndValue(t *testing.T) {
	p := newProducer(&fakeWriter{}, nil, "t", logger.Discard())

	assert.ErrorIs(t, p.Publish(context.Background(), Message{Value: []byte("{}")}), ErrEmptyKey)
	assert.ErrorIs(t, p.Publish(context.Background(), Message{Key: "k"}), ErrEmptyValue)
}

func TestProducer_ParksFailuresInDLQ(t *testing.T) {
	w := &fakeWriter{err: errors.New("leader not available")}
	dlq := &fakeWriter{}
	p := newProducer(w, dlq, "reservation-events", logger.Discard())

	err := p.Publish(context.Background(), buildMessage(t, "unit-1"))
	require.Error(t, err)

	parked := dlq.written()
	require.Len(t, parked, 1)
	var originalTopic string
	for _, h := range parked[0].Headers {
		if h.Key == HeaderOriginalTopic {
			originalTopic = string(h.Value)
		}
	}
	assert.Equal(t, "reservation-events", originalTopic)
}

func TestProducer_ClosedRejectsPublish(t *testing.T) {
	w := &fakeWriter{}
	p := newProducer(w, nil, "t", logger.Discard())
	require.NoError(t, p.Close())

	assert.True(t, w.closed)
	assert.ErrorIs(t, p.Publish(context.Background(), buildMessage(t, "k")), ErrProducerClosed)
}

func TestProducer_MiddlewareOrder(t *testing.T) {
	p := newProducer(&fakeWriter{}, nil, "t", logger.Discard())
	var order []string
	for _, name := range []string{"outer", "inner"} {
		name := name
		p.Use(func(ctx context.Context, msg Message, next func(ctx context.Context, msg Message) error) error {
			order = append(order, name)
			return next(ctx, msg)
		})
	}

	require.NoError(t, p.Publish(context.Background(), buildMessage(t, "k")))
	assert.Equal(t, []string{"outer", "inner"}, order)
}

func TestConsumer_RetriesTransientThenCommits(t *testing.T) {
	msg := toKafkaMessage(buildMessage(t, "unit-1"))
	reader := newFakeReader(msg)

	var calls int
	handler := func(ctx context.Context, m Message) error {
		calls++
		if calls < 3 {
			return NewTransientError("mongo blip", nil)
		}
		return nil
	}

	c := newConsumer(reader, nil, "reservation-events", "g", handler, logger.Discard())
	c.maxRetries = 3

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Start(ctx) }()

	select {
	case <-reader.drained:
	case <-time.After(2 * time.Second):
		t.Fatal("message was never committed")
	}
	cancel()
	<-done

	assert.Equal(t, 3, calls)
	assert.Len(t, reader.committed, 1)
}

func TestConsumer_PermanentFailureGoesToDLQ(t *testing.T) {
	reader := newFakeReader(toKafkaMessage(buildMessage(t, "unit-1")))
	dlq := &fakeWriter{}

	var calls int
	handler := func(ctx context.Context, m Message) error {
		calls++
		return NewPermanentError("bad payload", nil)
	}

	c := newConsumer(reader, dlq, "reservation-events", "notifier", handler, logger.Discard())
	c.maxRetries = 3

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Start(ctx) }()

	select {
	case <-reader.drained:
	case <-time.After(2 * time.Second):
		t.Fatal("message was never committed")
	}
	cancel()
	<-done

	assert.Equal(t, 1, calls)
	parked := dlq.written()
	require.Len(t, parked, 1)
	headers := map[string]string{}
	for _, h := range parked[0].Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, "notifier", headers[HeaderDLQGroup])
	assert.Contains(t, headers[HeaderDLQError], "bad payload")
}
