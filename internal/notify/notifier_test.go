package notify

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedMessage struct {
	eventType string
	key       string
	payload   []byte
}

type recordingPublisher struct {
	mu       sync.Mutex
	messages []recordedMessage
	err      error
}

func (p *recordingPublisher) Publish(_ context.Context, eventType string, payload []byte, key string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, recordedMessage{eventType: eventType, key: key, payload: payload})
	return p.err
}

func TestDispatcher_PublishesEvents(t *testing.T) {
	pub := &recordingPublisher{}
	d := NewDispatcher(pub, time.Second)
	userID := uuid.New()

	d.ContentRemoved(context.Background(), ContentRemoved{UserID: userID, ContentType: "post", ContentID: "p1", ReportCount: 2})
	d.AccountBanned(context.Background(), AccountBanned{UserID: userID, Reason: "repeated policy violations (count = 3)"})
	d.Wait()

	require.Len(t, pub.messages, 2)
	byType := map[string]recordedMessage{}
	for _, m := range pub.messages {
		byType[m.eventType] = m
	}

	removed := byType[EventContentRemoved]
	assert.Equal(t, userID.String(), removed.key)
	var payload ContentRemoved
	require.NoError(t, json.Unmarshal(removed.payload, &payload))
	assert.Equal(t, 2, payload.ReportCount)
	assert.Equal(t, "p1", payload.ContentID)

	assert.Contains(t, string(byType[EventAccountBanned].payload), "count = 3")
}

func TestDispatcher_PublishErrorIsSwallowed(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("broker down")}
	d := NewDispatcher(pub, time.Second)

	d.AccountBanned(context.Background(), AccountBanned{UserID: uuid.New()})
	d.Wait()

	assert.Len(t, pub.messages, 1)
}

func TestDispatcher_SurvivesCancelledContext(t *testing.T) {
	pub := &recordingPublisher{}
	d := NewDispatcher(pub, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d.ContentRemoved(ctx, ContentRemoved{UserID: uuid.New()})
	d.Wait()

	assert.Len(t, pub.messages, 1)
}

func TestDispatcher_SweepSummaryNeedsAddress(t *testing.T) {
	pub := &recordingPublisher{}
	d := NewDispatcher(pub, time.Second)

	d.SweepSummary(context.Background(), SweepSummary{Actioned: 3})
	d.SweepSummary(context.Background(), SweepSummary{AdminEmail: "mods@runmate.app", Actioned: 3})
	d.Wait()

	require.Len(t, pub.messages, 1)
	assert.Equal(t, "mods@runmate.app", pub.messages[0].key)
}

func TestKafkaPublisher_Topic(t *testing.T) {
	_, err := NewKafkaPublisher(nil, "runmate.")
	require.Error(t, err)

	p, err := NewKafkaPublisher([]string{"localhost:9092"}, "runmate.")
	require.NoError(t, err)
	defer p.Close()

	assert.Equal(t, "runmate.moderation.account_banned", p.Topic(EventAccountBanned))

	bare, err := NewKafkaPublisher([]string{"localhost:9092"}, "")
	require.NoError(t, err)
	defer bare.Close()
	assert.Equal(t, EventSweepSummary, bare.Topic(EventSweepSummary))
}
