package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	audit "naijacare/pkg/platform/audit"
	"naijacare/pkg/platform/audit/store/memory"
)

type fakeProducer struct {
	records []*kgo.Record
	err     error
}

func (p *fakeProducer) ProduceSync(_ context.Context, rs ...*kgo.Record) kgo.ProduceResults {
	results := make(kgo.ProduceResults, 0, len(rs))
	for _, r := range rs {
		p.records = append(p.records, r)
		results = append(results, kgo.ProduceResult{Record: r, Err: p.err})
	}
	return results
}

// stalledProducer never acks; it returns only once ctx is done.
type stalledProducer struct{}

func (stalledProducer) ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults {
	<-ctx.Done()
	results := make(kgo.ProduceResults, 0, len(rs))
	for _, r := range rs {
		results = append(results, kgo.ProduceResult{Record: r, Err: ctx.Err()})
	}
	return results
}

func testEntry() audit.Entry {
	return audit.Entry{
		ID:               uuid.New(),
		SubjectIDHash:    "0123456789abcdef",
		Decision:         "ESCALATE_IMMEDIATELY",
		Timestamp:        time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
		MessageLength:    30,
		HasEmergencyFlag: true,
	}
}

func TestSink_Publish(t *testing.T) {
	producer := &fakeProducer{}
	sink := New(producer, "")
	entry := testEntry()

	require.NoError(t, sink.Publish(context.Background(), entry))
	require.Len(t, producer.records, 1)

	record := producer.records[0]
	assert.Equal(t, DefaultTopic, record.Topic)
	assert.Equal(t, []byte(entry.SubjectIDHash), record.Key)
	require.Len(t, record.Headers, 1)
	assert.Equal(t, "ESCALATE_IMMEDIATELY", string(record.Headers[0].Value))

	var decoded audit.Entry
	require.NoError(t, json.Unmarshal(record.Value, &decoded))
	assert.Equal(t, entry.ID, decoded.ID)
	assert.Equal(t, entry.SubjectIDHash, decoded.SubjectIDHash)
	assert.True(t, decoded.HasEmergencyFlag)
}

func TestSink_PublishError(t *testing.T) {
	producer := &fakeProducer{err: errors.New("not leader for partition")}
	sink := New(producer, "custom.audit")

	err := sink.Publish(context.Background(), testEntry())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not leader for partition")
	assert.Equal(t, "custom.audit", producer.records[0].Topic)
}

func TestSink_PublishTimesOutOnStalledBroker(t *testing.T) {
	sink := New(stalledProducer{}, "", WithPublishTimeout(50*time.Millisecond))

	start := time.Now()
	err := sink.Publish(context.Background(), testEntry())
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
}

func TestLog_StalledSinkDoesNotBlockAppend(t *testing.T) {
	store := memory.NewInMemoryStore()
	log := audit.NewLog(store, audit.WithSink(New(stalledProducer{}, "", WithPublishTimeout(50*time.Millisecond))))

	done := make(chan error, 1)
	go func() {
		done <- log.Log(context.Background(), "clinic_001", "ESCALATE_IMMEDIATELY", "unconscious", true, time.Now())
	}()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Log did not return while the sink was stalled")
	}

	entries, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].HasEmergencyFlag)
}

func TestNew_DefaultPublishTimeout(t *testing.T) {
	assert.Equal(t, DefaultPublishTimeout, New(&fakeProducer{}, "").timeout)
	assert.Equal(t, DefaultPublishTimeout, New(&fakeProducer{}, "", WithPublishTimeout(0)).timeout)
}
