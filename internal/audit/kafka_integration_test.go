//go:build integration

package audit

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kgo"

	"sellerflow/pkg/testutil/containers"
)

func TestKafkaPublisherIntegration(t *testing.T) {
	rp := containers.NewRedpandaContainer(t)
	topic := "sellerflow.audit.test"

	admin, err := kgo.NewClient(kgo.SeedBrokers(rp.Broker))
	require.NoError(t, err)
	defer admin.Close()

	_, err = kadm.NewClient(admin).CreateTopic(context.Background(), 1, 1, nil, topic)
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	publisher, err := NewKafkaPublisher([]string{rp.Broker}, topic, logger)
	require.NoError(t, err)

	event := Event{
		Action:     ActionApplicationSubmitted,
		UserID:     "5a6b7c8d-1234-4abc-9def-0123456789ab",
		RequestID:  "req-42",
		OccurredAt: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, publisher.Publish(context.Background(), event))

	closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, publisher.Close(closeCtx))

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(rp.Broker),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	require.NoError(t, err)
	defer consumer.Close()

	fetchCtx, cancelFetch := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelFetch()
	fetches := consumer.PollFetches(fetchCtx)
	require.NoError(t, fetches.Err())

	records := fetches.Records()
	require.Len(t, records, 1)
	assert.Equal(t, event.UserID, string(records[0].Key))

	var got Event
	require.NoError(t, json.Unmarshal(records[0].Value, &got))
	assert.Equal(t, ActionApplicationSubmitted, got.Action)
	assert.Equal(t, "req-42", got.RequestID)
}
