package mykafka

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildMessage(t *testing.T) {
	msg, err := buildMessage("order_events", "42", map[string]any{"type": "order_created", "id": 42})
	require.NoError(t, err)

	assert.Equal(t, "order_events", msg.Topic)
	assert.Equal(t, []byte("42"), msg.Key)

	var body map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &body))
	assert.Equal(t, "order_created", body["type"])
	assert.False(t, msg.Time.IsZero())
}

func TestBuildMessage_Unmarshalable(t *testing.T) {
	_, err := buildMessage("t", "k", make(chan int))
	assert.Error(t, err)
}

func TestNewProducer_RequiresBrokers(t *testing.T) {
	_, err := NewProducer(nil)
	assert.Error(t, err)

	p, err := NewProducer([]string{"localhost:9092"})
	require.NoError(t, err)
	assert.Equal(t, batchTimeout, p.writer.BatchTimeout)
	assert.Less(t, p.writer.BatchTimeout, 100*time.Millisecond)
	assert.NoError(t, p.Close())
}

func TestNop(t *testing.T) {
	assert.NoError(t, Nop{}.PublishEvent(context.Background(), "t", "k", nil))
}
