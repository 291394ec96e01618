package queue

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChangePayload_Marshal(t *testing.T) {
	payload := ChangePayload{Key: "leadsData", Ts: 1710000000000}

	body, err := json.Marshal(payload)
	assert.NoError(t, err)
	assert.JSONEq(t, `{"key":"leadsData","ts":1710000000000}`, string(body))

	var decoded ChangePayload
	assert.NoError(t, json.Unmarshal(body, &decoded))
	assert.Equal(t, payload, decoded)
}

func TestTopologyNames(t *testing.T) {
	assert.Equal(t, "ex.crm", ExchangeName)
	assert.Equal(t, "q.crm.changes", QueueName)
	assert.Equal(t, "q.crm.changes.dlq", DLQName)
	assert.Equal(t, "ex.crm.dlx", DLXName)
	assert.Equal(t, "k.data.changed", RoutingKey)
}

func TestNewNotifier(t *testing.T) {
	notifier := NewNotifier(nil, nil)
	assert.NotNil(t, notifier)
	assert.Nil(t, notifier.Conn)
	assert.Nil(t, notifier.Ch)
}

func TestNoopNotifier(t *testing.T) {
	var n NotifierInterface = NoopNotifier{}
	assert.NoError(t, n.NotifyChanged(context.Background(), "crmStages"))
}
