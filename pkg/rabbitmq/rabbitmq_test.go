package rabbitmq

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAck struct {
	acked   bool
	nacked  bool
	requeue bool
}

func (f *fakeAck) Ack(bool) error { f.acked = true; return nil }

func (f *fakeAck) Nack(_, requeue bool) error {
	f.nacked = true
	f.requeue = requeue
	return nil
}

func TestNewEventAndDecode(t *testing.T) {
	evt, err := NewEvent(EventOrderPaid, map[string]interface{}{"orderId": 7})
	require.NoError(t, err)
	assert.NotEmpty(t, evt.ID)
	assert.Equal(t, EventOrderPaid, evt.Type)

	body, err := json.Marshal(evt)
	require.NoError(t, err)

	decoded, err := DecodeEvent(body)
	require.NoError(t, err)
	assert.Equal(t, evt.ID, decoded.ID)
	assert.JSONEq(t, `{"orderId":7}`, string(decoded.Payload))
}

func TestDecodeEvent_Invalid(t *testing.T) {
	_, err := DecodeEvent([]byte("not json"))
	assert.Error(t, err)

	_, err = DecodeEvent([]byte(`{"id":"x"}`))
	assert.Error(t, err)
}

func TestSettle(t *testing.T) {
	evt, err := NewEvent(EventOrderCreated, map[string]int{"orderId": 1})
	require.NoError(t, err)
	body, _ := json.Marshal(evt)

	t.Run("acks on success", func(t *testing.T) {
		ack := &fakeAck{}
		var got Event
		settle(ack, 1, body, func(e Event) error { got = e; return nil })
		assert.True(t, ack.acked)
		assert.False(t, ack.nacked)
		assert.Equal(t, evt.ID, got.ID)
	})

	t.Run("requeues on handler error", func(t *testing.T) {
		ack := &fakeAck{}
		settle(ack, 2, body, func(Event) error { return errors.New("boom") })
		assert.True(t, ack.nacked)
		assert.True(t, ack.requeue)
	})

	t.Run("drops undecodable body", func(t *testing.T) {
		ack := &fakeAck{}
		called := false
		settle(ack, 3, []byte("{"), func(Event) error { called = true; return nil })
		assert.False(t, called)
		assert.True(t, ack.nacked)
		assert.False(t, ack.requeue)
	})
}
