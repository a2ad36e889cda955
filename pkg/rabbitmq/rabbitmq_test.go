package rabbitmq

import (
	"encoding/json"
	"testing"
	"time"

	"warehouse/internal/models"

	"github.com/pkg/errors"
	amqp "github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// mockChannel is a mock implementation of channel
type mockChannel struct {
	mock.Mock
}

func (m *mockChannel) QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error) {
	a := m.Called(name, durable)
	return amqp.Queue{Name: name}, a.Error(0)
}

func (m *mockChannel) Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	return m.Called(exchange, key, msg).Error(0)
}

func (m *mockChannel) Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error) {
	a := m.Called(queue, autoAck)
	if a.Get(0) == nil {
		return nil, a.Error(1)
	}
	return a.Get(0).(<-chan amqp.Delivery), a.Error(1)
}

func (m *mockChannel) Close() error {
	return m.Called().Error(0)
}

// recordingAcknowledger records how each delivery was settled.
type recordingAcknowledger struct {
	settled chan string
}

func (r *recordingAcknowledger) Ack(tag uint64, multiple bool) error {
	r.settled <- "ack"
	return nil
}

func (r *recordingAcknowledger) Nack(tag uint64, multiple, requeue bool) error {
	if requeue {
		r.settled <- "requeue"
	} else {
		r.settled <- "drop"
	}
	return nil
}

func (r *recordingAcknowledger) Reject(tag uint64, requeue bool) error {
	return r.Nack(tag, false, requeue)
}

func testEvent() models.PurchaseEvent {
	return models.PurchaseEvent{
		ProductID:   "p1",
		SellerID:    "s1",
		BuyerID:     "b1",
		Title:       "Laptop",
		Price:       models.MustPrice("100.00"),
		Quantity:    2,
		Remaining:   3,
		PurchasedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestClient_PublishPurchase(t *testing.T) {
	ch := new(mockChannel)
	ch.On("QueueDeclare", DefaultQueue, true).Return(nil).Once()

	var sent amqp.Publishing
	ch.On("Publish", "", DefaultQueue, mock.AnythingOfType("amqp.Publishing")).
		Run(func(args mock.Arguments) { sent = args.Get(2).(amqp.Publishing) }).
		Return(nil).Once()

	client, err := newClient(ch, "", zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, client.PublishPurchase(testEvent()))

	assert.Equal(t, "application/json", sent.ContentType)
	assert.Equal(t, amqp.Persistent, sent.DeliveryMode)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(sent.Body, &decoded))
	assert.Equal(t, "p1", decoded["product_id"])
	assert.EqualValues(t, 3, decoded["remaining"])
	assert.EqualValues(t, 100, decoded["price"])
	ch.AssertExpectations(t)
}

func TestClient_PublishFailure(t *testing.T) {
	ch := new(mockChannel)
	ch.On("QueueDeclare", "custom", true).Return(nil)
	ch.On("Publish", "", "custom", mock.Anything).Return(amqp.ErrClosed)

	client, err := newClient(ch, "custom", nil)
	require.NoError(t, err)

	err = client.PublishPurchase(testEvent())
	assert.ErrorIs(t, err, amqp.ErrClosed)
}

func TestNewClient_DeclareFailure(t *testing.T) {
	ch := new(mockChannel)
	ch.On("QueueDeclare", DefaultQueue, true).Return(errors.New("access refused"))

	_, err := newClient(ch, "", nil)
	assert.ErrorContains(t, err, "failed to declare purchase_queue")
}

func TestClient_ConsumePurchaseEvents(t *testing.T) {
	ch := new(mockChannel)
	ch.On("QueueDeclare", DefaultQueue, true).Return(nil)

	deliveries := make(chan amqp.Delivery, 3)
	ch.On("Consume", DefaultQueue, false).Return((<-chan amqp.Delivery)(deliveries), nil)

	client, err := newClient(ch, "", zap.NewNop())
	require.NoError(t, err)

	ack := &recordingAcknowledger{settled: make(chan string, 3)}
	good, err := json.Marshal(testEvent())
	require.NoError(t, err)
	deliveries <- amqp.Delivery{Acknowledger: ack, DeliveryTag: 1, Body: good}
	deliveries <- amqp.Delivery{Acknowledger: ack, DeliveryTag: 2, Body: []byte("{not json")}
	deliveries <- amqp.Delivery{Acknowledger: ack, DeliveryTag: 3, Body: good}
	close(deliveries)

	calls := 0
	handler := func(event models.PurchaseEvent) error {
		calls++
		assert.Equal(t, "Laptop", event.Title)
		if calls == 2 {
			return errors.New("downstream unavailable")
		}
		return nil
	}
	require.NoError(t, client.ConsumePurchaseEvents(handler))

	var outcomes []string
	for i := 0; i < 3; i++ {
		select {
		case outcome := <-ack.settled:
			outcomes = append(outcomes, outcome)
		case <-time.After(time.Second):
			t.Fatal("delivery was not settled")
		}
	}
	assert.Equal(t, []string{"ack", "drop", "requeue"}, outcomes)
}

func TestClient_Close(t *testing.T) {
	ch := new(mockChannel)
	ch.On("QueueDeclare", DefaultQueue, true).Return(nil)
	ch.On("Close").Return(amqp.ErrClosed)

	client, err := newClient(ch, "", nil)
	require.NoError(t, err)
	assert.ErrorIs(t, client.Close(), amqp.ErrClosed)
}
