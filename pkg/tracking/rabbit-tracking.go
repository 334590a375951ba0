package tracking

import (
	"log"
	"time"

	"github.com/matst80/slask-intel/pkg/common"
	"github.com/matst80/slask-intel/pkg/messaging"
	"github.com/matst80/slask-intel/pkg/types"
	amqp "github.com/rabbitmq/amqp091-go"
)

type Publisher func(events []types.FilterApplied) error

// RabbitTracking queues filter events and publishes them in batches so an
// evaluation never waits on the broker.
type RabbitTracking struct {
	connection *amqp.Connection
	queue      *common.QueueHandler[types.FilterApplied]
}

func NewRabbitTracking(url, prefix string) (*RabbitTracking, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	if err := messaging.DefineTopics(conn, prefix); err != nil {
		conn.Close()
		return nil, err
	}
	t := NewTracking(func(events []types.FilterApplied) error {
		return messaging.SendChange(conn, prefix, messaging.FilterApplied, events)
	}, time.Second)
	t.connection = conn
	return t, nil
}

// NewTracking batches events to any publisher.
func NewTracking(publish Publisher, interval time.Duration) *RabbitTracking {
	return &RabbitTracking{
		queue: common.NewQueueHandler(func(events []types.FilterApplied) {
			if err := publish(events); err != nil {
				log.Printf("Error sending %d tracking events: %v", len(events), err)
			}
		}, 100, interval),
	}
}

func (t *RabbitTracking) TrackFilterApplied(event types.FilterApplied) {
	t.queue.Add(event)
}

// Close flushes queued events before closing the connection.
func (t *RabbitTracking) Close() error {
	t.queue.Close()
	if t.connection == nil {
		return nil
	}
	return t.connection.Close()
}

var _ types.Tracking = (*RabbitTracking)(nil)
