package messaging

import (
	"fmt"
	"slices"

	"github.com/matst80/slask-intel/pkg/common/jsoncompat"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Declarer is the part of *amqp.Channel used to set up topics.
type Declarer interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	QueueBind(name, key, exchange string, noWait bool, args amqp.Table) error
}

// collectedTopics are consumed outside this service, they get a durable queue
// bound to the exchange so mandatory publishes are routed while no collector runs.
var collectedTopics = []ChangeTopic{FilterApplied}

func DefineTopic(ch Declarer, prefix string, topic ChangeTopic) error {
	name := getName(prefix, topic)
	if err := ch.ExchangeDeclare(
		name,    // name
		"topic", // type
		true,    // durable
		false,   // auto-delete
		false,   // internal
		false,   // noWait
		nil,     // arguments
	); err != nil {
		return err
	}
	if !slices.Contains(collectedTopics, topic) {
		return nil
	}
	if _, err := ch.QueueDeclare(
		name,  // name of the queue
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // noWait
		nil,   // arguments
	); err != nil {
		return err
	}
	return ch.QueueBind(name, name, name, false, nil)
}

// DefineTopics declares every record and tracking topic on one channel.
func DefineTopics(conn *amqp.Connection, prefix string) error {
	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()
	return defineTopics(ch, prefix)
}

func defineTopics(ch Declarer, prefix string) error {
	for _, topic := range []ChangeTopic{RecordsUpserted, RecordsDeleted, FilterApplied} {
		if err := DefineTopic(ch, prefix, topic); err != nil {
			return fmt.Errorf("define %s: %w", topic, err)
		}
	}
	return nil
}

func getName(prefix string, topic ChangeTopic) string {
	return fmt.Sprintf("%s_%s", prefix, topic)
}

func SendChange[V any](c *amqp.Connection, prefix string, topic ChangeTopic, data V) error {
	bytes, err := jsoncompat.Marshal(data)
	if err != nil {
		return err
	}
	ch, err := c.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()
	name := getName(prefix, topic)
	return ch.Publish(
		name,
		name,
		true,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        bytes,
		},
	)
}
