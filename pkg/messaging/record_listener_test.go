package messaging

import (
	"testing"

	"github.com/matst80/slask-intel/pkg/index"
	"github.com/matst80/slask-intel/pkg/types"
	amqp "github.com/rabbitmq/amqp091-go"
)

func TestRecordListenerUpsertAndDelete(t *testing.T) {
	repo := index.NewMemoryRepository(types.Record{Id: "1", Title: "Existing"})
	changes := 0
	repo.AddChangeHandler(index.ChangeHandlerFunc(func(uint64) { changes++ }))
	l := NewRecordListener(repo)

	err := l.HandleUpserted(amqp.Delivery{Body: []byte(`[{"id":"1","title":"Updated"},{"id":"2","name":"Lazarus","kind":"actor"}]`)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.Len() != 2 {
		t.Fatalf("expected 2 records, got %d", repo.Len())
	}
	if r, _ := repo.Get("1"); r.Title != "Updated" {
		t.Errorf("expected record to be replaced, got %+v", r)
	}
	if r, _ := repo.Get("2"); r.Title != "Lazarus" {
		t.Errorf("expected name fallback, got %+v", r)
	}

	if err := l.HandleDeleted(amqp.Delivery{Body: []byte(`["1"]`)}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.Len() != 1 {
		t.Errorf("expected 1 record, got %d", repo.Len())
	}
	if changes != 2 {
		t.Errorf("expected 2 change callbacks, got %d", changes)
	}
}

func TestRecordListenerRejectsGarbage(t *testing.T) {
	repo := index.NewMemoryRepository()
	l := NewRecordListener(repo)
	if err := l.HandleUpserted(amqp.Delivery{Body: []byte("nope")}); err == nil {
		t.Error("expected decode error")
	}
	if err := l.HandleDeleted(amqp.Delivery{Body: []byte(`{"id":1}`)}); err == nil {
		t.Error("expected decode error")
	}
	if err := l.HandleDeleted(amqp.Delivery{Body: []byte(`[]`)}); err != nil {
		t.Errorf("expected empty delete to be accepted, got %v", err)
	}
}

func TestTopicNames(t *testing.T) {
	if got := getName(DefaultPrefix, RecordsUpserted); got != "intel_records_upserted" {
		t.Errorf("unexpected topic name %s", got)
	}
}

type recordingDeclarer struct {
	exchanges []string
	queues    []string
	bindings  []string
}

func (d *recordingDeclarer) ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error {
	d.exchanges = append(d.exchanges, name)
	return nil
}

func (d *recordingDeclarer) QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error) {
	d.queues = append(d.queues, name)
	return amqp.Queue{Name: name}, nil
}

func (d *recordingDeclarer) QueueBind(name, key, exchange string, noWait bool, args amqp.Table) error {
	d.bindings = append(d.bindings, name+"->"+exchange)
	return nil
}

func TestDefineTopicsBindsTrackingQueue(t *testing.T) {
	d := &recordingDeclarer{}
	if err := defineTopics(d, DefaultPrefix); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(d.exchanges) != 3 {
		t.Errorf("expected 3 exchanges, got %v", d.exchanges)
	}
	if len(d.queues) != 1 || d.queues[0] != "intel_filter_applied" {
		t.Errorf("expected only the tracking queue to be declared, got %v", d.queues)
	}
	if len(d.bindings) != 1 || d.bindings[0] != "intel_filter_applied->intel_filter_applied" {
		t.Errorf("expected tracking queue bound to its exchange, got %v", d.bindings)
	}
}
