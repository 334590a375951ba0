package messaging

import (
	"fmt"
	"log"

	"github.com/matst80/slask-intel/pkg/common/jsoncompat"
	"github.com/matst80/slask-intel/pkg/index"
	"github.com/matst80/slask-intel/pkg/types"
	amqp "github.com/rabbitmq/amqp091-go"
)

// RecordListener keeps a repository in sync with the record topics. Consumers
// of the changes register a ChangeHandler on the repository.
type RecordListener struct {
	Repository *index.MemoryRepository
}

func NewRecordListener(repo *index.MemoryRepository) *RecordListener {
	return &RecordListener{Repository: repo}
}

func (l *RecordListener) HandleUpserted(d amqp.Delivery) error {
	var records []types.Record
	if err := jsoncompat.Unmarshal(d.Body, &records); err != nil {
		return fmt.Errorf("decode upserted records: %w", err)
	}
	if len(records) == 0 {
		return nil
	}
	l.Repository.Upsert(records...)
	log.Printf("Upserted %d records", len(records))
	return nil
}

func (l *RecordListener) HandleDeleted(d amqp.Delivery) error {
	var ids []string
	if err := jsoncompat.Unmarshal(d.Body, &ids); err != nil {
		return fmt.Errorf("decode deleted ids: %w", err)
	}
	if len(ids) == 0 {
		return nil
	}
	l.Repository.Delete(ids...)
	log.Printf("Deleted %d records", len(ids))
	return nil
}

// Connect starts consuming both record topics on the given connection.
func (l *RecordListener) Connect(conn *amqp.Connection, prefix string) error {
	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	if err := ListenToTopic(ch, prefix, RecordsUpserted, l.HandleUpserted); err != nil {
		ch.Close()
		return err
	}
	if err := ListenToTopic(ch, prefix, RecordsDeleted, l.HandleDeleted); err != nil {
		ch.Close()
		return err
	}
	return nil
}
