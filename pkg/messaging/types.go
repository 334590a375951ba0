package messaging

type ChangeTopic string

const (
	RecordsUpserted ChangeTopic = "records_upserted"
	RecordsDeleted  ChangeTopic = "records_deleted"
	FilterApplied   ChangeTopic = "filter_applied"
)

const DefaultPrefix = "intel"

type RabbitConfig struct {
	Url    string
	Prefix string
}
