package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
)

var codec = jsoniter.ConfigCompatibleWithStandardLibrary

// Table names a table whose rows are published on the change feed.
type Table string

const (
	TableTickets  Table = "support_tickets"
	TableMessages Table = "ticket_messages"
	TableArticles Table = "knowledge_base"
)

// Valid reports whether t is a published table.
func (t Table) Valid() bool {
	switch t {
	case TableTickets, TableMessages, TableArticles:
		return true
	}
	return false
}

// ChangeType is the kind of row change.
type ChangeType string

const (
	ChangeAny    ChangeType = "*"
	ChangeInsert ChangeType = "INSERT"
	ChangeUpdate ChangeType = "UPDATE"
	ChangeDelete ChangeType = "DELETE"
)

func (c ChangeType) Valid() bool {
	switch c {
	case ChangeAny, ChangeInsert, ChangeUpdate, ChangeDelete:
		return true
	}
	return false
}

// ChangeEvent describes one committed row change. Record holds the full row after the
// change (absent for deletes) so subscribers can merge it by Key.
type ChangeEvent struct {
	ID              string            `json:"id"`
	Table           Table             `json:"table"`
	Type            ChangeType        `json:"type"`
	Key             string            `json:"key"`
	Columns         map[string]string `json:"columns,omitempty"`
	Record          json.RawMessage   `json:"record,omitempty"`
	CommitTimestamp time.Time         `json:"commit_timestamp"`
}

// NewChangeEvent builds an event for a row, encoding record as the payload.
// columns carries filterable column values such as ticket_id.
func NewChangeEvent(table Table, changeType ChangeType, key string, record any, columns map[string]string) (ChangeEvent, error) {
	event := ChangeEvent{
		ID:              uuid.NewString(),
		Table:           table,
		Type:            changeType,
		Key:             key,
		Columns:         columns,
		CommitTimestamp: time.Now().UTC(),
	}
	if record != nil {
		data, err := codec.Marshal(record)
		if err != nil {
			return ChangeEvent{}, err
		}
		event.Record = data
	}
	return event, nil
}

// Decode unmarshals the record payload into out.
func (e ChangeEvent) Decode(out any) error {
	return codec.Unmarshal(e.Record, out)
}

// Marshal encodes the event for the wire.
func (e ChangeEvent) Marshal() ([]byte, error) {
	return codec.Marshal(e)
}

// UnmarshalChangeEvent decodes an event from its wire form.
func UnmarshalChangeEvent(data []byte) (ChangeEvent, error) {
	var event ChangeEvent
	err := codec.Unmarshal(data, &event)
	return event, err
}
