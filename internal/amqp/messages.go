package amqp

import (
	"encoding/json"
	"time"
)

type (
	RecordKind   string
	RecordAction string
)

const (
	KindTransaction RecordKind = "transaction"
	KindBudget      RecordKind = "budget"

	ActionCreated RecordAction = "created"
	ActionUpdated RecordAction = "updated"
	ActionDeleted RecordAction = "deleted"
)

// RecordEvent announces a change to a user's transaction or budget.
// It carries identifiers only; consumers reload the records they need.
type RecordEvent struct {
	Kind      RecordKind   `json:"kind"`
	Action    RecordAction `json:"action"`
	ID        string       `json:"id"`
	UserID    string       `json:"userId"`
	Category  string       `json:"category,omitempty"`
	Timestamp time.Time    `json:"timestamp"`
}

func NewRecordEvent(kind RecordKind, action RecordAction, id, userID, category string) *RecordEvent {
	return &RecordEvent{
		Kind:      kind,
		Action:    action,
		ID:        id,
		UserID:    userID,
		Category:  category,
		Timestamp: time.Now().UTC(),
	}
}

func (e *RecordEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

func RecordEventFromJSON(data []byte) (*RecordEvent, error) {
	var e RecordEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}
