package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// StatusChange is one entry in an entity's status audit log.
type StatusChange struct {
	Status    string    `json:"status"`
	Note      string    `json:"note,omitempty"`
	ChangedAt time.Time `json:"changed_at"`
}

// StatusHistory is an append-only log of status changes, stored as a JSONB
// column on the owning entity. Entries are never removed or rewritten.
type StatusHistory []StatusChange

// Append returns the history with one more entry stamped at now.
func (h StatusHistory) Append(status, note string) StatusHistory {
	return append(h, StatusChange{
		Status:    status,
		Note:      note,
		ChangedAt: time.Now(),
	})
}

// Value implements driver.Valuer for JSONB storage.
func (h StatusHistory) Value() (driver.Value, error) {
	if h == nil {
		h = StatusHistory{}
	}
	return json.Marshal(h)
}

// Scan implements sql.Scanner.
func (h *StatusHistory) Scan(value interface{}) error {
	if value == nil {
		*h = StatusHistory{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, h)
	case string:
		return json.Unmarshal([]byte(v), h)
	default:
		return fmt.Errorf("unsupported type for StatusHistory: %T", value)
	}
}
