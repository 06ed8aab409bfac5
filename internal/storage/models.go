package storage

import (
	"encoding/json"
	"time"
)

// Entry is one whole-value blob in the local key-value table.
type Entry struct {
	Key       string
	Value     json.RawMessage
	UpdatedAt time.Time
}

// Document is a player's full remote copy: every key with its latest value.
type Document struct {
	PlayerID  string                     `json:"playerId"`
	Values    map[string]json.RawMessage `json:"values"`
	UpdatedAt time.Time                  `json:"updatedAt"`
}
