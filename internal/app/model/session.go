package model

import (
	"encoding/json"
	"time"
)

// Session is a stored storefront session. Data holds the serialized
// storefront snapshot; the repository does not interpret it.
type Session struct {
	ID        string          `json:"id"`
	Data      json.RawMessage `json:"data"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}
