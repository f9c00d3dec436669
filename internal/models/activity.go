package models

import "encoding/json"

// Activity is one entry of a group's activity feed.
type Activity struct {
	ID         ID     `json:"id"`
	GroupID    ID     `json:"group_id"`
	UserID     ID     `json:"user_id"`
	Action     string `json:"action"`
	EntityType string `json:"entity_type"`
	EntityID   ID     `json:"entity_id"`

	// Metadata is action specific and left undecoded.
	Metadata  map[string]json.RawMessage `json:"metadata,omitempty"`
	CreatedAt string                     `json:"created_at"`
	User      UserSummary                `json:"user"`
}
