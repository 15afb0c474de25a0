package models

import "time"

// Lead is the contact record persisted when a visitor leaves their details.
type Lead struct {
	ID          string    `bson:"id" json:"id"`
	WorkspaceID string    `bson:"workspace_id" json:"workspaceId"`
	BotID       string    `bson:"bot_id" json:"botId"`
	IntentID    string    `bson:"intent_id" json:"intentId"`
	SessionID   string    `bson:"session_id" json:"sessionId"`
	Name        string    `bson:"name" json:"name"`
	Phone       string    `bson:"phone,omitempty" json:"phone,omitempty"`
	Email       string    `bson:"email,omitempty" json:"email,omitempty"`
	Source      string    `bson:"source" json:"source"` // always "quick_book" for this engine
	CreatedAt   time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `bson:"updated_at" json:"updatedAt"`
}
