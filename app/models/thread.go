package models

import "time"

const (
	ThreadStatusActive = "active"

	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Thread is one conversation owned by a user. DateCreated is assigned by the
// store, not the client.
type Thread struct {
	ID             string    `json:"id"`
	PreviewMessage string    `json:"previewMessage"`
	Model          string    `json:"model"`
	Status         string    `json:"status"`
	DateCreated    time.Time `json:"dateCreated"`
}

// Message is one side of an exchange inside a thread.
type Message struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}
