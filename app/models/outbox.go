package models

import "time"

// PendingMessages is the outbox record for a message append that failed
// after the provider call already succeeded. It carries everything needed
// to replay the write later.
type PendingMessages struct {
	UserID   string    `json:"user_id"`
	ThreadID string    `json:"thread_id"`
	Messages []Message `json:"messages"`
	FailedAt time.Time `json:"failed_at"`
}
