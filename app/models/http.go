package models

// Request bodies for the public HTTP surface.

type CreateCheckoutRequest struct {
	UserID           string `json:"user_id"`
	SubscriptionType string `json:"subscription_type"`
}

type StartConversationRequest struct {
	PreviewMessage string `json:"preview_message"`
	Model          string `json:"model"`
	UserID         string `json:"user_id"`
}

type SendQueryRequest struct {
	Message  string `json:"message"`
	UserID   string `json:"user_id"`
	ThreadID string `json:"thread_id"`
}
