package app

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/WWTD-Production/Server/app/models"
	"github.com/WWTD-Production/Server/llm"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const systemDirective = "You are a Christian assistant providing helpful advice based on the teachings of Jesus Christ. Quote scripture whenever applicable and provide concise answers."

// StartConversation creates a new message thread for the user.
func (a *App) StartConversation(c *gin.Context) {
	var req models.StartConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	if req.UserID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing user_id"})
		return
	}

	if !a.authorizeUser(c, req.UserID) {
		return
	}

	thread := models.Thread{
		ID:             uuid.NewString(),
		PreviewMessage: req.PreviewMessage,
		Model:          req.Model,
		Status:         models.ThreadStatusActive,
	}

	if err := a.store.CreateThread(c.Request.Context(), req.UserID, thread); err != nil {
		log.Printf("create thread failed user=%s: %v", req.UserID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create thread"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"thread_id": thread.ID})
}

// SendQuery relays a user message to the language model, records both sides
// of the exchange, and meters token spend for unsubscribed accounts.
func (a *App) SendQuery(c *gin.Context) {
	var req models.SendQueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	if req.UserID == "" || req.ThreadID == "" || req.Message == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing message, user_id, or thread_id"})
		return
	}

	if !a.authorizeUser(c, req.UserID) {
		return
	}

	ctx := c.Request.Context()

	account, err := a.store.GetAccount(ctx, req.UserID)
	if err != nil {
		log.Printf("account lookup failed user=%s: %v", req.UserID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load account"})
		return
	}

	// Budget is checked before any provider spend.
	if err := a.meter.Admit(account); err != nil {
		var be budgetError
		if errors.As(err, &be) {
			c.JSON(http.StatusPaymentRequired, gin.H{"error": "token budget exhausted"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to check budget"})
		return
	}

	completion, err := a.llm.CreateChatCompletion(ctx, &llm.ChatCompletionRequest{
		Model: a.cfg.LLM.Model,
		Messages: []llm.ChatMessage{
			{Role: "system", Content: systemDirective},
			{Role: models.RoleUser, Content: req.Message},
		},
	})
	if err != nil {
		log.Printf("llm request failed user=%s thread=%s: %v", req.UserID, req.ThreadID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process query"})
		return
	}

	assistantReply := "No response received"
	if len(completion.Choices) > 0 && completion.Choices[0].Message != nil {
		assistantReply = completion.Choices[0].Message.Content
	}

	msgs := []models.Message{
		{ID: uuid.NewString(), Role: models.RoleUser, Content: req.Message},
		{ID: uuid.NewString(), Role: models.RoleAssistant, Content: assistantReply},
	}

	if err := a.store.AppendMessages(ctx, req.UserID, req.ThreadID, msgs); err != nil {
		// The reply is already paid for; park the write instead of losing it.
		log.Printf("message persist failed user=%s thread=%s: %v", req.UserID, req.ThreadID, err)
		a.publishPending(c, req.UserID, req.ThreadID, msgs)
	}

	if !account.IsSubscribed {
		var tokensUsed int64
		if completion.Usage != nil {
			tokensUsed = int64(completion.Usage.TotalTokens)
		}
		a.meter.RecordUsage(ctx, req.UserID, tokensUsed)
	}

	c.JSON(http.StatusOK, gin.H{"response": assistantReply})
}

func (a *App) publishPending(c *gin.Context, userID, threadID string, msgs []models.Message) {
	if a.outbox == nil {
		log.Printf("no outbox configured; dropped %d messages user=%s thread=%s", len(msgs), userID, threadID)
		return
	}
	rec := models.PendingMessages{
		UserID:   userID,
		ThreadID: threadID,
		Messages: msgs,
		FailedAt: time.Now().UTC(),
	}
	if err := a.outbox.Publish(c.Request.Context(), rec); err != nil {
		log.Printf("outbox publish failed user=%s thread=%s: %v", userID, threadID, err)
	}
}
