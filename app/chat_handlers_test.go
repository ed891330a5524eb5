package app

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/WWTD-Production/Server/app/models"
	"github.com/WWTD-Production/Server/auth"

	"github.com/gin-gonic/gin"
)

func postJSON(t *testing.T, router http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestStartConversation(t *testing.T) {
	store := newMemStore()
	_, router := newTestRouter(t, store, &fakeCompleter{}, &fakeCheckout{}, nil)

	resp := postJSON(t, router, "/start_conversation",
		`{"preview_message":"What would Jesus do?","model":"gpt-4o","user_id":"u1"}`)

	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", resp.Code, resp.Body.String())
	}

	var out struct {
		ThreadID string `json:"thread_id"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if out.ThreadID == "" {
		t.Fatal("missing thread_id in response")
	}

	thread, ok := store.threads[out.ThreadID]
	if !ok {
		t.Fatalf("thread %s not persisted", out.ThreadID)
	}
	if thread.Status != models.ThreadStatusActive {
		t.Fatalf("thread status = %s, want active", thread.Status)
	}
	if thread.PreviewMessage != "What would Jesus do?" {
		t.Fatalf("preview = %q", thread.PreviewMessage)
	}
}

func TestStartConversationMissingUser(t *testing.T) {
	_, router := newTestRouter(t, newMemStore(), &fakeCompleter{}, &fakeCheckout{}, nil)

	resp := postJSON(t, router, "/start_conversation", `{"preview_message":"hi","model":"gpt-4o"}`)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.Code)
	}
}

func TestSendQueryMetersUnsubscribed(t *testing.T) {
	store := newMemStore()
	store.setAccount(models.Account{UserID: "u1", AvailableTokens: 100})
	completer := &fakeCompleter{resp: completionWith("Love thy neighbor.", 30)}
	_, router := newTestRouter(t, store, completer, &fakeCheckout{}, nil)

	resp := postJSON(t, router, "/send_query", `{"message":"How should I treat others?","user_id":"u1","thread_id":"t1"}`)
	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", resp.Code, resp.Body.String())
	}

	var out struct {
		Response string `json:"response"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if out.Response != "Love thy neighbor." {
		t.Fatalf("response = %q", out.Response)
	}

	if got := store.account("u1").AvailableTokens; got != 70 {
		t.Fatalf("AvailableTokens = %d, want 70", got)
	}

	msgs := store.messages["t1"]
	if len(msgs) != 2 {
		t.Fatalf("persisted %d messages, want 2", len(msgs))
	}
	if msgs[0].Role != models.RoleUser || msgs[1].Role != models.RoleAssistant {
		t.Fatalf("roles = %s,%s", msgs[0].Role, msgs[1].Role)
	}
	if msgs[0].ID == "" || msgs[0].ID == msgs[1].ID {
		t.Fatal("message ids missing or colliding")
	}

	// The provider call carries the system directive ahead of the user turn.
	if completer.lastReq == nil || len(completer.lastReq.Messages) != 2 {
		t.Fatalf("unexpected llm request: %+v", completer.lastReq)
	}
	if completer.lastReq.Messages[0].Role != "system" {
		t.Fatalf("first message role = %s, want system", completer.lastReq.Messages[0].Role)
	}
}

func TestSendQuerySubscribedNotMetered(t *testing.T) {
	store := newMemStore()
	store.setAccount(models.Account{UserID: "u1", IsSubscribed: true, SubscriptionPlan: models.PlanYearly, AvailableTokens: 40})
	completer := &fakeCompleter{resp: completionWith("Peace be with you.", 500)}
	_, router := newTestRouter(t, store, completer, &fakeCheckout{}, nil)

	resp := postJSON(t, router, "/send_query", `{"message":"hello","user_id":"u1","thread_id":"t1"}`)
	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.Code)
	}

	if got := store.account("u1").AvailableTokens; got != 40 {
		t.Fatalf("AvailableTokens = %d, want unchanged 40", got)
	}
}

func TestSendQueryRejectsExhaustedBudget(t *testing.T) {
	store := newMemStore()
	store.setAccount(models.Account{UserID: "u1", AvailableTokens: 0})
	completer := &fakeCompleter{resp: completionWith("should not run", 1)}
	_, router := newTestRouter(t, store, completer, &fakeCheckout{}, nil)

	resp := postJSON(t, router, "/send_query", `{"message":"hello","user_id":"u1","thread_id":"t1"}`)
	if resp.Code != http.StatusPaymentRequired {
		t.Fatalf("status = %d, want 402", resp.Code)
	}
	if completer.calls != 0 {
		t.Fatal("provider must not be called for an exhausted budget")
	}
}

func TestSendQueryProviderErrorLeavesNoState(t *testing.T) {
	store := newMemStore()
	store.setAccount(models.Account{UserID: "u1", AvailableTokens: 100})
	completer := &fakeCompleter{err: errors.New("upstream down")}
	_, router := newTestRouter(t, store, completer, &fakeCheckout{}, nil)

	resp := postJSON(t, router, "/send_query", `{"message":"hello","user_id":"u1","thread_id":"t1"}`)
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", resp.Code)
	}
	if len(store.messages["t1"]) != 0 {
		t.Fatal("no messages should be persisted on provider failure")
	}
	if got := store.account("u1").AvailableTokens; got != 100 {
		t.Fatalf("AvailableTokens = %d, want untouched 100", got)
	}
}

func TestSendQueryPersistenceFailureGoesToOutbox(t *testing.T) {
	store := newMemStore()
	store.setAccount(models.Account{UserID: "u1", AvailableTokens: 100})
	store.failAppend = true
	completer := &fakeCompleter{resp: completionWith("answer", 25)}
	outbox := &fakeOutbox{}
	_, router := newTestRouter(t, store, completer, &fakeCheckout{}, outbox)

	resp := postJSON(t, router, "/send_query", `{"message":"hello","user_id":"u1","thread_id":"t1"}`)

	// The reply was already produced and paid for, so it is still returned.
	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.Code)
	}
	if len(outbox.recs) != 1 {
		t.Fatalf("outbox records = %d, want 1", len(outbox.recs))
	}
	rec := outbox.recs[0]
	if rec.UserID != "u1" || rec.ThreadID != "t1" || len(rec.Messages) != 2 {
		t.Fatalf("unexpected outbox record: %+v", rec)
	}
	// Metering still happens even when persistence failed.
	if got := store.account("u1").AvailableTokens; got != 75 {
		t.Fatalf("AvailableTokens = %d, want 75", got)
	}
}

func TestSendQueryRejectsUserMismatch(t *testing.T) {
	store := newMemStore()
	store.setAccount(models.Account{UserID: "u1", AvailableTokens: 100})
	completer := &fakeCompleter{resp: completionWith("answer", 10)}
	a := New(testConfig(), store, completer, &fakeCheckout{}, nil)

	// Simulate a verified token for a different subject.
	router := gin.New()
	router.Use(func(c *gin.Context) {
		ctx := auth.WithClaims(c.Request.Context(), &auth.Claims{Subject: "someone-else"})
		c.Request = c.Request.WithContext(ctx)
	})
	router.POST("/send_query", a.SendQuery)

	resp := postJSON(t, router, "/send_query", `{"message":"hello","user_id":"u1","thread_id":"t1"}`)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", resp.Code)
	}
	if completer.calls != 0 {
		t.Fatal("provider must not be called for a mismatched user")
	}
}

func TestSendQueryValidation(t *testing.T) {
	_, router := newTestRouter(t, newMemStore(), &fakeCompleter{}, &fakeCheckout{}, nil)

	for _, body := range []string{
		`{"user_id":"u1","thread_id":"t1"}`,
		`{"message":"hi","thread_id":"t1"}`,
		`{"message":"hi","user_id":"u1"}`,
		`not json`,
	} {
		resp := postJSON(t, router, "/send_query", body)
		if resp.Code != http.StatusBadRequest {
			t.Fatalf("body %q: status = %d, want 400", body, resp.Code)
		}
	}
}
