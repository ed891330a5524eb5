// Package app implements the checkout, webhook, conversation, and chat-query
// backend for the subscription product.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/WWTD-Production/Server/app/config"
	"github.com/WWTD-Production/Server/app/models"

	_ "github.com/lib/pq"
)

// AccountStore is the persistence boundary for accounts, applied payments,
// and conversation history. Handlers receive it injected so tests can
// substitute an in-memory fake.
type AccountStore interface {
	// GetAccount returns the zero account (not an error) when no row exists,
	// matching the original missing-document semantics.
	GetAccount(ctx context.Context, userID string) (models.Account, error)

	// DecrementTokens atomically reduces available_tokens by tokens.
	DecrementTokens(ctx context.Context, userID string, tokens int64) error

	// ApplyCompletedPayment records the payment keyed by checkout session id
	// and activates the subscription. It reports false when the session was
	// already applied, in which case the account is left untouched.
	ApplyCompletedPayment(ctx context.Context, sessionID, userID string, plan models.Plan, expiresAt time.Time) (bool, error)

	CreateThread(ctx context.Context, userID string, thread models.Thread) error
	AppendMessages(ctx context.Context, userID, threadID string, msgs []models.Message) error
}

var errAccountNotFound = errors.New("account not found")

// Store is the Postgres-backed AccountStore.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// MustOpenDB opens the Postgres pool from config and exits on failure.
func MustOpenDB(cfg *config.Config) *sql.DB {
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s",
		cfg.DB.Username,
		cfg.DB.Password,
		cfg.DB.URL,
		cfg.DB.Port,
		cfg.DB.Database,
	)

	d, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Fatalf("sql.Open: %v", err)
	}

	if err := d.Ping(); err != nil {
		log.Fatalf("db.Ping: %v", err)
	}

	log.Println("Connected to Postgres")
	return d
}

func (s *Store) GetAccount(ctx context.Context, userID string) (models.Account, error) {
	account := models.Account{UserID: userID, SubscriptionPlan: models.PlanNone}

	var (
		plan       sql.NullString
		expiration sql.NullTime
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT is_subscribed, subscription_plan, subscription_expiration, available_tokens
		FROM users
		WHERE user_id = $1;
	`, userID).Scan(&account.IsSubscribed, &plan, &expiration, &account.AvailableTokens)
	if errors.Is(err, sql.ErrNoRows) {
		return account, nil
	}
	if err != nil {
		return models.Account{}, err
	}

	if plan.Valid {
		account.SubscriptionPlan = models.Plan(plan.String)
	}
	if expiration.Valid {
		account.SubscriptionExpiration = expiration.Time
	}
	return account, nil
}

func (s *Store) DecrementTokens(ctx context.Context, userID string, tokens int64) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE users
		SET available_tokens = available_tokens - $1
		WHERE user_id = $2;
	`, tokens, userID)
	if err != nil {
		return err
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return errAccountNotFound
	}
	return nil
}

func (s *Store) ApplyCompletedPayment(ctx context.Context, sessionID, userID string, plan models.Plan, expiresAt time.Time) (bool, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	// Conditional insert keyed on the checkout session id makes redelivered
	// webhooks no-ops without taking a lock.
	res, err := tx.ExecContext(ctx, `
		INSERT INTO applied_payments (session_id, user_id, plan, applied_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (session_id) DO NOTHING;
	`, sessionID, userID, plan)
	if err != nil {
		return false, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if rows == 0 {
		return false, nil
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO users (user_id, is_subscribed, subscription_plan, subscription_expiration, available_tokens)
		VALUES ($1, true, $2, $3, 0)
		ON CONFLICT (user_id) DO UPDATE
		SET is_subscribed = true,
		    subscription_plan = EXCLUDED.subscription_plan,
		    subscription_expiration = EXCLUDED.subscription_expiration;
	`, userID, plan, expiresAt)
	if err != nil {
		return false, err
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) CreateThread(ctx context.Context, userID string, thread models.Thread) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO message_threads (id, user_id, preview_message, model, status, date_created)
		VALUES ($1, $2, $3, $4, $5, now());
	`, thread.ID, userID, thread.PreviewMessage, thread.Model, thread.Status)
	return err
}

func (s *Store) AppendMessages(ctx context.Context, userID, threadID string, msgs []models.Message) error {
	if len(msgs) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, m := range msgs {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO messages (id, thread_id, user_id, role, content, created_at)
			VALUES ($1, $2, $3, $4, $5, now());
		`, m.ID, threadID, userID, m.Role, m.Content); err != nil {
			return err
		}
	}

	return tx.Commit()
}
