package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"datacatalog/internal/core/apperror"
	"datacatalog/internal/domain/idempotency"
)

var _ idempotency.Store = (*IdempotencyStore)(nil)

// idempotencyRecord is a row of idempotency_keys.
type idempotencyRecord struct {
	Key         string             `db:"idempotency_key"`
	UserID      string             `db:"user_id"`
	Operation   string             `db:"operation"`
	Status      idempotency.Status `db:"status"`
	RequestHash string             `db:"request_hash"`
	Response    []byte             `db:"response"`
	StatusCode  int                `db:"response_status"`
	ContentType string             `db:"response_content_type"`
	CreatedAt   time.Time          `db:"created_at"`
	UpdatedAt   time.Time          `db:"updated_at"`
	ExpiresAt   time.Time          `db:"expires_at"`
}

// IdempotencyStore manages idempotency keys in PostgreSQL.
type IdempotencyStore struct {
	txManager *TxManager
	ttl       time.Duration
	now       func() time.Time
}

// NewIdempotencyStore creates a new idempotency store.
func NewIdempotencyStore(txManager *TxManager, ttl time.Duration) *IdempotencyStore {
	return &IdempotencyStore{
		txManager: txManager,
		ttl:       ttl,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// AcquireKey attempts to acquire an idempotency key.
// Returns:
//   - (nil, nil) if key acquired successfully
//   - (replay, nil) if operation already completed (success or failed)
//   - (nil, error) if key is locked by another request or reused for a different one
func (s *IdempotencyStore) AcquireKey(ctx context.Context, key, userID, operation, requestHash string) (*idempotency.Replay, error) {
	now := s.now()
	expiresAt := now.Add(s.ttl)

	// xmax = 0 identifies a row created by this statement rather than one
	// touched by the ON CONFLICT branch.
	var (
		record   idempotencyRecord
		inserted bool
	)
	err := s.txManager.GetQuerier(ctx).QueryRow(ctx, `
		INSERT INTO idempotency_keys (idempotency_key, user_id, operation, status, request_hash, created_at, updated_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6, $7)
		ON CONFLICT (idempotency_key) DO UPDATE SET
			expires_at = GREATEST(idempotency_keys.expires_at, $7)
		RETURNING user_id, operation, status, request_hash, response, response_status, response_content_type, updated_at, (xmax = 0)
	`, key, userID, operation, idempotency.StatusPending, requestHash, now, expiresAt).Scan(
		&record.UserID, &record.Operation, &record.Status,
		&record.RequestHash, &record.Response, &record.StatusCode, &record.ContentType,
		&record.UpdatedAt, &inserted,
	)
	if err != nil {
		return nil, MapError(fmt.Errorf("acquire idempotency key: %w", err))
	}

	if inserted {
		return nil, nil
	}

	if record.UserID != userID || record.Operation != operation || record.RequestHash != requestHash {
		return nil, apperror.NewIdempotencyMismatch(key).
			WithDetail("stored_operation", record.Operation).
			WithDetail("request_operation", operation)
	}

	switch record.Status {
	case idempotency.StatusSuccess, idempotency.StatusFailed:
		return idempotency.NormalizeReplay(&idempotency.Replay{
			StatusCode:  record.StatusCode,
			ContentType: record.ContentType,
			Body:        record.Response,
		}), nil

	case idempotency.StatusPending:
		if now.Sub(record.UpdatedAt) <= idempotency.StaleAfter {
			return nil, apperror.NewIdempotencyConflict(key)
		}
		// Reclaim a key left behind by a crashed request. Only one caller wins.
		tag, err := s.txManager.GetQuerier(ctx).Exec(ctx, `
			UPDATE idempotency_keys
			SET updated_at = $1
			WHERE idempotency_key = $2 AND status = $3 AND updated_at = $4
		`, now, key, idempotency.StatusPending, record.UpdatedAt)
		if err != nil {
			return nil, MapError(fmt.Errorf("reclaim stale key: %w", err))
		}
		if tag.RowsAffected() == 0 {
			return nil, apperror.NewIdempotencyConflict(key)
		}
		return nil, nil
	}

	return nil, nil
}

// CompleteKey marks an idempotency key as completed with HTTP response.
func (s *IdempotencyStore) CompleteKey(ctx context.Context, key string, statusCode int, contentType string, response any) error {
	body, err := idempotency.EncodeResponse(response)
	if err != nil {
		return fmt.Errorf("marshal response: %w", err)
	}
	return s.finish(ctx, key, idempotency.StatusSuccess, statusCode, contentType, body)
}

// FailKey marks an idempotency key as failed with HTTP response.
func (s *IdempotencyStore) FailKey(ctx context.Context, key string, statusCode int, contentType string, response any) error {
	body, err := idempotency.EncodeResponse(response)
	if err != nil {
		body, _ = json.Marshal(map[string]string{"error": err.Error()})
	}
	return s.finish(ctx, key, idempotency.StatusFailed, statusCode, contentType, body)
}

func (s *IdempotencyStore) finish(ctx context.Context, key string, status idempotency.Status, statusCode int, contentType string, body []byte) error {
	_, err := s.txManager.GetQuerier(ctx).Exec(ctx, `
		UPDATE idempotency_keys
		SET status = $1,
		    response = $2,
		    response_status = $3,
		    response_content_type = $4,
		    updated_at = $5
		WHERE idempotency_key = $6
	`, status, body, statusCode, contentType, s.now(), key)
	if err != nil {
		return MapError(fmt.Errorf("finish idempotency key: %w", err))
	}
	return nil
}

// CleanupExpired removes expired idempotency records.
func (s *IdempotencyStore) CleanupExpired(ctx context.Context) (int64, error) {
	result, err := s.txManager.GetQuerier(ctx).Exec(ctx, `
		DELETE FROM idempotency_keys WHERE expires_at < $1
	`, s.now())
	if err != nil {
		return 0, MapError(err)
	}
	return result.RowsAffected(), nil
}
