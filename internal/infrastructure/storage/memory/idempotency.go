package memory

import (
	"context"
	"fmt"
	"time"

	"datacatalog/internal/core/apperror"
	"datacatalog/internal/domain/idempotency"
)

type idempotencyRecord struct {
	userID      string
	operation   string
	requestHash string
	status      idempotency.Status
	statusCode  int
	contentType string
	body        []byte
	updatedAt   time.Time
}

// IdempotencyStore implements idempotency.Store.
type IdempotencyStore struct{ s *Store }

// AcquireKey implements idempotency.Store.
func (r *IdempotencyStore) AcquireKey(_ context.Context, key, userID, operation, requestHash string) (*idempotency.Replay, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := time.Now()
	rec, ok := r.s.data.idem[key]
	if !ok {
		r.s.data.idem[key] = &idempotencyRecord{
			userID:      userID,
			operation:   operation,
			requestHash: requestHash,
			status:      idempotency.StatusPending,
			updatedAt:   now,
		}
		return nil, nil
	}

	if rec.userID != userID || rec.operation != operation || rec.requestHash != requestHash {
		return nil, apperror.NewIdempotencyMismatch(key)
	}

	switch rec.status {
	case idempotency.StatusSuccess, idempotency.StatusFailed:
		return idempotency.NormalizeReplay(&idempotency.Replay{
			StatusCode:  rec.statusCode,
			ContentType: rec.contentType,
			Body:        append([]byte(nil), rec.body...),
		}), nil
	}

	if now.Sub(rec.updatedAt) > idempotency.StaleAfter {
		rec.updatedAt = now
		return nil, nil
	}
	return nil, apperror.NewIdempotencyConflict(key)
}

// CompleteKey implements idempotency.Store.
func (r *IdempotencyStore) CompleteKey(_ context.Context, key string, statusCode int, contentType string, response any) error {
	return r.finish(key, idempotency.StatusSuccess, statusCode, contentType, response)
}

// FailKey implements idempotency.Store.
func (r *IdempotencyStore) FailKey(_ context.Context, key string, statusCode int, contentType string, response any) error {
	return r.finish(key, idempotency.StatusFailed, statusCode, contentType, response)
}

func (r *IdempotencyStore) finish(key string, status idempotency.Status, statusCode int, contentType string, response any) error {
	body, err := idempotency.EncodeResponse(response)
	if err != nil {
		return fmt.Errorf("marshal response: %w", err)
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	rec, ok := r.s.data.idem[key]
	if !ok {
		return nil
	}
	rec.status = status
	rec.statusCode = statusCode
	rec.contentType = contentType
	rec.body = body
	rec.updatedAt = time.Now()
	return nil
}
