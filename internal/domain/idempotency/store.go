// Package idempotency defines the key store behind X-Idempotency-Key.
package idempotency

import (
	"context"
	"encoding/json"
	"time"
)

// Status represents the state of an idempotent operation.
type Status string

const (
	StatusPending Status = "pending"
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// StaleAfter is how long a pending key may stay locked before another
// request may reclaim it.
const StaleAfter = time.Minute

// Replay is a cached HTTP response.
type Replay struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// Store manages idempotency keys.
type Store interface {
	// AcquireKey returns (nil, nil) when the caller owns the key, a Replay when
	// the operation already finished, or an error when the key is in use or
	// was issued for a different request.
	AcquireKey(ctx context.Context, key, userID, operation, requestHash string) (*Replay, error)

	// CompleteKey stores a successful response.
	CompleteKey(ctx context.Context, key string, statusCode int, contentType string, response any) error

	// FailKey stores a failed response.
	FailKey(ctx context.Context, key string, statusCode int, contentType string, response any) error
}

// NormalizeReplay fills defaults for records stored without status or content type.
func NormalizeReplay(r *Replay) *Replay {
	if r.StatusCode == 0 {
		r.StatusCode = 200
	}
	if r.ContentType == "" {
		r.ContentType = "application/json"
	}
	return r
}

// EncodeResponse serializes a response for storage. Byte slices are stored
// as-is; anything else is encoded as JSON.
func EncodeResponse(response any) ([]byte, error) {
	switch v := response.(type) {
	case nil:
		return nil, nil
	case []byte:
		return v, nil
	case json.RawMessage:
		return v, nil
	}
	return json.Marshal(response)
}
