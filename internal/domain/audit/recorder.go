package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"datacatalog/internal/core/id"
)

// Record describes an event to append.
type Record struct {
	Entity    string
	EntityID  string
	Action    Action
	UserID    id.ID
	ProductID *id.ID
	// Diff is marshalled to JSON as-is; its shape is not validated.
	Diff any
}

// Observer is notified after an entry is appended.
type Observer func(action Action)

// Recorder appends audit entries. It must run inside the caller's
// transaction so a failed append aborts the surrounding write.
type Recorder struct {
	repo      Repository
	observers []Observer
	now       func() time.Time
}

// NewRecorder creates a recorder.
func NewRecorder(repo Repository, observers ...Observer) *Recorder {
	return &Recorder{
		repo:      repo,
		observers: observers,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Record appends one entry and returns it.
func (r *Recorder) Record(ctx context.Context, rec Record) (*Entry, error) {
	if !rec.Action.IsValid() {
		return nil, fmt.Errorf("audit: unknown action %q", rec.Action)
	}

	var diff json.RawMessage
	if rec.Diff != nil {
		b, err := json.Marshal(rec.Diff)
		if err != nil {
			return nil, fmt.Errorf("audit: marshal diff: %w", err)
		}
		diff = b
	}

	entry := &Entry{
		ID:        id.New(),
		Entity:    rec.Entity,
		EntityID:  rec.EntityID,
		Action:    rec.Action,
		UserID:    rec.UserID,
		ProductID: rec.ProductID,
		Diff:      diff,
		Timestamp: r.now(),
	}
	if err := r.repo.Append(ctx, entry); err != nil {
		return nil, fmt.Errorf("audit: append %s %s: %w", rec.Action, rec.Entity, err)
	}

	for _, o := range r.observers {
		o(rec.Action)
	}
	return entry, nil
}
