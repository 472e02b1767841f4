// Package audit records and reads the append-only audit trail.
package audit

import (
	"encoding/json"
	"time"

	"datacatalog/internal/core/id"
)

// Action is the kind of audited event.
type Action string

const (
	ActionCreate Action = "CREATE"
	ActionUpdate Action = "UPDATE"
	ActionDelete Action = "DELETE"
	ActionLogin  Action = "LOGIN"
)

// IsValid reports whether a is a known action.
func (a Action) IsValid() bool {
	switch a {
	case ActionCreate, ActionUpdate, ActionDelete, ActionLogin:
		return true
	}
	return false
}

// Entity names written by the service.
const (
	EntityProduct = "Product"
	EntityUser    = "User"
)

// UserRef is the public identity of the acting user.
type UserRef struct {
	ID    id.ID   `json:"id"`
	Name  *string `json:"name"`
	Email string  `json:"email"`
}

// ProductRef identifies the product an entry refers to, while it still exists.
type ProductRef struct {
	ID   id.ID  `json:"id"`
	Name string `json:"name"`
}

// Entry is one immutable audit record.
type Entry struct {
	ID        id.ID           `json:"id"`
	Entity    string          `json:"entity"`
	EntityID  string          `json:"entityId"`
	Action    Action          `json:"action"`
	UserID    id.ID           `json:"userId"`
	ProductID *id.ID          `json:"productId"`
	Diff      json.RawMessage `json:"diff"`
	Timestamp time.Time       `json:"timestamp"`

	// Populated on read.
	User    *UserRef    `json:"user,omitempty"`
	Product *ProductRef `json:"product,omitempty"`
}
