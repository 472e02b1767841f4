// Package product implements the catalog's product records: validation,
// scoped queries and the audited mutation pipeline.
package product

import (
	"time"

	"datacatalog/internal/core/id"
	"datacatalog/internal/core/security"
)

// Type classifies what a product is.
type Type string

const (
	TypeDashboard Type = "DASHBOARD"
	TypeForm      Type = "FORM"
	TypeReport    Type = "REPORT"
	TypeTool      Type = "TOOL"
	TypeOther     Type = "OTHER"
)

// IsValid reports whether t is a known type.
func (t Type) IsValid() bool {
	switch t {
	case TypeDashboard, TypeForm, TypeReport, TypeTool, TypeOther:
		return true
	}
	return false
}

// Status is the lifecycle state of a product.
type Status string

const (
	StatusDraft      Status = "DRAFT"
	StatusActive     Status = "ACTIVE"
	StatusDeprecated Status = "DEPRECATED"
)

// IsValid reports whether s is a known status.
func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusActive, StatusDeprecated:
		return true
	}
	return false
}

// Tag is a free-form label. Names are unique.
type Tag struct {
	ID   id.ID  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// Creator is the public identity of the user who created a product.
type Creator struct {
	ID    id.ID   `db:"id" json:"id"`
	Name  *string `db:"name" json:"name"`
	Email string  `db:"email" json:"email"`
}

// Product is a catalog record.
type Product struct {
	ID          id.ID               `db:"id" json:"id"`
	Name        string              `db:"name" json:"name"`
	Type        Type                `db:"type" json:"type"`
	Description *string             `db:"description" json:"description"`
	URL         *string             `db:"url" json:"url"`
	Owner       *string             `db:"owner" json:"owner"`
	Status      Status              `db:"status" json:"status"`
	Visibility  security.Visibility `db:"visibility" json:"visibility"`
	EPS         *string             `db:"eps" json:"eps"`
	Region      *string             `db:"region" json:"region"`
	District    *string             `db:"district" json:"district"`
	Topic       *string             `db:"topic" json:"topic"`
	Period      *string             `db:"period" json:"period"`
	Source      *string             `db:"source" json:"source"`
	CreatedByID id.ID               `db:"created_by_id" json:"createdById"`
	CreatedAt   time.Time           `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time           `db:"updated_at" json:"updatedAt"`

	Tags      []Tag    `db:"-" json:"tags"`
	CreatedBy *Creator `db:"-" json:"createdBy,omitempty"`
}

// TagNames returns the names of the product's tags in stored order.
func (p *Product) TagNames() []string {
	names := make([]string, 0, len(p.Tags))
	for _, t := range p.Tags {
		names = append(names, t.Name)
	}
	return names
}

// Clone returns a deep copy, used for before/after snapshots.
func (p *Product) Clone() *Product {
	if p == nil {
		return nil
	}
	c := *p
	c.Description = cloneStr(p.Description)
	c.URL = cloneStr(p.URL)
	c.Owner = cloneStr(p.Owner)
	c.EPS = cloneStr(p.EPS)
	c.Region = cloneStr(p.Region)
	c.District = cloneStr(p.District)
	c.Topic = cloneStr(p.Topic)
	c.Period = cloneStr(p.Period)
	c.Source = cloneStr(p.Source)
	c.Tags = append([]Tag(nil), p.Tags...)
	if p.CreatedBy != nil {
		cb := *p.CreatedBy
		cb.Name = cloneStr(p.CreatedBy.Name)
		c.CreatedBy = &cb
	}
	return &c
}

func cloneStr(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
