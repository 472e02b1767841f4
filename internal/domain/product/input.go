package product

import (
	"net/url"
	"strings"
	"unicode/utf8"

	"datacatalog/internal/core/apperror"
	"datacatalog/internal/core/security"
)

// Field length limits.
const (
	MaxNameLen        = 200
	MaxDescriptionLen = 2000
	MaxShortFieldLen  = 100
	MaxPeriodLen      = 50
	MaxSourceLen      = 200
)

// Input is the full record supplied on create and update. Every update
// resupplies every field; there is no partial patch.
type Input struct {
	Name        string
	Type        Type
	Description string
	URL         string
	Owner       string
	Status      Status
	Visibility  security.Visibility
	EPS         string
	Region      string
	District    string
	Topic       string
	Period      string
	Source      string
	Tags        []string
}

// Validate checks field constraints and returns a validation error listing
// every offending field.
func (in Input) Validate() error {
	fields := map[string]string{}

	name := strings.TrimSpace(in.Name)
	switch {
	case name == "":
		fields["name"] = "is required"
	case utf8.RuneCountInString(name) > MaxNameLen:
		fields["name"] = "must be at most 200 characters"
	}
	if !in.Type.IsValid() {
		fields["type"] = "must be one of DASHBOARD, FORM, REPORT, TOOL, OTHER"
	}
	if !in.Status.IsValid() {
		fields["status"] = "must be one of DRAFT, ACTIVE, DEPRECATED"
	}
	if !in.Visibility.IsValid() {
		fields["visibility"] = "must be one of PUBLIC, EXTERNAL, CAMI_YAKU, INTERNAL"
	}
	if in.URL != "" && !isHTTPURL(in.URL) {
		fields["url"] = "must be an absolute http:// or https:// URL"
	}

	limits := []struct {
		field string
		value string
		max   int
	}{
		{"description", in.Description, MaxDescriptionLen},
		{"owner", in.Owner, MaxShortFieldLen},
		{"eps", in.EPS, MaxShortFieldLen},
		{"region", in.Region, MaxShortFieldLen},
		{"district", in.District, MaxShortFieldLen},
		{"topic", in.Topic, MaxShortFieldLen},
		{"period", in.Period, MaxPeriodLen},
		{"source", in.Source, MaxSourceLen},
	}
	for _, l := range limits {
		if utf8.RuneCountInString(l.value) > l.max {
			fields[l.field] = "is too long"
		}
	}

	for _, tag := range in.Tags {
		if utf8.RuneCountInString(strings.TrimSpace(tag)) > MaxShortFieldLen {
			fields["tags"] = "tag names must be at most 100 characters"
			break
		}
	}

	if len(fields) > 0 {
		return apperror.NewFieldValidation(fields)
	}
	return nil
}

// TagSet returns the trimmed, de-duplicated, non-empty tag names in first-seen order.
func (in Input) TagSet() []string {
	seen := make(map[string]bool, len(in.Tags))
	out := make([]string, 0, len(in.Tags))
	for _, t := range in.Tags {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

// apply overwrites every scalar field of p. Empty optional strings are stored as NULL.
func (in Input) apply(p *Product) {
	p.Name = strings.TrimSpace(in.Name)
	p.Type = in.Type
	p.Status = in.Status
	p.Visibility = in.Visibility
	p.Description = optional(in.Description)
	p.URL = optional(in.URL)
	p.Owner = optional(in.Owner)
	p.EPS = optional(in.EPS)
	p.Region = optional(in.Region)
	p.District = optional(in.District)
	p.Topic = optional(in.Topic)
	p.Period = optional(in.Period)
	p.Source = optional(in.Source)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func isHTTPURL(raw string) bool {
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		return false
	}
	u, err := url.Parse(raw)
	return err == nil && u.IsAbs() && u.Host != ""
}
