package security

import (
	"fmt"
	"strings"
)

// Visibility classifies which actors may see a product.
type Visibility string

const (
	VisibilityPublic   Visibility = "PUBLIC"
	VisibilityExternal Visibility = "EXTERNAL"
	VisibilityCamiYaku Visibility = "CAMI_YAKU"
	// VisibilityInternal is the legacy name of EXTERNAL. Rows carrying it are
	// still readable wherever EXTERNAL is.
	VisibilityInternal Visibility = "INTERNAL"
)

// AllVisibilities is every tier in storage order.
var AllVisibilities = []Visibility{
	VisibilityPublic,
	VisibilityExternal,
	VisibilityCamiYaku,
	VisibilityInternal,
}

// IsValid reports whether v is a known tier.
func (v Visibility) IsValid() bool {
	switch v {
	case VisibilityPublic, VisibilityExternal, VisibilityCamiYaku, VisibilityInternal:
		return true
	}
	return false
}

// ParseVisibility parses a tier name, case-insensitive.
func ParseVisibility(s string) (Visibility, error) {
	v := Visibility(strings.ToUpper(strings.TrimSpace(s)))
	if !v.IsValid() {
		return "", fmt.Errorf("unknown visibility %q", s)
	}
	return v, nil
}

// userVisible is the set a baseline USER may read.
var userVisible = []Visibility{VisibilityPublic, VisibilityExternal, VisibilityInternal}

// VisibilityScope returns the tiers an actor may read, narrowed by an optional
// requested tier. The result is never wider than the actor's entitlement and
// may be empty, in which case the query must match nothing.
//
// The result is always non-nil so repositories can tell "no rows allowed"
// from "scope not applied".
func VisibilityScope(actor *Actor, requested *Visibility) []Visibility {
	var allowed []Visibility
	switch {
	case actor == nil:
		return []Visibility{VisibilityPublic}
	case isPrivileged(actor.Role):
		allowed = AllVisibilities
	case actor.Role == RoleUser:
		allowed = userVisible
	default:
		// Unknown roles read like anonymous callers.
		return []Visibility{VisibilityPublic}
	}

	if requested == nil {
		out := make([]Visibility, len(allowed))
		copy(out, allowed)
		return out
	}
	return intersect(allowed, expandAlias(*requested))
}

// CanSee reports whether an actor may read a product with visibility v.
func CanSee(actor *Actor, v Visibility) bool {
	for _, s := range VisibilityScope(actor, nil) {
		if s == v {
			return true
		}
	}
	return false
}

// expandAlias folds EXTERNAL and its legacy INTERNAL name into one filter.
func expandAlias(v Visibility) []Visibility {
	switch v {
	case VisibilityExternal, VisibilityInternal:
		return []Visibility{VisibilityExternal, VisibilityInternal}
	}
	return []Visibility{v}
}

func intersect(allowed, requested []Visibility) []Visibility {
	set := make(map[Visibility]bool, len(allowed))
	for _, v := range allowed {
		set[v] = true
	}

	result := make([]Visibility, 0, len(requested))
	for _, v := range requested {
		if set[v] {
			result = append(result, v)
		}
	}
	return result
}
