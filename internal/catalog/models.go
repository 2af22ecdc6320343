// Package catalog holds the static reference lists used to tag and filter
// requests: cause areas, identity categories, and challenge categories.
package catalog

import (
	"time"

	id "matchport/pkg/domain"
)

// Kind separates the three reference lists sharing one shape.
type Kind string

const (
	KindCauseArea         Kind = "cause_area"
	KindIdentityCategory  Kind = "identity_category"
	KindChallengeCategory Kind = "challenge_category"
)

// Category is one reference row. Inactive rows stay referenced by old
// requests but are hidden from pickers and filters.
type Category struct {
	ID          id.CategoryID
	Kind        Kind
	Name        string
	Description string
	Active      bool
	CreatedAt   time.Time
}
