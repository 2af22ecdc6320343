package catalog

import (
	"context"
	"errors"
	"time"

	id "matchport/pkg/domain"
	"matchport/pkg/platform/sentinel"
)

var seedNames = map[Kind][]string{
	KindCauseArea: {
		"Education", "Health", "Housing", "Food Security",
		"Workforce Development", "Digital Inclusion", "Youth Services",
	},
	KindIdentityCategory: {
		"Seniors", "Veterans", "People with Disabilities",
		"Immigrants & Refugees", "Single Parents", "Unhoused",
	},
	KindChallengeCategory: {
		"Device Access", "Internet Access", "Digital Literacy",
		"Transportation", "Language Barriers",
	},
}

// Seed inserts the default reference lists, skipping names that already
// exist. Safe to run on every startup.
func Seed(ctx context.Context, store Store) error {
	now := time.Now().UTC()
	for kind, names := range seedNames {
		for _, name := range names {
			c := &Category{
				ID:        id.NewCategoryID(),
				Kind:      kind,
				Name:      name,
				Active:    true,
				CreatedAt: now,
			}
			if err := store.Create(ctx, c); err != nil {
				if errors.Is(err, sentinel.ErrConflict) {
					continue
				}
				return err
			}
		}
	}
	return nil
}
