package seed

import (
	"context"
	"fmt"
	"helpmatch/internal/utils"
	"helpmatch/pkg/types"

	"github.com/sirupsen/logrus"
)

// CategorySyncer is the subset of the category repository the sync needs.
type CategorySyncer interface {
	AllCategoriesUnfiltered(ctx context.Context) ([]*types.Category, error)
	UpsertCategory(ctx context.Context, category *types.Category) error
	DeleteCategory(ctx context.Context, id string) error
}

// Categories is the source of truth for the catalog. Ids are fixed so
// requests keep their tags across syncs.
//
// To generate new IDs: `go run ./cmd/helpmatch nanoid`
// To remove a category: drop it from the list and run `seed` again.
var Categories = []types.Category{
	{
		ID:           "ZerskRHiQTWoCwQKf4vCzr5dRmrGM7wy",
		Name:         "Shopping",
		Slug:         "shopping",
		Description:  utils.StringPtr("Groceries, pharmacy runs and other errands"),
		DisplayOrder: 1,
		IsActive:     true,
	},
	{
		ID:           "e1duu8Qxo4y2azuIBygavSZGFfUmxzLX",
		Name:         "Dog Walking",
		Slug:         "dog-walking",
		Description:  utils.StringPtr("Walking, feeding or sitting for a pet"),
		DisplayOrder: 2,
		IsActive:     true,
	},
	{
		ID:           "rMFv0eT9FsbHtEAFdmnqXHgm32ilPxMi",
		Name:         "Cleaning",
		Slug:         "cleaning",
		Description:  utils.StringPtr("Household cleaning and tidying"),
		DisplayOrder: 3,
		IsActive:     true,
	},
	{
		ID:           "RzyBlY0KaxTolOfmE0n4mOWDMMfy07S4",
		Name:         "Gardening",
		Slug:         "gardening",
		Description:  utils.StringPtr("Yard work, watering and seasonal planting"),
		DisplayOrder: 4,
		IsActive:     true,
	},
	{
		ID:           "4iWwx1dGnRZUzNK9QDdSupYYSpQ9jxdu",
		Name:         "Transportation",
		Slug:         "transportation",
		Description:  utils.StringPtr("Rides to appointments or help moving things"),
		DisplayOrder: 5,
		IsActive:     true,
	},
	{
		ID:           "Mq5YJn7dT9p2wLGe0Tym0eVQUOsaJYhU",
		Name:         "Tutoring",
		Slug:         "tutoring",
		Description:  utils.StringPtr("Homework help, language practice and lessons"),
		DisplayOrder: 6,
		IsActive:     true,
	},
	{
		ID:           "iFL0EkI7sSM2jZQ48Y6yd7Vn7jd6tIGB",
		Name:         "Repairs",
		Slug:         "repairs",
		Description:  utils.StringPtr("Small fixes around the house"),
		DisplayOrder: 7,
		IsActive:     true,
	},
	{
		ID:           "A6b9n6h5WJJVF69W8I55Y5OtRyL2dj75",
		Name:         "Companionship",
		Slug:         "companionship",
		Description:  utils.StringPtr("Visits, calls and keeping someone company"),
		DisplayOrder: 8,
		IsActive:     true,
	},
}

// SyncCategories makes the catalog match Categories: missing rows are
// inserted, changed rows updated and rows no longer listed deleted.
func SyncCategories(ctx context.Context, repo CategorySyncer, logger logrus.FieldLogger) error {
	seedIDs := make(map[string]bool, len(Categories))
	for _, cat := range Categories {
		seedIDs[cat.ID] = true
	}

	existing, err := repo.AllCategoriesUnfiltered(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch existing categories: %w", err)
	}

	logger.WithFields(logrus.Fields{
		"seeded":   len(Categories),
		"existing": len(existing),
	}).Info("starting category sync")

	deleted := 0
	for _, cat := range existing {
		if seedIDs[cat.ID] {
			continue
		}

		logger.WithField("category_id", cat.ID).Infof("deleting category %s", cat.Name)
		if err := repo.DeleteCategory(ctx, cat.ID); err != nil {
			return fmt.Errorf("failed to delete category %s: %w", cat.ID, err)
		}
		deleted++
	}

	for i := range Categories {
		cat := Categories[i]
		if err := repo.UpsertCategory(ctx, &cat); err != nil {
			return fmt.Errorf("failed to upsert category %s: %w", cat.Slug, err)
		}
	}

	logger.WithFields(logrus.Fields{
		"upserted": len(Categories),
		"deleted":  deleted,
	}).Info("category sync complete")

	return nil
}
