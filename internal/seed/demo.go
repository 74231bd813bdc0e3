package seed

import (
	"context"
	"fmt"
	"helpmatch/pkg/types"
	"time"

	"github.com/sirupsen/logrus"
)

// DemoStores are the repositories the demo data set is written through.
type DemoStores struct {
	Users interface {
		UpsertIdentity(ctx context.Context, userID, email, givenName, familyName string, isVolunteer bool) error
	}
	Requests interface {
		CreateRequest(ctx context.Context, creatorID string, in *types.RequestInput) (*types.Request, error)
	}
	Applications interface {
		Apply(ctx context.Context, volunteerID string, requestID int64) (*types.Application, error)
		Accept(ctx context.Context, creatorID string, requestID int64, volunteerID string) (*types.Application, error)
	}
	Listings interface {
		MyRequests(ctx context.Context, creatorID string, f *types.MyRequestsFilter) (*types.Page[*types.Request], error)
	}
}

type demoUser struct {
	ID          string
	Email       string
	GivenName   string
	FamilyName  string
	IsVolunteer bool
}

var (
	demoSeeker    = demoUser{ID: "demo-seeker-alice", Email: "alice+demo@example.com", GivenName: "Alice", FamilyName: "Smith"}
	demoVolunteer = demoUser{ID: "demo-volunteer-bob", Email: "bob+demo@example.com", GivenName: "Bob", FamilyName: "Johnson", IsVolunteer: true}
)

type demoRequest struct {
	input  types.RequestInput
	offset time.Duration
	length time.Duration
}

func demoRequests() []demoRequest {
	return []demoRequest{
		{
			input: types.RequestInput{
				Name:        "Groceries shopping",
				Description: "Need help buying groceries from the supermarket.",
				Reward:      1000,
				Address:     "123 Main St, Anytown",
				Longitude:   19.0402,
				Latitude:    47.4979,
				CategoryIDs: []string{Categories[0].ID},
			},
			offset: 24 * time.Hour,
			length: 2 * time.Hour,
		},
		{
			input: types.RequestInput{
				Name:        "Walk my dog",
				Description: "My dog needs a long walk in the park.",
				Reward:      500,
				Address:     "456 Oak Ave, Anytown",
				Longitude:   19.0402,
				Latitude:    47.4979,
				CategoryIDs: []string{Categories[1].ID},
			},
			offset: 48 * time.Hour,
			length: time.Hour,
		},
		{
			input: types.RequestInput{
				Name:        "Apartment cleaning",
				Description: "Looking for someone to clean my apartment.",
				Reward:      2000,
				Address:     "789 Pine Ln, Anytown",
				Longitude:   19.0402,
				Latitude:    47.4979,
				CategoryIDs: []string{Categories[2].ID},
			},
			offset: 72 * time.Hour,
			length: 4 * time.Hour,
		},
	}
}

// SeedDemo writes a small data set: one help-seeker with three requests and
// one volunteer who was accepted on the first and applied to the second. It
// does nothing when the demo help-seeker already owns requests.
func SeedDemo(ctx context.Context, stores DemoStores, now time.Time, logger logrus.FieldLogger) error {
	for _, u := range []demoUser{demoSeeker, demoVolunteer} {
		if err := stores.Users.UpsertIdentity(ctx, u.ID, u.Email, u.GivenName, u.FamilyName, u.IsVolunteer); err != nil {
			return fmt.Errorf("failed to upsert demo user %s: %w", u.ID, err)
		}
	}

	existing, err := stores.Listings.MyRequests(ctx, demoSeeker.ID, &types.MyRequestsFilter{
		PageParams: types.PageParams{Page: types.DefaultPage, Limit: types.DefaultLimit},
		Status:     types.StatusFilterAll,
	})
	if err != nil {
		return fmt.Errorf("failed to check existing demo requests: %w", err)
	}
	if existing.Pagination.Total > 0 {
		logger.WithField("requests", existing.Pagination.Total).Info("demo data already present, skipping")
		return nil
	}

	created := make([]*types.Request, 0, 3)
	for _, d := range demoRequests() {
		in := d.input
		in.Start = now.Add(d.offset).UTC().Truncate(time.Minute)
		in.End = in.Start.Add(d.length)

		req, err := stores.Requests.CreateRequest(ctx, demoSeeker.ID, &in)
		if err != nil {
			return fmt.Errorf("failed to create demo request %q: %w", in.Name, err)
		}
		created = append(created, req)
	}

	for _, req := range created[:2] {
		if _, err := stores.Applications.Apply(ctx, demoVolunteer.ID, req.ID); err != nil {
			return fmt.Errorf("failed to apply to demo request %d: %w", req.ID, err)
		}
	}

	if _, err := stores.Applications.Accept(ctx, demoSeeker.ID, created[0].ID, demoVolunteer.ID); err != nil {
		return fmt.Errorf("failed to accept demo application: %w", err)
	}

	logger.WithField("requests", len(created)).Info("demo data seeded")

	return nil
}
