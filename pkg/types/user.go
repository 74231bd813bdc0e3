package types

import "time"

type User struct {
	ID          string    `db:"id"`
	Email       *string   `db:"email"`
	GivenName   *string   `db:"given_name"`
	FamilyName  *string   `db:"family_name"`
	IsVolunteer bool      `db:"is_volunteer"`
	AvgRating   float64   `db:"avg_rating"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

// UserSummary is the public view of a counterpart shown next to a request or
// an application.
type UserSummary struct {
	ID         string  `db:"id" json:"id"`
	GivenName  *string `db:"given_name" json:"given_name"`
	FamilyName *string `db:"family_name" json:"family_name"`
	AvgRating  float64 `db:"avg_rating" json:"avg_rating"`
}

// Role is the side of the marketplace an actor acts on.
type Role string

const (
	RoleVolunteer  Role = "volunteer"
	RoleHelpSeeker Role = "help_seeker"
)

func RoleOf(isVolunteer bool) Role {
	if isVolunteer {
		return RoleVolunteer
	}
	return RoleHelpSeeker
}
