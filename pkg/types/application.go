package types

import (
	"fmt"
	"time"
)

type ApplicationStatus string

const (
	ApplicationStatusPending  ApplicationStatus = "PENDING"
	ApplicationStatusDeclined ApplicationStatus = "DECLINED"
	ApplicationStatusAccepted ApplicationStatus = "ACCEPTED"
)

const (
	MinRating = 1
	MaxRating = 5
)

type Application struct {
	ID               int64             `db:"id" json:"id"`
	RequestID        int64             `db:"request_id" json:"request_id"`
	UserID           string            `db:"user_id" json:"user_id"`
	Status           ApplicationStatus `db:"status" json:"status"`
	AppliedAt        time.Time         `db:"applied_at" json:"applied_at"`
	VolunteerRating  *int              `db:"volunteer_rating" json:"volunteer_rating"`
	HelpSeekerRating *int              `db:"help_seeker_rating" json:"help_seeker_rating"`
}

type ApplicationWithVolunteer struct {
	*Application
	Volunteer *UserSummary `json:"volunteer"`
}

// ApplicationState is the caller-relative view of an application: either the
// caller has no application for a request, or it has one in a given status.
type ApplicationState int

const (
	ApplicationStateNotApplied ApplicationState = iota
	ApplicationStatePending
	ApplicationStateDeclined
	ApplicationStateAccepted
)

var applicationStateNames = map[ApplicationState]string{
	ApplicationStateNotApplied: "NOT_APPLIED",
	ApplicationStatePending:    string(ApplicationStatusPending),
	ApplicationStateDeclined:   string(ApplicationStatusDeclined),
	ApplicationStateAccepted:   string(ApplicationStatusAccepted),
}

// ApplicationStateOf maps the result of a left outer lookup to a state. A nil
// status means no application row was found.
func ApplicationStateOf(status *ApplicationStatus) ApplicationState {
	if status == nil {
		return ApplicationStateNotApplied
	}

	switch *status {
	case ApplicationStatusPending:
		return ApplicationStatePending
	case ApplicationStatusDeclined:
		return ApplicationStateDeclined
	case ApplicationStatusAccepted:
		return ApplicationStateAccepted
	}

	return ApplicationStateNotApplied
}

func (s ApplicationState) String() string {
	if name, ok := applicationStateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("ApplicationState(%d)", int(s))
}

func (s ApplicationState) MarshalText() ([]byte, error) {
	name, ok := applicationStateNames[s]
	if !ok {
		return nil, fmt.Errorf("unknown application state %d", int(s))
	}
	return []byte(name), nil
}

func ValidateRating(rating int) error {
	if rating < MinRating || rating > MaxRating {
		return InvalidInputf("rating must be between %d and %d", MinRating, MaxRating)
	}
	return nil
}

// RatedApplication is the outcome of a successful rating write: the updated
// application and the user whose aggregate rating it affects.
type RatedApplication struct {
	Application *Application
	RatedUserID string
	RatedRole   Role
	Rating      int
}
