package types

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

type RequestStatus string

const (
	RequestStatusOpen      RequestStatus = "OPEN"
	RequestStatusClosed    RequestStatus = "CLOSED"
	RequestStatusCompleted RequestStatus = "COMPLETED"
)

const (
	minRequestNameLength        = 5
	minRequestDescriptionLength = 20
)

type Request struct {
	ID        int64  `db:"id" json:"id"`
	CreatorID string `db:"creator_id" json:"-"`

	Name        string `db:"name" json:"name"`
	Description string `db:"description" json:"description"`
	Reward      int    `db:"reward" json:"reward"`

	RequestLocation

	Start     time.Time     `db:"start_at" json:"start"`
	End       time.Time     `db:"end_at" json:"end"`
	Status    RequestStatus `db:"status" json:"status"`
	CreatedAt time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt time.Time     `db:"updated_at" json:"updated_at"`

	ApplicationCount int            `db:"-" json:"application_count"`
	Categories       []*CategoryTag `db:"-" json:"request_types"`
}

// RequestLocation holds the coordinates the store derives its geography
// point from, plus the free-form address shown to volunteers.
type RequestLocation struct {
	Address   string  `db:"address" json:"address"`
	Longitude float64 `db:"longitude" json:"longitude"`
	Latitude  float64 `db:"latitude" json:"latitude"`
}

// RequestInput carries the mutable fields of a request for create and update.
type RequestInput struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Reward      int       `json:"reward"`
	Address     string    `json:"address"`
	Longitude   float64   `json:"longitude"`
	Latitude    float64   `json:"latitude"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	CategoryIDs []string  `json:"request_type_ids"`
}

func (in *RequestInput) Validate() error {
	var problems []string

	if utf8.RuneCountInString(strings.TrimSpace(in.Name)) < minRequestNameLength {
		problems = append(problems, fmt.Sprintf("name must be at least %d characters", minRequestNameLength))
	}
	if utf8.RuneCountInString(strings.TrimSpace(in.Description)) < minRequestDescriptionLength {
		problems = append(problems, fmt.Sprintf("description must be at least %d characters", minRequestDescriptionLength))
	}
	if in.Reward < 0 {
		problems = append(problems, "reward must be greater than or equal to 0")
	}
	if in.Start.IsZero() || in.End.IsZero() {
		problems = append(problems, "start and end are required")
	} else if in.End.Before(in.Start) {
		problems = append(problems, "end must not be before start")
	}
	if in.Latitude < -90 || in.Latitude > 90 {
		problems = append(problems, "latitude must be between -90 and 90")
	}
	if in.Longitude < -180 || in.Longitude > 180 {
		problems = append(problems, "longitude must be between -180 and 180")
	}

	if len(problems) > 0 {
		return InvalidInputf("%s", strings.Join(problems, "; "))
	}

	return nil
}

// ApplyTo copies the input onto a request, leaving identity, ownership,
// status and timestamps alone.
func (in *RequestInput) ApplyTo(r *Request) {
	r.Name = strings.TrimSpace(in.Name)
	r.Description = strings.TrimSpace(in.Description)
	r.Reward = in.Reward
	r.Address = in.Address
	r.Longitude = in.Longitude
	r.Latitude = in.Latitude
	r.Start = in.Start
	r.End = in.End
}

// HelpSeekerRequestDetail is a request as its creator sees it.
type HelpSeekerRequestDetail struct {
	*Request
	Applications []*ApplicationWithVolunteer `json:"applications"`
}

// VolunteerRequest is a request as seen by a volunteer: the caller's own
// application state and the creator's public profile.
type VolunteerRequest struct {
	*Request
	ApplicationStatus ApplicationState `json:"application_status"`
	Creator           *UserSummary     `json:"creator"`
}
