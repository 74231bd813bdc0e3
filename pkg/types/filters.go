package types

import "strings"

type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// StatusFilter narrows a listing by request status, or for volunteers by
// whether the caller applied.
type StatusFilter string

const (
	StatusFilterAll       StatusFilter = "ALL"
	StatusFilterOpen      StatusFilter = "OPEN"
	StatusFilterClosed    StatusFilter = "CLOSED"
	StatusFilterCompleted StatusFilter = "COMPLETED"
	StatusFilterApplied   StatusFilter = "APPLIED"
)

const (
	SortKeyCreatedAt = "created_at"
	SortKeyStart     = "start"
	SortKeyReward    = "reward"

	DefaultRadiusKm = 10
)

// MyRequestsFilter is the help-seeker's view over their own requests.
type MyRequestsFilter struct {
	PageParams
	Status StatusFilter `form:"status"`
	Sort   string       `form:"sort"`
	Order  SortOrder    `form:"order"`
}

func (f *MyRequestsFilter) Normalize() error {
	if err := f.PageParams.Normalize(); err != nil {
		return err
	}

	f.Status = StatusFilter(strings.ToUpper(string(f.Status)))
	if f.Status == "" {
		f.Status = StatusFilterAll
	}
	switch f.Status {
	case StatusFilterAll, StatusFilterOpen, StatusFilterClosed, StatusFilterCompleted:
	default:
		return InvalidInputf("status must be one of ALL, OPEN, CLOSED, COMPLETED")
	}

	if f.Sort == "" {
		f.Sort = SortKeyCreatedAt
	}
	switch f.Sort {
	case SortKeyCreatedAt, SortKeyStart, SortKeyReward:
	default:
		return InvalidInputf("sort must be one of created_at, start, reward")
	}

	return normalizeOrder(&f.Order)
}

// DiscoverFilter is the volunteer's view over all requests.
type DiscoverFilter struct {
	PageParams
	Status      StatusFilter `form:"status"`
	CategoryIDs []string     `form:"request_type_ids"`
	Latitude    *float64     `form:"location_lat"`
	Longitude   *float64     `form:"location_lng"`
	RadiusKm    float64      `form:"radius"`
	Sort        string       `form:"sort"`
	Order       SortOrder    `form:"order"`
}

func (f *DiscoverFilter) Normalize() error {
	if err := f.PageParams.Normalize(); err != nil {
		return err
	}

	f.Status = StatusFilter(strings.ToUpper(string(f.Status)))
	if f.Status == "" {
		f.Status = StatusFilterOpen
	}
	switch f.Status {
	case StatusFilterAll, StatusFilterOpen, StatusFilterCompleted, StatusFilterApplied:
	default:
		return InvalidInputf("status must be one of ALL, OPEN, COMPLETED, APPLIED")
	}

	if f.Sort == "" {
		f.Sort = SortKeyStart
	}
	switch f.Sort {
	case SortKeyStart, SortKeyReward:
	default:
		return InvalidInputf("sort must be one of start, reward")
	}

	if f.RadiusKm == 0 {
		f.RadiusKm = DefaultRadiusKm
	}
	if f.RadiusKm < 0 {
		return InvalidInputf("radius must be greater than 0")
	}
	if (f.Latitude == nil) != (f.Longitude == nil) {
		return InvalidInputf("location_lat and location_lng must be given together")
	}
	if f.Latitude != nil && (*f.Latitude < -90 || *f.Latitude > 90 || *f.Longitude < -180 || *f.Longitude > 180) {
		return InvalidInputf("location is out of range")
	}

	return normalizeOrder(&f.Order)
}

// HasLocation reports whether the radius predicate applies.
func (f *DiscoverFilter) HasLocation() bool {
	return f.Latitude != nil && f.Longitude != nil
}

func normalizeOrder(o *SortOrder) error {
	*o = SortOrder(strings.ToLower(string(*o)))
	if *o == "" {
		*o = SortDesc
	}
	if *o != SortAsc && *o != SortDesc {
		return InvalidInputf("order must be asc or desc")
	}
	return nil
}
