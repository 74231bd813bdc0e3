package types

import "time"

type Category struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Slug         string    `db:"slug" json:"slug"`
	Description  *string   `db:"description" json:"description,omitempty"`
	DisplayOrder int       `db:"display_order" json:"-"`
	IsActive     bool      `db:"is_active" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"-"`
}

// CategoryTag is the short form of a Category attached to a request.
type CategoryTag struct {
	RequestID int64  `db:"request_id" json:"-"`
	ID        string `db:"id" json:"id"`
	Name      string `db:"name" json:"name"`
}
