package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type Location struct {
	Lat float64 `db:"lat"`
	Lng float64 `db:"lng"`
}

type row struct {
	ID   int64  `db:"id"`
	Name string `db:"name"`
	Location
	Skipped  string `db:"-"`
	Untagged string
	hidden   string `db:"hidden"`
}

func TestStructTagValuesDescendsIntoEmbedded(t *testing.T) {
	assert.Equal(t, []string{"id", "name", "lat", "lng"}, StructTagValues(row{}))
	assert.Equal(t, []string{"id", "name", "lat", "lng"}, StructTagValues(&row{}))
}

func TestStructToMap(t *testing.T) {
	m := StructToMap(&row{ID: 7, Name: "walk", Location: Location{Lat: 1.5, Lng: 2.5}, hidden: "x"})

	assert.Equal(t, map[string]any{
		"id":   int64(7),
		"name": "walk",
		"lat":  1.5,
		"lng":  2.5,
	}, m)
}

func TestPrefixColumns(t *testing.T) {
	assert.Equal(t, []string{"r.id", "r.name"}, PrefixColumns("r", []string{"id", "name"}))
}

func TestStructTagValuesPanicsOnNonStruct(t *testing.T) {
	assert.Panics(t, func() { StructTagValues(42) })
}
