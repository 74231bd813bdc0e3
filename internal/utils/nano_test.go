package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNanoIDSize(t *testing.T) {
	assert.Len(t, NanoID(), NanoidSize)
	assert.Len(t, NanoIDSize(12), 12)
	assert.Len(t, NanoIDSize(0), NanoidSize)

	for _, r := range NanoIDSize(64) {
		assert.True(t, strings.ContainsRune(nanoidAlphabet, r))
	}
}

func TestNanoIDsAreDistinct(t *testing.T) {
	ids := NanoIDs(50, 8)

	assert.Len(t, ids, 50)
	seen := map[string]bool{}
	for _, id := range ids {
		assert.Len(t, id, 8)
		assert.False(t, seen[id], id)
		seen[id] = true
	}
}
