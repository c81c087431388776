package contract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupStrings(t *testing.T) {
	t.Run("keeps first occurrence order", func(t *testing.T) {
		got := dedupStrings([]string{"a", "b", "a", "c", "b"})
		assert.Equal(t, []string{"a", "b", "c"}, got)
	})

	t.Run("merges multiple lists in order", func(t *testing.T) {
		got := dedupStrings([]string{"x", "y"}, []string{"y", "z"}, []string{"x"})
		assert.Equal(t, []string{"x", "y", "z"}, got)
	})

	t.Run("empty input yields empty non-nil slice", func(t *testing.T) {
		got := dedupStrings()
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})
}
