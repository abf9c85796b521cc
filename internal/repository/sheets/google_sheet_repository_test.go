package sheets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColumnLetter(t *testing.T) {
	cases := map[int]string{1: "A", 2: "B", 10: "J", 26: "Z", 27: "AA", 52: "AZ", 703: "AAA"}
	for n, want := range cases {
		assert.Equal(t, want, columnLetter(n), "column %d", n)
	}
}

func TestTabRange(t *testing.T) {
	got, err := tabRange("Rollups", 10)
	require.NoError(t, err)
	assert.Equal(t, "Rollups!A:J", got)

	got, err = tabRange("May rollups", 2)
	require.NoError(t, err)
	assert.Equal(t, "'May rollups'!A:B", got)

	got, err = tabRange("Anna's", 1)
	require.NoError(t, err)
	assert.Equal(t, "'Anna''s'!A:A", got)

	_, err = tabRange(" ", 2)
	assert.Error(t, err)
	_, err = tabRange("Rollups", 0)
	assert.Error(t, err)
}

func TestRowHasPrefix(t *testing.T) {
	assert.True(t, rowHasPrefix([]interface{}{"2024-05", "org-a", "extra"}, []string{"2024-05", "org-a"}))
	assert.True(t, rowHasPrefix([]interface{}{" 2024-05 ", "org-a"}, []string{"2024-05", "org-a"}))
	assert.False(t, rowHasPrefix([]interface{}{"2024-05"}, []string{"2024-05", "org-a"}))
	assert.False(t, rowHasPrefix([]interface{}{"2024-05", "org-b"}, []string{"2024-05", "org-a"}))
	assert.False(t, rowHasPrefix([]interface{}{"2024-05"}, nil))
}

func TestWidest(t *testing.T) {
	assert.Equal(t, 0, widest(nil))
	assert.Equal(t, 3, widest([][]interface{}{{1}, {1, 2, 3}, {1, 2}}))
}
