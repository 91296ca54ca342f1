package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFindIndex(t *testing.T) {
	require.Equal(t, 1, FindIndex([]string{"a", "b", "c"}, "b"), "Should find the index of a present item")
	require.Equal(t, -1, FindIndex([]string{"a"}, "z"), "Should return -1 for a missing item")
	require.Equal(t, 2, FindIndexFunc([]int{1, 3, 4}, func(v int) bool { return v%2 == 0 }), "Should find the first matching item")
}

func TestClamp(t *testing.T) {
	require.Equal(t, 2, Clamp(1, 2, 6), "Should raise values below the range")
	require.Equal(t, 6, Clamp(9, 2, 6), "Should lower values above the range")
	require.Equal(t, 4, Clamp(4, 2, 6), "Should keep values inside the range")
	require.Equal(t, 3, Abs(-3), "Should negate negative values")
}
