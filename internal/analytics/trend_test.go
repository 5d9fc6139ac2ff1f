package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompare(t *testing.T) {
	t.Run("ordinary change", func(t *testing.T) {
		trend := Compare(150, 100)
		assert.Equal(t, 50.0, trend.Delta)
		require.NotNil(t, trend.Percent)
		assert.Equal(t, 50.0, *trend.Percent)
		assert.False(t, trend.Infinite)
	})

	t.Run("decline rounds to one decimal", func(t *testing.T) {
		trend := Compare(2, 3)
		require.NotNil(t, trend.Percent)
		assert.Equal(t, -33.3, *trend.Percent)
	})

	t.Run("both zero is flat", func(t *testing.T) {
		trend := Compare(0, 0)
		assert.Equal(t, 0.0, trend.Delta)
		require.NotNil(t, trend.Percent)
		assert.Equal(t, 0.0, *trend.Percent)
		assert.False(t, trend.Infinite)
	})

	t.Run("growth from zero is infinite", func(t *testing.T) {
		trend := Compare(80000, 0)
		assert.Equal(t, 80000.0, trend.Delta)
		assert.Nil(t, trend.Percent)
		assert.True(t, trend.Infinite)
	})

	t.Run("drop to zero is minus one hundred", func(t *testing.T) {
		trend := Compare(0, 40)
		require.NotNil(t, trend.Percent)
		assert.Equal(t, -100.0, *trend.Percent)
	})
}

func TestLongestRun(t *testing.T) {
	cases := []struct {
		name  string
		flags []bool
		want  int
	}{
		{name: "empty", flags: nil, want: 0},
		{name: "all false", flags: []bool{false, false}, want: 0},
		{name: "interrupted run", flags: []bool{true, false, true, true, true, false}, want: 3},
		{name: "run at tail", flags: []bool{false, true, true}, want: 2},
		{name: "all true", flags: []bool{true, true, true, true}, want: 4},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, LongestRun(tc.flags))
		})
	}
}
