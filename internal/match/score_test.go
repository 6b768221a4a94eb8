package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seriesTotals(r *ScoreRecord) []int {
	totals := make([]int, 0, len(r.Series))
	for _, s := range r.Series {
		totals = append(totals, s.Total)
	}
	return totals
}

func TestScoreRecord_AppendRemoveRenumbers(t *testing.T) {
	r := &ScoreRecord{}
	for i, total := range []int{40, 45, 50, 47} {
		n := r.Append(Series{Total: total, XCount: i % 2})
		assert.Equal(t, i+1, n)
	}
	assert.Equal(t, 182, r.TotalScore)
	assert.Equal(t, 2, r.TotalXCount)

	require.NoError(t, r.Remove(2))
	assert.Equal(t, []int{40, 50, 47}, seriesTotals(r))
	for i, s := range r.Series {
		assert.Equal(t, i+1, s.Number)
	}
	assert.Equal(t, 137, r.TotalScore)

	assert.ErrorIs(t, r.Remove(4), ErrSeriesNotFound)
	assert.ErrorIs(t, r.Remove(0), ErrSeriesNotFound)
}

func TestScoreRecord_ReplaceKeepsPositionAndReactions(t *testing.T) {
	r := &ScoreRecord{}
	r.Append(Series{Total: 40})
	r.Append(Series{Total: 45})
	_, err := r.ToggleReaction(2, "🔥", "m2")
	require.NoError(t, err)

	require.NoError(t, r.Replace(2, Series{Total: 49}))
	assert.Equal(t, []int{40, 49}, seriesTotals(r))
	assert.Equal(t, 2, r.Series[1].Number)
	assert.Equal(t, []string{"m2"}, r.Series[1].Reactions["🔥"])
	assert.Equal(t, 89, r.TotalScore)

	assert.ErrorIs(t, r.Replace(3, Series{Total: 1}), ErrSeriesNotFound)
}

func TestScoreRecord_FirstTotals(t *testing.T) {
	r := &ScoreRecord{}
	for _, total := range []int{40, 45, 50, 47, 30} {
		r.Append(Series{Total: total})
	}
	assert.Equal(t, 135, r.FirstTotals(3))
	assert.Equal(t, 212, r.FirstTotals(10))
	assert.Equal(t, 0, r.FirstTotals(0))
}

func TestScoreRecord_ToggleReaction(t *testing.T) {
	r := &ScoreRecord{}
	r.Append(Series{Total: 40})

	set, err := r.ToggleReaction(1, "👏", "m1")
	require.NoError(t, err)
	assert.True(t, set)
	set, err = r.ToggleReaction(1, "👏", "m2")
	require.NoError(t, err)
	assert.True(t, set)
	assert.Equal(t, []string{"m1", "m2"}, r.Series[0].Reactions["👏"])

	set, err = r.ToggleReaction(1, "👏", "m1")
	require.NoError(t, err)
	assert.False(t, set)
	assert.Equal(t, []string{"m2"}, r.Series[0].Reactions["👏"])

	_, err = r.ToggleReaction(1, "👏", "m2")
	require.NoError(t, err)
	assert.NotContains(t, r.Series[0].Reactions, "👏")

	_, err = r.ToggleReaction(2, "👏", "m1")
	assert.ErrorIs(t, err, ErrSeriesNotFound)
}
