package handicap

import (
	"testing"

	"github.com/mauv0809/training-match/internal/club"
	"github.com/stretchr/testify/assert"
)

func TestCalculate(t *testing.T) {
	cfg := DefaultConfig()

	testCases := []struct {
		name        string
		stats       club.Statistics
		class       club.ShooterClass
		want        float64
		provisional bool
	}{
		{
			name:        "no history uses class baseline",
			stats:       club.Statistics{},
			class:       club.ShooterClass1,
			want:        10,
			provisional: true,
		},
		{
			name:        "too few matches ignores own average",
			stats:       club.Statistics{CompletedMatches: 2, TotalSeries: 10, TotalScore: 490},
			class:       club.ShooterClass2,
			want:        6,
			provisional: true,
		},
		{
			name:  "established shooter uses own average",
			stats: club.Statistics{CompletedMatches: 3, TotalSeries: 12, TotalScore: 550},
			class: club.ShooterClass1,
			// 50 - 45.8333 = 4.1667 rounds to 4.25
			want: 4.25,
		},
		{
			name:  "clamped to maximum",
			stats: club.Statistics{CompletedMatches: 5, TotalSeries: 10, TotalScore: 300},
			class: club.ShooterClass3,
			want:  10,
		},
		{
			name:  "never negative",
			stats: club.Statistics{CompletedMatches: 5, TotalSeries: 10, TotalScore: 505},
			class: club.ShooterClass3,
			want:  0,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			res := cfg.Calculate(tc.stats, tc.class)
			assert.Equal(t, tc.want, res.HandicapPerSeries)
			assert.Equal(t, tc.provisional, res.IsProvisional)
			assert.InDelta(t, tc.stats.AverageSeries(), res.ActualAverage, 0.0001)
		})
	}
}

func TestCalculate_QuarterGranularity(t *testing.T) {
	cfg := DefaultConfig()
	for total := 400; total <= 500; total++ {
		stats := club.Statistics{CompletedMatches: 10, TotalSeries: 10, TotalScore: total}
		h := cfg.Calculate(stats, club.ShooterClass2).HandicapPerSeries
		assert.Equal(t, h*4, float64(int(h*4)), "handicap %v is not a multiple of 0.25", h)
		assert.GreaterOrEqual(t, h, 0.0)
		assert.LessOrEqual(t, h, cfg.MaxPerSeries)
	}
}

func TestProvisionalAverage(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 40.0, cfg.ProvisionalAverage(club.ShooterClass1))
	assert.Equal(t, 44.0, cfg.ProvisionalAverage(club.ShooterClass2))
	assert.Equal(t, 47.0, cfg.ProvisionalAverage(club.ShooterClass3))
}

func TestFinalScore(t *testing.T) {
	assert.Equal(t, 190.0, FinalScore(180, 2.5, 4))
	assert.Equal(t, 180.0, FinalScore(180, 0, 4))
}
