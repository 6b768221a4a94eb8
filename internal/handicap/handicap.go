// Package handicap computes the per-series handicap that evens out scores
// between shooters of different skill.
package handicap

import (
	"math"

	"github.com/mauv0809/training-match/internal/club"
)

// Config holds the handicap constants. It is loaded from the environment
// with the HANDICAP_ prefix.
type Config struct {
	ReferenceSeriesScore float64 `env:"REFERENCE_SERIES_SCORE" envDefault:"50"`
	MaxPerSeries         float64 `env:"MAX_PER_SERIES" envDefault:"10"`
	RequiredMatches      int     `env:"REQUIRED_MATCHES" envDefault:"3"`
	ProvisionalClass1    float64 `env:"PROVISIONAL_CLASS1" envDefault:"40"`
	ProvisionalClass2    float64 `env:"PROVISIONAL_CLASS2" envDefault:"44"`
	ProvisionalClass3    float64 `env:"PROVISIONAL_CLASS3" envDefault:"47"`
}

// DefaultConfig returns the same values as the environment defaults.
func DefaultConfig() Config {
	return Config{
		ReferenceSeriesScore: 50,
		MaxPerSeries:         10,
		RequiredMatches:      3,
		ProvisionalClass1:    40,
		ProvisionalClass2:    44,
		ProvisionalClass3:    47,
	}
}

// Result is a computed handicap.
type Result struct {
	HandicapPerSeries float64 `json:"handicap_per_series"`
	IsProvisional     bool    `json:"is_provisional"`
	EffectiveAverage  float64 `json:"effective_average"`
	ActualAverage     float64 `json:"actual_average"`
}

// ProvisionalAverage returns the baseline series average assumed for a
// shooter of the given class until enough matches have been shot.
func (c Config) ProvisionalAverage(class club.ShooterClass) float64 {
	switch class {
	case club.ShooterClass1:
		return c.ProvisionalClass1
	case club.ShooterClass2:
		return c.ProvisionalClass2
	default:
		return c.ProvisionalClass3
	}
}

// Calculate returns the handicap for a shooter with the given statistics and
// declared class. Shooters with fewer than RequiredMatches completed matches
// get a provisional handicap based on their class baseline.
func (c Config) Calculate(stats club.Statistics, class club.ShooterClass) Result {
	res := Result{ActualAverage: stats.AverageSeries()}

	if stats.CompletedMatches < c.RequiredMatches {
		res.IsProvisional = true
		res.EffectiveAverage = c.ProvisionalAverage(class)
	} else {
		res.EffectiveAverage = res.ActualAverage
	}

	h := c.ReferenceSeriesScore - res.EffectiveAverage
	h = math.Max(0, math.Min(h, c.MaxPerSeries))
	res.HandicapPerSeries = roundQuarter(h)
	return res
}

// FinalScore is the handicap adjusted total of a participant.
func FinalScore(rawTotal int, handicapPerSeries float64, seriesCount int) float64 {
	return float64(rawTotal) + handicapPerSeries*float64(seriesCount)
}

func roundQuarter(v float64) float64 {
	return math.Round(v*4) / 4
}
