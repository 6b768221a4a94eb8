package training

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mauv0809/training-match/internal/match"
)

// MaxShotsPerSeries bounds the number of shots in one series.
const MaxShotsPerSeries = 10

// XShot is the inner ten. It counts as the best value of the weapon class
// and is tallied in the X-count.
const XShot = "X"

// parseShot returns the value of one shot token and whether it is an X.
func parseShot(token string, wc match.WeaponClass) (int, bool, error) {
	token = strings.ToUpper(strings.TrimSpace(token))
	if token == XShot {
		return wc.MaxShotValue(), true, nil
	}
	v, err := strconv.Atoi(token)
	if err != nil || v < 0 || v > wc.MaxShotValue() {
		return 0, false, fmt.Errorf("%w: %q", match.ErrInvalidShot, token)
	}
	return v, false, nil
}

// buildSeries validates the input and turns it into a series. Shots take
// precedence over a supplied total.
func buildSeries(in SeriesInput, wc match.WeaponClass, now time.Time) (match.Series, error) {
	s := match.Series{EnteredAt: now}
	if in.PhotoRef != nil {
		if ref := strings.TrimSpace(*in.PhotoRef); ref != "" {
			s.PhotoRef = &ref
		}
	}

	if len(in.Shots) > 0 {
		if len(in.Shots) > MaxShotsPerSeries {
			return match.Series{}, fmt.Errorf("%w: at most %d shots per series", match.ErrInvalidSeries, MaxShotsPerSeries)
		}
		s.EntryMethod = match.EntryShots
		s.Shots = make([]string, 0, len(in.Shots))
		for _, token := range in.Shots {
			v, x, err := parseShot(token, wc)
			if err != nil {
				return match.Series{}, err
			}
			s.Total += v
			if x {
				s.XCount++
				s.Shots = append(s.Shots, XShot)
			} else {
				s.Shots = append(s.Shots, strconv.Itoa(v))
			}
		}
		return s, nil
	}

	if in.Total == nil {
		return match.Series{}, fmt.Errorf("%w: either shots or a total is required", match.ErrInvalidSeries)
	}
	maxTotal := MaxShotsPerSeries * wc.MaxShotValue()
	if *in.Total < 0 || *in.Total > maxTotal {
		return match.Series{}, fmt.Errorf("%w: total must be between 0 and %d", match.ErrInvalidSeries, maxTotal)
	}
	s.EntryMethod = match.EntryTotal
	s.Total = *in.Total
	if in.XCount != nil {
		if *in.XCount < 0 || *in.XCount > MaxShotsPerSeries {
			return match.Series{}, fmt.Errorf("%w: x-count must be between 0 and %d", match.ErrInvalidSeries, MaxShotsPerSeries)
		}
		s.XCount = *in.XCount
	}
	return s, nil
}
