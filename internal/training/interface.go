package training

import (
	"context"

	"github.com/mauv0809/training-match/internal/club"
	"github.com/mauv0809/training-match/internal/match"
)

// Club is the part of the club store the training service depends on: member
// lookup, declared shooter classes and shooting statistics.
type Club interface {
	GetMember(ctx context.Context, memberID string) (*club.Member, error)
	GetShooterClass(ctx context.Context, memberID string, weaponClass match.WeaponClass) (club.ShooterClass, bool, error)
	GetStatistics(ctx context.Context, memberID string, weaponClass match.WeaponClass) (*club.Statistics, error)
	RecalculateFromHistory(ctx context.Context, memberID string, weaponClass match.WeaponClass) (*club.Statistics, error)
	UpdateAfterMatch(ctx context.Context, memberID string, weaponClass match.WeaponClass, seriesCount, totalScore int) error
}
