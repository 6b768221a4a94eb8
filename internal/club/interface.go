package club

import (
	"context"

	"github.com/mauv0809/training-match/internal/match"
)

// ClubStore defines the interface for interacting with the club's members and
// their shooting statistics.
type ClubStore interface {
	AddMember(ctx context.Context, memberID, name string, isAdmin bool) error
	GetMember(ctx context.Context, memberID string) (*Member, error)
	GetAllMembers(ctx context.Context) ([]Member, error)
	SetShooterClass(ctx context.Context, memberID string, weaponClass match.WeaponClass, class ShooterClass) error
	// GetShooterClass reports false when the member has not declared a class for the weapon class.
	GetShooterClass(ctx context.Context, memberID string, weaponClass match.WeaponClass) (ShooterClass, bool, error)

	// GetStatistics returns zeroed statistics for a member without history.
	GetStatistics(ctx context.Context, memberID string, weaponClass match.WeaponClass) (*Statistics, error)
	RecalculateFromHistory(ctx context.Context, memberID string, weaponClass match.WeaponClass) (*Statistics, error)
	UpdateAfterMatch(ctx context.Context, memberID string, weaponClass match.WeaponClass, seriesCount, totalScore int) error
}
