package club

import (
	"context"
	"sync"

	"github.com/mauv0809/training-match/internal/match"
)

// MockStore is a mock implementation of the ClubStore interface for testing.
// Calls without a spy function are forwarded to Next when it is set.
// It is safe for concurrent use.
type MockStore struct {
	mu sync.Mutex

	Next ClubStore

	// Spies for method calls
	GetMemberFunc              func(ctx context.Context, memberID string) (*Member, error)
	GetShooterClassFunc        func(ctx context.Context, memberID string, weaponClass match.WeaponClass) (ShooterClass, bool, error)
	GetStatisticsFunc          func(ctx context.Context, memberID string, weaponClass match.WeaponClass) (*Statistics, error)
	RecalculateFromHistoryFunc func(ctx context.Context, memberID string, weaponClass match.WeaponClass) (*Statistics, error)
	UpdateAfterMatchFunc       func(ctx context.Context, memberID string, weaponClass match.WeaponClass, seriesCount, totalScore int) error

	// Call records
	RecalculateFromHistoryCalls []string
	UpdateAfterMatchCalls       []UpdateAfterMatchCall
}

// UpdateAfterMatchCall holds the arguments for a call to UpdateAfterMatch.
type UpdateAfterMatchCall struct {
	MemberID    string
	WeaponClass match.WeaponClass
	SeriesCount int
	TotalScore  int
}

var _ ClubStore = (*MockStore)(nil)

// NewMock creates a new mock instance forwarding to next (which may be nil).
func NewMock(next ClubStore) *MockStore {
	return &MockStore{Next: next}
}

func (m *MockStore) AddMember(ctx context.Context, memberID, name string, isAdmin bool) error {
	if m.Next != nil {
		return m.Next.AddMember(ctx, memberID, name, isAdmin)
	}
	return nil
}

func (m *MockStore) GetMember(ctx context.Context, memberID string) (*Member, error) {
	if m.GetMemberFunc != nil {
		return m.GetMemberFunc(ctx, memberID)
	}
	if m.Next != nil {
		return m.Next.GetMember(ctx, memberID)
	}
	return &Member{ID: memberID, Name: memberID}, nil
}

func (m *MockStore) GetAllMembers(ctx context.Context) ([]Member, error) {
	if m.Next != nil {
		return m.Next.GetAllMembers(ctx)
	}
	return nil, nil
}

func (m *MockStore) SetShooterClass(ctx context.Context, memberID string, weaponClass match.WeaponClass, class ShooterClass) error {
	if m.Next != nil {
		return m.Next.SetShooterClass(ctx, memberID, weaponClass, class)
	}
	return nil
}

func (m *MockStore) GetShooterClass(ctx context.Context, memberID string, weaponClass match.WeaponClass) (ShooterClass, bool, error) {
	if m.GetShooterClassFunc != nil {
		return m.GetShooterClassFunc(ctx, memberID, weaponClass)
	}
	if m.Next != nil {
		return m.Next.GetShooterClass(ctx, memberID, weaponClass)
	}
	return 0, false, nil
}

func (m *MockStore) GetStatistics(ctx context.Context, memberID string, weaponClass match.WeaponClass) (*Statistics, error) {
	if m.GetStatisticsFunc != nil {
		return m.GetStatisticsFunc(ctx, memberID, weaponClass)
	}
	if m.Next != nil {
		return m.Next.GetStatistics(ctx, memberID, weaponClass)
	}
	return &Statistics{MemberID: memberID, WeaponClass: weaponClass}, nil
}

func (m *MockStore) RecalculateFromHistory(ctx context.Context, memberID string, weaponClass match.WeaponClass) (*Statistics, error) {
	m.mu.Lock()
	m.RecalculateFromHistoryCalls = append(m.RecalculateFromHistoryCalls, memberID)
	m.mu.Unlock()
	if m.RecalculateFromHistoryFunc != nil {
		return m.RecalculateFromHistoryFunc(ctx, memberID, weaponClass)
	}
	if m.Next != nil {
		return m.Next.RecalculateFromHistory(ctx, memberID, weaponClass)
	}
	return &Statistics{MemberID: memberID, WeaponClass: weaponClass}, nil
}

func (m *MockStore) UpdateAfterMatch(ctx context.Context, memberID string, weaponClass match.WeaponClass, seriesCount, totalScore int) error {
	m.mu.Lock()
	m.UpdateAfterMatchCalls = append(m.UpdateAfterMatchCalls, UpdateAfterMatchCall{
		MemberID:    memberID,
		WeaponClass: weaponClass,
		SeriesCount: seriesCount,
		TotalScore:  totalScore,
	})
	m.mu.Unlock()
	if m.UpdateAfterMatchFunc != nil {
		return m.UpdateAfterMatchFunc(ctx, memberID, weaponClass, seriesCount, totalScore)
	}
	if m.Next != nil {
		return m.Next.UpdateAfterMatch(ctx, memberID, weaponClass, seriesCount, totalScore)
	}
	return nil
}

// UpdatedMembers returns the member ids UpdateAfterMatch was called with.
func (m *MockStore) UpdatedMembers() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.UpdateAfterMatchCalls))
	for _, c := range m.UpdateAfterMatchCalls {
		ids = append(ids, c.MemberID)
	}
	return ids
}
