package club

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jmoiron/sqlx"
	"github.com/mauv0809/training-match/internal/match"
)

// store handles all database operations for the club.
type store struct {
	db *sqlx.DB
}

// New creates a new ClubStore.
func New(db *sqlx.DB) ClubStore {
	return &store{
		db: db,
	}
}

type memberRow struct {
	ID        string `db:"id"`
	Name      string `db:"name"`
	IsAdmin   bool   `db:"is_admin"`
	CreatedAt int64  `db:"created_at"`
}

func (r memberRow) toMember() Member {
	return Member{
		ID:        r.ID,
		Name:      r.Name,
		IsAdmin:   r.IsAdmin,
		CreatedAt: time.UnixMilli(r.CreatedAt).UTC(),
	}
}

// AddMember inserts a member or updates the name and admin flag of an existing one.
func (s *store) AddMember(ctx context.Context, memberID, name string, isAdmin bool) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO members (id, name, is_admin, created_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			is_admin = excluded.is_admin`,
		memberID, name, isAdmin, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to add member: %w", err)
	}
	log.Debug("Upserted member", "memberID", memberID, "name", name)
	return nil
}

func (s *store) GetMember(ctx context.Context, memberID string) (*Member, error) {
	var row memberRow
	err := s.db.GetContext(ctx, &row, "SELECT id, name, is_admin, created_at FROM members WHERE id = ?", memberID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, match.ErrMemberNotFound
		}
		return nil, fmt.Errorf("failed to get member: %w", err)
	}
	m := row.toMember()
	return &m, nil
}

func (s *store) GetAllMembers(ctx context.Context) ([]Member, error) {
	var rows []memberRow
	if err := s.db.SelectContext(ctx, &rows, "SELECT id, name, is_admin, created_at FROM members ORDER BY name"); err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	members := make([]Member, 0, len(rows))
	for _, r := range rows {
		members = append(members, r.toMember())
	}
	return members, nil
}

func (s *store) SetShooterClass(ctx context.Context, memberID string, weaponClass match.WeaponClass, class ShooterClass) error {
	if !weaponClass.Valid() {
		return match.ErrInvalidWeaponClass
	}
	if !class.Valid() {
		return fmt.Errorf("%w: shooter class %d", match.ErrValidation, class)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO shooter_classes (member_id, weapon_class, shooter_class) VALUES (?, ?, ?)
		ON CONFLICT(member_id, weapon_class) DO UPDATE SET shooter_class = excluded.shooter_class`,
		memberID, string(weaponClass), int(class))
	if err != nil {
		return fmt.Errorf("failed to set shooter class: %w", err)
	}
	return nil
}

func (s *store) GetShooterClass(ctx context.Context, memberID string, weaponClass match.WeaponClass) (ShooterClass, bool, error) {
	var class int
	err := s.db.GetContext(ctx, &class,
		"SELECT shooter_class FROM shooter_classes WHERE member_id = ? AND weapon_class = ?", memberID, string(weaponClass))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("failed to get shooter class: %w", err)
	}
	return ShooterClass(class), true, nil
}

type statisticsRow struct {
	MemberID         string `db:"member_id"`
	WeaponClass      string `db:"weapon_class"`
	CompletedMatches int    `db:"completed_matches"`
	TotalSeries      int    `db:"total_series"`
	TotalScore       int    `db:"total_score"`
	UpdatedAt        int64  `db:"updated_at"`
}

func (s *store) GetStatistics(ctx context.Context, memberID string, weaponClass match.WeaponClass) (*Statistics, error) {
	var row statisticsRow
	err := s.db.GetContext(ctx, &row, `
		SELECT member_id, weapon_class, completed_matches, total_series, total_score, updated_at
		FROM shooter_statistics WHERE member_id = ? AND weapon_class = ?`, memberID, string(weaponClass))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &Statistics{MemberID: memberID, WeaponClass: weaponClass}, nil
		}
		return nil, fmt.Errorf("failed to get statistics: %w", err)
	}
	return &Statistics{
		MemberID:         row.MemberID,
		WeaponClass:      match.WeaponClass(row.WeaponClass),
		CompletedMatches: row.CompletedMatches,
		TotalSeries:      row.TotalSeries,
		TotalScore:       row.TotalScore,
		UpdatedAt:        time.UnixMilli(row.UpdatedAt).UTC(),
	}, nil
}

// RecalculateFromHistory rebuilds the statistics from the member's score records
// of completed matches, including records detached from deleted matches.
func (s *store) RecalculateFromHistory(ctx context.Context, memberID string, weaponClass match.WeaponClass) (*Statistics, error) {
	stats := &Statistics{MemberID: memberID, WeaponClass: weaponClass, UpdatedAt: time.Now().UTC()}
	err := s.db.QueryRowxContext(ctx, `
		SELECT COUNT(*),
			COALESCE(SUM(json_array_length(s.series_json)), 0),
			COALESCE(SUM(s.total_score), 0)
		FROM score_records s
		LEFT JOIN matches m ON m.id = s.match_id
		WHERE s.member_id = ? AND s.weapon_class = ?
			AND (s.match_id IS NULL OR m.status = ?)`,
		memberID, string(weaponClass), string(match.StatusCompleted),
	).Scan(&stats.CompletedMatches, &stats.TotalSeries, &stats.TotalScore)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate score history: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO shooter_statistics (member_id, weapon_class, completed_matches, total_series, total_score, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(member_id, weapon_class) DO UPDATE SET
			completed_matches = excluded.completed_matches,
			total_series = excluded.total_series,
			total_score = excluded.total_score,
			updated_at = excluded.updated_at`,
		memberID, string(weaponClass), stats.CompletedMatches, stats.TotalSeries, stats.TotalScore, stats.UpdatedAt.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("failed to store recalculated statistics: %w", err)
	}
	log.Debug("Recalculated statistics", "memberID", memberID, "weaponClass", weaponClass, "matches", stats.CompletedMatches)
	return stats, nil
}

// UpdateAfterMatch adds one completed match to the member's statistics.
func (s *store) UpdateAfterMatch(ctx context.Context, memberID string, weaponClass match.WeaponClass, seriesCount, totalScore int) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO shooter_statistics (member_id, weapon_class, completed_matches, total_series, total_score, updated_at)
		VALUES (?, ?, 1, ?, ?, ?)
		ON CONFLICT(member_id, weapon_class) DO UPDATE SET
			completed_matches = completed_matches + 1,
			total_series = total_series + excluded.total_series,
			total_score = total_score + excluded.total_score,
			updated_at = excluded.updated_at`,
		memberID, string(weaponClass), seriesCount, totalScore, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to update statistics: %w", err)
	}
	log.Info("Updated shooter statistics", "memberID", memberID, "weaponClass", weaponClass, "series", seriesCount, "score", totalScore)
	return nil
}
