package match

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jmoiron/sqlx"
)

// store is the SQLite/libSQL backed Store.
type store struct {
	*queries
	db      *sqlx.DB
	timeout time.Duration
}

// queries runs statements against either the database or an open transaction.
type queries struct {
	ext     sqlx.ExtContext
	timeout time.Duration
}

// New creates a new Store. timeout bounds every call and every transaction; zero disables it.
func New(db *sqlx.DB, timeout time.Duration) Store {
	return &store{
		queries: &queries{ext: db, timeout: timeout},
		db:      db,
		timeout: timeout,
	}
}

func (s *store) WithTx(ctx context.Context, fn func(q Queries) error) error {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&queries{ext: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (q *queries) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if q.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, q.timeout)
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func toMillis(t time.Time) int64 {
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

func nullMillis(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UnixMilli(), Valid: true}
}

func timePtr(n sql.NullInt64) *time.Time {
	if !n.Valid {
		return nil
	}
	t := fromMillis(n.Int64)
	return &t
}

// keyClause returns the column filter that selects rows for key.
func keyClause(key ParticipantKey) string {
	if key.IsMember() {
		return "member_id = ?"
	}
	return "guest_id = ?"
}

func keyFromColumns(memberID, guestID sql.NullString) ParticipantKey {
	if memberID.Valid {
		return MemberKey(memberID.String)
	}
	return GuestKey(guestID.String)
}

// --- matches ---

type matchRow struct {
	ID             int64         `db:"id"`
	Code           string        `db:"code"`
	Name           string        `db:"name"`
	WeaponClass    string        `db:"weapon_class"`
	CreatorID      string        `db:"creator_id"`
	CreatedAt      int64         `db:"created_at"`
	StartTime      sql.NullInt64 `db:"start_time"`
	Status         string        `db:"status"`
	CompletedAt    sql.NullInt64 `db:"completed_at"`
	IsOpen         bool          `db:"is_open"`
	HasHandicap    bool          `db:"has_handicap"`
	MaxSeriesCount sql.NullInt64 `db:"max_series_count"`
	AllowGuests    bool          `db:"allow_guests"`
}

const matchColumns = `id, code, name, weapon_class, creator_id, created_at, start_time, status,
	completed_at, is_open, has_handicap, max_series_count, allow_guests`

func (r matchRow) toMatch() *Match {
	m := &Match{
		ID:          r.ID,
		Code:        r.Code,
		Name:        r.Name,
		WeaponClass: WeaponClass(r.WeaponClass),
		CreatorID:   r.CreatorID,
		CreatedAt:   fromMillis(r.CreatedAt),
		StartTime:   timePtr(r.StartTime),
		Status:      Status(r.Status),
		CompletedAt: timePtr(r.CompletedAt),
		IsOpen:      r.IsOpen,
		HasHandicap: r.HasHandicap,
		AllowGuests: r.AllowGuests,
	}
	if r.MaxSeriesCount.Valid {
		n := int(r.MaxSeriesCount.Int64)
		m.MaxSeriesCount = &n
	}
	return m
}

func nullInt(n *int) sql.NullInt64 {
	if n == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*n), Valid: true}
}

// InsertMatch stores m and sets its ID. A taken code yields ErrCodeConflict.
func (q *queries) InsertMatch(ctx context.Context, m *Match) error {
	ctx, cancel := q.bound(ctx)
	defer cancel()

	row := q.ext.QueryRowxContext(ctx, `
		INSERT INTO matches (code, name, weapon_class, creator_id, created_at, start_time, status,
			completed_at, is_open, has_handicap, max_series_count, allow_guests)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`,
		m.Code, m.Name, string(m.WeaponClass), m.CreatorID, toMillis(m.CreatedAt), nullMillis(m.StartTime),
		string(m.Status), nullMillis(m.CompletedAt), m.IsOpen, m.HasHandicap, nullInt(m.MaxSeriesCount), m.AllowGuests,
	)
	if err := row.Scan(&m.ID); err != nil {
		if isUniqueViolation(err) {
			return ErrCodeConflict
		}
		return fmt.Errorf("failed to insert match: %w", err)
	}
	return nil
}

func (q *queries) GetMatch(ctx context.Context, id int64) (*Match, error) {
	return q.getMatch(ctx, "id = ?", id)
}

func (q *queries) GetMatchByCode(ctx context.Context, code string) (*Match, error) {
	return q.getMatch(ctx, "code = ?", strings.ToUpper(strings.TrimSpace(code)))
}

func (q *queries) getMatch(ctx context.Context, where string, arg any) (*Match, error) {
	ctx, cancel := q.bound(ctx)
	defer cancel()

	var row matchRow
	err := sqlx.GetContext(ctx, q.ext, &row, "SELECT "+matchColumns+" FROM matches WHERE "+where, arg)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to get match: %w", err)
	}
	return row.toMatch(), nil
}

// UpdateSettings changes the settings of an active match. Status and
// completion time are never written here.
func (q *queries) UpdateSettings(ctx context.Context, id int64, maxSeriesCount *int, allowGuests bool) error {
	ctx, cancel := q.bound(ctx)
	defer cancel()

	res, err := q.ext.ExecContext(ctx,
		"UPDATE matches SET max_series_count = ?, allow_guests = ? WHERE id = ? AND status = ?",
		nullInt(maxSeriesCount), allowGuests, id, string(StatusActive),
	)
	if err != nil {
		return fmt.Errorf("failed to update match settings: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read updated match count: %w", err)
	}
	if n > 0 {
		return nil
	}

	var exists bool
	if err := sqlx.GetContext(ctx, q.ext, &exists, "SELECT EXISTS(SELECT 1 FROM matches WHERE id = ?)", id); err != nil {
		return fmt.Errorf("failed to check match: %w", err)
	}
	if !exists {
		return ErrMatchNotFound
	}
	return ErrMatchNotActive
}

func (q *queries) CompleteMatch(ctx context.Context, id int64, at time.Time) (bool, error) {
	ctx, cancel := q.bound(ctx)
	defer cancel()

	res, err := q.ext.ExecContext(ctx,
		"UPDATE matches SET status = ?, completed_at = ? WHERE id = ? AND status = ?",
		string(StatusCompleted), toMillis(at), id, string(StatusActive),
	)
	if err != nil {
		return false, fmt.Errorf("failed to complete match: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read completed match count: %w", err)
	}
	return n > 0, nil
}

func (q *queries) DeleteMatch(ctx context.Context, id int64) error {
	ctx, cancel := q.bound(ctx)
	defer cancel()

	if _, err := q.ext.ExecContext(ctx, "DELETE FROM matches WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete match: %w", err)
	}
	return nil
}

func (q *queries) ListActiveMatchesForMember(ctx context.Context, memberID string) ([]Match, error) {
	ctx, cancel := q.bound(ctx)
	defer cancel()

	var rows []matchRow
	err := sqlx.SelectContext(ctx, q.ext, &rows, `
		SELECT m.id, m.code, m.name, m.weapon_class, m.creator_id, m.created_at, m.start_time, m.status,
			m.completed_at, m.is_open, m.has_handicap, m.max_series_count, m.allow_guests
		FROM matches m
		JOIN participants p ON p.match_id = m.id
		WHERE p.member_id = ? AND m.status = ?
		ORDER BY m.created_at DESC`, memberID, string(StatusActive))
	if err != nil {
		return nil, fmt.Errorf("failed to list matches for member: %w", err)
	}
	return toMatches(rows), nil
}

// ListStaleMatches returns active matches whose start (or creation when no
// start time was set) is before startedBefore.
func (q *queries) ListStaleMatches(ctx context.Context, startedBefore time.Time) ([]Match, error) {
	ctx, cancel := q.bound(ctx)
	defer cancel()

	var rows []matchRow
	err := sqlx.SelectContext(ctx, q.ext, &rows, `
		SELECT `+matchColumns+`
		FROM matches
		WHERE status = ? AND COALESCE(start_time, created_at) < ?
		ORDER BY id`, string(StatusActive), toMillis(startedBefore))
	if err != nil {
		return nil, fmt.Errorf("failed to list stale matches: %w", err)
	}
	return toMatches(rows), nil
}

func toMatches(rows []matchRow) []Match {
	matches := make([]Match, 0, len(rows))
	for _, r := range rows {
		matches = append(matches, *r.toMatch())
	}
	return matches
}

// --- participants ---

type participantRow struct {
	ID                int64           `db:"id"`
	MatchID           int64           `db:"match_id"`
	MemberID          sql.NullString  `db:"member_id"`
	GuestID           sql.NullString  `db:"guest_id"`
	DisplayName       string          `db:"display_name"`
	JoinedAt          int64           `db:"joined_at"`
	DisplayOrder      int             `db:"display_order"`
	HandicapPerSeries sql.NullFloat64 `db:"handicap_per_series"`
	IsProvisional     bool            `db:"is_provisional"`
}

const participantColumns = `id, match_id, member_id, guest_id, display_name, joined_at, display_order,
	handicap_per_series, is_provisional`

func (r participantRow) toParticipant() Participant {
	p := Participant{
		ID:            r.ID,
		MatchID:       r.MatchID,
		Key:           keyFromColumns(r.MemberID, r.GuestID),
		DisplayName:   r.DisplayName,
		JoinedAt:      fromMillis(r.JoinedAt),
		DisplayOrder:  r.DisplayOrder,
		IsProvisional: r.IsProvisional,
	}
	if r.HandicapPerSeries.Valid {
		h := r.HandicapPerSeries.Float64
		p.HandicapPerSeries = &h
	}
	return p
}

func (q *queries) InsertParticipant(ctx context.Context, p *Participant) (bool, error) {
	if !p.Key.Valid() {
		return false, ErrValidation
	}
	ctx, cancel := q.bound(ctx)
	defer cancel()

	memberID, guestID := p.Key.columns()
	var handicap sql.NullFloat64
	if p.HandicapPerSeries != nil {
		handicap = sql.NullFloat64{Float64: *p.HandicapPerSeries, Valid: true}
	}

	res, err := q.ext.ExecContext(ctx, `
		INSERT INTO participants (match_id, member_id, guest_id, display_name, joined_at, display_order,
			handicap_per_series, is_provisional)
		VALUES (?, ?, ?, ?, ?,
			(SELECT COALESCE(MAX(display_order), -1) + 1 FROM participants WHERE match_id = ?),
			?, ?)
		ON CONFLICT DO NOTHING`,
		p.MatchID, memberID, guestID, p.DisplayName, toMillis(p.JoinedAt), p.MatchID, handicap, p.IsProvisional,
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert participant: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read inserted participant count: %w", err)
	}

	stored, err := q.GetParticipant(ctx, p.MatchID, p.Key)
	if err != nil {
		return false, err
	}
	*p = *stored
	return n > 0, nil
}

func (q *queries) GetParticipant(ctx context.Context, matchID int64, key ParticipantKey) (*Participant, error) {
	ctx, cancel := q.bound(ctx)
	defer cancel()

	var row participantRow
	err := sqlx.GetContext(ctx, q.ext, &row,
		"SELECT "+participantColumns+" FROM participants WHERE match_id = ? AND "+keyClause(key), matchID, key.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrParticipantNotFound
		}
		return nil, fmt.Errorf("failed to get participant: %w", err)
	}
	p := row.toParticipant()
	return &p, nil
}

func (q *queries) ListParticipants(ctx context.Context, matchID int64) ([]Participant, error) {
	ctx, cancel := q.bound(ctx)
	defer cancel()

	var rows []participantRow
	err := sqlx.SelectContext(ctx, q.ext, &rows,
		"SELECT "+participantColumns+" FROM participants WHERE match_id = ? ORDER BY display_order, id", matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	participants := make([]Participant, 0, len(rows))
	for _, r := range rows {
		participants = append(participants, r.toParticipant())
	}
	return participants, nil
}

func (q *queries) DeleteParticipant(ctx context.Context, matchID int64, key ParticipantKey) error {
	ctx, cancel := q.bound(ctx)
	defer cancel()

	res, err := q.ext.ExecContext(ctx, "DELETE FROM participants WHERE match_id = ? AND "+keyClause(key), matchID, key.ID)
	if err != nil {
		return fmt.Errorf("failed to delete participant: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrParticipantNotFound
	}
	return nil
}

func (q *queries) DeleteParticipants(ctx context.Context, matchID int64) error {
	ctx, cancel := q.bound(ctx)
	defer cancel()

	if _, err := q.ext.ExecContext(ctx, "DELETE FROM participants WHERE match_id = ?", matchID); err != nil {
		return fmt.Errorf("failed to delete participants: %w", err)
	}
	return nil
}

// --- score records ---

type scoreRow struct {
	ID          int64          `db:"id"`
	MatchID     sql.NullInt64  `db:"match_id"`
	MemberID    sql.NullString `db:"member_id"`
	GuestID     sql.NullString `db:"guest_id"`
	WeaponClass string         `db:"weapon_class"`
	SeriesJSON  string         `db:"series_json"`
	TotalScore  int            `db:"total_score"`
	XCount      int            `db:"x_count"`
	CreatedAt   int64          `db:"created_at"`
	UpdatedAt   int64          `db:"updated_at"`
}

const scoreColumns = `id, match_id, member_id, guest_id, weapon_class, series_json, total_score, x_count,
	created_at, updated_at`

func (r scoreRow) toRecord() (ScoreRecord, error) {
	rec := ScoreRecord{
		ID:          r.ID,
		Key:         keyFromColumns(r.MemberID, r.GuestID),
		WeaponClass: WeaponClass(r.WeaponClass),
		TotalScore:  r.TotalScore,
		TotalXCount: r.XCount,
		CreatedAt:   fromMillis(r.CreatedAt),
		UpdatedAt:   fromMillis(r.UpdatedAt),
	}
	if r.MatchID.Valid {
		id := r.MatchID.Int64
		rec.MatchID = &id
	}
	if r.SeriesJSON != "" {
		if err := json.Unmarshal([]byte(r.SeriesJSON), &rec.Series); err != nil {
			log.Error("Failed to unmarshal series_json", "error", err, "scoreID", r.ID)
			return ScoreRecord{}, fmt.Errorf("failed to decode series of score record %d: %w", r.ID, err)
		}
	}
	return rec, nil
}

func (q *queries) GetScoreRecord(ctx context.Context, matchID int64, key ParticipantKey) (*ScoreRecord, error) {
	ctx, cancel := q.bound(ctx)
	defer cancel()

	var row scoreRow
	err := sqlx.GetContext(ctx, q.ext, &row,
		"SELECT "+scoreColumns+" FROM score_records WHERE match_id = ? AND "+keyClause(key), matchID, key.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get score record: %w", err)
	}
	rec, err := row.toRecord()
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (q *queries) ListScoreRecords(ctx context.Context, matchID int64) ([]ScoreRecord, error) {
	ctx, cancel := q.bound(ctx)
	defer cancel()

	var rows []scoreRow
	err := sqlx.SelectContext(ctx, q.ext, &rows,
		"SELECT "+scoreColumns+" FROM score_records WHERE match_id = ? ORDER BY id", matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to list score records: %w", err)
	}
	records := make([]ScoreRecord, 0, len(rows))
	for _, r := range rows {
		rec, err := r.toRecord()
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// SaveScoreRecord inserts r when it has no ID yet and updates it otherwise.
func (q *queries) SaveScoreRecord(ctx context.Context, r *ScoreRecord) error {
	ctx, cancel := q.bound(ctx)
	defer cancel()

	seriesJSON, err := json.Marshal(r.Series)
	if err != nil {
		return fmt.Errorf("failed to marshal series: %w", err)
	}

	if r.ID == 0 {
		memberID, guestID := r.Key.columns()
		row := q.ext.QueryRowxContext(ctx, `
			INSERT INTO score_records (match_id, member_id, guest_id, weapon_class, series_json, total_score,
				x_count, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			RETURNING id`,
			r.MatchID, memberID, guestID, string(r.WeaponClass), string(seriesJSON), r.TotalScore, r.TotalXCount,
			toMillis(r.CreatedAt), toMillis(r.UpdatedAt),
		)
		if err := row.Scan(&r.ID); err != nil {
			return fmt.Errorf("failed to insert score record: %w", err)
		}
		return nil
	}

	_, err = q.ext.ExecContext(ctx, `
		UPDATE score_records SET series_json = ?, total_score = ?, x_count = ?, updated_at = ?
		WHERE id = ?`,
		string(seriesJSON), r.TotalScore, r.TotalXCount, toMillis(r.UpdatedAt), r.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update score record: %w", err)
	}
	return nil
}

func (q *queries) DeleteScoreRecord(ctx context.Context, id int64) error {
	ctx, cancel := q.bound(ctx)
	defer cancel()

	if _, err := q.ext.ExecContext(ctx, "DELETE FROM score_records WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete score record: %w", err)
	}
	return nil
}

func (q *queries) DeleteScoresForParticipant(ctx context.Context, matchID int64, key ParticipantKey) error {
	ctx, cancel := q.bound(ctx)
	defer cancel()

	_, err := q.ext.ExecContext(ctx, "DELETE FROM score_records WHERE match_id = ? AND "+keyClause(key), matchID, key.ID)
	if err != nil {
		return fmt.Errorf("failed to delete participant scores: %w", err)
	}
	return nil
}

// DetachScores clears the match reference of every score record of the match
// so personal history survives the match's deletion.
func (q *queries) DetachScores(ctx context.Context, matchID int64) (int64, error) {
	ctx, cancel := q.bound(ctx)
	defer cancel()

	res, err := q.ext.ExecContext(ctx, "UPDATE score_records SET match_id = NULL WHERE match_id = ?", matchID)
	if err != nil {
		return 0, fmt.Errorf("failed to detach scores: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// --- join requests ---

type joinRequestRow struct {
	ID        string `db:"id"`
	MatchID   int64  `db:"match_id"`
	MemberID  string `db:"member_id"`
	Status    string `db:"status"`
	CreatedAt int64  `db:"created_at"`
	UpdatedAt int64  `db:"updated_at"`
}

const joinRequestColumns = "id, match_id, member_id, status, created_at, updated_at"

func (r joinRequestRow) toJoinRequest() JoinRequest {
	return JoinRequest{
		ID:        r.ID,
		MatchID:   r.MatchID,
		MemberID:  r.MemberID,
		Status:    JoinStatus(r.Status),
		CreatedAt: fromMillis(r.CreatedAt),
		UpdatedAt: fromMillis(r.UpdatedAt),
	}
}

func (q *queries) GetJoinRequest(ctx context.Context, id string) (*JoinRequest, error) {
	ctx, cancel := q.bound(ctx)
	defer cancel()

	var row joinRequestRow
	err := sqlx.GetContext(ctx, q.ext, &row, "SELECT "+joinRequestColumns+" FROM join_requests WHERE id = ?", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRequestNotFound
		}
		return nil, fmt.Errorf("failed to get join request: %w", err)
	}
	jr := row.toJoinRequest()
	return &jr, nil
}

func (q *queries) GetJoinRequestForMember(ctx context.Context, matchID int64, memberID string) (*JoinRequest, error) {
	ctx, cancel := q.bound(ctx)
	defer cancel()

	var row joinRequestRow
	err := sqlx.GetContext(ctx, q.ext, &row,
		"SELECT "+joinRequestColumns+" FROM join_requests WHERE match_id = ? AND member_id = ?", matchID, memberID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get join request: %w", err)
	}
	jr := row.toJoinRequest()
	return &jr, nil
}

func (q *queries) ListJoinRequests(ctx context.Context, matchID int64, status JoinStatus) ([]JoinRequest, error) {
	ctx, cancel := q.bound(ctx)
	defer cancel()

	var rows []joinRequestRow
	err := sqlx.SelectContext(ctx, q.ext, &rows,
		"SELECT "+joinRequestColumns+" FROM join_requests WHERE match_id = ? AND status = ? ORDER BY updated_at, id",
		matchID, string(status))
	if err != nil {
		return nil, fmt.Errorf("failed to list join requests: %w", err)
	}
	requests := make([]JoinRequest, 0, len(rows))
	for _, r := range rows {
		requests = append(requests, r.toJoinRequest())
	}
	return requests, nil
}

// SaveJoinRequest upserts the single (match, member) row; the stored id wins on conflict.
func (q *queries) SaveJoinRequest(ctx context.Context, jr *JoinRequest) error {
	ctx, cancel := q.bound(ctx)
	defer cancel()

	_, err := q.ext.ExecContext(ctx, `
		INSERT INTO join_requests (id, match_id, member_id, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(match_id, member_id) DO UPDATE SET
			status = excluded.status,
			updated_at = excluded.updated_at`,
		jr.ID, jr.MatchID, jr.MemberID, string(jr.Status), toMillis(jr.CreatedAt), toMillis(jr.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to save join request: %w", err)
	}
	stored, err := q.GetJoinRequestForMember(ctx, jr.MatchID, jr.MemberID)
	if err != nil {
		return err
	}
	if stored != nil {
		*jr = *stored
	}
	return nil
}

func (q *queries) DeleteJoinRequests(ctx context.Context, matchID int64) error {
	ctx, cancel := q.bound(ctx)
	defer cancel()

	if _, err := q.ext.ExecContext(ctx, "DELETE FROM join_requests WHERE match_id = ?", matchID); err != nil {
		return fmt.Errorf("failed to delete join requests: %w", err)
	}
	return nil
}

// --- guest sessions ---

type guestRow struct {
	ID          string `db:"id"`
	MatchID     int64  `db:"match_id"`
	DisplayName string `db:"display_name"`
	ClaimToken  string `db:"claim_token"`
	CreatedAt   int64  `db:"created_at"`
}

func (q *queries) InsertGuestSession(ctx context.Context, g *GuestSession) error {
	ctx, cancel := q.bound(ctx)
	defer cancel()

	_, err := q.ext.ExecContext(ctx, `
		INSERT INTO guest_sessions (id, match_id, display_name, claim_token, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		g.ID, g.MatchID, g.DisplayName, g.ClaimToken, toMillis(g.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert guest session: %w", err)
	}
	return nil
}

func (q *queries) GetGuestSession(ctx context.Context, matchID int64, claimToken string) (*GuestSession, error) {
	ctx, cancel := q.bound(ctx)
	defer cancel()

	var row guestRow
	err := sqlx.GetContext(ctx, q.ext, &row, `
		SELECT id, match_id, display_name, claim_token, created_at
		FROM guest_sessions WHERE match_id = ? AND claim_token = ?`, matchID, claimToken)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGuestNotFound
		}
		return nil, fmt.Errorf("failed to get guest session: %w", err)
	}
	return &GuestSession{
		ID:          row.ID,
		MatchID:     row.MatchID,
		DisplayName: row.DisplayName,
		ClaimToken:  row.ClaimToken,
		CreatedAt:   fromMillis(row.CreatedAt),
	}, nil
}

func (q *queries) DeleteGuestSessions(ctx context.Context, matchID int64) error {
	ctx, cancel := q.bound(ctx)
	defer cancel()

	if _, err := q.ext.ExecContext(ctx, "DELETE FROM guest_sessions WHERE match_id = ?", matchID); err != nil {
		return fmt.Errorf("failed to delete guest sessions: %w", err)
	}
	return nil
}
