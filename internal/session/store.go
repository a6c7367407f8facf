package session

import (
	"context"
	"database/sql"
	"time"

	"SAMS-backend/internal/platform/db"
)

type Store struct{ db *sql.DB }

func NewStore(conn *sql.DB) *Store { return &Store{db: conn} }

const sessionCols = `session_id, teacher_id, subject, COALESCE(section, ''), period_no,
	       COALESCE(bssid, ''), COALESCE(ssid, ''), otp, qr_token, is_active, started_at`

func scanSession(row *sql.Row) (*Session, error) {
	var s Session
	err := row.Scan(&s.ID, &s.TeacherID, &s.Subject, &s.Section, &s.PeriodNo,
		&s.BSSID, &s.SSID, &s.OTP, &s.QRToken, &s.IsActive, &s.StartedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// GetByID: 見つからなければ nil, nil
func (s *Store) GetByID(ctx context.Context, id string) (*Session, error) {
	const q = `SELECT ` + sessionCols + ` FROM sessions WHERE session_id = ?`
	return scanSession(s.db.QueryRowContext(ctx, q, id))
}

func (s *Store) ActiveByTeacher(ctx context.Context, teacherID string) (*Session, error) {
	const q = `SELECT ` + sessionCols + ` FROM sessions WHERE teacher_id = ? AND is_active = 1`
	return scanSession(s.db.QueryRowContext(ctx, q, teacherID))
}

func (s *Store) Insert(ctx context.Context, sess *Session) error {
	const q = `
	INSERT INTO sessions
	  (session_id, teacher_id, subject, section, period_no, bssid, ssid, otp, qr_token, is_active, started_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 1, ?)`
	_, err := s.db.ExecContext(ctx, q,
		sess.ID, sess.TeacherID, sess.Subject, nullIfEmpty(sess.Section), sess.PeriodNo,
		nullIfEmpty(sess.BSSID), nullIfEmpty(sess.SSID), sess.OTP, sess.QRToken, sess.StartedAt.UTC())
	return err
}

func (s *Store) UpdateQRToken(ctx context.Context, id, token string) (int64, error) {
	const q = `UPDATE sessions SET qr_token = ? WHERE session_id = ? AND is_active = 1`
	res, err := s.db.ExecContext(ctx, q, token, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// lockSession: 精算処理の間、セッション行を占有する。
// End同士・EndとStartの競合はこの行ロックで直列化される
func (s *Store) lockSession(ctx context.Context, tx *sql.Tx, id string) (*Session, error) {
	const q = `SELECT ` + sessionCols + ` FROM sessions WHERE session_id = ? FOR UPDATE`
	return scanSession(tx.QueryRowContext(ctx, q, id))
}

// PresentStudentIDs: このセッションで既にレコードを持つ学生ID
func (s *Store) PresentStudentIDs(ctx context.Context, q db.DBTX, sessionID string) ([]string, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT student_id FROM attendance_records WHERE session_id = ?`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// insertFinalRecord: 精算で作る確定レコード。
// (session, student) のUNIQUEに当たったら黙ってスキップする（再実行可能にするため）
func (s *Store) insertFinalRecord(ctx context.Context, tx *sql.Tx, sessionID, studentID, status, method string) error {
	const q = `
	INSERT INTO attendance_records (session_id, student_id, status, method, verified, marked_at)
	VALUES (?, ?, ?, ?, 1, UTC_TIMESTAMP())
	ON DUPLICATE KEY UPDATE attendance_id = attendance_id`
	_, err := tx.ExecContext(ctx, q, sessionID, studentID, status, method)
	return err
}

func (s *Store) countByStatus(ctx context.Context, tx *sql.Tx, sessionID, status string) (int, error) {
	const q = `SELECT COUNT(*) FROM attendance_records WHERE session_id = ? AND status = ?`
	var n int
	if err := tx.QueryRowContext(ctx, q, sessionID, status).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (s *Store) insertArchive(ctx context.Context, tx *sql.Tx, a *Archive) error {
	const q = `
	INSERT INTO class_histories
	  (session_id, teacher_id, subject, section, period_no, otp, qr_token, bssid, ssid,
	   started_at, ended_at, present_count, absent_count)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := tx.ExecContext(ctx, q,
		a.SessionID, a.TeacherID, a.Subject, nullIfEmpty(a.Section), a.PeriodNo,
		a.OTP, a.QRToken, nullIfEmpty(a.BSSID), nullIfEmpty(a.SSID),
		a.StartedAt.UTC(), a.EndedAt.UTC(), a.PresentCount, a.AbsentCount)
	return err
}

func (s *Store) deleteSession(ctx context.Context, tx *sql.Tx, id string) (int64, error) {
	res, err := tx.ExecContext(ctx, `DELETE FROM sessions WHERE session_id = ?`, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const archiveCols = `session_id, teacher_id, subject, COALESCE(section, ''), period_no,
	       otp, qr_token, COALESCE(bssid, ''), COALESCE(ssid, ''),
	       started_at, ended_at, present_count, absent_count`

func scanArchives(rows *sql.Rows) ([]Archive, error) {
	var out []Archive
	for rows.Next() {
		var a Archive
		if err := rows.Scan(&a.SessionID, &a.TeacherID, &a.Subject, &a.Section, &a.PeriodNo,
			&a.OTP, &a.QRToken, &a.BSSID, &a.SSID,
			&a.StartedAt, &a.EndedAt, &a.PresentCount, &a.AbsentCount); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// RecentArchives: 教員の直近のアーカイブ（レポート一覧用）
func (s *Store) RecentArchives(ctx context.Context, teacherID string, limit int) ([]Archive, error) {
	const q = `SELECT ` + archiveCols + ` FROM class_histories
	WHERE teacher_id = ? ORDER BY ended_at DESC LIMIT ?`
	rows, err := s.db.QueryContext(ctx, q, teacherID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanArchives(rows)
}

// ArchivesOnDate: 指定日のアーカイブ（開始時刻で判定）
func (s *Store) ArchivesOnDate(ctx context.Context, teacherID string, day time.Time) ([]Archive, error) {
	const q = `SELECT ` + archiveCols + ` FROM class_histories
	WHERE teacher_id = ? AND started_at >= ? AND started_at < ?
	ORDER BY started_at ASC`
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	rows, err := s.db.QueryContext(ctx, q, teacherID, start, start.Add(24*time.Hour))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanArchives(rows)
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
