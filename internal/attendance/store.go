package attendance

import (
	"context"
	"database/sql"
	"time"

	"SAMS-backend/internal/platform/db"
)

type Store struct{ db db.DBTX }

func NewStore(db db.DBTX) *Store { return &Store{db: db} }

// SessionInfo: ライブセッション＋担当教員の学科。見つからなければ nil, nil
func (s *Store) SessionInfo(ctx context.Context, sessionID string) (*SessionInfo, error) {
	const q = `
	SELECT s.session_id, s.teacher_id, COALESCE(u.department, ''), COALESCE(s.section, ''),
	       COALESCE(s.bssid, ''), s.otp, s.qr_token, s.is_active
	FROM sessions s
	JOIN users u ON u.user_id = s.teacher_id
	WHERE s.session_id = ?`

	var info SessionInfo
	err := s.db.QueryRowContext(ctx, q, sessionID).Scan(
		&info.ID, &info.TeacherID, &info.TeacherDept, &info.Section,
		&info.BSSID, &info.OTP, &info.QRToken, &info.IsActive)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &info, nil
}

// ArchivedInfo: アーカイブ側のセッション情報。見つからなければ nil, nil
func (s *Store) ArchivedInfo(ctx context.Context, sessionID string) (*ArchivedInfo, error) {
	const q = `
	SELECT h.session_id, h.teacher_id, COALESCE(u.department, ''), COALESCE(h.section, '')
	FROM class_histories h
	JOIN users u ON u.user_id = h.teacher_id
	WHERE h.session_id = ?`

	var info ArchivedInfo
	err := s.db.QueryRowContext(ctx, q, sessionID).Scan(
		&info.ID, &info.TeacherID, &info.TeacherDept, &info.Section)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &info, nil
}

// Exists: (session, student) のレコードが既にあるか
func (s *Store) Exists(ctx context.Context, sessionID, studentID string) (bool, error) {
	const q = `SELECT 1 FROM attendance_records WHERE session_id = ? AND student_id = ? LIMIT 1`
	var one int
	err := s.db.QueryRowContext(ctx, q, sessionID, studentID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Insert: チェックインによるレコード作成。
// 重複時のUNIQUE違反はそのまま返す（serviceでALREADY_MARKEDに訳す）
func (s *Store) Insert(ctx context.Context, rec *Record) (uint64, error) {
	const q = `
	INSERT INTO attendance_records (session_id, student_id, status, method, verified, device_id, marked_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)`

	deviceID := any(nil)
	if rec.DeviceID != "" {
		deviceID = rec.DeviceID
	}
	res, err := s.db.ExecContext(ctx, q,
		rec.SessionID, rec.StudentID, rec.Status, rec.Method, rec.Verified, deviceID, rec.MarkedAt.UTC())
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// BySession: セッションの全レコード（名簿マージ用）
func (s *Store) BySession(ctx context.Context, sessionID string) ([]Record, error) {
	const q = `
	SELECT attendance_id, session_id, student_id, status, method, verified,
	       COALESCE(device_id, ''), marked_at
	FROM attendance_records
	WHERE session_id = ?`

	rows, err := s.db.QueryContext(ctx, q, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var (
			r        Record
			markedAt time.Time
		)
		if err := rows.Scan(&r.ID, &r.SessionID, &r.StudentID, &r.Status, &r.Method,
			&r.Verified, &r.DeviceID, &markedAt); err != nil {
			return nil, err
		}
		r.MarkedAt = markedAt.UTC()
		out = append(out, r)
	}
	return out, rows.Err()
}
