package od

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
	"time"

	"SAMS-backend/internal/platform/db"
)

type Store struct{ db db.DBTX }

func NewStore(db db.DBTX) *Store { return &Store{db: db} }

// Insert: 申請本体。対象コマは InsertPeriods で別テーブルに入れる
func (s *Store) Insert(ctx context.Context, tx *sql.Tx, o *ODRequest) (uint64, error) {
	const q = `
	INSERT INTO od_requests
	  (student_id, from_date, to_date, reason, od_type, status,
	   student_name, student_roll, dept, batch, created_at)
	VALUES (?, ?, ?, ?, ?, 'Pending', ?, ?, ?, ?, UTC_TIMESTAMP())`

	res, err := tx.ExecContext(ctx, q,
		o.StudentID, o.FromDate.Format(DateLayout), o.ToDate.Format(DateLayout),
		o.Reason, string(o.Type),
		o.StudentName, o.StudentRoll, o.Dept, o.Batch)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

func (s *Store) InsertPeriods(ctx context.Context, tx *sql.Tx, odID uint64, periods []int) error {
	const q = `INSERT INTO od_request_periods (od_id, period_no) VALUES (?, ?)`
	for _, p := range periods {
		if _, err := tx.ExecContext(ctx, q, odID, p); err != nil {
			return err
		}
	}
	return nil
}

const odSelect = `
	SELECT r.od_id, r.student_id, r.from_date, r.to_date, r.reason, r.od_type,
	       r.status, COALESCE(r.approved_by, ''),
	       r.student_name, r.student_roll, r.dept, r.batch, r.created_at,
	       COALESCE(GROUP_CONCAT(p.period_no ORDER BY p.period_no), '')
	FROM od_requests r
	LEFT JOIN od_request_periods p ON p.od_id = r.od_id`

func (s *Store) scanList(rows *sql.Rows) ([]ODRequest, error) {
	var out []ODRequest
	for rows.Next() {
		var (
			o       ODRequest
			periods string
		)
		if err := rows.Scan(&o.ID, &o.StudentID, &o.FromDate, &o.ToDate, &o.Reason,
			(*string)(&o.Type), (*string)(&o.Status), &o.ApprovedBy,
			&o.StudentName, &o.StudentRoll, &o.Dept, &o.Batch, &o.CreatedAt, &periods); err != nil {
			return nil, err
		}
		o.Periods = parsePeriodList(periods)
		out = append(out, o)
	}
	return out, rows.Err()
}

// PendingByDept: Advisor向けの未処理一覧
func (s *Store) PendingByDept(ctx context.Context, dept string) ([]ODRequest, error) {
	q := odSelect + `
	WHERE r.dept = ? AND r.status = 'Pending'
	GROUP BY r.od_id
	ORDER BY r.created_at DESC`

	rows, err := s.db.QueryContext(ctx, q, dept)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return s.scanList(rows)
}

func (s *Store) ByStudent(ctx context.Context, studentID string) ([]ODRequest, error) {
	q := odSelect + `
	WHERE r.student_id = ?
	GROUP BY r.od_id
	ORDER BY r.created_at DESC`

	rows, err := s.db.QueryContext(ctx, q, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return s.scanList(rows)
}

// UpdateStatus: 承認/却下。affected=0 なら対象なし
func (s *Store) UpdateStatus(ctx context.Context, id uint64, status Status, approvedBy string) (int64, error) {
	const q = `UPDATE od_requests SET status = ?, approved_by = ? WHERE od_id = ?`
	res, err := s.db.ExecContext(ctx, q, string(status), approvedBy, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Covered: 承認済みODがこの (学生, 日付, コマ) を覆っているか。
// FullDay は日付一致のみ、Period はコマ一致まで要求する
func (s *Store) Covered(ctx context.Context, studentID string, date time.Time, periodNo int) (bool, error) {
	const q = `
	SELECT 1 FROM od_requests r
	WHERE r.student_id = ? AND r.status = 'Approved'
	  AND r.from_date <= ? AND r.to_date >= ?
	  AND (r.od_type = 'FullDay'
	       OR EXISTS (SELECT 1 FROM od_request_periods p
	                  WHERE p.od_id = r.od_id AND p.period_no = ?))
	LIMIT 1`

	d := date.UTC().Format(DateLayout)
	var one int
	err := s.db.QueryRowContext(ctx, q, studentID, d, d, periodNo).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func parsePeriodList(s string) []int {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		if n, err := strconv.Atoi(p); err == nil {
			out = append(out, n)
		}
	}
	return out
}
