package routine

import (
	"context"

	"SAMS-backend/internal/platform/db"
)

type Store struct{ db db.DBTX }

func NewStore(db db.DBTX) *Store { return &Store{db: db} }

// PeriodsFor: 指定の教員・科目・曜日に定義されているコマ一覧。
// 時刻の大小判定はDBに任せずGo側のTimeOfDayで行うので、文字列で受ける。
func (s *Store) PeriodsFor(ctx context.Context, teacherID, subject, day string) ([]Period, error) {
	const q = `
	SELECT p.period_no, TIME_FORMAT(p.start_time, '%H:%i'), TIME_FORMAT(p.end_time, '%H:%i')
	FROM routine_periods p
	WHERE p.teacher_id = ? AND p.subject = ? AND p.day = ?
	ORDER BY p.start_time ASC`

	rows, err := s.db.QueryContext(ctx, q, teacherID, subject, day)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Period
	for rows.Next() {
		var (
			p          Period
			start, end string
		)
		if err := rows.Scan(&p.PeriodNo, &start, &end); err != nil {
			return nil, err
		}
		if p.Start, err = ParseTimeOfDay(start); err != nil {
			return nil, err
		}
		if p.End, err = ParseTimeOfDay(end); err != nil {
			return nil, err
		}
		p.Subject = subject
		p.TeacherID = teacherID
		out = append(out, p)
	}
	return out, rows.Err()
}

// TeacherSlots: 教員の時間割。day が空なら全曜日
func (s *Store) TeacherSlots(ctx context.Context, teacherID, day string) ([]TeacherSlot, error) {
	q := `
	SELECT p.subject, r.dept, r.batch, r.semester, p.day,
	       TIME_FORMAT(p.start_time, '%H:%i'), TIME_FORMAT(p.end_time, '%H:%i'), p.period_no
	FROM routine_periods p
	JOIN class_routines r ON r.routine_id = p.routine_id
	WHERE p.teacher_id = ?`
	args := []any{teacherID}
	if day != "" {
		q += ` AND p.day = ?`
		args = append(args, day)
	}
	q += ` ORDER BY FIELD(p.day,'Monday','Tuesday','Wednesday','Thursday','Friday','Saturday'), p.start_time ASC`

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TeacherSlot
	for rows.Next() {
		var t TeacherSlot
		if err := rows.Scan(&t.Subject, &t.Dept, &t.Batch, &t.Semester, &t.Day,
			&t.StartTime, &t.EndTime, &t.PeriodNo); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// StudentSlots: 学科＋学期の時間割（担当教員名付き）
func (s *Store) StudentSlots(ctx context.Context, dept string, semester int) ([]StudentSlot, error) {
	const q = `
	SELECT p.subject, p.day,
	       TIME_FORMAT(p.start_time, '%H:%i'), TIME_FORMAT(p.end_time, '%H:%i'),
	       p.period_no, COALESCE(u.name, '')
	FROM routine_periods p
	JOIN class_routines r ON r.routine_id = p.routine_id
	LEFT JOIN users u ON u.user_id = p.teacher_id
	WHERE r.dept = ? AND r.semester = ?
	ORDER BY FIELD(p.day,'Monday','Tuesday','Wednesday','Thursday','Friday','Saturday'), p.start_time ASC`

	rows, err := s.db.QueryContext(ctx, q, dept, semester)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []StudentSlot
	for rows.Next() {
		var t StudentSlot
		if err := rows.Scan(&t.Subject, &t.Day, &t.StartTime, &t.EndTime, &t.PeriodNo, &t.TeacherName); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
