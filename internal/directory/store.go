package directory

import (
	"context"
	"database/sql"

	"SAMS-backend/internal/platform/db"
)

type Store struct{ db db.DBTX }

func NewStore(db db.DBTX) *Store { return &Store{db: db} }

type userRow struct {
	UserID          string
	Name            string
	Email           string
	Role            string
	RollNumber      sql.NullString
	DeviceID        sql.NullString
	Department      sql.NullString
	Section         sql.NullString
	CurrentSemester sql.NullInt64
	Batch           sql.NullString
	IsAdvisor       bool
	AdvisorDept     sql.NullString
	AdvisorBatch    sql.NullString
}

func (r userRow) toModel() *User {
	u := &User{
		ID:    r.UserID,
		Name:  r.Name,
		Email: r.Email,
		Role:  Role(r.Role),
	}
	switch u.Role {
	case RoleStudent:
		u.Student = &StudentProfile{
			RollNumber:      r.RollNumber.String,
			Department:      r.Department.String,
			Section:         r.Section.String,
			CurrentSemester: int(r.CurrentSemester.Int64),
			Batch:           r.Batch.String,
			DeviceID:        r.DeviceID.String,
		}
	case RoleTeacher:
		u.Teacher = &TeacherProfile{
			Department:   r.Department.String,
			IsAdvisor:    r.IsAdvisor,
			AdvisorDept:  r.AdvisorDept.String,
			AdvisorBatch: r.AdvisorBatch.String,
		}
	}
	return u
}

const userCols = `user_id, name, email, role, roll_number, device_id, department, section, current_semester, batch, is_advisor, advisor_dept, advisor_batch`

// GetByID: 見つからなければ nil, nil
func (s *Store) GetByID(ctx context.Context, id string) (*User, error) {
	q := `SELECT ` + userCols + ` FROM users WHERE user_id = ?`
	row := s.db.QueryRowContext(ctx, q, id)

	var r userRow
	err := row.Scan(&r.UserID, &r.Name, &r.Email, &r.Role, &r.RollNumber, &r.DeviceID,
		&r.Department, &r.Section, &r.CurrentSemester, &r.Batch,
		&r.IsAdvisor, &r.AdvisorDept, &r.AdvisorBatch)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return r.toModel(), nil
}

// StudentIDs: 学科＋セクションの在籍学生ID一覧（出席番号順）。
// sectionはセクションを持たないセッションのために空を許す。
func (s *Store) StudentIDs(ctx context.Context, department, section string) ([]string, error) {
	q := `
	SELECT user_id FROM users
	WHERE role = 'student' AND department = ?`
	args := []any{department}
	if section != "" {
		q += ` AND section = ?`
		args = append(args, section)
	}
	q += ` ORDER BY roll_number ASC, user_id ASC`

	rows, err := s.db.QueryContext(ctx, q, args...)
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

// ListStudents: 名簿の詳細版（名前・出席番号付き）
func (s *Store) ListStudents(ctx context.Context, department, section string) ([]*User, error) {
	q := `SELECT ` + userCols + ` FROM users
	WHERE role = 'student' AND department = ?`
	args := []any{department}
	if section != "" {
		q += ` AND section = ?`
		args = append(args, section)
	}
	q += ` ORDER BY roll_number ASC, user_id ASC`

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*User
	for rows.Next() {
		var r userRow
		if err := rows.Scan(&r.UserID, &r.Name, &r.Email, &r.Role, &r.RollNumber, &r.DeviceID,
			&r.Department, &r.Section, &r.CurrentSemester, &r.Batch,
			&r.IsAdvisor, &r.AdvisorDept, &r.AdvisorBatch); err != nil {
			return nil, err
		}
		out = append(out, r.toModel())
	}
	return out, rows.Err()
}
