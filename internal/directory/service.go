package directory

import (
	"context"
	"database/sql"

	"SAMS-backend/internal/platform/apperr"
)

// Service: 他featureが参照するディレクトリ（在籍情報）サービス。
// session / attendance / od にはインタフェース経由で注入される。
type Service struct {
	db    *sql.DB
	store *Store
}

func NewService(db *sql.DB) *Service {
	return &Service{db: db, store: NewStore(db)}
}

func (s *Service) UserByID(ctx context.Context, id string) (*User, error) {
	u, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, apperr.NotFound("user not found")
	}
	return u, nil
}

// Student: role=student であることまで保証して返す
func (s *Service) Student(ctx context.Context, id string) (*User, error) {
	u, err := s.UserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u.Role != RoleStudent || u.Student == nil {
		return nil, apperr.Forbidden("not a student account")
	}
	return u, nil
}

func (s *Service) TeacherDepartment(ctx context.Context, teacherID string) (string, error) {
	u, err := s.UserByID(ctx, teacherID)
	if err != nil {
		return "", err
	}
	if u.Role != RoleTeacher || u.Teacher == nil {
		return "", apperr.Forbidden("not a teacher account")
	}
	return u.Teacher.Department, nil
}

// StudentRoster: 学科＋セクションの名簿（学生IDの順序付き集合）
func (s *Service) StudentRoster(ctx context.Context, department, section string) ([]string, error) {
	return s.store.StudentIDs(ctx, department, section)
}

// Students: 名簿の詳細版。ライブ名簿表示用
func (s *Service) Students(ctx context.Context, department, section string) ([]*User, error) {
	return s.store.ListStudents(ctx, department, section)
}
