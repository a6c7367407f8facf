package routine

import (
	"context"
	"database/sql"
	"time"

	"SAMS-backend/internal/directory"
)

// Directory: 学生の学科・学期を引くための依存
type Directory interface {
	Student(ctx context.Context, id string) (*directory.User, error)
}

// Service: 時間割のオラクル。セッション開始時の
// 「この教員・この科目は今コマ内か」を答えるのが主務。
type Service struct {
	db    *sql.DB
	store *Store
	dir   Directory
}

func NewService(db *sql.DB, dir Directory) *Service {
	return &Service{db: db, store: NewStore(db), dir: dir}
}

// ResolvePeriod: (教員, 科目, 現在時刻) に合致するコマ番号を返す。
// コマ外なら ok=false。判定は [start, end) の半開区間
func (s *Service) ResolvePeriod(ctx context.Context, teacherID, subject string, at time.Time) (int, bool, error) {
	day := at.Weekday().String()
	periods, err := s.store.PeriodsFor(ctx, teacherID, subject, day)
	if err != nil {
		return 0, false, err
	}
	p, ok := matchPeriod(periods, TimeOfDayOf(at))
	if !ok {
		return 0, false, nil
	}
	return p.PeriodNo, true, nil
}

// TeacherToday: 教員の当日分の時間割
func (s *Service) TeacherToday(ctx context.Context, teacherID string, now time.Time) ([]TeacherSlot, error) {
	return s.store.TeacherSlots(ctx, teacherID, now.Weekday().String())
}

// TeacherTimetable: 教員の週間時間割
func (s *Service) TeacherTimetable(ctx context.Context, teacherID string) ([]TeacherSlot, error) {
	return s.store.TeacherSlots(ctx, teacherID, "")
}

// StudentTimetable: 学生の所属（学科・学期）から引いた週間時間割
func (s *Service) StudentTimetable(ctx context.Context, studentID string) ([]StudentSlot, error) {
	u, err := s.dir.Student(ctx, studentID)
	if err != nil {
		return nil, err
	}
	return s.store.StudentSlots(ctx, u.Student.Department, u.Student.CurrentSemester)
}
