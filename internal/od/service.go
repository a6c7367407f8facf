package od

import (
	"context"
	"database/sql"
	"time"

	"SAMS-backend/internal/directory"
	"SAMS-backend/internal/platform/apperr"
	"SAMS-backend/internal/platform/db"
)

type Directory interface {
	Student(ctx context.Context, id string) (*directory.User, error)
	UserByID(ctx context.Context, id string) (*directory.User, error)
}

type Service struct {
	db    *sql.DB
	store *Store
	dir   Directory
}

func NewService(conn *sql.DB, dir Directory) *Service {
	return &Service{db: conn, store: NewStore(conn), dir: dir}
}

// Apply: 学生によるOD申請。Period型はコマ指定必須
func (s *Service) Apply(ctx context.Context, studentID string, in ApplyRequest) (ODResponse, error) {
	from, err := time.ParseInLocation(DateLayout, in.FromDate, time.UTC)
	if err != nil {
		return ODResponse{}, apperr.Invalid("fromDate must be YYYY-MM-DD")
	}
	to, err := time.ParseInLocation(DateLayout, in.ToDate, time.UTC)
	if err != nil {
		return ODResponse{}, apperr.Invalid("toDate must be YYYY-MM-DD")
	}
	if to.Before(from) {
		return ODResponse{}, apperr.Invalid("toDate must be >= fromDate")
	}

	odType := Type(in.ODType)
	if odType == "" {
		odType = TypeFullDay
	}
	switch odType {
	case TypeFullDay:
		// コマ指定は無視する
		in.Periods = nil
	case TypePeriod:
		if len(in.Periods) == 0 {
			return ODResponse{}, apperr.Invalid("periods are required for odType=Period")
		}
		for _, p := range in.Periods {
			if p < 1 || p > 6 {
				return ODResponse{}, apperr.Invalid("period numbers must be between 1 and 6")
			}
		}
	default:
		return ODResponse{}, apperr.Invalid("odType must be FullDay or Period")
	}

	u, err := s.dir.Student(ctx, studentID)
	if err != nil {
		return ODResponse{}, err
	}

	o := &ODRequest{
		StudentID:   studentID,
		FromDate:    from,
		ToDate:      to,
		Reason:      in.Reason,
		Type:        odType,
		Periods:     in.Periods,
		Status:      StatusPending,
		StudentName: u.Name,
		StudentRoll: u.Student.RollNumber,
		Dept:        u.Student.Department,
		Batch:       u.Student.Batch,
		CreatedAt:   time.Now().UTC(),
	}

	// 本体とコマは同一Txで入れる
	err = db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx *sql.Tx) error {
		id, err := s.store.Insert(ctx, tx, o)
		if err != nil {
			return err
		}
		o.ID = id
		return s.store.InsertPeriods(ctx, tx, id, o.Periods)
	})
	if err != nil {
		return ODResponse{}, err
	}
	return o.toDTO(), nil
}

// PendingForAdvisor: Advisor担当学科の未処理申請
func (s *Service) PendingForAdvisor(ctx context.Context, requesterID string) ([]ODResponse, error) {
	adv, err := s.requireAdvisor(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	list, err := s.store.PendingByDept(ctx, adv.Teacher.AdvisorDept)
	if err != nil {
		return nil, err
	}
	return toDTOs(list), nil
}

// UpdateStatus: 承認/却下。申請者本人ではなくAdvisorだけが遷移できる
func (s *Service) UpdateStatus(ctx context.Context, requesterID string, odID uint64, in UpdateStatusRequest) error {
	if _, err := s.requireAdvisor(ctx, requesterID); err != nil {
		return err
	}
	status := Status(in.Status)
	if status != StatusApproved && status != StatusRejected {
		return apperr.Invalid("status must be Approved or Rejected")
	}
	n, err := s.store.UpdateStatus(ctx, odID, status, requesterID)
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.NotFound("od request not found")
	}
	return nil
}

func (s *Service) MyRequests(ctx context.Context, studentID string) ([]ODResponse, error) {
	list, err := s.store.ByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	return toDTOs(list), nil
}

// Covered: 精算側から参照される読み取り専用の照会
func (s *Service) Covered(ctx context.Context, studentID string, date time.Time, periodNo int) (bool, error) {
	return s.store.Covered(ctx, studentID, date, periodNo)
}

func (s *Service) requireAdvisor(ctx context.Context, id string) (*directory.User, error) {
	u, err := s.dir.UserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u.Role != directory.RoleTeacher || u.Teacher == nil || !u.Teacher.IsAdvisor {
		return nil, apperr.Forbidden("not an advisor")
	}
	return u, nil
}

func toDTOs(list []ODRequest) []ODResponse {
	out := make([]ODResponse, 0, len(list))
	for _, o := range list {
		out = append(out, o.toDTO())
	}
	return out
}
