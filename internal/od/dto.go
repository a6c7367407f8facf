package od

import "time"

type ApplyRequest struct {
	FromDate string `json:"fromDate" binding:"required"` // YYYY-MM-DD
	ToDate   string `json:"toDate" binding:"required"`
	Reason   string `json:"reason" binding:"required"`
	ODType   string `json:"odType"`
	Periods  []int  `json:"periods,omitempty"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"` // Approved / Rejected
}

type ODResponse struct {
	ID          uint64    `json:"id"`
	StudentID   string    `json:"studentId"`
	FromDate    string    `json:"fromDate"`
	ToDate      string    `json:"toDate"`
	Reason      string    `json:"reason"`
	ODType      string    `json:"odType"`
	Periods     []int     `json:"periods,omitempty"`
	Status      string    `json:"status"`
	ApprovedBy  string    `json:"approvedBy,omitempty"`
	StudentName string    `json:"studentName"`
	StudentRoll string    `json:"studentRoll"`
	Dept        string    `json:"dept"`
	Batch       string    `json:"batch"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (o ODRequest) toDTO() ODResponse {
	return ODResponse{
		ID:          o.ID,
		StudentID:   o.StudentID,
		FromDate:    o.FromDate.Format(DateLayout),
		ToDate:      o.ToDate.Format(DateLayout),
		Reason:      o.Reason,
		ODType:      string(o.Type),
		Periods:     o.Periods,
		Status:      string(o.Status),
		ApprovedBy:  o.ApprovedBy,
		StudentName: o.StudentName,
		StudentRoll: o.StudentRoll,
		Dept:        o.Dept,
		Batch:       o.Batch,
		CreatedAt:   o.CreatedAt,
	}
}
