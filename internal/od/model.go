package od

import "time"

type Type string

const (
	TypeFullDay Type = "FullDay"
	TypePeriod  Type = "Period"
)

type Status string

const (
	StatusPending  Status = "Pending"
	StatusApproved Status = "Approved"
	StatusRejected Status = "Rejected"
)

// ODRequest: 事前承認欠席（OD）。承認済みのものだけが
// セッション精算時の「出席扱い」に数えられる。
type ODRequest struct {
	ID         uint64
	StudentID  string
	FromDate   time.Time // DATE
	ToDate     time.Time
	Reason     string
	Type       Type
	Periods    []int // Type=Period のときの対象コマ
	Status     Status
	ApprovedBy string

	// Advisor画面用の非正規化フィールド（原本に合わせる）
	StudentName string
	StudentRoll string
	Dept        string
	Batch       string

	CreatedAt time.Time
}

const DateLayout = "2006-01-02"
