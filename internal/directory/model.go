package directory

type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
)

// 学生にしか無い属性
type StudentProfile struct {
	RollNumber      string
	Department      string
	Section         string
	CurrentSemester int
	Batch           string
	// ログイン時にバインドされた端末ID。未バインドなら空
	DeviceID string
}

// 教員にしか無い属性
type TeacherProfile struct {
	Department   string
	IsAdvisor    bool
	AdvisorDept  string
	AdvisorBatch string
}

// User: roleに応じて Student / Teacher のどちらか一方だけが入る。
// nullableなカラムを平置きにせず、roleごとのプロファイルに分ける。
type User struct {
	ID      string
	Name    string
	Email   string
	Role    Role
	Student *StudentProfile
	Teacher *TeacherProfile
}
