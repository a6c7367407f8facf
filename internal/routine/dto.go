package routine

// 教員向け時間割エントリ（当日分・全曜日共通）
type TeacherSlot struct {
	Subject   string `json:"subject"`
	Dept      string `json:"dept"`
	Batch     string `json:"batch"`
	Semester  int    `json:"semester"`
	Day       string `json:"day"`
	StartTime string `json:"startTime"` // "HH:MM"
	EndTime   string `json:"endTime"`
	PeriodNo  int    `json:"periodNo"`
}

// 学生向け時間割エントリ
type StudentSlot struct {
	Subject     string `json:"subject"`
	Day         string `json:"day"`
	StartTime   string `json:"startTime"`
	EndTime     string `json:"endTime"`
	PeriodNo    int    `json:"periodNo"`
	TeacherName string `json:"teacherName"`
}
