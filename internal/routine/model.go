package routine

import (
	"fmt"
	"time"
)

// TimeOfDay: "HH:MM" の文字列比較をやめて数値で比較するための値型。
// ゼロ詰めが揃っていない時刻表記でも正しく大小が決まる。
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseTimeOfDay: "9:00" / "09:00" / "09:00:00" を受け付ける
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	var h, m, sec int
	if _, err := fmt.Sscanf(s, "%d:%d:%d", &h, &m, &sec); err != nil {
		if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
			return TimeOfDay{}, fmt.Errorf("invalid time of day %q", s)
		}
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return TimeOfDay{}, fmt.Errorf("invalid time of day %q", s)
	}
	return TimeOfDay{Hour: h, Minute: m}, nil
}

func TimeOfDayOf(t time.Time) TimeOfDay {
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}
}

func (t TimeOfDay) minutes() int { return t.Hour*60 + t.Minute }

func (t TimeOfDay) Before(u TimeOfDay) bool { return t.minutes() < u.minutes() }

func (t TimeOfDay) String() string { return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute) }

// Period: 時間割上の1コマ
type Period struct {
	PeriodNo  int
	Start     TimeOfDay
	End       TimeOfDay
	Subject   string
	TeacherID string
}

// Contains: [start, end) の半開区間でコマ内かどうかを判定する
func (p Period) Contains(at TimeOfDay) bool {
	return !at.Before(p.Start) && at.Before(p.End)
}

// matchPeriod: 今の時刻が収まるコマを返す
func matchPeriod(periods []Period, at TimeOfDay) (Period, bool) {
	for _, p := range periods {
		if p.Contains(at) {
			return p, true
		}
	}
	return Period{}, false
}
