package session

// finalRecord: 精算で新規に作る出席レコード
type finalRecord struct {
	StudentID string
	Status    string
	Method    string
}

// buildReconcilePlan: 名簿と現状の差分から、精算で書くべきレコードを決める。
//   - 既にレコードを持つ学生: 何もしない（ライブチェックイン済み）
//   - 承認済みODに覆われている学生: present / method=od
//   - それ以外: absent / method=manual
//
// present は計画時点の再読込を渡すこと。前回の部分失敗から再実行しても
// 既存分はここで除外され、残りはUNIQUEキーのスキップで吸収される。
func buildReconcilePlan(roster []string, present map[string]struct{}, covered map[string]struct{}) []finalRecord {
	var out []finalRecord
	for _, studentID := range roster {
		if _, ok := present[studentID]; ok {
			continue
		}
		if _, ok := covered[studentID]; ok {
			out = append(out, finalRecord{StudentID: studentID, Status: statusPresent, Method: methodOD})
		} else {
			out = append(out, finalRecord{StudentID: studentID, Status: statusAbsent, Method: methodManual})
		}
	}
	return out
}

func toSet(ids []string) map[string]struct{} {
	m := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		m[id] = struct{}{}
	}
	return m
}
