package attendance

import (
	"fmt"
	"strings"

	"SAMS-backend/internal/platform/apperr"
)

// WildcardNetwork: 教員端末がネットワーク識別子を取れない環境
// （エミュレータ等）のための「全ネットワーク許可」番兵
const WildcardNetwork = "0.0.0.0"

// networkPrefix: "192.168.1.5" → "192.168.1"。
// ドット区切りでない識別子はそのまま全文比較に使う
func networkPrefix(id string) string {
	if !strings.Contains(id, ".") {
		return id
	}
	parts := strings.Split(id, ".")
	if len(parts) < 3 {
		return id
	}
	return strings.Join(parts[:3], ".")
}

// checkNetwork: 同一ローカルネットワークかをサブネットプレフィクスで近似判定する。
// リンク層の識別子はプラットフォーム間で安定しないため、厳密なMAC一致は要求しない。
// 不一致時のメッセージには双方のプレフィクスを入れて自己解決できるようにする
func checkNetwork(registered, claimed string) error {
	if registered == "" || registered == WildcardNetwork {
		return nil
	}
	roomPrefix := networkPrefix(registered)
	yourPrefix := networkPrefix(claimed)
	if roomPrefix != yourPrefix {
		return apperr.NetworkMismatch(fmt.Sprintf(
			"please connect to the same WiFi as the teacher (room: %s.x, you: %s.x)",
			roomPrefix, yourPrefix))
	}
	return nil
}
