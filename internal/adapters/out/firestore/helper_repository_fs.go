// internal/adapters/out/firestore/helper_repository_fs.go
package firestore

import (
	"fmt"
	"strings"
	"time"

	common "modaorganica/internal/domain/common"
)

// ========================
// Decode helpers (Firestore type wobble absorption)
// ========================

func asString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

func asInt(v any) int {
	switch t := v.(type) {
	case int:
		return t
	case int64:
		return int(t)
	case float64:
		return int(t)
	case string:
		var n int
		_, _ = fmt.Sscanf(strings.TrimSpace(t), "%d", &n)
		return n
	default:
		// 揺れがあっても落とさず 0 に寄せる（domain が弾く）
		return 0
	}
}

func asBool(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return strings.EqualFold(strings.TrimSpace(t), "true")
	default:
		return false
	}
}

// asTime returns (time, ok)
func asTime(v any) (time.Time, bool) {
	if t, ok := v.(time.Time); ok {
		return t.UTC(), true
	}
	return time.Time{}, false
}

// asMoney accepts the stored string ("250.00") and older numeric fields.
func asMoney(v any) common.Money {
	switch t := v.(type) {
	case string:
		m, err := common.ParseMoney(t)
		if err != nil {
			return common.Zero
		}
		return m
	case int64:
		return common.MoneyFromCents(t * 100)
	case float64:
		return common.NewMoney(t)
	default:
		return common.Zero
	}
}

func asFloatPtr(v any) *float64 {
	switch t := v.(type) {
	case float64:
		return &t
	case int64:
		f := float64(t)
		return &f
	default:
		return nil
	}
}

func asMapAny(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

func asSlice(v any) []any {
	s, _ := v.([]any)
	return s
}
