package util

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// GenerateUUID 生成一个标准的 UUID (v4)
func GenerateUUID() string {
	return uuid.New().String()
}

// GenerateShortUUID 生成一个不带中划线的短 UUID
func GenerateShortUUID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}

// DateKey 返回 UTC 日期键 YYYY-MM-DD
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// MaskSecret 保留首尾各 3 位，长度不超过 6 时全部打码
func MaskSecret(s string) string {
	if s == "" {
		return ""
	}
	r := []rune(s)
	if len(r) <= 6 {
		return strings.Repeat("*", len(r))
	}
	return string(r[:3]) + "***" + string(r[len(r)-3:])
}

// ClampInt 把 n 限制在 [min, max]，n 为 0 时返回 def
func ClampInt(n, def, min, max int) int {
	if n == 0 {
		n = def
	}
	if n < min {
		return min
	}
	if n > max {
		return max
	}
	return n
}
