package catalog

import (
	"strings"
	"unicode/utf8"
)

const (
	// MaxSearchLength 搜索关键词最大长度
	MaxSearchLength = 200
	// MaxFieldLength 分类、场合等短字段最大长度
	MaxFieldLength = 50
)

// SanitizeString 去除尖括号、首尾空白，并按 rune 截断到 maxLen
func SanitizeString(s string, maxLen int) string {
	s = strings.Map(func(r rune) rune {
		if r == '<' || r == '>' {
			return -1
		}
		return r
	}, s)
	s = strings.TrimSpace(s)

	if maxLen > 0 && utf8.RuneCountInString(s) > maxLen {
		s = strings.TrimSpace(string([]rune(s)[:maxLen]))
	}
	return s
}
