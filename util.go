package main

import (
	"strings"

	"github.com/samber/lo"
)

// splitList 逗号分隔的列表，去掉空白项
func splitList(s string) []string {
	parts := lo.Map(strings.Split(s, ","), func(p string, _ int) string { return strings.TrimSpace(p) })
	return lo.Compact(parts)
}
