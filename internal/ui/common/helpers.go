package common

import "fmt"

// TruncateName truncates a player name to the specified maximum length.
func TruncateName(name string, maxLen int) string {
	runes := []rune(name)
	if len(runes) > maxLen {
		return string(runes[:maxLen-1]) + "…"
	}
	return name
}

// TeamLabel 队伍编号和队名，如 "①Red"
func TeamLabel(team int, name string) string {
	switch team {
	case 1:
		return "①" + name
	case 2:
		return "②" + name
	default:
		return name
	}
}

// Percent 格式化百分比
func Percent(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}
