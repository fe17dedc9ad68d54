// Package common provides shared styles and utilities for the UI.
package common

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/palemoky/kaat-color/internal/game/card"
)

// Icon constants
const (
	TrumpIcon  = "👑"
	DealerIcon = "🎴"
	TurnIcon   = "▶"
	LeadIcon   = "⭐" // 本墩暂时领先
	SelfMark   = " (你)"
)

// Lipgloss Styles
var (
	DocStyle       = lipgloss.NewStyle().Margin(1, 2)
	RedStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#CD0000")).Background(lipgloss.Color("#FFFFFF")).Bold(true)
	BlackStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("#FFFFFF")).Bold(true)
	GrayStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Background(lipgloss.Color("#FFFFFF")).Bold(true)
	TitleStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("228")).Bold(true).Render
	BoxStyle       = lipgloss.NewStyle().Border(lipgloss.RoundedBorder())
	SelectedBox    = lipgloss.NewStyle().Border(lipgloss.ThickBorder()).BorderForeground(lipgloss.Color("220"))
	PromptStyle    = lipgloss.NewStyle().MarginTop(1)
	ErrorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	HintStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	HighlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("220")).Bold(true)
	SuccessStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	WarnStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
)

// CardStyle 按颜色选择牌面样式，dim 表示当前不可出
func CardStyle(c card.Card, dim bool) lipgloss.Style {
	switch {
	case dim:
		return GrayStyle
	case c.Color() == card.Red:
		return RedStyle
	default:
		return BlackStyle
	}
}
