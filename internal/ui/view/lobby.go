// Package view provides UI rendering functions.
package view

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/palemoky/kaat-color/internal/client"
	"github.com/palemoky/kaat-color/internal/protocol"
	"github.com/palemoky/kaat-color/internal/ui/common"
)

// MenuItems 大厅菜单
var MenuItems = []string{
	"1. 创建房间",
	"2. 加入房间",
	"3. 房间列表",
	"4. 排行榜",
	"5. 游戏规则",
}

// LobbyData 大厅渲染所需数据
type LobbyData struct {
	Width      int
	PlayerName string
	Selected   int
	Notice     string
	Input      string // 输入框渲染结果
}

// LobbyView renders the lobby view.
func LobbyView(d LobbyData) string {
	var sb strings.Builder

	sb.WriteString(center(d.Width, common.TitleStyle("🃏 Kaat Color")))
	sb.WriteString("\n\n")

	if d.PlayerName != "" {
		sb.WriteString(center(d.Width, fmt.Sprintf("欢迎, %s!", d.PlayerName)))
		sb.WriteString("\n")
	}
	if d.Notice != "" {
		sb.WriteString(center(d.Width, common.WarnStyle.Render(d.Notice)))
		sb.WriteString("\n")
	}
	sb.WriteString("\n")

	lines := []string{"请选择:", ""}
	for i, item := range MenuItems {
		prefix := "  "
		if i == d.Selected {
			prefix = common.TurnIcon + " "
		}
		lines = append(lines, prefix+item)
	}
	menu := common.BoxStyle.Padding(0, 2).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
	sb.WriteString(center(d.Width, menu))
	sb.WriteString("\n\n")
	sb.WriteString(center(d.Width, d.Input))
	sb.WriteString("\n")
	sb.WriteString(center(d.Width, common.HintStyle.Render("↑↓ 选择, 回车确认, 也可直接输入 6 位房间号, ESC 退出")))

	return sb.String()
}

// RoomListView renders joinable rooms.
func RoomListView(width int, rooms []protocol.RoomListItem, input string) string {
	var sb strings.Builder
	sb.WriteString(center(width, common.TitleStyle("🏠 房间列表")))
	sb.WriteString("\n\n")

	var body strings.Builder
	if len(rooms) == 0 {
		body.WriteString("暂无可加入的房间")
	}
	for i, r := range rooms {
		if i > 0 {
			body.WriteString("\n")
		}
		fmt.Fprintf(&body, "%d. 房间 %s  %d/%d", i+1, r.RoomCode, r.PlayerCount, r.MaxPlayers)
	}
	sb.WriteString(center(width, common.BoxStyle.Padding(0, 2).Render(body.String())))
	sb.WriteString("\n\n")
	sb.WriteString(center(width, input))
	sb.WriteString("\n")
	sb.WriteString(center(width, common.HintStyle.Render("输入序号或房间号加入, R 刷新, ESC 返回")))
	return sb.String()
}

// LeaderboardView renders the team leaderboard, daily 为 true 时是当天榜单.
func LeaderboardView(width int, entries []protocol.LeaderboardEntry, daily bool) string {
	title := "🏆 总排行榜"
	if daily {
		title = "🏆 今日排行榜"
	}
	var sb strings.Builder
	sb.WriteString(center(width, common.TitleStyle(title)))
	sb.WriteString("\n\n")

	var body strings.Builder
	fmt.Fprintf(&body, "%-4s %-16s %5s %5s %5s %7s", "#", "队伍", "胜局", "Coat", "Talent", "胜率")
	body.WriteString("\n" + strings.Repeat("─", 48))
	if len(entries) == 0 {
		body.WriteString("\n暂无数据")
	}
	for _, e := range entries {
		fmt.Fprintf(&body, "\n%-4d %-16s %5d %5d %5d %7s",
			e.Rank, common.TruncateName(e.TeamName, 16), e.RoundWins, e.Coats, e.Talents, common.Percent(e.WinRate))
	}
	sb.WriteString(center(width, common.BoxStyle.Padding(0, 1).Render(body.String())))
	sb.WriteString("\n\n")
	sb.WriteString(center(width, common.HintStyle.Render("D 切换今日/总榜, ESC 返回")))
	return sb.String()
}

// WaitingView renders the waiting room view.
func WaitingView(width int, gs *client.GameState, input, notice string) string {
	var sb strings.Builder

	sb.WriteString(center(width, common.TitleStyle(fmt.Sprintf("🏠 房间: %s", gs.RoomCode))))
	sb.WriteString("\n\n")

	var teams []string
	for team := 1; team <= 2; team++ {
		var list strings.Builder
		list.WriteString(common.HighlightStyle.Render(common.TeamLabel(team, gs.TeamName(team))))
		// 座位 0、2 为一队，1、3 为另一队
		for seat := team - 1; seat < 4; seat += 2 {
			list.WriteString("\n")
			p, ok := gs.PlayerAt(seat)
			switch {
			case !ok:
				fmt.Fprintf(&list, "  座位 %d: (空)", seat+1)
			default:
				me := ""
				if p.ID == gs.Self.ID {
					me = common.SelfMark
				}
				status := "🟢"
				if !p.Online {
					status = "⚪"
				}
				fmt.Fprintf(&list, "  座位 %d: %s %s%s", seat+1, status, common.TruncateName(p.Name, 16), me)
			}
		}
		teams = append(teams, common.BoxStyle.Width(32).Padding(0, 1).Render(list.String()))
	}
	sb.WriteString(center(width, lipgloss.JoinHorizontal(lipgloss.Top, teams...)))
	sb.WriteString("\n\n")
	sb.WriteString(center(width, fmt.Sprintf("等待玩家: %d/4", len(gs.Players))))
	sb.WriteString("\n")

	if gs.History != nil {
		sb.WriteString("\n")
		sb.WriteString(center(width, historyBox(gs.History)))
		sb.WriteString("\n")
	}

	if notice != "" {
		sb.WriteString(center(width, common.WarnStyle.Render(notice)))
		sb.WriteString("\n")
	}
	if input != "" {
		sb.WriteString(center(width, input))
		sb.WriteString("\n")
	}
	sb.WriteString(center(width, common.HintStyle.Render("S 开始游戏, T 修改队名, R 最近对局, ESC 离开房间")))
	return sb.String()
}

func center(width int, s string) string {
	if width <= 0 {
		return s
	}
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, s)
}

// historyBox 最近对局和两队总榜名次
func historyBox(h *protocol.HistoryResultPayload) string {
	var body strings.Builder
	body.WriteString(common.HighlightStyle.Render("📜 最近对局"))
	for i, name := range h.TeamNames {
		rank := "未上榜"
		if h.TeamRanks[i] > 0 {
			rank = fmt.Sprintf("第 %d 名", h.TeamRanks[i])
		}
		fmt.Fprintf(&body, "\n%s: %s", common.TeamLabel(i+1, name), rank)
	}
	if len(h.Rounds) == 0 {
		body.WriteString("\n暂无记录")
	}
	for _, r := range h.Rounds {
		winner := "-"
		if r.Winner == 1 || r.Winner == 2 {
			winner = common.TruncateName(r.TeamNames[r.Winner-1], 16)
		}
		fmt.Fprintf(&body, "\n%s  %d : %d  胜方 %s",
			time.Unix(r.PlayedAt, 0).Format("01-02 15:04"), r.TeamTricks[0], r.TeamTricks[1], winner)
		switch r.Bonus {
		case "coat":
			body.WriteString(" 🧥")
		case "talent":
			body.WriteString(" 🎯")
		}
	}
	return common.BoxStyle.Padding(0, 2).Render(body.String())
}
