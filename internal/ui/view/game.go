package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/palemoky/kaat-color/internal/client"
	"github.com/palemoky/kaat-color/internal/game/card"
	"github.com/palemoky/kaat-color/internal/protocol"
	"github.com/palemoky/kaat-color/internal/protocol/convert"
	"github.com/palemoky/kaat-color/internal/ui/common"
)

// GameData 牌桌渲染所需数据
type GameData struct {
	Width       int
	Height      int
	State       *client.GameState
	Cursor      int // 手牌光标
	ShowCounter bool
	ShowHelp    bool
	Notice      string
}

// GameView renders the table for the playing and round-end phases.
func GameView(d GameData) string {
	if d.ShowHelp {
		return place(d.Width, d.Height, RenderGameRules())
	}

	gs := d.State
	snap := gs.Snapshot
	if snap == nil {
		return center(d.Width, "等待牌局数据...")
	}

	var sections []string

	top := renderStatus(gs)
	if d.ShowCounter {
		top = lipgloss.JoinHorizontal(lipgloss.Top, top, " ", renderCardCounter(gs))
	}
	sections = append(sections, top)
	sections = append(sections, lipgloss.JoinHorizontal(lipgloss.Top, renderTable(gs), " ", renderScoreboard(snap.Teams)))

	if snap.Phase == "round_end" && gs.LastResult != nil {
		sections = append(sections, renderRoundResult(gs, gs.LastResult))
	}
	sections = append(sections, renderHand(gs, d.Cursor))
	sections = append(sections, renderPrompt(gs, d.Notice))
	if events := renderEvents(gs.Events); events != "" {
		sections = append(sections, events)
	}

	for i, s := range sections {
		sections[i] = center(d.Width, s)
	}
	return place(d.Width, d.Height, lipgloss.JoinVertical(lipgloss.Left, sections...))
}

// renderStatus 局数、主牌和积墩状态
func renderStatus(gs *client.GameState) string {
	snap := gs.Snapshot

	trump := "主牌: 未定"
	if suit := gs.TrumpSuit(); suit.Valid() {
		trump = fmt.Sprintf("主牌: %s %s  定主方: %s", common.TrumpIcon, suitLabel(suit),
			common.TeamLabel(snap.TrumpMakingTeam, gs.TeamName(snap.TrumpMakingTeam)))
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "第 %d 局  第 %d/13 墩\n%s\n", gs.RoundNumber, min(snap.TrickNumber+1, 13), trump)
	fmt.Fprintf(&sb, "待收: 叠墩 %d  新墩 %d", snap.StackedTricks, snap.FreshTricks)
	if snap.ConsecutiveCount > 0 && snap.ConsecutiveSeat >= 0 {
		fmt.Fprintf(&sb, "  连胜: %s ×%d", gs.SeatName(snap.ConsecutiveSeat), snap.ConsecutiveCount)
	}
	return common.BoxStyle.Padding(0, 1).Render(sb.String())
}

// renderTable 四个座位和当前墩
func renderTable(gs *client.GameState) string {
	snap := gs.Snapshot
	played := make(map[int]protocol.CardInfo, len(snap.CurrentTrick))
	for _, p := range snap.CurrentTrick {
		played[p.Seat] = p.Card
	}
	leader := gs.TrickLeader()

	var seats []string
	for seat := range 4 {
		p, _ := gs.PlayerAt(seat)

		name := common.TruncateName(gs.SeatName(seat), 12)
		if seat == snap.Seat {
			name += common.SelfMark
		}
		if snap.Phase == "playing" && seat == snap.CurrentSeat {
			name = common.HighlightStyle.Render(common.TurnIcon + " " + name)
		}

		var info strings.Builder
		info.WriteString(name)
		fmt.Fprintf(&info, "\n%s", common.TeamLabel(p.Team, gs.TeamName(p.Team)))
		if seat == snap.Dealer {
			info.WriteString(" " + common.DealerIcon)
		}
		if !p.Online && p.ID != "" {
			info.WriteString(" 📴")
		}
		fmt.Fprintf(&info, "\n🃏 %d  墩 %d\n", p.CardsCount, p.TricksWon)
		if c, ok := played[seat]; ok {
			info.WriteString(renderCard(convert.InfoToCard(c), false))
			if seat == leader {
				info.WriteString(" " + common.LeadIcon)
			}
		} else {
			info.WriteString("  ")
		}
		seats = append(seats, common.BoxStyle.Width(18).Render(info.String()))
	}

	table := lipgloss.JoinHorizontal(lipgloss.Top, seats...)
	if len(snap.LastTrick) > 0 {
		var last []string
		for _, p := range snap.LastTrick {
			last = append(last, fmt.Sprintf("%s %s", common.TruncateName(gs.SeatName(p.Seat), 8), renderCard(convert.InfoToCard(p.Card), false)))
		}
		winner := ""
		if snap.LastTrickWinner >= 0 {
			winner = "  → " + gs.SeatName(snap.LastTrickWinner)
		}
		table = lipgloss.JoinVertical(lipgloss.Left, table, "上一墩: "+strings.Join(last, "  ")+winner)
	}
	return table
}

// renderScoreboard 两队本局墩数与累计比分
func renderScoreboard(teams [2]protocol.TeamScoreInfo) string {
	var sb strings.Builder
	sb.WriteString("比分")
	for i, t := range teams {
		fmt.Fprintf(&sb, "\n%s\n  本局 %d 墩  胜局 %d\n  Coat %d  Talent %d",
			common.TeamLabel(i+1, common.TruncateName(t.Name, 12)), t.Tricks, t.RoundWins, t.Coats, t.Talents)
	}
	return common.BoxStyle.Padding(0, 1).Render(sb.String())
}

// renderRoundResult 本局结算
func renderRoundResult(gs *client.GameState, r *protocol.RoundResultPayload) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "🏆 %s 赢得本局  %d : %d", r.WinnerName, r.TeamTricks[0], r.TeamTricks[1])
	switch r.Bonus {
	case "coat":
		fmt.Fprintf(&sb, "\n🧥 Coat! %s 一墩未得", gs.TeamName(r.BonusTeam))
	case "talent":
		fmt.Fprintf(&sb, "\n🎯 Talent! 定主方 %s 一墩未得", gs.TeamName(r.BonusTeam))
	}
	if r.TrumpMakingTeam == 0 {
		sb.WriteString("\n本局未确定主牌")
	}
	fmt.Fprintf(&sb, "\n下一局由 %s 发牌", gs.SeatName(r.NextDealer))
	return common.SelectedBox.Padding(0, 2).Render(sb.String())
}

// renderHand 手牌，光标所在的牌加框，轮到自己时不可出的牌置灰
func renderHand(gs *client.GameState, cursor int) string {
	if len(gs.Hand) == 0 {
		return common.BoxStyle.Render("(无手牌)")
	}

	myTurn := gs.IsMyTurn()
	var cards []string
	for i, c := range gs.Hand {
		dim := myTurn && !gs.IsLegal(i)
		face := renderCard(c, dim)
		if myTurn && i == cursor {
			face = common.HighlightStyle.Render("▼") + "\n" + face
		} else {
			face = " \n" + face
		}
		cards = append(cards, lipgloss.NewStyle().Margin(0, 1).Render(face))
	}

	title := fmt.Sprintf("我的手牌 (%d张)", len(gs.Hand))
	return common.BoxStyle.Render(lipgloss.JoinVertical(lipgloss.Center, title, lipgloss.JoinHorizontal(lipgloss.Bottom, cards...)))
}

func renderPrompt(gs *client.GameState, notice string) string {
	snap := gs.Snapshot
	var line string
	switch {
	case snap.Phase == "round_end":
		line = "本局结束: N 开始下一局, G 重新开始 (比分清零), ESC 离开房间"
	case gs.IsMyTurn():
		line = common.HighlightStyle.Render("轮到你出牌! ←→ 选牌, 回车出牌")
	case snap.Phase == "playing":
		line = fmt.Sprintf("等待 %s 出牌...", gs.SeatName(snap.CurrentSeat))
	}

	var sb strings.Builder
	sb.WriteString(line)
	if notice != "" {
		sb.WriteString("\n" + common.ErrorStyle.Render(notice))
	}
	sb.WriteString("\n" + common.HintStyle.Render("C 记牌器, H 规则, ESC 离开"))
	return common.PromptStyle.Render(sb.String())
}

// renderCardCounter 每种花色尚未出现且不在自己手中的牌
func renderCardCounter(gs *client.GameState) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "记牌器 (已出 %d 张, 外面还有)", gs.CardCounter.Total())
	for _, suit := range card.Suits {
		out := gs.CardCounter.Outstanding(suit, gs.Hand)
		ranks := make([]string, len(out))
		for i, c := range out {
			ranks[i] = c.Rank.String()
		}
		label := suit.String()
		if suit == gs.TrumpSuit() {
			label += common.TrumpIcon
		}
		fmt.Fprintf(&sb, "\n%s 出%2d 余%2d: %s", label, gs.CardCounter.PlayedCount(suit), len(out), strings.Join(ranks, " "))
	}
	return common.BoxStyle.Padding(0, 1).Render(sb.String())
}

func renderEvents(events []string) string {
	if len(events) == 0 {
		return ""
	}
	return common.HintStyle.Render(strings.Join(events, "\n"))
}

func renderCard(c card.Card, dim bool) string {
	return common.CardStyle(c, dim).Render(fmt.Sprintf("%2s%s", c.Rank.String(), c.Suit.String()))
}

func suitLabel(s card.Suit) string {
	names := map[card.Suit]string{
		card.Spade:   "黑桃",
		card.Heart:   "红心",
		card.Club:    "梅花",
		card.Diamond: "方块",
	}
	return s.String() + " " + names[s]
}

func place(width, height int, s string) string {
	if width <= 0 || height <= 0 {
		return s
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, s)
}
