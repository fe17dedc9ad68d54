package engine

import (
	"slices"

	"github.com/palemoky/kaat-color/internal/game/card"
	"github.com/palemoky/kaat-color/internal/game/rule"
)

// TrickOutcome 一墩结算的结果
type TrickOutcome struct {
	Winner int
	Banked int // 本墩结算时入账的墩数，0 表示未入账
}

// completeTrick 结算满 4 张的一墩并推进积墩状态机
func (e *Engine) completeTrick() TrickOutcome {
	r := &e.round
	winner := rule.TrickWinner(r.CurrentTrick, r.TrumpSuit)

	r.LastTrick = slices.Clone(r.CurrentTrick)
	r.CurrentTrick = nil
	r.LeadSuit = card.NoSuit
	r.TrickNumber++
	r.LastTrickWinner = winner
	r.CurrentPlayer = winner

	out := TrickOutcome{Winner: winner}
	if r.Accrual() == PreTrump {
		r.StackedTricks++
		return out
	}

	r.FreshTricks++
	if r.Consecutive.Seat != winner {
		r.Consecutive = Streak{Seat: winner, Count: 1}
		return out
	}

	r.Consecutive.Count++
	if r.Consecutive.Count >= bankingStreak {
		out.Banked = e.bank(winner)
		r.Consecutive = noStreak
	}
	return out
}

// bank 将所有未入账的墩记到 seat 名下
func (e *Engine) bank(seat int) int {
	n := e.round.Pending()
	e.players[seat].TricksWon += n
	e.round.StackedTricks = 0
	e.round.FreshTricks = 0
	return n
}

// flush 第 13 墩后剩余未入账的墩全部归最后一墩赢家
func (e *Engine) flush() int {
	if e.round.Pending() == 0 || e.round.LastTrickWinner < 0 {
		return 0
	}
	return e.bank(e.round.LastTrickWinner)
}
