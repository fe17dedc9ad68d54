package engine

import (
	"slices"

	"github.com/palemoky/kaat-color/internal/game/card"
	"github.com/palemoky/kaat-color/internal/game/rule"
)

// PlayerView 快照中的玩家信息
type PlayerView struct {
	Seat      int
	Name      string
	Team      Team
	Hand      []card.Card // 被隐藏时为 nil
	HandCount int
	TricksWon int
}

// Snapshot 引擎状态的只读副本，与引擎不共享任何切片
type Snapshot struct {
	State      GameState
	Accrual    AccrualState
	Round      RoundState
	Players    [NumSeats]PlayerView
	Scores     Scoreboard
	TeamNames  [2]string
	LastResult *RoundResult
}

// Snapshot 返回当前状态的深拷贝
func (e *Engine) Snapshot() Snapshot {
	s := Snapshot{
		State:      e.state,
		Accrual:    e.round.Accrual(),
		Round:      e.round,
		Scores:     e.scores,
		TeamNames:  e.teamNames,
		LastResult: e.LastResult(),
	}
	s.Round.CurrentTrick = slices.Clone(e.round.CurrentTrick)
	s.Round.LastTrick = slices.Clone(e.round.LastTrick)

	for seat, p := range e.players {
		s.Players[seat] = PlayerView{
			Seat:      p.Seat,
			Name:      p.Name,
			Team:      p.Team,
			Hand:      slices.Clone(p.Hand),
			HandCount: len(p.Hand),
			TricksWon: p.TricksWon,
		}
	}
	return s
}

// ForSeat 返回只保留 seat 自己手牌的副本，用于向单个玩家广播
// seat 越界时隐藏所有手牌（旁观）。
func (s Snapshot) ForSeat(seat int) Snapshot {
	out := s
	for i := range out.Players {
		if i != seat {
			out.Players[i].Hand = nil
		}
	}
	return out
}

// TeamTricks 两队已入账的墩数
func (s Snapshot) TeamTricks() [2]int {
	var tricks [2]int
	for _, p := range s.Players {
		tricks[p.Team.Index()] += p.TricksWon
	}
	return tricks
}

// Legal 返回 seat 当前可出的牌下标（仅对有手牌的当前玩家有效）
func (s Snapshot) Legal(seat int) []int {
	if s.State != GameStatePlaying || seat < 0 || seat >= NumSeats || seat != s.Round.CurrentPlayer {
		return nil
	}
	return rule.LegalIndexes(s.Players[seat].Hand, s.Round.CurrentTrick)
}
