// Package engine 实现 Kaat Color 的规则引擎：发牌、出牌校验、主牌发现、
// 连赢积墩、每局结算与庄家轮换。
//
// Engine 不是并发安全的，同一局游戏的调用需要由调用方串行化。
package engine

import (
	"fmt"
	"math/rand/v2"

	"github.com/palemoky/kaat-color/internal/apperrors"
	"github.com/palemoky/kaat-color/internal/game/card"
	"github.com/palemoky/kaat-color/internal/game/rule"
)

// Engine 一场游戏（多局）的全部规则状态
type Engine struct {
	players    [NumSeats]*Player
	teamNames  [2]string
	round      RoundState
	scores     Scoreboard
	state      GameState
	started    bool
	lastResult *RoundResult

	shuffler    card.Shuffler
	pickDealer  func() int
	lastOutcome *TrickOutcome
}

// Option 引擎选项
type Option func(*Engine)

// WithShuffler 指定洗牌随机源，测试中用于复现发牌
func WithShuffler(s card.Shuffler) Option {
	return func(e *Engine) {
		e.shuffler = s
	}
}

// WithDealerPicker 指定新游戏首局庄家的选择方式
func WithDealerPicker(pick func() int) Option {
	return func(e *Engine) {
		e.pickDealer = pick
	}
}

// New 创建引擎，需调用 StartNewGame 开始游戏
func New(opts ...Option) *Engine {
	e := &Engine{
		shuffler:   card.DefaultShuffler,
		pickDealer: func() int { return rand.IntN(NumSeats) },
		teamNames:  DefaultTeamNames,
	}
	for seat := range e.players {
		e.players[seat] = &Player{
			Seat: seat,
			Name: defaultPlayerName(seat),
			Team: TeamOf(seat),
		}
	}
	e.round = RoundState{
		TrumpSuit:       card.NoSuit,
		LeadSuit:        card.NoSuit,
		Consecutive:     noStreak,
		LastTrickWinner: -1,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// DefaultTeamNames 默认队名
var DefaultTeamNames = [2]string{"Team 1", "Team 2"}

func defaultPlayerName(seat int) string {
	return fmt.Sprintf("Player %d", seat+1)
}

// StartNewGame 重置比分、随机选庄并发第一局
func (e *Engine) StartNewGame(playerNames [NumSeats]string, teamNames [2]string) {
	e.SetNames(playerNames, teamNames)
	e.scores = Scoreboard{}
	e.started = true
	e.lastOutcome = nil

	dealer := e.pickDealer() % NumSeats
	if dealer < 0 {
		dealer += NumSeats
	}
	e.round.Dealer = dealer
	e.deal()
}

// StartNewRound 使用当前庄家重新洗牌发牌
func (e *Engine) StartNewRound() error {
	if !e.started {
		return apperrors.ErrGameNotStart
	}
	e.lastOutcome = nil
	e.deal()
	return nil
}

// SetNames 更新玩家名和队名，空字符串保持原值
func (e *Engine) SetNames(playerNames [NumSeats]string, teamNames [2]string) {
	for seat, name := range playerNames {
		if name != "" {
			e.players[seat].Name = name
		}
	}
	for i, name := range teamNames {
		if name != "" {
			e.teamNames[i] = name
		}
	}
}

// AttemptPlay 座位 seat 打出手牌中第 cardIndex 张
//
// 校验失败时返回错误且状态不变。
func (e *Engine) AttemptPlay(seat, cardIndex int) (Snapshot, error) {
	if err := e.validatePlay(seat, cardIndex); err != nil {
		return Snapshot{}, err
	}

	r := &e.round
	p := e.players[seat]
	c := p.Hand[cardIndex]
	p.Hand = card.RemoveAt(p.Hand, cardIndex)

	if len(r.CurrentTrick) == 0 {
		r.LeadSuit = c.Suit
	} else if rule.DiscoversTrump(c, r.LeadSuit, r.TrumpSuit) {
		r.TrumpSuit = c.Suit
		r.TrumpMakingTeam = p.Team
	}
	r.CurrentTrick = append(r.CurrentTrick, rule.Play{Card: c, Seat: seat})
	e.lastOutcome = nil

	if len(r.CurrentTrick) < NumSeats {
		r.CurrentPlayer = (seat + 1) % NumSeats
		return e.Snapshot(), nil
	}

	out := e.completeTrick()
	e.lastOutcome = &out
	if r.TrickNumber == TricksPerRound {
		out.Banked += e.flush()
		e.endRound()
	}
	return e.Snapshot(), nil
}

func (e *Engine) validatePlay(seat, cardIndex int) error {
	switch e.state {
	case GameStateWaiting:
		return apperrors.ErrGameNotStart
	case GameStateRoundEnd:
		return apperrors.ErrRoundNotActive
	}
	if seat != e.round.CurrentPlayer {
		return apperrors.ErrOutOfTurn
	}
	hand := e.players[seat].Hand
	if cardIndex < 0 || cardIndex >= len(hand) {
		return apperrors.ErrInvalidCardIndex
	}
	if !rule.IsLegal(hand, e.round.CurrentTrick, cardIndex) {
		return apperrors.ErrIllegalMove
	}
	return nil
}

// endRound 结算本局、轮换庄家
func (e *Engine) endRound() {
	tricks := TeamTricks(e.players)
	res := ScoreRound(&e.scores, tricks, e.round.TrumpMakingTeam)
	res.Dealer = e.round.Dealer
	res.NextDealer = NextDealer(e.round.Dealer, tricks[0], tricks[1])

	e.round.Dealer = res.NextDealer
	e.lastResult = &res
	e.state = GameStateRoundEnd
}

// LegalMoves 返回座位 seat 当前可出的牌在手牌中的下标，未轮到该座位时返回 nil
func (e *Engine) LegalMoves(seat int) []int {
	if e.state != GameStatePlaying || seat != e.round.CurrentPlayer {
		return nil
	}
	return rule.LegalIndexes(e.players[seat].Hand, e.round.CurrentTrick)
}

// AutoPlay 替当前玩家打出点数最大的可出牌
func (e *Engine) AutoPlay() (Snapshot, error) {
	if e.state != GameStatePlaying {
		return Snapshot{}, e.validatePlay(e.round.CurrentPlayer, 0)
	}
	seat := e.round.CurrentPlayer
	idx := rule.AutoPlayIndex(e.players[seat].Hand, e.round.CurrentTrick)
	return e.AttemptPlay(seat, idx)
}

// LastResult 返回最近一局的结算，本局未结束时为 nil
func (e *Engine) LastResult() *RoundResult {
	if e.lastResult == nil {
		return nil
	}
	res := *e.lastResult
	return &res
}

// LastTrick 返回最近一次出牌完成的墩的结果，出牌未完成一墩时为 nil
func (e *Engine) LastTrick() *TrickOutcome {
	if e.lastOutcome == nil {
		return nil
	}
	out := *e.lastOutcome
	return &out
}

// State 当前游戏状态
func (e *Engine) State() GameState {
	return e.state
}

// CurrentPlayer 当前应出牌的座位
func (e *Engine) CurrentPlayer() int {
	return e.round.CurrentPlayer
}
