package engine

import (
	"github.com/palemoky/kaat-color/internal/game/card"
	"github.com/palemoky/kaat-color/internal/game/rule"
)

const (
	NumSeats       = 4  // 座位数
	TricksPerRound = 13 // 每局墩数
	bankingStreak  = 2  // 连赢几墩后入账
)

// Team 队伍
type Team int

const (
	NoTeam Team = iota
	Team1       // 座位 0、2
	Team2       // 座位 1、3
)

// TeamOf 返回座位所属队伍
func TeamOf(seat int) Team {
	if seat%2 == 0 {
		return Team1
	}
	return Team2
}

// Opponent 返回对方队伍
func (t Team) Opponent() Team {
	switch t {
	case Team1:
		return Team2
	case Team2:
		return Team1
	}
	return NoTeam
}

// Index 返回队伍在数组中的下标
func (t Team) Index() int {
	return int(t) - 1
}

func (t Team) String() string {
	switch t {
	case Team1:
		return "team1"
	case Team2:
		return "team2"
	}
	return ""
}

// GameState 游戏状态
type GameState int

const (
	GameStateWaiting  GameState = iota // 尚未开始
	GameStatePlaying                   // 出牌中
	GameStateRoundEnd                  // 本局结束，等待开始新一局
)

func (s GameState) String() string {
	switch s {
	case GameStatePlaying:
		return "playing"
	case GameStateRoundEnd:
		return "round_end"
	}
	return "waiting"
}

// AccrualState 积墩状态：主牌确定前后
type AccrualState int

const (
	PreTrump AccrualState = iota
	PostTrump
)

func (s AccrualState) String() string {
	if s == PostTrump {
		return "post_trump"
	}
	return "pre_trump"
}

// Player 座位上的玩家
type Player struct {
	Seat      int
	Name      string
	Team      Team
	Hand      []card.Card
	TricksWon int
}

// Streak 连赢记录，Seat 为 -1 表示无
type Streak struct {
	Seat  int
	Count int
}

var noStreak = Streak{Seat: -1}

// RoundState 单局状态，每次发牌时重置
type RoundState struct {
	Dealer          int
	CurrentPlayer   int
	TrumpSuit       card.Suit
	TrumpMakingTeam Team
	LeadSuit        card.Suit
	CurrentTrick    []rule.Play
	LastTrick       []rule.Play // 上一墩，供展示
	TrickNumber     int
	StackedTricks   int // 主牌确定前完成的墩
	FreshTricks     int // 主牌确定后尚未入账的墩
	Consecutive     Streak
	LastTrickWinner int
}

// Accrual 返回当前积墩状态
func (r *RoundState) Accrual() AccrualState {
	if r.TrumpSuit == card.NoSuit {
		return PreTrump
	}
	return PostTrump
}

// Pending 尚未记到任何玩家名下的墩数
func (r *RoundState) Pending() int {
	return r.StackedTricks + r.FreshTricks
}

// TeamScore 队伍计分
type TeamScore struct {
	Talents   int
	Coats     int
	RoundWins int
}

// Scoreboard 跨局累计的比分，仅在新游戏时重置
type Scoreboard [2]TeamScore

// Team 返回队伍的计分
func (s *Scoreboard) Team(t Team) *TeamScore {
	return &s[t.Index()]
}
