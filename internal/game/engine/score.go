package engine

// Bonus 横扫奖励类型
type Bonus int

const (
	BonusNone   Bonus = iota
	BonusCoat         // 主牌方拿满 13 墩，对方记一件外套
	BonusTalent       // 对方拿满 13 墩，主牌方记一个 talent
)

func (b Bonus) String() string {
	switch b {
	case BonusCoat:
		return "coat"
	case BonusTalent:
		return "talent"
	}
	return ""
}

// RoundResult 一局的结算结果
type RoundResult struct {
	TeamTricks      [2]int
	Winner          Team
	TrumpMakingTeam Team
	Bonus           Bonus
	BonusTeam       Team // 获得 Bonus 的队伍
	Dealer          int
	NextDealer      int
}

// TeamTricks 统计两队本局的墩数
func TeamTricks(players [NumSeats]*Player) [2]int {
	var tricks [2]int
	for _, p := range players {
		tricks[p.Team.Index()] += p.TricksWon
	}
	return tricks
}

// ScoreRound 根据两队墩数和主牌方更新比分，返回结算结果（Dealer 字段由调用方填写）
func ScoreRound(board *Scoreboard, tricks [2]int, trumpTeam Team) RoundResult {
	res := RoundResult{TeamTricks: tricks, TrumpMakingTeam: trumpTeam}

	switch {
	case tricks[0] > tricks[1]:
		res.Winner = Team1
	case tricks[1] > tricks[0]:
		res.Winner = Team2
	default:
		return res
	}

	board.Team(res.Winner).RoundWins++

	// 未确定主牌只记胜局
	if trumpTeam == NoTeam {
		return res
	}

	if tricks[res.Winner.Index()] != TricksPerRound {
		return res
	}

	if res.Winner == trumpTeam {
		res.Bonus = BonusCoat
		res.BonusTeam = trumpTeam.Opponent()
		board.Team(res.BonusTeam).Coats++
	} else {
		res.Bonus = BonusTalent
		res.BonusTeam = trumpTeam
		board.Team(res.BonusTeam).Talents++
	}
	return res
}
