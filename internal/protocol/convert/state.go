package convert

import (
	"github.com/palemoky/kaat-color/internal/game/engine"
	"github.com/palemoky/kaat-color/internal/protocol"
)

// SnapshotToDTO 将引擎快照转换为发给 seat 的牌局状态
// 其他座位的手牌只保留张数；seat 越界时视为旁观。
func SnapshotToDTO(snap engine.Snapshot, seat int) *protocol.GameStateDTO {
	view := snap.ForSeat(seat)
	r := view.Round
	tricks := view.TeamTricks()

	dto := &protocol.GameStateDTO{
		Phase:            view.State.String(),
		Accrual:          view.Accrual.String(),
		Seat:             seat,
		Players:          PlayersToInfos(view),
		Hand:             []protocol.CardInfo{},
		LegalMoves:       view.Legal(seat),
		CurrentSeat:      r.CurrentPlayer,
		Dealer:           r.Dealer,
		TrumpSuit:        int(r.TrumpSuit),
		TrumpMakingTeam:  int(r.TrumpMakingTeam),
		LeadSuit:         int(r.LeadSuit),
		CurrentTrick:     PlaysToInfos(r.CurrentTrick),
		LastTrick:        PlaysToInfos(r.LastTrick),
		TrickNumber:      r.TrickNumber,
		StackedTricks:    r.StackedTricks,
		FreshTricks:      r.FreshTricks,
		ConsecutiveSeat:  r.Consecutive.Seat,
		ConsecutiveCount: r.Consecutive.Count,
		LastTrickWinner:  r.LastTrickWinner,
		Teams:            TeamsToInfos(view.Scores, view.TeamNames, tricks),
	}
	if seat >= 0 && seat < engine.NumSeats {
		dto.Hand = CardsToInfos(view.Players[seat].Hand)
	} else {
		dto.Seat = -1
	}
	if dto.LegalMoves == nil {
		dto.LegalMoves = []int{}
	}
	if view.LastResult != nil {
		dto.LastResult = RoundResultToPayload(view.LastResult, view.Scores, view.TeamNames)
	}
	return dto
}

// PlayersToInfos 按座位顺序返回玩家信息（ID 和在线状态由会话层补充）
func PlayersToInfos(snap engine.Snapshot) []protocol.PlayerInfo {
	infos := make([]protocol.PlayerInfo, len(snap.Players))
	for i, p := range snap.Players {
		infos[i] = protocol.PlayerInfo{
			Name:       p.Name,
			Seat:       p.Seat,
			Team:       int(p.Team),
			CardsCount: p.HandCount,
			TricksWon:  p.TricksWon,
		}
	}
	return infos
}

// TeamsToInfos 合并两队的名称、本局墩数和累计比分
func TeamsToInfos(scores engine.Scoreboard, names [2]string, tricks [2]int) [2]protocol.TeamScoreInfo {
	var infos [2]protocol.TeamScoreInfo
	for i := range infos {
		infos[i] = protocol.TeamScoreInfo{
			Name:      names[i],
			Tricks:    tricks[i],
			RoundWins: scores[i].RoundWins,
			Coats:     scores[i].Coats,
			Talents:   scores[i].Talents,
		}
	}
	return infos
}

// RoundResultToPayload 将本局结算转换为 round_result 消息
func RoundResultToPayload(res *engine.RoundResult, scores engine.Scoreboard, names [2]string) *protocol.RoundResultPayload {
	p := &protocol.RoundResultPayload{
		TeamTricks:      res.TeamTricks,
		Winner:          int(res.Winner),
		TrumpMakingTeam: int(res.TrumpMakingTeam),
		Bonus:           res.Bonus.String(),
		BonusTeam:       int(res.BonusTeam),
		Dealer:          res.Dealer,
		NextDealer:      res.NextDealer,
		Teams:           TeamsToInfos(scores, names, res.TeamTricks),
	}
	if res.Winner != engine.NoTeam {
		p.WinnerName = names[res.Winner.Index()]
	}
	return p
}
