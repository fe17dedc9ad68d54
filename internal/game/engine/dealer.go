package engine

// NextDealer 根据两队墩数计算下一局的庄家
//
//	庄家方赢且 13 墩  -> 庄家上家
//	庄家方赢且不足 13 -> 庄家下家
//	对方赢且 13 墩    -> 庄家对家
//	对方赢且不足 13   -> 庄家连庄
func NextDealer(dealer int, team1Tricks, team2Tricks int) int {
	tricks := [2]int{team1Tricks, team2Tricks}
	own := TeamOf(dealer)
	ownTricks := tricks[own.Index()]
	oppTricks := tricks[own.Opponent().Index()]

	switch {
	case ownTricks > oppTricks && ownTricks == TricksPerRound:
		return (dealer + NumSeats - 1) % NumSeats
	case ownTricks > oppTricks:
		return (dealer + 1) % NumSeats
	case oppTricks > ownTricks && oppTricks == TricksPerRound:
		return (dealer + 2) % NumSeats
	}
	return dealer
}
