package engine

import (
	"github.com/palemoky/kaat-color/internal/game/card"
)

// dealPasses 三轮发牌，每轮每人张数
var dealPasses = [3]int{5, 4, 4}

// deal 洗牌并按 5-4-4 从庄家下家开始发牌，重置所有单局状态
func (e *Engine) deal() {
	deck := card.NewDeck()
	deck.Shuffle(e.shuffler)

	for _, p := range e.players {
		p.Hand = make([]card.Card, 0, TricksPerRound)
		p.TricksWon = 0
	}

	dealer := e.round.Dealer
	next := 0
	for _, n := range dealPasses {
		for i := 1; i <= NumSeats; i++ {
			p := e.players[(dealer+i)%NumSeats]
			p.Hand = append(p.Hand, deck[next:next+n]...)
			next += n
		}
	}

	for _, p := range e.players {
		card.SortHand(p.Hand)
	}

	e.round = RoundState{
		Dealer:          dealer,
		CurrentPlayer:   (dealer + 1) % NumSeats,
		TrumpSuit:       card.NoSuit,
		TrumpMakingTeam: NoTeam,
		LeadSuit:        card.NoSuit,
		Consecutive:     noStreak,
		LastTrickWinner: -1,
	}
	e.state = GameStatePlaying
	e.lastResult = nil
}
