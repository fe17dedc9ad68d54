package rule

import (
	"github.com/palemoky/kaat-color/internal/game/card"
)

// Play 一墩中的一次出牌
type Play struct {
	Card card.Card
	Seat int
}

// LeadSuit 返回本墩领出的花色，空墩返回 card.NoSuit
func LeadSuit(trick []Play) card.Suit {
	if len(trick) == 0 {
		return card.NoSuit
	}
	return trick[0].Card.Suit
}

// LegalMoves 计算当前可出的牌
//
// 领出时任意出牌；跟牌时有领出花色必须跟，否则可出任意牌（垫牌或将牌）。
func LegalMoves(hand []card.Card, trick []Play) []card.Card {
	lead := LeadSuit(trick)
	if lead == card.NoSuit || !card.HasSuit(hand, lead) {
		result := make([]card.Card, len(hand))
		copy(result, hand)
		return result
	}

	var result []card.Card
	for _, c := range hand {
		if c.Suit == lead {
			result = append(result, c)
		}
	}
	return result
}

// IsLegal 判断手牌中第 idx 张是否可出
func IsLegal(hand []card.Card, trick []Play, idx int) bool {
	if idx < 0 || idx >= len(hand) {
		return false
	}
	lead := LeadSuit(trick)
	if lead == card.NoSuit {
		return true
	}
	return hand[idx].Suit == lead || !card.HasSuit(hand, lead)
}

// LegalIndexes 返回可出牌在手牌中的下标
func LegalIndexes(hand []card.Card, trick []Play) []int {
	var result []int
	for i := range hand {
		if IsLegal(hand, trick, i) {
			result = append(result, i)
		}
	}
	return result
}
