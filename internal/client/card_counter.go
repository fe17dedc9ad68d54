package client

import (
	"slices"

	"github.com/palemoky/kaat-color/internal/game/card"
)

// CardCounter 记牌器：记录本局已经出现过的牌
type CardCounter struct {
	seen map[card.Card]struct{}
}

// NewCardCounter 创建记牌器
func NewCardCounter() *CardCounter {
	return &CardCounter{seen: make(map[card.Card]struct{}, card.DeckSize)}
}

// Reset 新一局开始时清空
func (cc *CardCounter) Reset() {
	clear(cc.seen)
}

// Observe 记录出现过的牌，重复记录同一张牌不影响计数
func (cc *CardCounter) Observe(cards ...card.Card) {
	for _, c := range cards {
		if c.Suit.Valid() {
			cc.seen[c] = struct{}{}
		}
	}
}

// Seen 某张牌是否已出现
func (cc *CardCounter) Seen(c card.Card) bool {
	_, ok := cc.seen[c]
	return ok
}

// PlayedCount 某花色已出的张数
func (cc *CardCounter) PlayedCount(suit card.Suit) int {
	n := 0
	for c := range cc.seen {
		if c.Suit == suit {
			n++
		}
	}
	return n
}

// Total 已出的总张数
func (cc *CardCounter) Total() int {
	return len(cc.seen)
}

// Outstanding 某花色既没出过也不在 hand 中的牌，从大到小
func (cc *CardCounter) Outstanding(suit card.Suit, hand []card.Card) []card.Card {
	var out []card.Card
	for rank := card.RankA; rank >= card.Rank2; rank-- {
		c := card.Card{Suit: suit, Rank: rank}
		if cc.Seen(c) || slices.Contains(hand, c) {
			continue
		}
		out = append(out, c)
	}
	return out
}
