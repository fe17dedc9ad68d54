package rule

import "github.com/palemoky/kaat-color/internal/game/card"

// AutoPlayIndex 托管出牌：在可出的牌中选点数最大的一张，返回其手牌下标
// 点数相同时取手牌中靠前的一张；空手牌返回 -1。
func AutoPlayIndex(hand []card.Card, trick []Play) int {
	best := -1
	for _, i := range LegalIndexes(hand, trick) {
		if best == -1 || hand[i].Value() > hand[best].Value() {
			best = i
		}
	}
	return best
}
