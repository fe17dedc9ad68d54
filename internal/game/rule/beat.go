package rule

import (
	"github.com/palemoky/kaat-color/internal/game/card"
)

// IsHigher 判断同一墩中 a 是否压过 b（b 为先出的牌）
//
// 主牌已确定时主牌压一切非主牌，两张主牌比点数；
// 否则领出花色压非领出花色，两张领出花色比点数；
// 两张都不是领出花色时先出的牌保持领先。
func IsHigher(a, b card.Card, lead, trump card.Suit) bool {
	if trump != card.NoSuit {
		aTrump, bTrump := a.Suit == trump, b.Suit == trump
		switch {
		case aTrump && !bTrump:
			return true
		case !aTrump && bTrump:
			return false
		case aTrump && bTrump:
			return a.Value() > b.Value()
		}
	}

	aLead, bLead := a.Suit == lead, b.Suit == lead
	switch {
	case aLead && !bLead:
		return true
	case !aLead && bLead:
		return false
	case aLead && bLead:
		return a.Value() > b.Value()
	}
	return false
}

// TrickWinner 从第一张牌开始顺序比较，返回赢得本墩的座位号
// 空墩返回 -1。
func TrickWinner(trick []Play, trump card.Suit) int {
	if len(trick) == 0 {
		return -1
	}

	lead := trick[0].Card.Suit
	winning := trick[0]
	for _, p := range trick[1:] {
		if IsHigher(p.Card, winning.Card, lead, trump) {
			winning = p
		}
	}
	return winning.Seat
}

// DiscoversTrump 判断打出 c 是否会确定主牌：主牌未定且 c 不是领出花色
// 领出的第一张牌永远不会确定主牌。
func DiscoversTrump(c card.Card, lead, trump card.Suit) bool {
	return trump == card.NoSuit && lead != card.NoSuit && c.Suit != lead
}
