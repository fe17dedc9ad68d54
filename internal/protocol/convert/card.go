package convert

import (
	"github.com/palemoky/kaat-color/internal/game/card"
	"github.com/palemoky/kaat-color/internal/game/rule"
	"github.com/palemoky/kaat-color/internal/protocol"
)

// CardToInfo 将 card.Card 转换为 protocol.CardInfo
func CardToInfo(c card.Card) protocol.CardInfo {
	return protocol.CardInfo{
		Suit:  int(c.Suit),
		Rank:  int(c.Rank),
		Color: int(c.Color()),
	}
}

// CardsToInfos 将 []card.Card 转换为 []protocol.CardInfo
func CardsToInfos(cards []card.Card) []protocol.CardInfo {
	infos := make([]protocol.CardInfo, len(cards))
	for i, c := range cards {
		infos[i] = CardToInfo(c)
	}
	return infos
}

// InfoToCard 将 protocol.CardInfo 转换为 card.Card，颜色由花色决定
func InfoToCard(info protocol.CardInfo) card.Card {
	return card.Card{
		Suit: card.Suit(info.Suit),
		Rank: card.Rank(info.Rank),
	}
}

// InfosToCards 将 []protocol.CardInfo 转换为 []card.Card
func InfosToCards(infos []protocol.CardInfo) []card.Card {
	cards := make([]card.Card, len(infos))
	for i, info := range infos {
		cards[i] = InfoToCard(info)
	}
	return cards
}

// PlaysToInfos 将一墩的出牌转换为 protocol.TrickPlayInfo
func PlaysToInfos(plays []rule.Play) []protocol.TrickPlayInfo {
	infos := make([]protocol.TrickPlayInfo, len(plays))
	for i, p := range plays {
		infos[i] = protocol.TrickPlayInfo{Seat: p.Seat, Card: CardToInfo(p.Card)}
	}
	return infos
}

// InfosToPlays 将 protocol.TrickPlayInfo 转换回 rule.Play
func InfosToPlays(infos []protocol.TrickPlayInfo) []rule.Play {
	plays := make([]rule.Play, len(infos))
	for i, info := range infos {
		plays[i] = rule.Play{Seat: info.Seat, Card: InfoToCard(info.Card)}
	}
	return plays
}
