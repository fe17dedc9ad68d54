package card

import (
	"fmt"
	"slices"
	"strings"
)

// charToRank 用于快速查找字符对应的 Rank
var charToRank = map[rune]Rank{
	'2': Rank2,
	'3': Rank3,
	'4': Rank4,
	'5': Rank5,
	'6': Rank6,
	'7': Rank7,
	'8': Rank8,
	'9': Rank9,
	'T': Rank10,
	'J': RankJ,
	'Q': RankQ,
	'K': RankK,
	'A': RankA,
}

// charToSuit 字母或符号到花色
var charToSuit = map[rune]Suit{
	'S': Spade,
	'H': Heart,
	'C': Club,
	'D': Diamond,
	'♠': Spade,
	'♥': Heart,
	'♣': Club,
	'♦': Diamond,
}

func RankFromChar(char rune) (Rank, error) {
	if rank, ok := charToRank[char]; ok {
		return rank, nil
	}
	return -1, fmt.Errorf("无法识别的点数: %c", char)
}

// Parse 解析 "AS"、"10H"、"TD"、"Q♣" 形式的牌
func Parse(s string) (Card, error) {
	clean := strings.ToUpper(strings.TrimSpace(s))
	clean = strings.ReplaceAll(clean, "10", "T")

	runes := []rune(clean)
	if len(runes) != 2 {
		return Card{}, fmt.Errorf("无效的牌: %q", s)
	}

	rank, err := RankFromChar(runes[0])
	if err != nil {
		return Card{}, err
	}
	suit, ok := charToSuit[runes[1]]
	if !ok {
		return Card{}, fmt.Errorf("无法识别的花色: %c", runes[1])
	}
	return Card{Suit: suit, Rank: rank}, nil
}

// MustParse 解析多张牌，失败时 panic（用于测试和固定牌局）
func MustParse(specs ...string) []Card {
	cards := make([]Card, 0, len(specs))
	for _, s := range specs {
		c, err := Parse(s)
		if err != nil {
			panic(err)
		}
		cards = append(cards, c)
	}
	return cards
}

// SortHand 先按花色 (♠ ♥ ♣ ♦) 再按点数降序排序
func SortHand(hand []Card) {
	slices.SortFunc(hand, func(a, b Card) int {
		if a.Suit != b.Suit {
			return int(a.Suit) - int(b.Suit)
		}
		return int(b.Rank) - int(a.Rank)
	})
}

// HasSuit 手牌中是否有指定花色
func HasSuit(hand []Card, suit Suit) bool {
	return slices.ContainsFunc(hand, func(c Card) bool { return c.Suit == suit })
}

// RemoveAt 返回移除第 idx 张后的新手牌，不修改原切片
func RemoveAt(hand []Card, idx int) []Card {
	result := make([]Card, 0, len(hand)-1)
	result = append(result, hand[:idx]...)
	return append(result, hand[idx+1:]...)
}

// Format 将手牌格式化为空格分隔的字符串
func Format(cards []Card) string {
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}
