package card

import (
	"math/rand/v2"
	"strconv"
)

// Suit 定义花色
type Suit int

// Rank 定义点数，数值即比较大小用的点数 (2-14)
type Rank int

// CardColor 定义牌的颜色
type CardColor int

const (
	Black CardColor = iota
	Red
)

// NoSuit 表示尚未确定的花色（未出现主牌 / 当前墩未领出）
const NoSuit Suit = -1

const (
	Spade   Suit = iota // 黑桃
	Heart               // 红心
	Club                // 梅花
	Diamond             // 方块
)

// Suits 按手牌排序顺序排列的四种花色
var Suits = [4]Suit{Spade, Heart, Club, Diamond}

// suitSymbols 花色符号映射表
var suitSymbols = map[Suit]string{
	Spade:   "♠",
	Heart:   "♥",
	Club:    "♣",
	Diamond: "♦",
}

func (s Suit) String() string {
	if symbol, ok := suitSymbols[s]; ok {
		return symbol
	}
	return ""
}

// Valid 是否为四种花色之一
func (s Suit) Valid() bool {
	return s >= Spade && s <= Diamond
}

const (
	Rank2 Rank = iota + 2
	Rank3
	Rank4
	Rank5
	Rank6
	Rank7
	Rank8
	Rank9
	Rank10
	RankJ // Jack
	RankQ // Queen
	RankK // King
	RankA // Ace
)

// rankNames 牌面值字符串映射表
var rankNames = map[Rank]string{
	RankJ: "J",
	RankQ: "Q",
	RankK: "K",
	RankA: "A",
}

func (r Rank) String() string {
	if name, ok := rankNames[r]; ok {
		return name
	}
	return strconv.Itoa(int(r))
}

// Card 定义一张牌，创建后不可变
type Card struct {
	Suit Suit
	Rank Rank
}

// Value 返回用于比较的点数 (J=11, Q=12, K=13, A=14)
func (c Card) Value() int {
	return int(c.Rank)
}

// Color 返回牌的颜色
func (c Card) Color() CardColor {
	if c.Suit == Heart || c.Suit == Diamond {
		return Red
	}
	return Black
}

func (c Card) String() string {
	return c.Rank.String() + c.Suit.String()
}

// DeckSize 一副牌的张数
const DeckSize = 52

// Deck 定义一副牌
type Deck []Card

// NewDeck 按花色、点数顺序生成 52 张牌
func NewDeck() Deck {
	deck := make(Deck, 0, DeckSize)
	for _, s := range Suits {
		for r := Rank2; r <= RankA; r++ {
			deck = append(deck, Card{Suit: s, Rank: r})
		}
	}
	return deck
}

// Shuffler 洗牌端口。*rand.Rand 满足该接口，测试中可注入固定种子。
type Shuffler interface {
	Shuffle(n int, swap func(i, j int))
}

type globalShuffler struct{}

func (globalShuffler) Shuffle(n int, swap func(i, j int)) {
	rand.Shuffle(n, swap)
}

// DefaultShuffler 使用全局随机源
var DefaultShuffler Shuffler = globalShuffler{}

// NewSeededShuffler 返回可复现的洗牌器
func NewSeededShuffler(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Shuffle 使用 Fisher–Yates 均匀洗牌
func (d Deck) Shuffle(s Shuffler) {
	if s == nil {
		s = DefaultShuffler
	}
	s.Shuffle(len(d), func(i, j int) {
		d[i], d[j] = d[j], d[i]
	})
}
