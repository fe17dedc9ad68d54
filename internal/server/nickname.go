package server

import "math/rand/v2"

// 昵称词库
var (
	adjectives = []string{
		"Brave", "Clever", "Lucky", "Sly", "Cool",
		"Swift", "Calm", "Bold", "Quiet", "Witty",
		"Jolly", "Sharp", "Gentle", "Fierce", "Steady",
		"Shiny", "Merry", "Proud", "Sleepy", "Wild",
	}

	nouns = []string{
		"Ace", "King", "Queen", "Jack", "Joker",
		"Dealer", "Trump", "Spade", "Heart", "Club",
		"Diamond", "Knave", "Deuce", "Trey", "Sharper",
		"Bluffer", "Shuffler", "Partner", "Captain", "Rook",
	}
)

// GenerateNickname 生成随机昵称
func GenerateNickname() string {
	adj := adjectives[rand.IntN(len(adjectives))]
	noun := nouns[rand.IntN(len(nouns))]
	return adj + " " + noun
}
