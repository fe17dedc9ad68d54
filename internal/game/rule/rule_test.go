package rule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/kaat-color/internal/game/card"
)

func play(s string, seat int) Play {
	return Play{Card: card.MustParse(s)[0], Seat: seat}
}

func TestLegalMoves(t *testing.T) {
	t.Parallel()

	hand := card.MustParse("AS", "9S", "KH", "2C")

	tests := []struct {
		name     string
		trick    []Play
		expected []card.Card
	}{
		{"Leading allows whole hand", nil, hand},
		{"Must follow spades", []Play{play("3S", 1)}, card.MustParse("AS", "9S")},
		{"Must follow hearts", []Play{play("4H", 1), play("2S", 2)}, card.MustParse("KH")},
		{"Void in diamonds allows whole hand", []Play{play("4D", 1)}, hand},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, LegalMoves(hand, tt.trick))
		})
	}
}

func TestLegalMoves_DoesNotAliasHand(t *testing.T) {
	t.Parallel()

	hand := card.MustParse("AS", "KS")
	moves := LegalMoves(hand, nil)
	moves[0] = card.Card{Suit: card.Diamond, Rank: card.Rank2}

	assert.Equal(t, card.MustParse("AS", "KS"), hand)
}

// 对随机手牌验证跟牌规则：有领出花色时只能出该花色，否则整手可出
func TestLegalMoves_FollowSuitLaw(t *testing.T) {
	t.Parallel()

	rng := card.NewSeededShuffler(2024)
	for i := range 200 {
		deck := card.NewDeck()
		deck.Shuffle(rng)
		hand := deck[:13]
		lead := deck[13]
		trick := []Play{{Card: lead, Seat: 0}}

		moves := LegalMoves(hand, trick)
		require.NotEmpty(t, moves, "iteration %d", i)

		if card.HasSuit(hand, lead.Suit) {
			for _, c := range moves {
				assert.Equal(t, lead.Suit, c.Suit, "iteration %d", i)
			}
		} else {
			assert.Equal(t, []card.Card(hand), moves, "iteration %d", i)
		}

		for idx := range hand {
			assert.Equal(t, containsCard(moves, hand[idx]), IsLegal(hand, trick, idx))
		}
	}
}

func TestIsLegal_IndexBounds(t *testing.T) {
	t.Parallel()

	hand := card.MustParse("AS")
	assert.False(t, IsLegal(hand, nil, -1))
	assert.False(t, IsLegal(hand, nil, 1))
	assert.True(t, IsLegal(hand, nil, 0))
	assert.Equal(t, []int{0}, LegalIndexes(hand, nil))
}

func containsCard(cards []card.Card, c card.Card) bool {
	for _, x := range cards {
		if x == c {
			return true
		}
	}
	return false
}
