package rule

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/palemoky/kaat-color/internal/game/card"
)

func TestAutoPlayIndex(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		hand     []card.Card
		trick    []Play
		expected int
	}{
		{
			name:     "Leading picks highest card in hand",
			hand:     card.MustParse("QS", "3S", "AH", "KD"),
			expected: 2,
		},
		{
			name:     "Must follow suit picks highest of lead suit",
			hand:     card.MustParse("QS", "3S", "AH", "KD"),
			trick:    []Play{{Card: card.Card{Suit: card.Spade, Rank: card.Rank5}, Seat: 1}},
			expected: 0,
		},
		{
			name:     "Void in lead suit picks highest overall",
			hand:     card.MustParse("QS", "3S", "KD"),
			trick:    []Play{{Card: card.Card{Suit: card.Heart, Rank: card.Rank5}, Seat: 1}},
			expected: 2,
		},
		{
			name:     "Tie keeps the first card",
			hand:     card.MustParse("AS", "AH"),
			expected: 0,
		},
		{
			name:     "Empty hand",
			hand:     nil,
			expected: -1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, AutoPlayIndex(tt.hand, tt.trick))
		})
	}
}
