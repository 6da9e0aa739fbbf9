package deck

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHand_AddCard(t *testing.T) {
	var h Hand
	h.AddCard(&Card{Rank: 2, Suit: Clubs})
	h.AddCard(&Card{Rank: 3, Suit: Hearts})

	assert.Equal(t, 2, h.Len())
	assert.True(t, h.HasCard(&Card{Rank: 3, Suit: Hearts}))
	assert.False(t, h.HasCard(&Card{Rank: 4, Suit: Hearts}))
}

func TestHand_String(t *testing.T) {
	h := Hand{
		{Rank: 2, Suit: Clubs},
		{Rank: 14, Suit: Spades},
	}

	assert.Equal(t, "2c,14s", h.String())
}

func TestHand_Clone(t *testing.T) {
	h := Hand{{Rank: 2, Suit: Clubs}}
	clone := h.Clone()

	clone[0] = &Card{Rank: 3, Suit: Hearts}
	assert.Equal(t, 2, h[0].Rank)
}
