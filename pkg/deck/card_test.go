package deck

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_constants(t *testing.T) {
	assert.Equal(t, 11, Jack)
	assert.Equal(t, 12, Queen)
	assert.Equal(t, 13, King)
	assert.Equal(t, 14, Ace)
}

func TestCard_String(t *testing.T) {
	assert.Equal(t, "2♡", (&Card{Rank: 2, Suit: Hearts}).String())
	assert.Equal(t, "J♣", (&Card{Rank: 11, Suit: Clubs}).String())
	assert.Equal(t, "Q♢", (&Card{Rank: 12, Suit: Diamonds}).String())
	assert.Equal(t, "K♠", (&Card{Rank: 13, Suit: Spades}).String())
	assert.Equal(t, "A♠", (&Card{Rank: 14, Suit: Spades}).String())
}

func TestCardFromString(t *testing.T) {
	c, err := CardFromString("14s")
	assert.NoError(t, err)
	assert.Equal(t, &Card{Rank: 14, Suit: Spades}, c)

	_, err = CardFromString("15s")
	assert.Error(t, err)

	_, err = CardFromString("")
	assert.Error(t, err)
}

func TestCard_Equal(t *testing.T) {
	a := &Card{Rank: 5, Suit: Clubs}
	b := &Card{Rank: 5, Suit: Clubs}
	c := &Card{Rank: 5, Suit: Hearts}

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}
