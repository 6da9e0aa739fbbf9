package deck

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"berrypoker/internal/rng"
)

func TestNewDeck(t *testing.T) {
	d := New()

	assert.Equal(t, 52, d.CardsLeft())
	assert.Equal(t, Card{Rank: 2, Suit: Clubs}, *d.Cards[0])
	assert.Equal(t, Card{Rank: 14, Suit: Spades}, *d.Cards[51])
}

func TestDeck_Shuffle_isDeterministicForASeed(t *testing.T) {
	d1 := New()
	d1.Shuffle(rng.NewMath(1))

	d2 := New()
	d2.Shuffle(rng.NewMath(1))

	assert.Equal(t, d1.HashCode(), d2.HashCode())

	d3 := New()
	d3.Shuffle(rng.NewMath(2))
	assert.NotEqual(t, d1.HashCode(), d3.HashCode())
}

func TestDeck_Draw(t *testing.T) {
	d := New()

	assert.True(t, d.CanDraw(52))
	assert.False(t, d.CanDraw(53))

	for i := 0; i < 52; i++ {
		card, err := d.Draw()
		assert.NoError(t, err)
		assert.NotNil(t, card)
	}

	assert.False(t, d.CanDraw(1))

	card, err := d.Draw()
	assert.Nil(t, card)
	assert.Equal(t, ErrEndOfDeck, err)
}
