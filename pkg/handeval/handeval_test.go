package handeval

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"berrypoker/pkg/deck"
)

func mustCards(t *testing.T, s string) []*deck.Card {
	t.Helper()
	cards, err := deck.CardsFromString(s)
	assert.NoError(t, err)
	return cards
}

func TestBest_wheelStraightRanksBelowSixHigh(t *testing.T) {
	wheel, err := Best(mustCards(t, "14c,2d,3s,4h,5c,13d,9h"))
	assert.NoError(t, err)
	assert.Equal(t, Straight, wheel.Category)
	assert.Equal(t, 5, wheel.Tiebreakers[0])

	sixHigh, err := Best(mustCards(t, "6c,2d,3s,4h,5c,13d,9h"))
	assert.NoError(t, err)
	assert.Equal(t, Straight, sixHigh.Category)

	assert.True(t, sixHigh.Compare(wheel) > 0)
}

func TestBest_royalFlushIsAceHighStraightFlush(t *testing.T) {
	royal, err := Best(mustCards(t, "14c,13c,12c,11c,10c,2d,3h"))
	assert.NoError(t, err)
	assert.Equal(t, StraightFlush, royal.Category)
	assert.Equal(t, 14, royal.Tiebreakers[0])
}

func TestBest_straightFlushBeatsFourOfAKind(t *testing.T) {
	sf, err := Best(mustCards(t, "9c,8c,7c,6c,5c,2d,3h"))
	assert.NoError(t, err)
	assert.Equal(t, StraightFlush, sf.Category)

	quads, err := Best(mustCards(t, "9c,9d,9h,9s,2c,3d,4h"))
	assert.NoError(t, err)
	assert.Equal(t, FourOfAKind, quads.Category)

	assert.True(t, sf.Compare(quads) > 0)
}

func TestBest_fullHouseOverFlush(t *testing.T) {
	fh, err := Best(mustCards(t, "9c,9d,9h,2s,2c,3d,4h"))
	assert.NoError(t, err)
	assert.Equal(t, FullHouse, fh.Category)

	flush, err := Best(mustCards(t, "2c,4c,6c,8c,10c,3d,5h"))
	assert.NoError(t, err)
	assert.Equal(t, Flush, flush.Category)

	assert.True(t, fh.Compare(flush) > 0)
}

func TestBest_tiebreakerKickersBreakTies(t *testing.T) {
	a, err := Best(mustCards(t, "14c,14d,9h,7s,2c,3d,4h"))
	assert.NoError(t, err)
	b, err := Best(mustCards(t, "14h,14s,10h,6s,2d,3s,4c"))
	assert.NoError(t, err)

	assert.Equal(t, OnePair, a.Category)
	assert.Equal(t, OnePair, b.Category)
	assert.True(t, b.Compare(a) > 0, "higher kicker (10) should beat lower kicker (9)")
}
