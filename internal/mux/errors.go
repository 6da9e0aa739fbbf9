package mux

import "fmt"

var (
	errInvalidRoomConfig = fmt.Errorf("small_blind, big_blind, min_buy_in, and max_buy_in must form a valid table configuration")
	room404Error         = fmt.Errorf("room not found")
	playerStats404Error  = fmt.Errorf("no stats found for that player")
)
