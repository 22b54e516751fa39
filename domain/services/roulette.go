package services

import (
	"fmt"
	"strconv"
	"strings"

	"casino/economy-bot/domain/entities"
)

// RouletteSlots is the number of slots on the wheel, 0 through 36
const RouletteSlots = 37

var (
	rouletteDozens = map[string][2]int{"1-12": {1, 12}, "13-24": {13, 24}, "25-36": {25, 36}}
	rouletteHalves = map[string][2]int{"1-18": {1, 18}, "19-36": {19, 36}}

	// columns by n % 3
	rouletteColumns = map[string]int{"1st": 1, "2nd": 2, "3rd": 0}

	rouletteMultipliers = map[entities.SpaceType]int64{
		entities.SpaceTypeNumber: 36,
		entities.SpaceTypeDozen:  3,
		entities.SpaceTypeColumn: 3,
		entities.SpaceTypeHalf:   2,
		entities.SpaceTypeParity: 2,
		entities.SpaceTypeColor:  2,
	}
)

// ParseSpace normalises a bet space and returns its category
func ParseSpace(input string) (string, entities.SpaceType, error) {
	space := strings.ToLower(strings.TrimSpace(input))

	if n, err := strconv.Atoi(space); err == nil {
		if n < 0 || n >= RouletteSlots {
			return "", "", fmt.Errorf("number %d is not on the wheel: %w", n, entities.ErrInvalidAction)
		}
		return strconv.Itoa(n), entities.SpaceTypeNumber, nil
	}

	switch {
	case hasKey(rouletteDozens, space):
		return space, entities.SpaceTypeDozen, nil
	case hasKey(rouletteHalves, space):
		return space, entities.SpaceTypeHalf, nil
	case hasKey(rouletteColumns, space):
		return space, entities.SpaceTypeColumn, nil
	case space == "odd" || space == "even":
		return space, entities.SpaceTypeParity, nil
	case space == string(entities.SlotColorRed) || space == string(entities.SlotColorBlack):
		return space, entities.SpaceTypeColor, nil
	}

	return "", "", fmt.Errorf("unknown space %q: %w", input, entities.ErrInvalidAction)
}

func hasKey[V any](m map[string]V, key string) bool {
	_, ok := m[key]
	return ok
}

// SlotColorOf returns the colour of a slot: 0 is green, odd numbers are red, even numbers black
func SlotColorOf(slot int) entities.SlotColor {
	switch {
	case slot == 0:
		return entities.SlotColorGreen
	case slot%2 == 1:
		return entities.SlotColorRed
	default:
		return entities.SlotColorBlack
	}
}

// Multiplier returns the total payout factor of a space category, stake included
func Multiplier(spaceType entities.SpaceType) int64 {
	return rouletteMultipliers[spaceType]
}

// BetWins reports whether a space covers the winning slot. Zero only wins a straight bet on 0.
func BetWins(space string, spaceType entities.SpaceType, slot int) bool {
	if spaceType == entities.SpaceTypeNumber {
		n, err := strconv.Atoi(space)
		return err == nil && n == slot
	}
	if slot == 0 {
		return false
	}

	switch spaceType {
	case entities.SpaceTypeDozen:
		r := rouletteDozens[space]
		return slot >= r[0] && slot <= r[1]
	case entities.SpaceTypeHalf:
		r := rouletteHalves[space]
		return slot >= r[0] && slot <= r[1]
	case entities.SpaceTypeColumn:
		rem, ok := rouletteColumns[space]
		return ok && slot%3 == rem
	case entities.SpaceTypeParity:
		return (space == "odd") == (slot%2 == 1)
	case entities.SpaceTypeColor:
		return string(SlotColorOf(slot)) == space
	}
	return false
}

// Winnings returns the payout of a bet, zero when it lost
func Winnings(bet *entities.RouletteBet, slot int) int64 {
	if !BetWins(bet.Space, bet.SpaceType, slot) {
		return 0
	}
	return bet.Amount * Multiplier(bet.SpaceType)
}
