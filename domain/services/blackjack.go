package services

import (
	"strconv"

	"casino/economy-bot/domain/entities"
	"casino/economy-bot/domain/interfaces"
)

const (
	// DeckLowWater is the remaining card count below which a fresh deck is used
	DeckLowWater = 10

	blackjackScore  = 21
	dealerStandsOn  = 17
	naturalHandSize = 2
)

// NewDeck returns decks standard 52-card decks shuffled together
func NewDeck(decks int, rng interfaces.RandomSource) []entities.Card {
	if decks < 1 {
		decks = 1
	}
	deck := make([]entities.Card, 0, decks*len(entities.CardSuits)*len(entities.CardRanks))
	for i := 0; i < decks; i++ {
		for _, suit := range entities.CardSuits {
			for _, rank := range entities.CardRanks {
				deck = append(deck, entities.Card(rank+suit))
			}
		}
	}
	rng.Shuffle(len(deck), func(i, j int) { deck[i], deck[j] = deck[j], deck[i] })
	return deck
}

// cardValue counts faces as 10 and aces as 1
func cardValue(c entities.Card) int {
	switch rank := c.Rank(); rank {
	case "A":
		return 1
	case "J", "Q", "K":
		return 10
	default:
		v, _ := strconv.Atoi(rank)
		return v
	}
}

// ScoreHand returns the best total of a hand and whether an ace is still counted as 11.
// Dealer hands that make a soft 17 while holding a six are recounted with every ace as 1,
// with the six set aside and a flat 7 added in its place.
func ScoreHand(hand []entities.Card, dealer bool) (int, bool) {
	score := 0
	hasAce := false
	for _, c := range hand {
		score += cardValue(c)
		if c.IsAce() {
			hasAce = true
		}
	}

	soft := false
	if hasAce && score+10 <= blackjackScore {
		score += 10
		soft = true
	}

	if dealer && soft && score == dealerStandsOn && hasSix(hand) {
		score = 7
		for _, c := range hand {
			if c.Rank() != "6" {
				score += cardValue(c)
			}
		}
		soft = false
	}

	return score, soft
}

func hasSix(hand []entities.Card) bool {
	for _, c := range hand {
		if c.Rank() == "6" {
			return true
		}
	}
	return false
}

// IsNatural reports a two-card 21
func IsNatural(hand []entities.Card) bool {
	if len(hand) != naturalHandSize {
		return false
	}
	score, _ := ScoreHand(hand, false)
	return score == blackjackScore
}

// drawCard pops a card from the end of the deck, starting a fresh deck when it runs low
func drawCard(session *entities.BlackjackSession, decks int, rng interfaces.RandomSource) entities.Card {
	if len(session.Deck) < DeckLowWater {
		session.Deck = NewDeck(decks, rng)
	}
	card := session.Deck[len(session.Deck)-1]
	session.Deck = session.Deck[:len(session.Deck)-1]
	return card
}

// settleAgainstDealer compares finished hands and returns the result and payout.
// The natural bonus only applies when allowNatural is set.
func settleAgainstDealer(playerHand, dealerHand []entities.Card, bet int64, allowNatural bool) (entities.BlackjackResult, int64) {
	playerScore, _ := ScoreHand(playerHand, false)
	dealerScore, _ := ScoreHand(dealerHand, true)

	switch {
	case playerScore > blackjackScore:
		return entities.BlackjackResultDealer, 0
	case dealerScore > blackjackScore || playerScore > dealerScore:
		if allowNatural && IsNatural(playerHand) {
			return entities.BlackjackResultBlackjack, naturalPayout(bet)
		}
		return entities.BlackjackResultPlayer, bet * 2
	case playerScore == dealerScore:
		return entities.BlackjackResultPush, bet
	default:
		return entities.BlackjackResultDealer, 0
	}
}

func naturalPayout(bet int64) int64 {
	return bet * 5 / 2
}
