package services

import (
	"context"
	"testing"
	"time"

	"casino/economy-bot/domain/entities"
	"casino/economy-bot/domain/events"
	"casino/economy-bot/domain/interfaces"
	"casino/economy-bot/domain/testhelpers"
	"casino/economy-bot/domain/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func hand(cards ...string) []entities.Card {
	out := make([]entities.Card, len(cards))
	for i, c := range cards {
		out[i] = entities.Card(c)
	}
	return out
}

// stackedDeck returns a deck that deals the given cards first, padded so no reshuffle happens
func stackedDeck(next ...string) []entities.Card {
	deck := hand("2♣", "2♣", "2♣", "2♣", "2♣", "2♣", "2♣", "2♣", "2♣", "2♣", "2♣", "2♣")
	for i := len(next) - 1; i >= 0; i-- {
		deck = append(deck, entities.Card(next[i]))
	}
	return deck
}

func TestScoreHand(t *testing.T) {
	tests := []struct {
		name      string
		hand      []entities.Card
		dealer    bool
		wantScore int
		wantSoft  bool
	}{
		{"two aces and nine", hand("A♠", "A♥", "9♦"), false, 21, true},
		{"ten nine", hand("10♠", "9♥"), false, 19, false},
		{"ace king", hand("A♠", "K♥"), false, 21, true},
		{"ten and two aces stays under", hand("10♠", "A♥", "A♦"), false, 12, false},
		{"bust", hand("K♠", "Q♥", "5♦"), false, 25, false},
		{"faces", hand("J♠", "Q♥"), false, 20, false},
		{"player soft seventeen with six", hand("A♠", "6♥"), false, 17, true},
		{"dealer soft seventeen with six", hand("A♠", "6♥"), true, 8, false},
		{"dealer soft seventeen with six and face", hand("A♠", "6♥", "K♦"), true, 17, false},
		{"dealer soft seventeen without six", hand("A♠", "5♥", "A♦"), true, 17, true},
		{"dealer hard seventeen with two sixes", hand("A♠", "4♥", "6♦", "6♣"), true, 17, false},
		{"dealer hard seventeen with six", hand("10♠", "6♥", "A♦"), true, 17, false},
		{"empty", nil, false, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, soft := ScoreHand(tt.hand, tt.dealer)
			assert.Equal(t, tt.wantScore, score)
			assert.Equal(t, tt.wantSoft, soft)
		})
	}
}

func TestScoreHand_DealerCorrectionAddsSevenToNonSixCards(t *testing.T) {
	// A(11)+6 = 17 soft with a six: 7 + ace as 1 = 8
	score, soft := ScoreHand(hand("6♥", "A♠"), true)
	assert.Equal(t, 8, score)
	assert.False(t, soft)

	// A(11)+3+3 = 17 soft, no six
	score, soft = ScoreHand(hand("A♠", "3♥", "3♦"), true)
	assert.Equal(t, 17, score)
	assert.True(t, soft)
}

func TestIsNatural(t *testing.T) {
	assert.True(t, IsNatural(hand("A♠", "K♥")))
	assert.True(t, IsNatural(hand("10♠", "A♥")))
	assert.False(t, IsNatural(hand("7♠", "7♥", "7♦")))
	assert.False(t, IsNatural(hand("K♠", "Q♥")))
}

func TestNewDeck(t *testing.T) {
	deck := NewDeck(2, utils.NewSeededRandom(1))
	require.Len(t, deck, 104)

	counts := map[entities.Card]int{}
	for _, c := range deck {
		counts[c]++
	}
	assert.Len(t, counts, 52)
	for card, n := range counts {
		assert.Equal(t, 2, n, "card %s", card)
	}

	again := NewDeck(2, utils.NewSeededRandom(1))
	assert.Equal(t, deck, again)
}

func TestDrawCard_ReshufflesBelowLowWater(t *testing.T) {
	session := &entities.BlackjackSession{Deck: hand("5♠", "6♠", "7♠")}
	card := drawCard(session, 1, &testhelpers.ScriptedRandom{})

	// The unshuffled fresh deck ends with the ace of clubs
	assert.Equal(t, entities.Card("A♣"), card)
	assert.Len(t, session.Deck, 51)
}

func newTestBlackjackService(mocks *TestMocks, rng interfaces.RandomSource) interfaces.BlackjackService {
	return NewBlackjackService(TestGuildID, mocks.BlackjackRepo, mocks.Balance(), mocks.EventPublisher, rng)
}

func expectSettlement(mocks *TestMocks, sessionID int64, result entities.BlackjackResult, payout int64) {
	mocks.BlackjackRepo.On("RecordHistory", mock.Anything, mock.MatchedBy(func(h *entities.BlackjackHistory) bool {
		return h.SessionID == sessionID && h.Result == result && h.Payout == payout
	})).Return(nil).Once()
	mocks.BlackjackRepo.On("Delete", mock.Anything, sessionID).Return(nil).Once()
	mocks.EventPublisher.On("Publish", mock.MatchedBy(func(e events.Event) bool {
		settled, ok := e.(events.BlackjackSettledEvent)
		return ok && settled.Result == result && settled.Payout == payout
	})).Return(nil).Once()
}

func TestBlackjackService_StartGame_PlayerNatural(t *testing.T) {
	SetupTestConfig(t)
	ctx := context.Background()
	mocks := NewTestMocks()
	helper := NewMockHelper(mocks)

	// An unshuffled deck deals A♣ K♣ to the player and Q♣ J♣ to the dealer
	rng := &testhelpers.ScriptedRandom{}

	mocks.BlackjackRepo.On("GetByUser", mock.Anything, TestUser1ID).Return(nil, nil)
	helper.ExpectAccountLock(NewAccount(TestUser1ID, 1000, 0))
	helper.ExpectBalanceUpdate(TestUser1ID, 900, 0)
	helper.ExpectLedgerEntry(TestUser1ID, entities.BalanceKindCash, 1000, 900, entities.TransactionTypeBlackjackBet)
	mocks.BlackjackRepo.On("Create", mock.Anything, mock.MatchedBy(func(s *entities.BlackjackSession) bool {
		return s.Bet == 100 && len(s.PlayerHand) == 2 && len(s.DealerHand) == 2 && len(s.Deck) == 48
	})).Return(nil).Run(func(args mock.Arguments) {
		args.Get(1).(*entities.BlackjackSession).ID = 7
	})

	helper.ExpectAccountLock(NewAccount(TestUser1ID, 900, 0))
	helper.ExpectBalanceUpdate(TestUser1ID, 1150, 0)
	helper.ExpectLedgerEntry(TestUser1ID, entities.BalanceKindCash, 900, 1150, entities.TransactionTypeBlackjackPayout)
	expectSettlement(mocks, 7, entities.BlackjackResultBlackjack, 250)

	outcome, err := newTestBlackjackService(mocks, rng).StartGame(ctx, TestUser1ID, TestChannelID, 100)
	require.NoError(t, err)

	assert.True(t, outcome.Finished)
	assert.Equal(t, entities.BlackjackResultBlackjack, outcome.Result)
	assert.Equal(t, int64(250), outcome.Payout)
	assert.Equal(t, hand("A♣", "K♣"), outcome.Session.PlayerHand)
	assert.Equal(t, hand("Q♣", "J♣"), outcome.Session.DealerHand)
	mocks.AssertAllExpectations(t)
}

func TestBlackjackService_StartGame_Rejections(t *testing.T) {
	SetupTestConfig(t)
	ctx := context.Background()

	t.Run("below minimum bet", func(t *testing.T) {
		mocks := NewTestMocks()
		_, err := newTestBlackjackService(mocks, &testhelpers.ScriptedRandom{}).StartGame(ctx, TestUser1ID, TestChannelID, 5)
		assert.ErrorIs(t, err, entities.ErrInvalidAmount)
		mocks.BlackjackRepo.AssertNotCalled(t, "GetByUser", mock.Anything, mock.Anything)
	})

	t.Run("game already running", func(t *testing.T) {
		mocks := NewTestMocks()
		mocks.BlackjackRepo.On("GetByUser", mock.Anything, TestUser1ID).Return(&entities.BlackjackSession{ID: 1}, nil)

		_, err := newTestBlackjackService(mocks, &testhelpers.ScriptedRandom{}).StartGame(ctx, TestUser1ID, TestChannelID, 100)
		assert.ErrorIs(t, err, entities.ErrActiveSession)
		mocks.AccountRepo.AssertNotCalled(t, "GetForUpdate", mock.Anything, mock.Anything)
	})

	t.Run("cannot cover the bet", func(t *testing.T) {
		mocks := NewTestMocks()
		helper := NewMockHelper(mocks)
		mocks.BlackjackRepo.On("GetByUser", mock.Anything, TestUser1ID).Return(nil, nil)
		helper.ExpectAccountLock(NewAccount(TestUser1ID, 50, 0))

		_, err := newTestBlackjackService(mocks, &testhelpers.ScriptedRandom{}).StartGame(ctx, TestUser1ID, TestChannelID, 100)
		assert.ErrorIs(t, err, entities.ErrInsufficientFunds)
		mocks.BlackjackRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func activeSession(player, dealer []entities.Card, deck []entities.Card, bet int64) *entities.BlackjackSession {
	return &entities.BlackjackSession{
		ID:         11,
		UserID:     TestUser1ID,
		GuildID:    TestGuildID,
		ChannelID:  TestChannelID,
		PlayerHand: player,
		DealerHand: dealer,
		Deck:       deck,
		Bet:        bet,
	}
}

func TestBlackjackService_Hit(t *testing.T) {
	SetupTestConfig(t)
	ctx := context.Background()

	t.Run("still running", func(t *testing.T) {
		mocks := NewTestMocks()
		session := activeSession(hand("10♠", "2♠"), hand("9♦", "7♦"), stackedDeck("5♥"), 100)
		mocks.BlackjackRepo.On("GetByUserForUpdate", mock.Anything, TestUser1ID).Return(session, nil)
		mocks.BlackjackRepo.On("Update", mock.Anything, session).Return(nil)

		outcome, err := newTestBlackjackService(mocks, &testhelpers.ScriptedRandom{}).ApplyAction(ctx, TestUser1ID, entities.BlackjackActionHit)
		require.NoError(t, err)
		assert.False(t, outcome.Finished)
		assert.Equal(t, 17, outcome.PlayerScore)
		// Only the face-up dealer card counts while running
		assert.Equal(t, 7, outcome.DealerScore)
		mocks.AssertAllExpectations(t)
	})

	t.Run("bust loses", func(t *testing.T) {
		mocks := NewTestMocks()
		session := activeSession(hand("10♠", "6♠"), hand("9♦", "7♦"), stackedDeck("9♥"), 100)
		mocks.BlackjackRepo.On("GetByUserForUpdate", mock.Anything, TestUser1ID).Return(session, nil)
		expectSettlement(mocks, 11, entities.BlackjackResultDealer, 0)

		outcome, err := newTestBlackjackService(mocks, &testhelpers.ScriptedRandom{}).ApplyAction(ctx, TestUser1ID, entities.BlackjackActionHit)
		require.NoError(t, err)
		assert.True(t, outcome.Finished)
		assert.Equal(t, 25, outcome.PlayerScore)
		mocks.AccountRepo.AssertNotCalled(t, "GetForUpdate", mock.Anything, mock.Anything)
		mocks.AssertAllExpectations(t)
	})
}

func TestBlackjackService_Stand(t *testing.T) {
	SetupTestConfig(t)
	ctx := context.Background()

	t.Run("dealer draws and busts", func(t *testing.T) {
		mocks := NewTestMocks()
		helper := NewMockHelper(mocks)
		session := activeSession(hand("10♠", "8♠"), hand("10♦", "6♦"), stackedDeck("K♥"), 100)
		mocks.BlackjackRepo.On("GetByUserForUpdate", mock.Anything, TestUser1ID).Return(session, nil)
		helper.ExpectAccountLock(NewAccount(TestUser1ID, 0, 0))
		helper.ExpectBalanceUpdate(TestUser1ID, 200, 0)
		helper.ExpectLedgerEntry(TestUser1ID, entities.BalanceKindCash, 0, 200, entities.TransactionTypeBlackjackPayout)
		expectSettlement(mocks, 11, entities.BlackjackResultPlayer, 200)

		outcome, err := newTestBlackjackService(mocks, &testhelpers.ScriptedRandom{}).ApplyAction(ctx, TestUser1ID, entities.BlackjackActionStand)
		require.NoError(t, err)
		assert.Equal(t, 26, outcome.DealerScore)
		mocks.AssertAllExpectations(t)
	})

	t.Run("dealer wins", func(t *testing.T) {
		mocks := NewTestMocks()
		session := activeSession(hand("10♠", "7♠"), hand("10♦", "8♦"), stackedDeck(), 100)
		mocks.BlackjackRepo.On("GetByUserForUpdate", mock.Anything, TestUser1ID).Return(session, nil)
		expectSettlement(mocks, 11, entities.BlackjackResultDealer, 0)

		outcome, err := newTestBlackjackService(mocks, &testhelpers.ScriptedRandom{}).ApplyAction(ctx, TestUser1ID, entities.BlackjackActionStand)
		require.NoError(t, err)
		assert.Equal(t, entities.BlackjackResultDealer, outcome.Result)
		assert.Len(t, outcome.Session.DealerHand, 2)
		mocks.AssertAllExpectations(t)
	})

	t.Run("dealer soft seventeen with a six keeps drawing then pushes", func(t *testing.T) {
		mocks := NewTestMocks()
		helper := NewMockHelper(mocks)
		// A♠ 6♠ recounts to 8, then 9 makes 16 and 4 makes 20
		session := activeSession(hand("K♠", "Q♠"), hand("A♠", "6♠"), stackedDeck("9♥", "4♥"), 100)
		mocks.BlackjackRepo.On("GetByUserForUpdate", mock.Anything, TestUser1ID).Return(session, nil)
		helper.ExpectAccountLock(NewAccount(TestUser1ID, 0, 0))
		helper.ExpectBalanceUpdate(TestUser1ID, 100, 0)
		helper.ExpectLedgerEntry(TestUser1ID, entities.BalanceKindCash, 0, 100, entities.TransactionTypeBlackjackPayout)
		expectSettlement(mocks, 11, entities.BlackjackResultPush, 100)

		outcome, err := newTestBlackjackService(mocks, &testhelpers.ScriptedRandom{}).ApplyAction(ctx, TestUser1ID, entities.BlackjackActionStand)
		require.NoError(t, err)
		assert.Equal(t, hand("A♠", "6♠", "9♥", "4♥"), outcome.Session.DealerHand)
		assert.Equal(t, 20, outcome.DealerScore)
		mocks.AssertAllExpectations(t)
	})
}

func TestBlackjackService_Double(t *testing.T) {
	SetupTestConfig(t)
	ctx := context.Background()

	t.Run("doubles the bet and pays twice the doubled stake", func(t *testing.T) {
		mocks := NewTestMocks()
		helper := NewMockHelper(mocks)
		session := activeSession(hand("5♠", "6♠"), hand("10♦", "7♦"), stackedDeck("10♥"), 100)
		mocks.BlackjackRepo.On("GetByUserForUpdate", mock.Anything, TestUser1ID).Return(session, nil)

		helper.ExpectAccountLock(NewAccount(TestUser1ID, 300, 0))
		helper.ExpectBalanceUpdate(TestUser1ID, 200, 0)
		helper.ExpectLedgerEntry(TestUser1ID, entities.BalanceKindCash, 300, 200, entities.TransactionTypeBlackjackBet)
		helper.ExpectAccountLock(NewAccount(TestUser1ID, 200, 0))
		helper.ExpectBalanceUpdate(TestUser1ID, 600, 0)
		helper.ExpectLedgerEntry(TestUser1ID, entities.BalanceKindCash, 200, 600, entities.TransactionTypeBlackjackPayout)
		expectSettlement(mocks, 11, entities.BlackjackResultPlayer, 400)

		outcome, err := newTestBlackjackService(mocks, &testhelpers.ScriptedRandom{}).ApplyAction(ctx, TestUser1ID, entities.BlackjackActionDouble)
		require.NoError(t, err)
		assert.Equal(t, int64(200), outcome.Session.Bet)
		assert.Equal(t, 21, outcome.PlayerScore)
		mocks.AssertAllExpectations(t)
	})

	t.Run("only with two cards", func(t *testing.T) {
		mocks := NewTestMocks()
		session := activeSession(hand("2♠", "3♠", "4♠"), hand("10♦", "7♦"), stackedDeck(), 100)
		mocks.BlackjackRepo.On("GetByUserForUpdate", mock.Anything, TestUser1ID).Return(session, nil)

		_, err := newTestBlackjackService(mocks, &testhelpers.ScriptedRandom{}).ApplyAction(ctx, TestUser1ID, entities.BlackjackActionDouble)
		assert.ErrorIs(t, err, entities.ErrInvalidAction)
	})

	t.Run("needs cash to match the bet", func(t *testing.T) {
		mocks := NewTestMocks()
		helper := NewMockHelper(mocks)
		session := activeSession(hand("5♠", "6♠"), hand("10♦", "7♦"), stackedDeck(), 100)
		mocks.BlackjackRepo.On("GetByUserForUpdate", mock.Anything, TestUser1ID).Return(session, nil)
		helper.ExpectAccountLock(NewAccount(TestUser1ID, 40, 0))

		_, err := newTestBlackjackService(mocks, &testhelpers.ScriptedRandom{}).ApplyAction(ctx, TestUser1ID, entities.BlackjackActionDouble)
		assert.ErrorIs(t, err, entities.ErrInsufficientFunds)
	})
}

func TestBlackjackService_NoActiveSession(t *testing.T) {
	SetupTestConfig(t)
	ctx := context.Background()
	mocks := NewTestMocks()
	mocks.BlackjackRepo.On("GetByUserForUpdate", mock.Anything, TestUser1ID).Return(nil, nil)
	mocks.BlackjackRepo.On("GetByUser", mock.Anything, TestUser1ID).Return(nil, nil)
	service := newTestBlackjackService(mocks, &testhelpers.ScriptedRandom{})

	_, err := service.ApplyAction(ctx, TestUser1ID, entities.BlackjackActionStand)
	assert.ErrorIs(t, err, entities.ErrNoActiveSession)

	_, err = service.GetActiveGame(ctx, TestUser1ID)
	assert.ErrorIs(t, err, entities.ErrNoActiveSession)

	_, err = service.ApplyAction(ctx, TestUser1ID, entities.BlackjackAction("split"))
	assert.ErrorIs(t, err, entities.ErrInvalidAction)
}

func TestBlackjackService_ExpireGame(t *testing.T) {
	SetupTestConfig(t)
	ctx := context.Background()
	mocks := NewTestMocks()
	session := activeSession(hand("10♠", "7♠"), hand("10♦", "8♦"), stackedDeck(), 100)
	mocks.BlackjackRepo.On("GetByUserForUpdate", mock.Anything, TestUser1ID).Return(session, nil)
	mocks.BlackjackRepo.On("RecordHistory", mock.Anything, mock.Anything).Return(nil).Once()
	mocks.BlackjackRepo.On("Delete", mock.Anything, int64(11)).Return(nil).Once()
	mocks.EventPublisher.On("Publish", mock.MatchedBy(func(e events.Event) bool {
		settled, ok := e.(events.BlackjackSettledEvent)
		return ok && settled.TimedOut && settled.Result == entities.BlackjackResultDealer
	})).Return(nil).Once()

	outcome, err := newTestBlackjackService(mocks, &testhelpers.ScriptedRandom{}).ExpireGame(ctx, TestUser1ID, time.Now())
	require.NoError(t, err)
	assert.True(t, outcome.Finished)
	assert.True(t, outcome.TimedOut)
	mocks.AssertAllExpectations(t)
}

func TestBlackjackService_ExpireGameLeavesRecentGame(t *testing.T) {
	SetupTestConfig(t)
	ctx := context.Background()
	mocks := NewTestMocks()
	session := activeSession(hand("10♠", "7♠"), hand("10♦", "8♦"), stackedDeck(), 100)
	session.UpdatedAt = time.Now()
	mocks.BlackjackRepo.On("GetByUserForUpdate", mock.Anything, TestUser1ID).Return(session, nil).Once()

	outcome, err := newTestBlackjackService(mocks, &testhelpers.ScriptedRandom{}).ExpireGame(ctx, TestUser1ID, time.Now().Add(-time.Minute))

	assert.ErrorIs(t, err, entities.ErrGameNotIdle)
	assert.Nil(t, outcome)
	mocks.BlackjackRepo.AssertNotCalled(t, "RecordHistory", mock.Anything, mock.Anything)
	mocks.BlackjackRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	mocks.EventPublisher.AssertNotCalled(t, "Publish", mock.Anything)
}
