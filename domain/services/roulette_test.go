package services

import (
	"context"
	"testing"
	"time"

	"casino/economy-bot/domain/entities"
	"casino/economy-bot/domain/events"
	"casino/economy-bot/domain/interfaces"
	"casino/economy-bot/domain/testhelpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestParseSpace(t *testing.T) {
	tests := []struct {
		input     string
		wantSpace string
		wantType  entities.SpaceType
		wantErr   bool
	}{
		{"0", "0", entities.SpaceTypeNumber, false},
		{"36", "36", entities.SpaceTypeNumber, false},
		{"07", "7", entities.SpaceTypeNumber, false},
		{"37", "", "", true},
		{"-1", "", "", true},
		{"1-12", "1-12", entities.SpaceTypeDozen, false},
		{"25-36", "25-36", entities.SpaceTypeDozen, false},
		{"2nd", "2nd", entities.SpaceTypeColumn, false},
		{"19-36", "19-36", entities.SpaceTypeHalf, false},
		{"ODD", "odd", entities.SpaceTypeParity, false},
		{" Red ", "red", entities.SpaceTypeColor, false},
		{"green", "", "", true},
		{"1-13", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			space, spaceType, err := ParseSpace(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, entities.ErrInvalidAction)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantSpace, space)
			assert.Equal(t, tt.wantType, spaceType)
		})
	}
}

func TestSlotColorOf(t *testing.T) {
	assert.Equal(t, entities.SlotColorGreen, SlotColorOf(0))
	assert.Equal(t, entities.SlotColorRed, SlotColorOf(1))
	assert.Equal(t, entities.SlotColorBlack, SlotColorOf(2))
	assert.Equal(t, entities.SlotColorRed, SlotColorOf(35))
	assert.Equal(t, entities.SlotColorBlack, SlotColorOf(36))
}

func TestBetWins(t *testing.T) {
	tests := []struct {
		space     string
		spaceType entities.SpaceType
		slot      int
		want      bool
	}{
		{"17", entities.SpaceTypeNumber, 17, true},
		{"17", entities.SpaceTypeNumber, 18, false},
		{"0", entities.SpaceTypeNumber, 0, true},
		{"13-24", entities.SpaceTypeDozen, 13, true},
		{"13-24", entities.SpaceTypeDozen, 25, false},
		{"1st", entities.SpaceTypeColumn, 34, true},
		{"2nd", entities.SpaceTypeColumn, 35, true},
		{"3rd", entities.SpaceTypeColumn, 36, true},
		{"3rd", entities.SpaceTypeColumn, 0, false},
		{"1-18", entities.SpaceTypeHalf, 18, true},
		{"19-36", entities.SpaceTypeHalf, 18, false},
		{"odd", entities.SpaceTypeParity, 7, true},
		{"even", entities.SpaceTypeParity, 0, false},
		{"red", entities.SpaceTypeColor, 9, true},
		{"black", entities.SpaceTypeColor, 9, false},
		{"black", entities.SpaceTypeColor, 0, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, BetWins(tt.space, tt.spaceType, tt.slot), "%s on %d", tt.space, tt.slot)
	}
}

func TestWinnings(t *testing.T) {
	red := &entities.RouletteBet{Amount: 100, Space: "red", SpaceType: entities.SpaceTypeColor}
	assert.Equal(t, int64(200), Winnings(red, 3))
	assert.Equal(t, int64(0), Winnings(red, 4))

	straight := &entities.RouletteBet{Amount: 10, Space: "5", SpaceType: entities.SpaceTypeNumber}
	assert.Equal(t, int64(360), Winnings(straight, 5))

	dozen := &entities.RouletteBet{Amount: 50, Space: "25-36", SpaceType: entities.SpaceTypeDozen}
	assert.Equal(t, int64(150), Winnings(dozen, 30))
}

func newTestRouletteService(mocks *TestMocks, rng interfaces.RandomSource) interfaces.RouletteService {
	return NewRouletteService(TestGuildID, mocks.RouletteRepo, mocks.Balance(), mocks.EventPublisher, rng)
}

func TestRouletteService_PlaceBet_OpensRound(t *testing.T) {
	SetupTestConfig(t)
	ctx := context.Background()
	mocks := NewTestMocks()
	helper := NewMockHelper(mocks)

	helper.ExpectAccountLock(NewAccount(TestUser1ID, 500, 0))
	helper.ExpectBalanceUpdate(TestUser1ID, 400, 0)
	helper.ExpectLedgerEntry(TestUser1ID, entities.BalanceKindCash, 500, 400, entities.TransactionTypeRouletteBet)
	mocks.RouletteRepo.On("GetRoundByChannel", mock.Anything, TestChannelID).Return(nil, nil)
	mocks.RouletteRepo.On("CreateRound", mock.Anything, mock.MatchedBy(func(r *entities.RouletteRound) bool {
		return r.ChannelID == TestChannelID && r.GuildID == TestGuildID && time.Until(r.EndTime) > 25*time.Second
	})).Return(nil).Run(func(args mock.Arguments) {
		args.Get(1).(*entities.RouletteRound).ID = 3
	})
	mocks.RouletteRepo.On("AddBet", mock.Anything, mock.MatchedBy(func(b *entities.RouletteBet) bool {
		return b.RoundID == 3 && b.Amount == 100 && b.Space == "red" && b.SpaceType == entities.SpaceTypeColor
	})).Return(nil)

	placement, err := newTestRouletteService(mocks, &testhelpers.ScriptedRandom{}).PlaceBet(ctx, TestChannelID, TestUser1ID, 100, "Red")
	require.NoError(t, err)
	assert.True(t, placement.OpenedRound)
	assert.False(t, placement.Refunded)
	assert.Equal(t, int64(3), placement.Round.ID)
	mocks.AssertAllExpectations(t)
}

func TestRouletteService_PlaceBet_ClosedRoundRefunds(t *testing.T) {
	SetupTestConfig(t)
	ctx := context.Background()
	mocks := NewTestMocks()
	helper := NewMockHelper(mocks)

	helper.ExpectAccountLock(NewAccount(TestUser1ID, 500, 0))
	helper.ExpectBalanceUpdate(TestUser1ID, 300, 0)
	helper.ExpectLedgerEntry(TestUser1ID, entities.BalanceKindCash, 500, 300, entities.TransactionTypeRouletteBet)
	mocks.RouletteRepo.On("GetRoundByChannel", mock.Anything, TestChannelID).Return(&entities.RouletteRound{
		ID:        4,
		GuildID:   TestGuildID,
		ChannelID: TestChannelID,
		EndTime:   time.Now().Add(-time.Second),
	}, nil)
	helper.ExpectAccountLock(NewAccount(TestUser1ID, 300, 0))
	helper.ExpectBalanceUpdate(TestUser1ID, 500, 0)
	helper.ExpectLedgerEntry(TestUser1ID, entities.BalanceKindCash, 300, 500, entities.TransactionTypeRouletteRefund)

	placement, err := newTestRouletteService(mocks, &testhelpers.ScriptedRandom{}).PlaceBet(ctx, TestChannelID, TestUser1ID, 200, "odd")
	require.NoError(t, err)
	assert.True(t, placement.Refunded)
	assert.Nil(t, placement.Bet)
	mocks.RouletteRepo.AssertNotCalled(t, "AddBet", mock.Anything, mock.Anything)
	mocks.AssertAllExpectations(t)
}

func TestRouletteService_PlaceBet_ValidatesBeforeStorage(t *testing.T) {
	SetupTestConfig(t)
	ctx := context.Background()
	mocks := NewTestMocks()
	service := newTestRouletteService(mocks, &testhelpers.ScriptedRandom{})

	_, err := service.PlaceBet(ctx, TestChannelID, TestUser1ID, 99, "red")
	assert.ErrorIs(t, err, entities.ErrInvalidAmount)

	_, err = service.PlaceBet(ctx, TestChannelID, TestUser1ID, 100, "purple")
	assert.ErrorIs(t, err, entities.ErrInvalidAction)

	mocks.AccountRepo.AssertNotCalled(t, "Ensure", mock.Anything, mock.Anything)
}

func TestRouletteService_ResolveRound(t *testing.T) {
	ctx := context.Background()
	mocks := NewTestMocks()
	helper := NewMockHelper(mocks)

	preset := 9
	mocks.RouletteRepo.On("GetRoundByChannel", mock.Anything, TestChannelID).Return(&entities.RouletteRound{
		ID:        5,
		GuildID:   TestGuildID,
		ChannelID: TestChannelID,
		Result:    &preset,
	}, nil)
	mocks.RouletteRepo.On("GetBets", mock.Anything, int64(5)).Return([]*entities.RouletteBet{
		{ID: 1, RoundID: 5, UserID: TestUser1ID, Amount: 100, Space: "red", SpaceType: entities.SpaceTypeColor},
		{ID: 2, RoundID: 5, UserID: TestUser2ID, Amount: 100, Space: "even", SpaceType: entities.SpaceTypeParity},
		{ID: 3, RoundID: 5, UserID: TestUser2ID, Amount: 10, Space: "9", SpaceType: entities.SpaceTypeNumber},
	}, nil)

	helper.ExpectAccountLock(NewAccount(TestUser1ID, 0, 0))
	helper.ExpectBalanceUpdate(TestUser1ID, 200, 0)
	helper.ExpectLedgerEntry(TestUser1ID, entities.BalanceKindCash, 0, 200, entities.TransactionTypeRoulettePayout)
	helper.ExpectAccountLock(NewAccount(TestUser2ID, 0, 0))
	helper.ExpectBalanceUpdate(TestUser2ID, 360, 0)
	helper.ExpectLedgerEntry(TestUser2ID, entities.BalanceKindCash, 0, 360, entities.TransactionTypeRoulettePayout)

	mocks.RouletteRepo.On("RecordHistory", mock.Anything, mock.MatchedBy(func(entries []*entities.RouletteHistoryEntry) bool {
		return len(entries) == 3 && entries[0].Winnings == 200 && entries[1].Winnings == 0 && entries[2].Winnings == 360
	})).Return(nil)
	mocks.RouletteRepo.On("DeleteRound", mock.Anything, int64(5)).Return(nil)
	mocks.EventPublisher.On("Publish", mock.MatchedBy(func(e events.Event) bool {
		resolved, ok := e.(events.RouletteResolvedEvent)
		return ok && resolved.Result == 9 && resolved.TotalWagered == 210 && resolved.TotalWinnings == 560
	})).Return(nil)

	settlement, err := newTestRouletteService(mocks, &testhelpers.ScriptedRandom{Ints: []int{30}}).ResolveRound(ctx, TestChannelID)
	require.NoError(t, err)
	assert.Equal(t, 9, settlement.Result)
	assert.Equal(t, entities.SlotColorRed, settlement.Color)
	assert.Equal(t, int64(560), settlement.TotalWinnings())
	mocks.AssertAllExpectations(t)
}

func TestRouletteService_ResolveRound_RandomSlotWithoutBets(t *testing.T) {
	ctx := context.Background()
	mocks := NewTestMocks()

	mocks.RouletteRepo.On("GetRoundByChannel", mock.Anything, TestChannelID).Return(&entities.RouletteRound{ID: 6, ChannelID: TestChannelID}, nil)
	mocks.RouletteRepo.On("GetBets", mock.Anything, int64(6)).Return([]*entities.RouletteBet{}, nil)
	mocks.RouletteRepo.On("DeleteRound", mock.Anything, int64(6)).Return(nil)
	NewMockHelper(mocks).ExpectEventPublish(events.EventTypeRouletteResolved)

	settlement, err := newTestRouletteService(mocks, &testhelpers.ScriptedRandom{Ints: []int{40}}).ResolveRound(ctx, TestChannelID)
	require.NoError(t, err)
	assert.Equal(t, 3, settlement.Result)
	mocks.RouletteRepo.AssertNotCalled(t, "RecordHistory", mock.Anything, mock.Anything)
	mocks.AssertAllExpectations(t)
}

func TestRouletteService_SetResult(t *testing.T) {
	ctx := context.Background()
	mocks := NewTestMocks()
	service := newTestRouletteService(mocks, &testhelpers.ScriptedRandom{})

	assert.ErrorIs(t, service.SetResult(ctx, TestChannelID, 37), entities.ErrInvalidAction)

	mocks.RouletteRepo.On("GetRoundByChannel", mock.Anything, TestChannelID).Return(nil, nil).Once()
	assert.ErrorIs(t, service.SetResult(ctx, TestChannelID, 5), entities.ErrNotFound)

	mocks.RouletteRepo.On("GetRoundByChannel", mock.Anything, TestChannelID).Return(&entities.RouletteRound{ID: 1}, nil).Once()
	mocks.RouletteRepo.On("SetResult", mock.Anything, TestChannelID, 5).Return(nil)
	assert.NoError(t, service.SetResult(ctx, TestChannelID, 5))
}
