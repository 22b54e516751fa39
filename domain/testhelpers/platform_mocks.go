package testhelpers

import (
	"context"

	"casino/economy-bot/domain/entities"

	"github.com/stretchr/testify/mock"
)

// MockRoleManager is a mock implementation of RoleManager
type MockRoleManager struct {
	mock.Mock
}

func (m *MockRoleManager) HasRole(ctx context.Context, guildID, userID, roleID int64) (bool, error) {
	args := m.Called(ctx, guildID, userID, roleID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRoleManager) AddRole(ctx context.Context, guildID, userID, roleID int64) error {
	args := m.Called(ctx, guildID, userID, roleID)
	return args.Error(0)
}

func (m *MockRoleManager) RemoveRole(ctx context.Context, guildID, userID, roleID int64) error {
	args := m.Called(ctx, guildID, userID, roleID)
	return args.Error(0)
}

// MockResponder is a mock implementation of Responder
type MockResponder struct {
	mock.Mock
}

func (m *MockResponder) RespondWith(ctx context.Context, outcome *entities.BlackjackOutcome) error {
	args := m.Called(ctx, outcome)
	return args.Error(0)
}

func (m *MockResponder) Notify(ctx context.Context, message string) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}

// ScriptedRandom replays fixed values so tests can pin every random decision.
// Exhausted scripts return zero. Shuffle leaves the order untouched.
type ScriptedRandom struct {
	Floats []float64
	Ints   []int
}

func (r *ScriptedRandom) Float64() float64 {
	if len(r.Floats) == 0 {
		return 0
	}
	v := r.Floats[0]
	r.Floats = r.Floats[1:]
	return v
}

// IntN returns the next scripted value modulo n
func (r *ScriptedRandom) IntN(n int) int {
	if len(r.Ints) == 0 {
		return 0
	}
	v := r.Ints[0]
	r.Ints = r.Ints[1:]
	return v % n
}

func (r *ScriptedRandom) Shuffle(n int, swap func(i, j int)) {}
