package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"casino/economy-bot/domain/entities"
	"casino/economy-bot/domain/events"
	"casino/economy-bot/domain/testhelpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestScheduler(t *testing.T, grants []*entities.TempRoleGrant) (*GrantScheduler, *fakeUnitOfWorkFactory, *testhelpers.MockRoleManager) {
	t.Helper()
	factory := newFakeUnitOfWorkFactory()
	roles := &testhelpers.MockRoleManager{}
	factory.repos.TempRoleRepo.On("GetAll", mock.Anything).Return(grants, nil).Once()

	scheduler := NewGrantScheduler(newTestTransactor(factory), roles)
	t.Cleanup(scheduler.Stop)
	return scheduler, factory, roles
}

func TestGrantScheduler_ScheduleRevocation(t *testing.T) {
	ctx := context.Background()

	t.Run("ignored until started", func(t *testing.T) {
		scheduler := NewGrantScheduler(newTestTransactor(newFakeUnitOfWorkFactory()), &testhelpers.MockRoleManager{})

		scheduler.ScheduleRevocation(testGuildID, testUserID, testRoleID, time.Now().Add(time.Hour))

		assert.Equal(t, 0, scheduler.Pending())
	})

	t.Run("rescheduling keeps one timer per grant", func(t *testing.T) {
		scheduler, _, _ := newTestScheduler(t, nil)
		require.NoError(t, scheduler.Start(ctx))

		first := time.Now().Add(time.Hour)
		second := first.Add(time.Hour)
		scheduler.ScheduleRevocation(testGuildID, testUserID, testRoleID, first)
		scheduler.ScheduleRevocation(testGuildID, testUserID, testRoleID, second)
		scheduler.ScheduleRevocation(testGuildID, testUserID, testRoleID+1, first)

		assert.Equal(t, 2, scheduler.Pending())
		pending := scheduler.PendingRevocations()
		require.Len(t, pending, 2)
		assert.Equal(t, testRoleID+1, pending[0].RoleID)
		assert.True(t, pending[1].ExpiresAt.Equal(second))
	})

	t.Run("stop clears every timer", func(t *testing.T) {
		scheduler, _, _ := newTestScheduler(t, nil)
		require.NoError(t, scheduler.Start(ctx))
		scheduler.ScheduleRevocation(testGuildID, testUserID, testRoleID, time.Now().Add(time.Hour))

		scheduler.Stop()

		assert.Equal(t, 0, scheduler.Pending())
		scheduler.ScheduleRevocation(testGuildID, testUserID, testRoleID, time.Now().Add(time.Hour))
		assert.Equal(t, 0, scheduler.Pending())
	})
}

func TestGrantScheduler_Revoke(t *testing.T) {
	ctx := context.Background()

	t.Run("expired grant removes the role and publishes", func(t *testing.T) {
		scheduler, factory, roles := newTestScheduler(t, nil)
		require.NoError(t, scheduler.Start(ctx))

		factory.repos.TempRoleRepo.On("DeleteIfExpired", mock.Anything, testUserID, testRoleID, mock.AnythingOfType("time.Time")).
			Return(true, nil).Once()
		roles.On("HasRole", mock.Anything, testGuildID, testUserID, testRoleID).Return(true, nil).Once()
		roles.On("RemoveRole", mock.Anything, testGuildID, testUserID, testRoleID).Return(nil).Once()

		scheduler.ScheduleRevocation(testGuildID, testUserID, testRoleID, time.Now().Add(-time.Second))

		require.Eventually(t, func() bool { return scheduler.Pending() == 0 }, time.Second, 5*time.Millisecond)
		roles.AssertExpectations(t)
		factory.repos.TempRoleRepo.AssertExpectations(t)

		published := factory.publisher.Events()
		require.Len(t, published, 1)
		expired, ok := published[0].(events.TempRoleExpiredEvent)
		require.True(t, ok)
		assert.Equal(t, testRoleID, expired.RoleID)
		assert.Equal(t, testGuildID, expired.GuildID)
	})

	t.Run("extended grant keeps the role", func(t *testing.T) {
		scheduler, factory, roles := newTestScheduler(t, nil)
		require.NoError(t, scheduler.Start(ctx))

		factory.repos.TempRoleRepo.On("DeleteIfExpired", mock.Anything, testUserID, testRoleID, mock.AnythingOfType("time.Time")).
			Return(false, nil).Once()
		factory.repos.TempRoleRepo.On("Get", mock.Anything, testUserID, testRoleID).
			Return(&entities.TempRoleGrant{
				UserID:    testUserID,
				GuildID:   testGuildID,
				RoleID:    testRoleID,
				ExpiresAt: time.Now().Add(time.Hour),
			}, nil).Once()

		scheduler.ScheduleRevocation(testGuildID, testUserID, testRoleID, time.Now())

		require.Eventually(t, func() bool { return scheduler.Pending() == 0 }, time.Second, 5*time.Millisecond)
		roles.AssertNotCalled(t, "RemoveRole", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		assert.Empty(t, factory.publisher.Events())
	})

	t.Run("role already gone is not removed again", func(t *testing.T) {
		scheduler, factory, roles := newTestScheduler(t, nil)
		require.NoError(t, scheduler.Start(ctx))

		factory.repos.TempRoleRepo.On("DeleteIfExpired", mock.Anything, testUserID, testRoleID, mock.AnythingOfType("time.Time")).
			Return(true, nil).Once()
		roles.On("HasRole", mock.Anything, testGuildID, testUserID, testRoleID).Return(false, nil).Once()

		scheduler.ScheduleRevocation(testGuildID, testUserID, testRoleID, time.Now())

		require.Eventually(t, func() bool { return scheduler.Pending() == 0 }, time.Second, 5*time.Millisecond)
		roles.AssertExpectations(t)
		roles.AssertNotCalled(t, "RemoveRole", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestGrantScheduler_RevokeFailure(t *testing.T) {
	ctx := context.Background()

	t.Run("failed removal keeps the grant and retries", func(t *testing.T) {
		scheduler, factory, roles := newTestScheduler(t, nil)
		scheduler.retryInterval = 5 * time.Millisecond
		require.NoError(t, scheduler.Start(ctx))
		recovered := len(factory.Created())

		factory.repos.TempRoleRepo.On("DeleteIfExpired", mock.Anything, testUserID, testRoleID, mock.AnythingOfType("time.Time")).
			Return(true, nil).Twice()
		roles.On("HasRole", mock.Anything, testGuildID, testUserID, testRoleID).Return(true, nil).Twice()
		roles.On("RemoveRole", mock.Anything, testGuildID, testUserID, testRoleID).Return(errors.New("discord 503")).Once()
		roles.On("RemoveRole", mock.Anything, testGuildID, testUserID, testRoleID).Return(nil).Once()

		scheduler.ScheduleRevocation(testGuildID, testUserID, testRoleID, time.Now().Add(-time.Second))

		require.Eventually(t, func() bool { return scheduler.Pending() == 0 }, time.Second, 5*time.Millisecond)
		roles.AssertNumberOfCalls(t, "RemoveRole", 2)
		factory.repos.TempRoleRepo.AssertExpectations(t)

		created := factory.Created()[recovered:]
		require.Len(t, created, 2)
		assert.False(t, created[0].committed)
		assert.True(t, created[0].rolledBack)
		assert.True(t, created[1].committed)
		assert.Len(t, factory.publisher.Events(), 1)
	})

	t.Run("grant stays scheduled while removal keeps failing", func(t *testing.T) {
		scheduler, factory, roles := newTestScheduler(t, nil)
		scheduler.retryInterval = time.Hour
		require.NoError(t, scheduler.Start(ctx))

		failed := make(chan struct{})
		factory.repos.TempRoleRepo.On("DeleteIfExpired", mock.Anything, testUserID, testRoleID, mock.AnythingOfType("time.Time")).
			Return(true, nil).Once()
		roles.On("HasRole", mock.Anything, testGuildID, testUserID, testRoleID).Return(true, nil).Once()
		roles.On("RemoveRole", mock.Anything, testGuildID, testUserID, testRoleID).
			Run(func(mock.Arguments) { close(failed) }).
			Return(errors.New("discord 503")).Once()

		scheduler.ScheduleRevocation(testGuildID, testUserID, testRoleID, time.Now())

		select {
		case <-failed:
		case <-time.After(time.Second):
			t.Fatal("revocation never fired")
		}
		assert.Equal(t, 1, scheduler.Pending())
		assert.Empty(t, factory.publisher.Events())
	})
}

func TestGrantScheduler_RecoverPendingGrants(t *testing.T) {
	ctx := context.Background()

	t.Run("re-applies missing roles and schedules active grants", func(t *testing.T) {
		active := &entities.TempRoleGrant{
			UserID:    testUserID,
			GuildID:   testGuildID,
			RoleID:    testRoleID,
			ExpiresAt: time.Now().Add(time.Hour),
		}
		held := &entities.TempRoleGrant{
			UserID:    testUserID + 1,
			GuildID:   testGuildID,
			RoleID:    testRoleID,
			ExpiresAt: time.Now().Add(2 * time.Hour),
		}
		scheduler, factory, roles := newTestScheduler(t, []*entities.TempRoleGrant{active, held})

		roles.On("HasRole", mock.Anything, testGuildID, testUserID, testRoleID).Return(false, nil).Once()
		roles.On("AddRole", mock.Anything, testGuildID, testUserID, testRoleID).Return(nil).Once()
		roles.On("HasRole", mock.Anything, testGuildID, testUserID+1, testRoleID).Return(true, nil).Once()

		require.NoError(t, scheduler.Start(ctx))

		assert.Equal(t, 2, scheduler.Pending())
		roles.AssertExpectations(t)
		factory.repos.TempRoleRepo.AssertExpectations(t)
		assert.Equal(t, int64(0), factory.Created()[0].guildID)
	})

	t.Run("platform failures do not abort recovery", func(t *testing.T) {
		grant := &entities.TempRoleGrant{
			UserID:    testUserID,
			GuildID:   testGuildID,
			RoleID:    testRoleID,
			ExpiresAt: time.Now().Add(time.Hour),
		}
		scheduler, _, roles := newTestScheduler(t, []*entities.TempRoleGrant{grant})
		roles.On("HasRole", mock.Anything, testGuildID, testUserID, testRoleID).Return(false, errors.New("member left")).Once()

		require.NoError(t, scheduler.Start(ctx))

		assert.Equal(t, 1, scheduler.Pending())
	})

	t.Run("load failure is returned", func(t *testing.T) {
		factory := newFakeUnitOfWorkFactory()
		factory.repos.TempRoleRepo.On("GetAll", mock.Anything).Return(nil, errors.New("db down")).Once()
		scheduler := NewGrantScheduler(newTestTransactor(factory), &testhelpers.MockRoleManager{})
		t.Cleanup(scheduler.Stop)

		err := scheduler.Start(ctx)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to load temporary roles")
	})
}
