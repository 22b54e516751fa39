package application

import (
	"context"
	"sync"
	"time"

	"casino/economy-bot/domain/events"
	"casino/economy-bot/domain/interfaces"
	"casino/economy-bot/domain/testhelpers"
)

const (
	testGuildID   = int64(555555555)
	testChannelID = int64(987654321)
	testUserID    = int64(100)
	testRoleID    = int64(424242)
)

// testRepos holds the repository mocks every fake unit of work hands out
type testRepos struct {
	AccountRepo     *testhelpers.MockAccountRepository
	LedgerRepo      *testhelpers.MockLedgerRepository
	CooldownRepo    *testhelpers.MockCooldownRepository
	ShopRepo        *testhelpers.MockShopRepository
	InventoryRepo   *testhelpers.MockInventoryRepository
	CrateRepo       *testhelpers.MockCrateRepository
	TempRoleRepo    *testhelpers.MockTempRoleRepository
	BlackjackRepo   *testhelpers.MockBlackjackRepository
	RouletteRepo    *testhelpers.MockRouletteRepository
	FightChanceRepo *testhelpers.MockFightChanceRepository
}

func newTestRepos() *testRepos {
	return &testRepos{
		AccountRepo:     &testhelpers.MockAccountRepository{},
		LedgerRepo:      &testhelpers.MockLedgerRepository{},
		CooldownRepo:    &testhelpers.MockCooldownRepository{},
		ShopRepo:        &testhelpers.MockShopRepository{},
		InventoryRepo:   &testhelpers.MockInventoryRepository{},
		CrateRepo:       &testhelpers.MockCrateRepository{},
		TempRoleRepo:    &testhelpers.MockTempRoleRepository{},
		BlackjackRepo:   &testhelpers.MockBlackjackRepository{},
		RouletteRepo:    &testhelpers.MockRouletteRepository{},
		FightChanceRepo: &testhelpers.MockFightChanceRepository{},
	}
}

// recordingPublisher keeps published events, committed or not
type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) Events() []events.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]events.Event(nil), p.events...)
}

// fakeUnitOfWork serves the shared mocks and counts lifecycle calls
type fakeUnitOfWork struct {
	factory    *fakeUnitOfWorkFactory
	guildID    int64
	commitErr  error
	committed  bool
	rolledBack bool
}

func (u *fakeUnitOfWork) Begin(ctx context.Context) error {
	return u.factory.beginErr
}

func (u *fakeUnitOfWork) Commit() error {
	if u.commitErr != nil {
		return u.commitErr
	}
	u.committed = true
	return nil
}

func (u *fakeUnitOfWork) Rollback() error {
	if !u.committed {
		u.rolledBack = true
	}
	return nil
}

func (u *fakeUnitOfWork) AccountRepository() interfaces.AccountRepository {
	return u.factory.repos.AccountRepo
}

func (u *fakeUnitOfWork) LedgerRepository() interfaces.LedgerRepository {
	return u.factory.repos.LedgerRepo
}

func (u *fakeUnitOfWork) CooldownRepository() interfaces.CooldownRepository {
	return u.factory.repos.CooldownRepo
}

func (u *fakeUnitOfWork) ShopRepository() interfaces.ShopRepository {
	return u.factory.repos.ShopRepo
}

func (u *fakeUnitOfWork) InventoryRepository() interfaces.InventoryRepository {
	return u.factory.repos.InventoryRepo
}

func (u *fakeUnitOfWork) CrateRepository() interfaces.CrateRepository {
	return u.factory.repos.CrateRepo
}

func (u *fakeUnitOfWork) TempRoleRepository() interfaces.TempRoleRepository {
	return u.factory.repos.TempRoleRepo
}

func (u *fakeUnitOfWork) BlackjackRepository() interfaces.BlackjackRepository {
	return u.factory.repos.BlackjackRepo
}

func (u *fakeUnitOfWork) RouletteRepository() interfaces.RouletteRepository {
	return u.factory.repos.RouletteRepo
}

func (u *fakeUnitOfWork) FightChanceRepository() interfaces.FightChanceRepository {
	return u.factory.repos.FightChanceRepo
}

func (u *fakeUnitOfWork) EventBus() interfaces.EventPublisher {
	return u.factory.publisher
}

// fakeUnitOfWorkFactory hands out fake units of work. commitErrs are consumed
// one per created unit of work, so a test can script conflicts.
type fakeUnitOfWorkFactory struct {
	mu         sync.Mutex
	repos      *testRepos
	publisher  *recordingPublisher
	beginErr   error
	commitErrs []error
	created    []*fakeUnitOfWork
}

func newFakeUnitOfWorkFactory() *fakeUnitOfWorkFactory {
	return &fakeUnitOfWorkFactory{
		repos:     newTestRepos(),
		publisher: &recordingPublisher{},
	}
}

func (f *fakeUnitOfWorkFactory) CreateForGuild(guildID int64) interfaces.UnitOfWork {
	f.mu.Lock()
	defer f.mu.Unlock()

	uow := &fakeUnitOfWork{factory: f, guildID: guildID}
	if len(f.commitErrs) > 0 {
		uow.commitErr = f.commitErrs[0]
		f.commitErrs = f.commitErrs[1:]
	}
	f.created = append(f.created, uow)
	return uow
}

func (f *fakeUnitOfWorkFactory) Created() []*fakeUnitOfWork {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*fakeUnitOfWork(nil), f.created...)
}

// newTestTransactor retries quickly so conflict tests stay fast
func newTestTransactor(f *fakeUnitOfWorkFactory) *Transactor {
	return NewTransactorWithPolicy(f, 3, time.Millisecond)
}
