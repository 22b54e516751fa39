package application

import (
	"casino/economy-bot/domain/interfaces"
	"casino/economy-bot/domain/services"
)

// guildServices builds the domain services of one unit of work
type guildServices struct {
	uow     interfaces.UnitOfWork
	guildID int64
	rng     interfaces.RandomSource
	roles   interfaces.RoleManager
}

func newGuildServices(uow interfaces.UnitOfWork, guildID int64, rng interfaces.RandomSource, roles interfaces.RoleManager) *guildServices {
	return &guildServices{uow: uow, guildID: guildID, rng: rng, roles: roles}
}

func (s *guildServices) Balance() interfaces.BalanceService {
	return services.NewBalanceService(s.uow.AccountRepository(), s.uow.LedgerRepository(), s.uow.EventBus())
}

func (s *guildServices) Cooldown() interfaces.CooldownService {
	return services.NewCooldownService(s.uow.CooldownRepository())
}

func (s *guildServices) Crate() interfaces.CrateService {
	return services.NewCrateService(
		s.guildID,
		s.uow.CrateRepository(),
		s.uow.ShopRepository(),
		s.uow.InventoryRepository(),
		s.uow.TempRoleRepository(),
		s.Balance(),
		s.roles,
		s.uow.EventBus(),
		s.rng,
	)
}

func (s *guildServices) Blackjack() interfaces.BlackjackService {
	return services.NewBlackjackService(s.guildID, s.uow.BlackjackRepository(), s.Balance(), s.uow.EventBus(), s.rng)
}

func (s *guildServices) Roulette() interfaces.RouletteService {
	return services.NewRouletteService(s.guildID, s.uow.RouletteRepository(), s.Balance(), s.uow.EventBus(), s.rng)
}

func (s *guildServices) Income() interfaces.IncomeService {
	return services.NewIncomeService(s.Balance(), s.Cooldown(), s.rng)
}

func (s *guildServices) Payment() interfaces.PaymentService {
	return services.NewPaymentService(s.Balance(), s.Cooldown())
}

func (s *guildServices) Robbery() interfaces.RobberyService {
	return services.NewRobberyService(s.Balance(), s.Cooldown(), s.rng)
}

func (s *guildServices) Shop() interfaces.ShopService {
	return services.NewShopService(s.guildID, s.uow.ShopRepository(), s.uow.InventoryRepository(), s.Balance(), s.Cooldown())
}

func (s *guildServices) Cockfight() interfaces.CockfightService {
	return services.NewCockfightService(s.uow.ShopRepository(), s.uow.InventoryRepository(), s.uow.FightChanceRepository(), s.Balance(), s.rng)
}

func (s *guildServices) Leaderboard() interfaces.LeaderboardService {
	return services.NewLeaderboardService(s.uow.AccountRepository())
}
