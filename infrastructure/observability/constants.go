package observability

// Metric name prefixes
const (
	MetricPrefix = "economy_bot"
)

// Metric names
const (
	// Balance metrics
	BalanceMutationsTotal = MetricPrefix + ".balance.mutations_total"
	TransferVolumeTotal   = MetricPrefix + ".balance.transfer_volume_total"

	// Game metrics
	CratesOpenedTotal     = MetricPrefix + ".crates.opened_total"
	GameSettlementsTotal  = MetricPrefix + ".games.settlements_total"
	RouletteRoundsTotal   = MetricPrefix + ".roulette.rounds_total"
	RouletteWageredTotal  = MetricPrefix + ".roulette.wagered_total"
	RevocationsScheduled  = MetricPrefix + ".temp_roles.scheduled_revocations"
	TempRolesExpiredTotal = MetricPrefix + ".temp_roles.expired_total"

	// Storage metrics
	ConflictRetriesTotal = MetricPrefix + ".database.conflict_retries_total"

	// NATS metrics
	NATSMessagesReceivedTotal  = MetricPrefix + ".nats.messages_received_total"
	NATSMessagesPublishedTotal = MetricPrefix + ".nats.messages_published_total"
)

// Label keys
const (
	LabelType      = "type"
	LabelEventType = "event_type"
	LabelGame      = "game"
	LabelResult    = "result"
	LabelKind      = "kind"
)

// Game labels
const (
	GameBlackjack = "blackjack"
	GameRoulette  = "roulette"
	GameCockfight = "cockfight"
)
