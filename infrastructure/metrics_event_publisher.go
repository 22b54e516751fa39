package infrastructure

import (
	"casino/economy-bot/domain/entities"
	"casino/economy-bot/domain/events"
	"casino/economy-bot/domain/interfaces"
	"casino/economy-bot/infrastructure/observability"
)

// MetricsEventPublisher records committed events as metrics before passing them on.
// It sits behind the transactional publisher, so rolled back work is never counted.
type MetricsEventPublisher struct {
	next    interfaces.EventPublisher
	metrics *observability.MetricsProvider
}

// NewMetricsEventPublisher wraps next. A nil metrics provider records nothing.
func NewMetricsEventPublisher(next interfaces.EventPublisher, metrics *observability.MetricsProvider) *MetricsEventPublisher {
	return &MetricsEventPublisher{next: next, metrics: metrics}
}

func (p *MetricsEventPublisher) Publish(event events.Event) error {
	switch e := event.(type) {
	case events.BalanceChangeEvent:
		p.metrics.RecordBalanceMutation(string(e.TransactionType), string(e.Kind))
		if e.TransactionType == entities.TransactionTypeTransferIn {
			p.metrics.RecordTransfer(e.ChangeAmount)
		}
	case events.CrateOpenedEvent:
		p.metrics.RecordCratesOpened(e.CrateExternalID, e.Opened)
	case events.BlackjackSettledEvent:
		p.metrics.RecordGameSettlement(observability.GameBlackjack, string(e.Result))
	case events.RouletteResolvedEvent:
		p.metrics.RecordRouletteRound(e.TotalWagered)
	case events.TempRoleExpiredEvent:
		p.metrics.RecordTempRoleExpired()
	}
	return p.next.Publish(event)
}
