package services

import (
	"fmt"

	"nutribot/config"

	"github.com/google/uuid"
)

// PaymentInvoice is everything the chat adapter needs to present a
// subscription payment to the user. The payment provider itself is an
// external collaborator; we only mint the reference and interpret the
// confirmation callback.
type PaymentInvoice struct {
	Ref      string `json:"ref"`
	Months   int    `json:"months"`
	PriceRub int    `json:"price_rub"`
	Title    string `json:"title"`
}

type PaymentService struct {
	settings *config.Settings
}

func NewPaymentService(settings *config.Settings) *PaymentService {
	return &PaymentService{settings: settings}
}

// Invoice builds the invoice for a chosen tariff. false when no such
// tariff is configured.
func (s *PaymentService) Invoice(months int) (*PaymentInvoice, bool) {
	t, ok := s.settings.TariffFor(months)
	if !ok {
		return nil, false
	}
	return &PaymentInvoice{
		Ref:      uuid.NewString(),
		Months:   t.Months,
		PriceRub: t.PriceRub,
		Title:    fmt.Sprintf("Subscription, %d mo.", t.Months),
	}, true
}
