package paywall

import "fmt"

// Plan is one premium option shown on the paywall.
type Plan struct {
	Name        string `json:"name"`
	PriceKsh    int    `json:"priceKsh"`
	MostPopular bool   `json:"mostPopular,omitempty"`
}

// Offer is the paywall prompt content.
type Offer struct {
	Title         string `json:"title"`
	Message       string `json:"message"`
	Plans         []Plan `json:"plans"`
	PaymentMethod string `json:"paymentMethod"`
}

// DefaultOffer describes the premium upgrade for a quota of freeMessages.
func DefaultOffer(freeMessages int) Offer {
	return Offer{
		Title:   "You've hit your limit!",
		Message: fmt.Sprintf("You have used your %d free introductory messages. To continue chatting securely with verified singles, please upgrade to Premium.", freeMessages),
		Plans: []Plan{
			{Name: "Weekly Pass", PriceKsh: 150},
			{Name: "Monthly Pass", PriceKsh: 500, MostPopular: true},
		},
		PaymentMethod: "M-Pesa",
	}
}
