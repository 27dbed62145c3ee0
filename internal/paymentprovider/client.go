// Package paymentprovider оборачивает Stripe: создание hosted checkout
// сессий и проверку подписи webhook-событий.
package paymentprovider

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"

	"github.com/magabrotheeeer/access-gate/internal/models"
)

// Client создаёт сессии оплаты подписки в Stripe.
type Client struct {
	api        *client.API
	priceID    string
	successURL string
	cancelURL  string
}

// NewClient создаёт клиент Stripe с ключом API, ID цены и адресом фронтенда.
func NewClient(secretKey, priceID, domain string) *Client {
	return NewClientWithBackends(secretKey, priceID, domain, nil)
}

// NewClientWithBackends позволяет подменить транспорт Stripe (используется в тестах).
func NewClientWithBackends(secretKey, priceID, domain string, backends *stripe.Backends) *Client {
	api := &client.API{}
	api.Init(secretKey, backends)

	domain = strings.TrimRight(domain, "/")
	return &Client{
		api:        api,
		priceID:    priceID,
		successURL: domain + "?success=true",
		cancelURL:  domain + "?canceled=true",
	}
}

// CreateCheckoutSession создаёт сессию оплаты подписки для email и возвращает её URL.
func (c *Client) CreateCheckoutSession(ctx context.Context, email string) (string, error) {
	const op = "paymentprovider.CreateCheckoutSession"

	session, err := c.api.CheckoutSessions.New(c.sessionParams(ctx, email))
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if session.URL == "" {
		return "", fmt.Errorf("%s: session %s has no url", op, session.ID)
	}
	return session.URL, nil
}

func (c *Client) sessionParams(ctx context.Context, email string) *stripe.CheckoutSessionParams {
	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(c.priceID),
				Quantity: stripe.Int64(1),
			},
		},
		CustomerEmail:     stripe.String(email),
		ClientReferenceID: stripe.String(email),
		SuccessURL:        stripe.String(c.successURL),
		CancelURL:         stripe.String(c.cancelURL),
	}
	params.Context = ctx
	params.AddMetadata(models.MetadataEmailKey, email)
	params.SetIdempotencyKey(uuid.NewString())
	return params
}
