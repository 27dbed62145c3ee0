package paymentprovider

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/magabrotheeeer/access-gate/internal/models"
)

// EventCheckoutCompleted — единственный тип события, меняющий состояние аккаунта.
const EventCheckoutCompleted = "checkout.session.completed"

// ExpandableID — ссылка Stripe на объект: строка ID или развёрнутый объект с полем id.
type ExpandableID string

// UnmarshalJSON принимает "cus_123", {"id":"cus_123", ...} и null.
func (e *ExpandableID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*e = ""
		return nil
	}
	if data[0] == '"' {
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return err
		}
		*e = ExpandableID(id)
		return nil
	}
	var obj struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*e = ExpandableID(obj.ID)
	return nil
}

// CheckoutSession — минимальное представление объекта checkout.session из события.
type CheckoutSession struct {
	ID                string       `json:"id"`
	Mode              string       `json:"mode"`
	Customer          ExpandableID `json:"customer"`
	Subscription      ExpandableID `json:"subscription"`
	CustomerEmail     string       `json:"customer_email"`
	ClientReferenceID string       `json:"client_reference_id"`
	CustomerDetails   struct {
		Email string `json:"email"`
	} `json:"customer_details"`
	Metadata map[string]string `json:"metadata"`
}

// Email возвращает email покупателя: customer_email, затем customer_details.email,
// затем metadata.email. Результат нормализован.
func (s *CheckoutSession) Email() string {
	for _, candidate := range []string{
		s.CustomerEmail,
		s.CustomerDetails.Email,
		s.Metadata[models.MetadataEmailKey],
	} {
		if email := models.NormalizeEmail(candidate); email != "" {
			return email
		}
	}
	return ""
}

// CustomerID возвращает ID клиента без пробелов по краям.
func (s *CheckoutSession) CustomerID() string {
	return strings.TrimSpace(string(s.Customer))
}

// SubscriptionID возвращает ID подписки без пробелов по краям.
func (s *CheckoutSession) SubscriptionID() string {
	return strings.TrimSpace(string(s.Subscription))
}
