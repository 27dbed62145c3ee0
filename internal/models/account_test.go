package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeEmail(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "a@x.com", want: "a@x.com"},
		{in: "A@X.Com", want: "a@x.com"},
		{in: "  User@Example.COM \n", want: "user@example.com"},
		{in: "", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeEmail(tt.in))
		})
	}
}

func TestAccount_IsActive(t *testing.T) {
	for _, status := range []SubscriptionStatus{StatusNone, "past_due", "canceled", "ACTIVE", ""} {
		a := &Account{SubscriptionStatus: status}
		assert.False(t, a.IsActive(), string(status))
	}
	assert.True(t, (&Account{SubscriptionStatus: StatusActive}).IsActive())
}

func TestAccount_HasPassword(t *testing.T) {
	assert.False(t, (&Account{Email: "a@x.com"}).HasPassword())
	assert.True(t, (&Account{Email: "a@x.com", PasswordHash: "$2a$10$abc"}).HasPassword())
}
