package domain

import (
	"fmt"
	"strings"
	"time"
)

// Bridge identifies the provider account a tenant sends through: provider
// name, per-tenant credentials, and the originating phone number. Owned by
// configuration storage; the engine only reads it.
type Bridge struct {
	ID           uint64
	TenantID     string
	ProviderName string
	AccountID    string
	AuthToken    string
	PhoneNumber  string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (b *Bridge) Validate() error {
	if strings.TrimSpace(b.TenantID) == "" {
		return fmt.Errorf("%w: tenant id is required", ErrValidation)
	}
	if strings.TrimSpace(b.ProviderName) == "" {
		return fmt.Errorf("%w: provider name is required", ErrValidation)
	}
	if strings.TrimSpace(b.AccountID) == "" {
		return fmt.Errorf("%w: provider account id is required", ErrValidation)
	}
	if strings.TrimSpace(b.AuthToken) == "" {
		return fmt.Errorf("%w: provider auth token is required", ErrValidation)
	}
	if strings.TrimSpace(b.PhoneNumber) == "" {
		return fmt.Errorf("%w: origin phone number is required", ErrValidation)
	}
	return nil
}
