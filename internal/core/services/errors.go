package services

import (
	"errors"
	"fmt"

	"github.com/custodia-labs/docucortex/internal/core/domain"
)

// classify wraps err with op and maps anything outside the domain
// taxonomy onto domain.ErrInternal, keeping the original in the chain.
func classify(op string, err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound),
		domain.IsBadRequest(err),
		errors.Is(err, domain.ErrServiceUnavailable),
		errors.Is(err, domain.ErrInternal):
		return fmt.Errorf("%s: %w", op, err)
	default:
		return fmt.Errorf("%s: %w: %w", op, domain.ErrInternal, err)
	}
}
