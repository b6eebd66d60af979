// Package repository provides the Postgres implementations of the domain
// repository interfaces.
package repository

import (
	"errors"

	"github.com/jackc/pgx/v5"

	"cryptodesk/internal/domain"
)

// notFound maps pgx's no-rows sentinel onto the domain error so callers can
// errors.Is against domain.ErrNotFound without knowing the driver.
func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	return err
}
