// Package repository provides typed data access for the streak engine.
// Each entity gets a small interface so services can be tested against
// in-memory mocks and storage can be swapped without touching the engine.
package repository

import (
	"errors"

	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when a requested row does not exist.
	ErrNotFound = errors.New("repository: record not found")
	// ErrDuplicate is returned when an insert violates a uniqueness
	// constraint. Callers on the idempotent paths treat it as "already applied".
	ErrDuplicate = errors.New("repository: duplicate record")
)

// translate maps GORM sentinel errors onto the repository taxonomy.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	default:
		return err
	}
}
