package repository

import (
	"errors"

	"github.com/jackc/pgx/v5"
)

var (
	// ErrNotFound is returned when the requested row does not exist
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyAnswered is returned when an answer is written twice
	ErrAlreadyAnswered = errors.New("question already answered")
)

// mapNoRows turns pgx.ErrNoRows into ErrNotFound
func mapNoRows(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
