// ABOUTME: Error kinds returned by the library store
// ABOUTME: Classifies SQLite driver errors into not-found, constraint and storage failures

package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned when a requested entity or an owner does not exist
var ErrNotFound = errors.New("not found")

// ErrConstraintViolation is returned when a required field or foreign key rule is broken
var ErrConstraintViolation = errors.New("constraint violation")

// ErrStorageUnavailable is returned when the database cannot be reached or is corrupt
var ErrStorageUnavailable = errors.New("storage unavailable")

// classify wraps a driver error with the matching error kind.
// Context errors are returned unchanged so callers can detect cancellation.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrConstraintViolation) || errors.Is(err, ErrStorageUnavailable) {
		return err
	}
	if isConstraintViolation(err) {
		return fmt.Errorf("%s: %w: %w", op, ErrConstraintViolation, err)
	}
	return fmt.Errorf("%s: %w: %w", op, ErrStorageUnavailable, err)
}

// isConstraintViolation checks if the error is a SQLite constraint failure.
// Both drivers report "constraint failed" in the message.
func isConstraintViolation(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "constraint failed") ||
		strings.Contains(errStr, "FOREIGN KEY constraint")
}

// requireText rejects blank required fields before they reach the database.
func requireText(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s is required: %w", field, ErrConstraintViolation)
	}
	return nil
}
