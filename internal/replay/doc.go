// Package replay remembers HTTP responses by idempotency key so a retried
// request gets the original response instead of repeating its side effects.
package replay
