// Package store holds the client-side entity state: a session store
// for the authenticated user and one collection store per entity kind.
// Stores cache server-derived records in memory and apply optimistic
// local mutations around API calls.
package store

import (
	"errors"

	"github.com/owuorviny109/crmsync/internal/api"
)

// Result is the outcome of a store action. Actions are total: they
// never panic or return a Go error to the caller; failures set the
// store's error field and come back here with Success false.
type Result[T any] struct {
	Success bool
	Data    *T
	Error   string
}

func succeeded[T any](data *T) Result[T] {
	return Result[T]{Success: true, Data: data}
}

func failed[T any](message string) Result[T] {
	return Result[T]{Success: false, Error: message}
}

// errorMessage folds a transport error into the user-visible message:
// the server's detail or field errors when present, otherwise the
// store's fallback string. Network failures always fall back.
func errorMessage(err error, fallback string) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		if msg := apiErr.Message(); msg != "" {
			return msg
		}
	}
	return fallback
}
