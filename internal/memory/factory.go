// Package memory archives finished conversation turns so transcripts
// survive conversation expiry. It is a write-mostly sink: the dialogue
// state itself lives in the session layer, never here.
package memory

import (
	"context"
	"strings"
)

// NewStore creates a postgres-backed archive when configured, otherwise in-memory.
func NewStore(ctx context.Context, databaseURL string) (Store, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return NewInMemoryStore(), nil
	}
	return NewPostgresStore(ctx, databaseURL)
}
