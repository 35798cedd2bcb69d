package port

import (
	"context"

	"name_wall/internal/app/state"
	"name_wall/internal/domain/entity"
)

// WallService is what the HTTP layer needs from the wall client.
type WallService interface {
	// Load runs the guard and reads the name list into state.
	Load(ctx context.Context) (state.AppState, error)

	// Submit appends name to the wall.
	Submit(ctx context.Context, name string) (SubmitResult, error)

	// Snapshot returns the current state without touching the chain.
	Snapshot() state.AppState

	// SignerBalance returns the balance of the connected account, if any.
	SignerBalance(ctx context.Context) (entity.SignerBalance, error)
}

// SubmitResult reports a finished submission.
type SubmitResult struct {
	TxHash         string
	ReloadRequired bool
	State          state.AppState
}
