package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"name_wall/internal/app/port"
	"name_wall/internal/app/state"
	"name_wall/internal/domain/entity"
	"name_wall/internal/pkg/metrics"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"golang.org/x/sync/singleflight"
)

const loadKey = "load"

// Reader loads the name list from the wall contract.
type Reader struct {
	guard   *Guard
	store   *state.Store
	logger  port.Logger
	timeout time.Duration
	group   singleflight.Group
}

// NewReader creates a Reader. A shared load is bounded by timeout, not by any caller's context.
func NewReader(guard *Guard, store *state.Store, logger port.Logger, timeout time.Duration) *Reader {
	return &Reader{guard: guard, store: store, logger: logger, timeout: timeout}
}

// Load runs the guard and reads the name list into the store.
// Only guard failures are returned as errors; read failures degrade to an empty list.
// Concurrent calls share one load. A caller whose ctx ends stops waiting, the load itself keeps going.
func (r *Reader) Load(ctx context.Context) (state.AppState, error) {
	ch := r.group.DoChan(loadKey, func() (any, error) {
		loadCtx := context.WithoutCancel(ctx)
		if r.timeout > 0 {
			var cancel context.CancelFunc
			loadCtx, cancel = context.WithTimeout(loadCtx, r.timeout)
			defer cancel()
		}
		return r.load(loadCtx)
	})

	select {
	case res := <-ch:
		if res.Shared {
			r.logger.Debug("Load shared with a concurrent request")
		}
		st, _ := res.Val.(state.AppState)
		return st.Clone(), res.Err
	case <-ctx.Done():
		return r.store.Snapshot(), ctx.Err()
	}
}

func (r *Reader) load(ctx context.Context) (state.AppState, error) {
	if _, err := r.store.Update(ctx, state.ClearMessages()); err != nil {
		return r.store.Snapshot(), err
	}

	pass, err := r.guard.Run(ctx)
	if err != nil {
		st, _ := r.store.Update(ctx, state.SetAlert(entity.UserMessage(err)))
		return st, err
	}

	code, err := pass.Client.CodeAt(ctx, pass.Contract)
	if err != nil {
		degraded := entity.NewWallError(entity.KindReadDegraded, "", err)
		r.logger.Error("Contract error", "address", pass.Contract.Hex(), "error", degraded)
		metrics.Reads.WithLabelValues(OutcomeDegraded.String()).Inc()
		return r.store.Update(ctx, state.SetNames(nil))
	}
	if len(code) == 0 {
		expected := pass.Client.Definition()
		notDeployed := entity.NewWallError(entity.KindReadDegraded,
			fmt.Sprintf("No contract found at address %s on %s. Check that the address is correct and the contract is deployed on %s.",
				pass.Contract.Hex(), expected.Identifier, expected.Identifier),
			fmt.Errorf("%w: %s", entity.ErrContractNotDeployed, pass.Contract.Hex()))
		r.logger.Error("No contract deployed at address on this network", "chain_id", pass.Network.ChainID, "error", notDeployed.Err)
		metrics.Reads.WithLabelValues("no_contract").Inc()
		return r.store.Update(ctx, state.SetNames(nil), state.SetNotice(entity.UserMessage(notDeployed)))
	}

	out := r.ReadNames(ctx, pass.Client.Wall(pass.Contract))
	metrics.Reads.WithLabelValues(out.Kind.String()).Inc()
	return r.store.Update(ctx, state.SetNames(out.Value))
}

// ReadNames runs the count/list fallback pipeline against wall.
// A zero count short-circuits to an empty list without calling getNames.
func (r *Reader) ReadNames(ctx context.Context, wall port.WallContract) Outcome[[]string] {
	out := Fallback(ctx, []string{},
		Step[[]string]{Name: "count", Run: func(ctx context.Context) ([]string, error) {
			count, err := wall.Count(ctx)
			if err != nil {
				r.logger.Error("Error reading count", "error", err)
				return nil, err
			}
			r.logger.Info("Names stored in contract", "count", count.String())
			if count.Sign() == 0 {
				r.logger.Info("The contract has no names yet")
				return []string{}, nil
			}
			names, err := wall.GetNames(ctx)
			if err != nil {
				r.logger.Error("Error reading names", "error", err)
				return nil, err
			}
			return names, nil
		}},
		Step[[]string]{Name: "getNames", Run: func(ctx context.Context) ([]string, error) {
			names, err := wall.GetNames(ctx)
			if err != nil {
				r.logger.Error("Error reading names without count", "error", err)
				return nil, err
			}
			return names, nil
		}},
	)

	switch out.Kind {
	case OutcomeSuccess:
		r.logger.Info("Names read", "count", len(out.Value), "step", out.Step)
	case OutcomeDegraded:
		if isEmptyResultError(out.Err()) {
			r.logger.Warn("Contract returned empty data, probably no names stored", "error", out.Err())
		} else {
			r.logger.Warn("Name list unavailable, showing an empty wall", "error", out.Err())
		}
	default:
		r.logger.Warn("Name read aborted", "error", out.Err())
	}
	return out
}

// FetchNames reads the full list once, without fallbacks. Used to refresh after a write.
func (r *Reader) FetchNames(ctx context.Context, wall port.WallContract) ([]string, error) {
	names, err := wall.GetNames(ctx)
	if err != nil {
		return nil, entity.NewWallError(entity.KindRefresh, "Could not refresh the names after adding", err)
	}
	return names, nil
}

// isEmptyResultError recognises a call that returned no data: either the binding
// found no code behind the address, or the ABI decoder got an empty return value.
// The decoder has no sentinel for the latter, so its message is matched.
func isEmptyResultError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, bind.ErrNoCode) {
		return true
	}
	return strings.Contains(err.Error(), "attempting to unmarshal an empty string")
}
