package service

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	"name_wall/internal/app/port"
	"name_wall/internal/app/state"
	"name_wall/internal/domain/entity"
	"name_wall/internal/pkg/metrics"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

const (
	msgEmptyName        = "Please enter a name"
	msgAlreadySubmitted = "You already added a name to the wall"
	msgAddFailed        = "Error adding name: "
)

// Writer submits one name at a time to the wall contract.
type Writer struct {
	guard          *Guard
	reader         *Reader
	store          *state.Store
	logger         port.Logger
	confirmTimeout time.Duration
	submitting     atomic.Bool
}

// NewWriter creates a Writer. A zero confirmTimeout waits for confirmation as long as ctx allows.
func NewWriter(guard *Guard, reader *Reader, store *state.Store, logger port.Logger, confirmTimeout time.Duration) *Writer {
	return &Writer{
		guard:          guard,
		reader:         reader,
		store:          store,
		logger:         logger,
		confirmTimeout: confirmTimeout,
	}
}

// Submit appends name to the wall.
// Loading is set for the whole attempt and cleared on every exit path.
// On failure the pending name is kept so the user can retry.
func (w *Writer) Submit(ctx context.Context, name string) (res port.SubmitResult, err error) {
	if strings.TrimSpace(name) == "" {
		metrics.Writes.WithLabelValues("empty_name").Inc()
		err = entity.NewWallError(entity.KindWrite, msgEmptyName, entity.ErrEmptyName)
		res.State = w.store.MustUpdate(state.SetAlert(msgEmptyName))
		return res, err
	}

	if !w.submitting.CompareAndSwap(false, true) {
		metrics.Writes.WithLabelValues("busy").Inc()
		return port.SubmitResult{State: w.store.Snapshot()}, entity.ErrSubmissionInProgress
	}
	metrics.Submitting.Set(1)
	w.store.MustUpdate(state.BeginSubmit(name))
	defer func() {
		res.State = w.store.MustUpdate(state.EndSubmit())
		metrics.Submitting.Set(0)
		w.submitting.Store(false)
	}()

	pass, err := w.guard.Run(ctx)
	if err != nil {
		return res, w.fail("guard", err)
	}

	opts, err := pass.Wallet.Signer(ctx, pass.ChainID)
	if err != nil {
		return res, w.fail("signer", entity.NewWallError(entity.KindWrite, msgAddFailed+err.Error(), err))
	}
	opts.Context = ctx
	user := opts.From
	w.logger.Info("User address", "address", user.Hex())

	wall := pass.Client.Wall(pass.Contract)
	if err := w.checkNotSubmitted(ctx, wall, user); err != nil {
		return res, w.fail("already_submitted", err)
	}

	w.logger.Info("Adding name", "name", name)
	tx, err := wall.AddName(ctx, opts, name)
	if err != nil {
		return res, w.fail("rejected", entity.NewWallError(entity.KindWrite, msgAddFailed+err.Error(), err))
	}
	res.TxHash = tx.Hash().Hex()
	w.logger.Info("Transaction sent", "tx_hash", res.TxHash)

	// The transaction is out; a client going away must not turn it into a failed write.
	ctx = context.WithoutCancel(ctx)
	waitCtx := ctx
	if w.confirmTimeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, w.confirmTimeout)
		defer cancel()
	}
	receipt, err := wall.WaitMined(waitCtx, tx)
	if err != nil {
		return res, w.fail("unconfirmed", entity.NewWallError(entity.KindWrite, msgAddFailed+err.Error(), err))
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return res, w.fail("reverted", entity.NewWallError(entity.KindWrite, msgAddFailed+entity.ErrTransactionReverted.Error(), entity.ErrTransactionReverted))
	}
	w.logger.Info("Transaction confirmed", "tx_hash", res.TxHash, "block", receipt.BlockNumber)

	names, err := w.reader.FetchNames(ctx, wall)
	if err != nil {
		w.logger.Error("Error reading names after adding, requesting a full reload", "error", err)
		metrics.Writes.WithLabelValues("reload").Inc()
		w.store.MustUpdate(state.RequireReload(res.TxHash))
		res.ReloadRequired = true
		return res, nil
	}

	w.store.MustUpdate(state.CompleteSubmit(names, res.TxHash))
	metrics.Writes.WithLabelValues("success").Inc()
	return res, nil
}

// checkNotSubmitted asks the contract whether user already added a name.
// The check is best effort: if it cannot be made the submission goes ahead.
func (w *Writer) checkNotSubmitted(ctx context.Context, wall port.WallContract, user common.Address) error {
	out := Fallback(ctx, false, Step[bool]{Name: "hasAdded", Run: func(ctx context.Context) (bool, error) {
		return wall.HasAdded(ctx, user)
	}})

	switch out.Kind {
	case OutcomeSuccess:
		w.logger.Info("Already added a name?", "address", user.Hex(), "has_added", out.Value)
		if out.Value {
			return entity.NewWallError(entity.KindWrite, msgAlreadySubmitted, entity.ErrAlreadySubmitted)
		}
		return nil
	case OutcomeDegraded:
		w.logger.Error("Error checking hasAdded, continuing anyway", "error", out.Err())
		return nil
	default:
		return entity.NewWallError(entity.KindWrite, msgAddFailed+out.Err().Error(), out.Err())
	}
}

func (w *Writer) fail(result string, err error) error {
	metrics.Writes.WithLabelValues(result).Inc()
	w.logger.Error("Error adding name", "result", result, "error", err)
	w.store.MustUpdate(state.SetAlert(entity.UserMessage(err)))
	return err
}
