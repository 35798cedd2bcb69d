package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"name_wall/internal/domain/entity"

	"github.com/ethereum/go-ethereum/core/types"
)

func TestSubmitWhitespaceNameRejectedBeforeWallet(t *testing.T) {
	h := newHarness(t)

	_, err := h.writer.Submit(context.Background(), "   \t ")
	if !errors.Is(err, entity.ErrEmptyName) {
		t.Fatalf("expected empty name error, got %v", err)
	}
	if h.wallets.calls != 0 || h.wallet.requests != 0 || h.wallet.signerCalls != 0 {
		t.Fatal("wallet must not be touched for an empty name")
	}
	if st := h.store.Snapshot(); st.Loading || st.Alert == "" {
		t.Fatalf("expected alert without loading, got %+v", st)
	}
}

func TestSubmitAppendsNameAndClearsPending(t *testing.T) {
	h := newHarness(t, "ana")

	res, err := h.writer.Submit(context.Background(), "bob")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.ReloadRequired {
		t.Fatal("no reload expected")
	}
	if res.TxHash == "" || res.State.LastTxHash != res.TxHash {
		t.Fatalf("expected tx hash in result and state, got %+v", res)
	}
	st := res.State
	if st.PendingName != "" || st.Loading {
		t.Fatalf("unexpected state %+v", st)
	}
	if len(st.Names) != 2 || st.Names[len(st.Names)-1] != "bob" {
		t.Fatalf("expected new name last, got %v", st.Names)
	}
}

func TestSubmitWrongNetworkNeverSigns(t *testing.T) {
	h := newHarness(t)
	h.client.chainID = mainnetID

	res, err := h.writer.Submit(context.Background(), "bob")
	if !errors.Is(err, entity.ErrWrongNetwork) {
		t.Fatalf("expected wrong network, got %v", err)
	}
	if h.wallet.signerCalls != 0 {
		t.Fatal("signer must not be requested on the wrong network")
	}
	if _, _, hasAdded, add := h.wall.calls(); hasAdded != 0 || add != 0 {
		t.Fatal("contract must not be called on the wrong network")
	}
	if res.State.Loading || res.State.PendingName != "bob" || res.State.Alert == "" {
		t.Fatalf("unexpected state %+v", res.State)
	}
}

func TestSubmitAlreadyAddedIsRejected(t *testing.T) {
	h := newHarness(t, "ana")
	h.wall.hasAdded = true

	res, err := h.writer.Submit(context.Background(), "bob")
	if !errors.Is(err, entity.ErrAlreadySubmitted) {
		t.Fatalf("expected already submitted, got %v", err)
	}
	if _, _, _, add := h.wall.calls(); add != 0 {
		t.Fatal("no transaction expected")
	}
	if res.State.PendingName != "bob" || !strings.Contains(res.State.Alert, "already") {
		t.Fatalf("unexpected state %+v", res.State)
	}
}

func TestSubmitProceedsWhenDuplicateCheckFails(t *testing.T) {
	h := newHarness(t)
	h.wall.hasAddedErr = errors.New("execution reverted: method not found")

	res, err := h.writer.Submit(context.Background(), "bob")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.State.Names) != 1 || res.State.Names[0] != "bob" {
		t.Fatalf("unexpected names %v", res.State.Names)
	}
}

func TestSubmitUserRejectionKeepsPendingName(t *testing.T) {
	h := newHarness(t)
	h.wall.addErr = errors.New("user rejected transaction")

	res, err := h.writer.Submit(context.Background(), "bob")
	if entity.KindOf(err) != entity.KindWrite {
		t.Fatalf("expected write error, got %v", err)
	}
	st := res.State
	if st.Loading || st.PendingName != "bob" || !strings.Contains(st.Alert, "user rejected transaction") {
		t.Fatalf("unexpected state %+v", st)
	}
}

func TestSubmitRevertedTransaction(t *testing.T) {
	h := newHarness(t)
	h.wall.status = types.ReceiptStatusFailed

	res, err := h.writer.Submit(context.Background(), "bob")
	if !errors.Is(err, entity.ErrTransactionReverted) {
		t.Fatalf("expected revert, got %v", err)
	}
	if res.State.PendingName != "bob" || res.State.Loading {
		t.Fatalf("unexpected state %+v", res.State)
	}
}

func TestSubmitConfirmationFailure(t *testing.T) {
	h := newHarness(t)
	h.wall.waitErr = errors.New("context deadline exceeded")

	if _, err := h.writer.Submit(context.Background(), "bob"); entity.KindOf(err) != entity.KindWrite {
		t.Fatalf("expected write error, got %v", err)
	}
}

func TestSubmitSignerFailure(t *testing.T) {
	h := newHarness(t)
	h.wallet.signerErr = errors.New("locked")

	res, err := h.writer.Submit(context.Background(), "bob")
	if entity.KindOf(err) != entity.KindWrite || res.State.Loading {
		t.Fatalf("unexpected result %+v, %v", res, err)
	}
}

func TestSubmitRefreshFailureRequestsReload(t *testing.T) {
	h := newHarness(t, "ana")
	if _, err := h.reader.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	h.wall.refreshErr = errors.New("rpc unavailable")

	res, err := h.writer.Submit(context.Background(), "bob")
	if err != nil {
		t.Fatalf("refresh failure must not be an error, got %v", err)
	}
	if !res.ReloadRequired || !res.State.ReloadRequired {
		t.Fatalf("expected reload request, got %+v", res)
	}
	if res.State.Loading || res.State.PendingName != "" {
		t.Fatalf("unexpected state %+v", res.State)
	}
	if len(res.State.Names) != 1 || res.State.Names[0] != "ana" {
		t.Fatalf("names must not be partially updated, got %v", res.State.Names)
	}
}

func TestSubmitLoadingHeldForWholeAttempt(t *testing.T) {
	h := newHarness(t)
	h.wall.entered = make(chan struct{})
	h.wall.release = make(chan struct{})

	if h.store.Snapshot().Loading {
		t.Fatal("loading must start false")
	}

	done := make(chan error, 1)
	go func() {
		_, err := h.writer.Submit(context.Background(), "bob")
		done <- err
	}()

	select {
	case <-h.wall.entered:
	case <-time.After(5 * time.Second):
		t.Fatal("submission never reached the contract")
	}

	if st := h.store.Snapshot(); !st.Loading || st.PendingName != "bob" {
		t.Fatalf("expected loading during submission, got %+v", st)
	}
	if _, err := h.writer.Submit(context.Background(), "carl"); !errors.Is(err, entity.ErrSubmissionInProgress) {
		t.Fatalf("expected concurrent submit to be refused, got %v", err)
	}
	if st := h.store.Snapshot(); !st.Loading || st.PendingName != "bob" {
		t.Fatalf("refused submit must not disturb state, got %+v", st)
	}

	close(h.wall.release)
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("submission did not finish")
	}

	if st := h.store.Snapshot(); st.Loading {
		t.Fatalf("loading must be cleared after the submission, got %+v", st)
	}
	if _, err := h.writer.Submit(context.Background(), "dora"); errors.Is(err, entity.ErrSubmissionInProgress) {
		t.Fatal("a finished submission must release the writer")
	}
}

func TestSubmitCancelledBeforeBroadcast(t *testing.T) {
	h := newHarness(t)
	h.wall.entered = make(chan struct{})
	h.wall.release = make(chan struct{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := h.writer.Submit(ctx, "bob")
		done <- err
	}()
	<-h.wall.entered
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected cancellation, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("submission did not stop")
	}
	if st := h.store.Snapshot(); st.Loading || st.PendingName != "bob" {
		t.Fatalf("unexpected state %+v", st)
	}
	if _, _, _, add := h.wall.calls(); add != 0 {
		t.Fatalf("nothing must be broadcast, addName calls = %d", add)
	}
}

func TestSubmitSurvivesCancellationAfterBroadcast(t *testing.T) {
	h := newHarness(t, "ana")
	h.wall.waiting = make(chan struct{})
	h.wall.mined = make(chan struct{})

	ctx, cancel := context.WithCancel(context.Background())
	type outcome struct {
		txHash string
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		res, err := h.writer.Submit(ctx, "bob")
		done <- outcome{res.TxHash, err}
	}()

	select {
	case <-h.wall.waiting:
	case <-time.After(5 * time.Second):
		t.Fatal("submission never waited for confirmation")
	}
	cancel()

	select {
	case out := <-done:
		t.Fatalf("submission must keep waiting after the caller went away, got %+v", out)
	case <-time.After(50 * time.Millisecond):
	}

	close(h.wall.mined)
	select {
	case out := <-done:
		if out.err != nil || out.txHash == "" {
			t.Fatalf("unexpected outcome %+v", out)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("submission did not finish")
	}

	st := h.store.Snapshot()
	if st.Alert != "" || st.PendingName != "" || st.Loading {
		t.Fatalf("unexpected state %+v", st)
	}
	if len(st.Names) != 2 || st.Names[1] != "bob" {
		t.Fatalf("expected refreshed names, got %v", st.Names)
	}
}

func TestSubmitHonoursConfirmTimeout(t *testing.T) {
	h := newHarness(t)
	h.writer = NewWriter(h.guard, h.reader, h.store, nopLogger{}, time.Minute)

	if _, err := h.writer.Submit(context.Background(), "bob"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSubmitConfirmTimeoutAppliesAfterBroadcast(t *testing.T) {
	h := newHarness(t)
	h.wall.mined = make(chan struct{})
	h.writer = NewWriter(h.guard, h.reader, h.store, nopLogger{}, 50*time.Millisecond)

	_, err := h.writer.Submit(context.Background(), "bob")
	if !errors.Is(err, context.DeadlineExceeded) || entity.KindOf(err) != entity.KindWrite {
		t.Fatalf("expected confirmation timeout, got %v", err)
	}
	if st := h.store.Snapshot(); st.Loading || st.PendingName != "bob" || st.Alert == "" {
		t.Fatalf("unexpected state %+v", st)
	}
}
