package entity

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failure by how the wall reacts to it.
type ErrorKind int

const (
	// KindEnvironment covers a missing wallet or a malformed contract address.
	KindEnvironment ErrorKind = iota + 1
	// KindNetworkMismatch means the wallet is connected to the wrong chain.
	KindNetworkMismatch
	// KindReadDegraded covers read failures that fall back to an empty list.
	KindReadDegraded
	// KindWrite covers rejected, reverted or refused submissions.
	KindWrite
	// KindRefresh means the list could not be re-read after a confirmed write.
	KindRefresh
)

func (k ErrorKind) String() string {
	switch k {
	case KindEnvironment:
		return "environment"
	case KindNetworkMismatch:
		return "network_mismatch"
	case KindReadDegraded:
		return "read_degraded"
	case KindWrite:
		return "write"
	case KindRefresh:
		return "refresh"
	default:
		return "unknown"
	}
}

var (
	ErrNoWallet               = errors.New("no wallet configured")
	ErrInvalidContractAddress = errors.New("invalid contract address")
	ErrAccountAccess          = errors.New("account access rejected")
	ErrWrongNetwork           = errors.New("wrong network")
	ErrEmptyName              = errors.New("name is empty")
	ErrSubmissionInProgress   = errors.New("a submission is already in progress")
	ErrAlreadySubmitted       = errors.New("address already added a name")
	ErrTransactionReverted    = errors.New("transaction reverted")
	ErrContractNotDeployed    = errors.New("no contract code at address")
)

// WallError carries a user-facing message together with the underlying cause.
type WallError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *WallError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	if e.Message == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *WallError) Unwrap() error { return e.Err }

// NewWallError builds a WallError of the given kind.
func NewWallError(kind ErrorKind, message string, err error) *WallError {
	return &WallError{Kind: kind, Message: message, Err: err}
}

// KindOf returns the kind of the first WallError in err's chain, or 0.
func KindOf(err error) ErrorKind {
	var we *WallError
	if errors.As(err, &we) {
		return we.Kind
	}
	return 0
}

// UserMessage returns the text to show to the user for err.
func UserMessage(err error) string {
	var we *WallError
	if errors.As(err, &we) && we.Message != "" {
		return we.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
