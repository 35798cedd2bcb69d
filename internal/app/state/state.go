// Package state holds the wall's view state as immutable snapshots.
package state

import "name_wall/internal/domain/entity"

// AppState is one immutable snapshot of what the wall shows.
type AppState struct {
	ContractAddress string              `json:"contractAddress"`
	ExpectedNetwork entity.NetworkInfo  `json:"expectedNetwork"`
	Network         *entity.NetworkInfo `json:"network,omitempty"`
	Names           []string            `json:"names"`
	PendingName     string              `json:"pendingName"`
	Loading         bool                `json:"loading"`
	Alert           string              `json:"alert,omitempty"`
	Notice          string              `json:"notice,omitempty"`
	ReloadRequired  bool                `json:"reloadRequired"`
	LastTxHash      string              `json:"lastTxHash,omitempty"`
	Version         uint64              `json:"version"`
}

// Clone returns a deep copy so callers can't reach into the store's snapshot.
func (s AppState) Clone() AppState {
	c := s
	if s.Names != nil {
		c.Names = append([]string(nil), s.Names...)
	}
	if s.Network != nil {
		n := *s.Network
		c.Network = &n
	}
	return c
}

// Update derives the next state from the current one. Updates must not mutate their input.
type Update func(AppState) AppState

// SetNames replaces the name list with the result of a read.
func SetNames(names []string) Update {
	list := append([]string{}, names...)
	return func(s AppState) AppState {
		s.Names = list
		return s
	}
}

// SetNetwork records the network the wallet is on.
func SetNetwork(info entity.NetworkInfo) Update {
	return func(s AppState) AppState {
		n := info
		s.Network = &n
		return s
	}
}

// SetAlert shows a blocking message to the user.
func SetAlert(msg string) Update {
	return func(s AppState) AppState {
		s.Alert = msg
		return s
	}
}

// SetNotice shows a non-blocking message to the user.
func SetNotice(msg string) Update {
	return func(s AppState) AppState {
		s.Notice = msg
		return s
	}
}

// ClearMessages drops alert, notice and the reload marker before a new operation.
func ClearMessages() Update {
	return func(s AppState) AppState {
		s.Alert = ""
		s.Notice = ""
		s.ReloadRequired = false
		return s
	}
}

// BeginSubmit marks a submission as outstanding.
func BeginSubmit(name string) Update {
	return func(s AppState) AppState {
		s.Loading = true
		s.PendingName = name
		s.Alert = ""
		s.Notice = ""
		s.ReloadRequired = false
		return s
	}
}

// EndSubmit clears the loading flag. It is applied on every exit path of a submission.
func EndSubmit() Update {
	return func(s AppState) AppState {
		s.Loading = false
		return s
	}
}

// CompleteSubmit applies a confirmed and refreshed write.
func CompleteSubmit(names []string, txHash string) Update {
	list := append([]string{}, names...)
	return func(s AppState) AppState {
		s.Names = list
		s.PendingName = ""
		s.LastTxHash = txHash
		return s
	}
}

// RequireReload marks the view as stale after a confirmed write whose refresh failed.
// A reload starts from a clean form, so the pending name goes too.
func RequireReload(txHash string) Update {
	return func(s AppState) AppState {
		s.ReloadRequired = true
		s.PendingName = ""
		s.LastTxHash = txHash
		return s
	}
}
