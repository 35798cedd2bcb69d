// Package walletloader provides the signing wallet from a local key file or encrypted keystore.
package walletloader

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"os"
	"strings"
	"sync"

	"name_wall/internal/app/port"
	"name_wall/internal/domain/entity"
	"name_wall/internal/infrastructure/configloader"
	"name_wall/internal/pkg/utils"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// keySource produces the private key when the wallet is unlocked.
type keySource func() (*ecdsa.PrivateKey, error)

// FileWalletProvider implements port.WalletProvider on top of WalletConfig.
type FileWalletProvider struct {
	wallet     *KeyWallet
	loggerInfo func(msg string, args ...any)
}

// NewFileWalletProvider creates a provider for cfg. With neither keyFile nor keystoreFile set
// GetWallet reports no wallet.
func NewFileWalletProvider(cfg configloader.WalletConfig, loggerInfo func(msg string, args ...any)) port.WalletProvider {
	p := &FileWalletProvider{loggerInfo: loggerInfo}

	switch {
	case strings.TrimSpace(cfg.KeyFile) != "":
		path := cfg.KeyFile
		p.wallet = newKeyWallet("keyfile", func() (*ecdsa.PrivateKey, error) {
			return loadHexKey(path)
		}, loggerInfo)
	case strings.TrimSpace(cfg.KeystoreFile) != "":
		path, pass := cfg.KeystoreFile, cfg.KeystorePassphrase
		p.wallet = newKeyWallet("keystore", func() (*ecdsa.PrivateKey, error) {
			return loadKeystore(path, pass)
		}, loggerInfo)
	}

	if loggerInfo != nil {
		loggerInfo("Wallet provider configured", "installed", p.wallet != nil)
	}
	return p
}

// GetWallet returns the configured wallet.
func (p *FileWalletProvider) GetWallet() (port.Wallet, bool) {
	if p.wallet == nil {
		return nil, false
	}
	return p.wallet, true
}

// KeyWallet is a single-account wallet. Accounts stay empty until RequestAccounts unlocks the key.
type KeyWallet struct {
	kind       string
	source     keySource
	loggerInfo func(msg string, args ...any)

	mu      sync.RWMutex
	key     *ecdsa.PrivateKey
	address common.Address
}

func newKeyWallet(kind string, source keySource, loggerInfo func(msg string, args ...any)) *KeyWallet {
	return &KeyWallet{kind: kind, source: source, loggerInfo: loggerInfo}
}

// Accounts returns the unlocked account, if any.
func (w *KeyWallet) Accounts() []common.Address {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.key == nil {
		return nil
	}
	return []common.Address{w.address}
}

// RequestAccounts unlocks the key. Failures are reported as entity.ErrAccountAccess.
func (w *KeyWallet) RequestAccounts(ctx context.Context) ([]common.Address, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.key != nil {
		return []common.Address{w.address}, nil
	}

	key, err := w.source()
	if err != nil {
		return nil, fmt.Errorf("%w: unlock %s: %v", entity.ErrAccountAccess, w.kind, err)
	}
	w.key = key
	w.address = crypto.PubkeyToAddress(key.PublicKey)

	if w.loggerInfo != nil {
		w.loggerInfo("Wallet unlocked", "kind", w.kind, "address", w.address.Hex())
	}
	return []common.Address{w.address}, nil
}

// Signer returns transactor options for the unlocked account on chainID.
func (w *KeyWallet) Signer(ctx context.Context, chainID *big.Int) (*bind.TransactOpts, error) {
	w.mu.RLock()
	key := w.key
	w.mu.RUnlock()
	if key == nil {
		return nil, fmt.Errorf("%w: wallet is locked", entity.ErrAccountAccess)
	}
	if chainID == nil {
		return nil, errors.New("chain id is required to sign")
	}

	opts, err := bind.NewKeyedTransactorWithChainID(key, chainID)
	if err != nil {
		return nil, fmt.Errorf("failed to create transactor: %w", err)
	}
	opts.Context = ctx
	return opts, nil
}

func loadHexKey(path string) (*ecdsa.PrivateKey, error) {
	raw, err := utils.ReadTrimmedFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read key file %s: %w", path, err)
	}
	key, err := crypto.HexToECDSA(strings.TrimPrefix(raw, "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid private key in %s: %w", path, err)
	}
	return key, nil
}

func loadKeystore(path, passphrase string) (*ecdsa.PrivateKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read keystore %s: %w", path, err)
	}
	key, err := keystore.DecryptKey(data, passphrase)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt keystore %s: %w", path, err)
	}
	return key.PrivateKey, nil
}
