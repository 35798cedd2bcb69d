package service

import (
	"context"
	"errors"
	"fmt"

	"name_wall/internal/app/port"
	"name_wall/internal/app/state"
	"name_wall/internal/domain/entity"
	"name_wall/internal/pkg/utils"
)

// ErrNoAccount is returned by SignerBalance when no account is connected yet.
var ErrNoAccount = errors.New("no account connected")

// wallServiceImpl implements port.WallService.
type wallServiceImpl struct {
	wallets port.WalletProvider
	clients port.BlockchainClientProvider
	reader  *Reader
	writer  *Writer
	store   *state.Store
	logger  port.Logger
}

// NewWallService wires the reader and writer into one port.WallService.
func NewWallService(
	wallets port.WalletProvider,
	clients port.BlockchainClientProvider,
	reader *Reader,
	writer *Writer,
	store *state.Store,
	logger port.Logger,
) port.WallService {
	return &wallServiceImpl{
		wallets: wallets,
		clients: clients,
		reader:  reader,
		writer:  writer,
		store:   store,
		logger:  logger,
	}
}

// Load implements port.WallService.
func (s *wallServiceImpl) Load(ctx context.Context) (state.AppState, error) {
	return s.reader.Load(ctx)
}

// Submit implements port.WallService.
func (s *wallServiceImpl) Submit(ctx context.Context, name string) (port.SubmitResult, error) {
	return s.writer.Submit(ctx, name)
}

// Snapshot implements port.WallService.
func (s *wallServiceImpl) Snapshot() state.AppState {
	return s.store.Snapshot()
}

// SignerBalance implements port.WallService. It never prompts for account access.
func (s *wallServiceImpl) SignerBalance(ctx context.Context) (entity.SignerBalance, error) {
	wallet, ok := s.wallets.GetWallet()
	if !ok {
		return entity.SignerBalance{}, entity.ErrNoWallet
	}
	accounts := wallet.Accounts()
	if len(accounts) == 0 {
		return entity.SignerBalance{}, ErrNoAccount
	}
	client, err := s.clients.GetClient(ctx)
	if err != nil {
		return entity.SignerBalance{}, err
	}
	amount, err := client.BalanceAt(ctx, accounts[0])
	if err != nil {
		return entity.SignerBalance{}, fmt.Errorf("failed to fetch balance for %s: %w", accounts[0].Hex(), err)
	}
	def := client.Definition()
	formatted, err := utils.FormatBigInt(amount, def.Decimals)
	if err != nil {
		return entity.SignerBalance{}, fmt.Errorf("failed to format balance for %s: %w", accounts[0].Hex(), err)
	}
	return entity.SignerBalance{
		Address:          accounts[0].Hex(),
		NativeSymbol:     def.NativeSymbol,
		Amount:           amount,
		FormattedBalance: formatted,
	}, nil
}
