package service

import (
	"context"
	"math/big"
	"sync"
	"testing"
	"time"

	"name_wall/internal/app/port"
	"name_wall/internal/app/state"
	"name_wall/internal/domain/entity"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

const testContract = "0x00000000000000000000000000000000000000aa"

var (
	testUser    = common.HexToAddress("0x00000000000000000000000000000000000000b0")
	sepoliaDef  = entity.NetworkDefinition{ChainID: 11155111, Identifier: "sepolia", NativeSymbol: "ETH", Decimals: 18}
	sepoliaID   = big.NewInt(11155111)
	mainnetID   = big.NewInt(1)
	deployedHex = []byte{0x60, 0x80}
)

type nopLogger struct{}

func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

type stubWall struct {
	mu sync.Mutex

	count    *big.Int
	countErr error
	names    []string
	namesErr error
	// refreshErr replaces namesErr once a name has been added.
	refreshErr error

	hasAdded    bool
	hasAddedErr error

	addErr  error
	waitErr error
	status  uint64
	// entered is closed when AddName starts; release blocks it until closed.
	entered chan struct{}
	release chan struct{}
	// counting is closed when Count starts; counted blocks it until closed.
	counting chan struct{}
	counted  chan struct{}
	// waiting is closed when WaitMined starts; mined blocks it until closed.
	waiting chan struct{}
	mined   chan struct{}

	countCalls    int
	namesCalls    int
	hasAddedCalls int
	addCalls      int
}

func newStubWall(names ...string) *stubWall {
	return &stubWall{
		count:  big.NewInt(int64(len(names))),
		names:  names,
		status: types.ReceiptStatusSuccessful,
	}
}

func (w *stubWall) Count(ctx context.Context) (*big.Int, error) {
	w.mu.Lock()
	counting, counted := w.counting, w.counted
	w.counting = nil
	w.mu.Unlock()
	if counting != nil {
		close(counting)
	}
	if counted != nil {
		select {
		case <-counted:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.countCalls++
	if w.countErr != nil {
		return nil, w.countErr
	}
	return new(big.Int).Set(w.count), nil
}

func (w *stubWall) GetNames(context.Context) ([]string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.namesCalls++
	if w.addCalls > 0 && w.refreshErr != nil {
		return nil, w.refreshErr
	}
	if w.namesErr != nil {
		return nil, w.namesErr
	}
	return append([]string(nil), w.names...), nil
}

func (w *stubWall) HasAdded(context.Context, common.Address) (bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.hasAddedCalls++
	return w.hasAdded, w.hasAddedErr
}

func (w *stubWall) AddName(ctx context.Context, _ *bind.TransactOpts, name string) (*types.Transaction, error) {
	w.mu.Lock()
	entered, release := w.entered, w.release
	w.mu.Unlock()
	if entered != nil {
		close(entered)
	}
	if release != nil {
		select {
		case <-release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.addCalls++
	if w.addErr != nil {
		return nil, w.addErr
	}
	if w.status == types.ReceiptStatusSuccessful {
		w.names = append(w.names, name)
		w.count = big.NewInt(int64(len(w.names)))
	}
	return types.NewTx(&types.LegacyTx{Nonce: uint64(w.addCalls)}), nil
}

func (w *stubWall) WaitMined(ctx context.Context, _ *types.Transaction) (*types.Receipt, error) {
	w.mu.Lock()
	waiting, mined := w.waiting, w.mined
	w.mu.Unlock()
	if waiting != nil {
		close(waiting)
	}
	if mined != nil {
		select {
		case <-mined:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.waitErr != nil {
		return nil, w.waitErr
	}
	return &types.Receipt{Status: w.status, BlockNumber: big.NewInt(42)}, nil
}

func (w *stubWall) calls() (count, names, hasAdded, add int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.countCalls, w.namesCalls, w.hasAddedCalls, w.addCalls
}

type stubClient struct {
	chainID  *big.Int
	chainErr error
	code     []byte
	codeErr  error
	balance  *big.Int
	wall     *stubWall
}

func (c *stubClient) ChainID(context.Context) (*big.Int, error) {
	if c.chainErr != nil {
		return nil, c.chainErr
	}
	return c.chainID, nil
}

func (c *stubClient) CodeAt(context.Context, common.Address) ([]byte, error) {
	return c.code, c.codeErr
}

func (c *stubClient) BalanceAt(context.Context, common.Address) (*big.Int, error) {
	return c.balance, nil
}

func (c *stubClient) Wall(common.Address) port.WallContract { return c.wall }

func (c *stubClient) Definition() entity.NetworkDefinition { return sepoliaDef }

type stubClients struct {
	client *stubClient
	err    error
}

func (p *stubClients) GetClient(context.Context) (port.ChainClient, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.client, nil
}

type stubWallet struct {
	mu          sync.Mutex
	accounts    []common.Address
	requestErr  error
	signerErr   error
	requests    int
	signerCalls int
}

func (w *stubWallet) Accounts() []common.Address {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]common.Address(nil), w.accounts...)
}

func (w *stubWallet) RequestAccounts(context.Context) ([]common.Address, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.requests++
	if w.requestErr != nil {
		return nil, w.requestErr
	}
	w.accounts = []common.Address{testUser}
	return w.accounts, nil
}

func (w *stubWallet) Signer(context.Context, *big.Int) (*bind.TransactOpts, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.signerCalls++
	if w.signerErr != nil {
		return nil, w.signerErr
	}
	return &bind.TransactOpts{From: testUser}, nil
}

type stubWallets struct {
	mu      sync.Mutex
	wallet  *stubWallet
	present bool
	calls   int
}

func (p *stubWallets) GetWallet() (port.Wallet, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if !p.present {
		return nil, false
	}
	return p.wallet, true
}

type stubNetworks struct{}

func (stubNetworks) ExpectedNetwork() entity.NetworkDefinition { return sepoliaDef }

func (stubNetworks) ChainName(chainID uint64) string {
	switch chainID {
	case 1:
		return "mainnet"
	case 11155111:
		return "sepolia"
	default:
		return "unknown"
	}
}

type harness struct {
	store   *state.Store
	wall    *stubWall
	client  *stubClient
	clients *stubClients
	wallet  *stubWallet
	wallets *stubWallets
	guard   *Guard
	reader  *Reader
	writer  *Writer
	service port.WallService
}

func newHarness(t *testing.T, names ...string) *harness {
	t.Helper()
	h := &harness{
		store:  state.NewStore(state.AppState{ContractAddress: testContract}),
		wall:   newStubWall(names...),
		wallet: &stubWallet{},
	}
	t.Cleanup(h.store.Close)
	h.client = &stubClient{chainID: sepoliaID, code: deployedHex, wall: h.wall, balance: big.NewInt(0)}
	h.clients = &stubClients{client: h.client}
	h.wallets = &stubWallets{wallet: h.wallet, present: true}
	h.rebuild(testContract)
	return h
}

// rebuild recreates the services for a different contract address.
func (h *harness) rebuild(contract string) {
	h.guard = NewGuard(h.wallets, h.clients, stubNetworks{}, h.store, nopLogger{}, contract)
	h.reader = NewReader(h.guard, h.store, nopLogger{}, 5*time.Second)
	h.writer = NewWriter(h.guard, h.reader, h.store, nopLogger{}, 0)
	h.service = NewWallService(h.wallets, h.clients, h.reader, h.writer, h.store, nopLogger{})
}
