package session

import (
	"context"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/narrativelabs/storyforge/common"
	"github.com/narrativelabs/storyforge/common/errs"
	"github.com/stretchr/testify/require"
)

var (
	testRegistryAddress = ethcommon.HexToAddress("0x9fE46736679d2D9a65F0992F2272dE9f3c7fa6e0")
	testAccount         = ethcommon.HexToAddress("0xAb8483F64d9C6d1EcF9b849Ae677dD3315835cb2")
)

type fakeBackend struct {
	mu       sync.Mutex
	receipts map[ethcommon.Hash]*types.Receipt
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{receipts: make(map[ethcommon.Hash]*types.Receipt)}
}

func (b *fakeBackend) setReceipt(txHash ethcommon.Hash, receipt *types.Receipt) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.receipts[txHash] = receipt
}

func (b *fakeBackend) TransactionReceipt(_ context.Context, txHash ethcommon.Hash) (*types.Receipt, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	receipt, ok := b.receipts[txHash]
	if !ok {
		return nil, ethereum.NotFound
	}
	return receipt, nil
}

func (b *fakeBackend) CodeAt(context.Context, ethcommon.Address, *big.Int) ([]byte, error) {
	return []byte{0x01}, nil
}

func (b *fakeBackend) CallContract(context.Context, ethereum.CallMsg, *big.Int) ([]byte, error) {
	return nil, nil
}

func (b *fakeBackend) HeaderByNumber(context.Context, *big.Int) (*types.Header, error) {
	return &types.Header{}, nil
}

func (b *fakeBackend) PendingCodeAt(context.Context, ethcommon.Address) ([]byte, error) {
	return []byte{0x01}, nil
}

func (b *fakeBackend) PendingNonceAt(context.Context, ethcommon.Address) (uint64, error) {
	return 0, nil
}

func (b *fakeBackend) SuggestGasPrice(context.Context) (*big.Int, error) {
	return big.NewInt(1), nil
}

func (b *fakeBackend) SuggestGasTipCap(context.Context) (*big.Int, error) {
	return big.NewInt(1), nil
}

func (b *fakeBackend) EstimateGas(context.Context, ethereum.CallMsg) (uint64, error) {
	return 21000, nil
}

func (b *fakeBackend) SendTransaction(context.Context, *types.Transaction) error {
	return nil
}

func (b *fakeBackend) FilterLogs(context.Context, ethereum.FilterQuery) ([]types.Log, error) {
	return nil, nil
}

func (b *fakeBackend) SubscribeFilterLogs(context.Context, ethereum.FilterQuery, chan<- types.Log) (ethereum.Subscription, error) {
	return nil, errors.New("not supported")
}

type fakeProvider struct {
	mu          sync.Mutex
	chainId     *big.Int
	accounts    []ethcommon.Address
	requestErr  error
	switchErr   error
	addErr      error
	switchCalls int

	backend         *fakeBackend
	accountsChanged chan []ethcommon.Address
	chainChanged    chan *big.Int
}

func newFakeProvider(chainId *big.Int, accounts ...ethcommon.Address) *fakeProvider {
	return &fakeProvider{
		chainId:         chainId,
		accounts:        accounts,
		backend:         newFakeBackend(),
		accountsChanged: make(chan []ethcommon.Address),
		chainChanged:    make(chan *big.Int),
	}
}

func (p *fakeProvider) ChainId(context.Context) (*big.Int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return new(big.Int).Set(p.chainId), nil
}

func (p *fakeProvider) Accounts(context.Context) ([]ethcommon.Address, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]ethcommon.Address(nil), p.accounts...), nil
}

func (p *fakeProvider) RequestAccounts(ctx context.Context) ([]ethcommon.Address, error) {
	p.mu.Lock()
	requestErr := p.requestErr
	p.mu.Unlock()
	if requestErr != nil {
		return nil, requestErr
	}
	return p.Accounts(ctx)
}

func (p *fakeProvider) SwitchChain(_ context.Context, chainId *big.Int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.switchCalls++
	if p.switchErr != nil {
		return p.switchErr
	}
	p.chainId = new(big.Int).Set(chainId)
	return nil
}

func (p *fakeProvider) AddChain(context.Context, common.ChainParams) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.addErr != nil {
		return p.addErr
	}
	p.switchErr = nil
	return nil
}

func (p *fakeProvider) Signer(_ context.Context, account ethcommon.Address) (*bind.TransactOpts, error) {
	return &bind.TransactOpts{
		From: account,
		Signer: func(_ ethcommon.Address, tx *types.Transaction) (*types.Transaction, error) {
			return tx, nil
		},
	}, nil
}

func (p *fakeProvider) Backend() Backend {
	return p.backend
}

func (p *fakeProvider) AccountsChanged() <-chan []ethcommon.Address {
	return p.accountsChanged
}

func (p *fakeProvider) ChainChanged() <-chan *big.Int {
	return p.chainChanged
}

type recordingNotifier struct {
	mu        sync.Mutex
	submitted []string
	confirmed []string
	failed    []string
}

func (n *recordingNotifier) Submitted(_ context.Context, _ string, txHash string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.submitted = append(n.submitted, txHash)
}

func (n *recordingNotifier) Confirmed(_ context.Context, _ string, txHash string, _ string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.confirmed = append(n.confirmed, txHash)
}

func (n *recordingNotifier) Failed(_ context.Context, _ string, txHash string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.failed = append(n.failed, txHash)
}

func newTestSession(t *testing.T, provider Provider, notifier Notifier) *Session {
	t.Helper()
	session, err := New(provider, common.NetworkSepolia, testRegistryAddress, notifier)
	require.NoError(t, err)
	return session
}

func TestInitializeRestoresAccount(t *testing.T) {
	provider := newFakeProvider(common.NetworkSepolia.ChainId(), testAccount)
	session := newTestSession(t, provider, nil)

	require.NoError(t, session.Initialize(context.Background()))

	address, connected := session.Address()
	require.True(t, connected)
	require.Equal(t, "0xab8483f64d9c6d1ecf9b849ae677dd3315835cb2", address)

	_, ok := session.Registry()
	require.True(t, ok)
}

func TestInitializeDegradesToReadOnly(t *testing.T) {
	provider := newFakeProvider(big.NewInt(1), testAccount)
	provider.switchErr = errors.New("user rejected the switch")
	session := newTestSession(t, provider, nil)

	require.NoError(t, session.Initialize(context.Background()))

	_, connected := session.Address()
	require.False(t, connected)
	_, ok := session.Registry()
	require.False(t, ok)
	require.NotNil(t, session.Reader())

	_, err := session.Connect(context.Background())
	require.ErrorIs(t, err, errs.NetworkMismatch)
}

func TestInitializeAddsMissingChain(t *testing.T) {
	provider := newFakeProvider(big.NewInt(1), testAccount)
	provider.switchErr = ErrChainNotAdded
	session := newTestSession(t, provider, nil)

	require.NoError(t, session.Initialize(context.Background()))

	address, connected := session.Address()
	require.True(t, connected)
	require.Equal(t, "0xab8483f64d9c6d1ecf9b849ae677dd3315835cb2", address)
	require.Equal(t, 0, common.NetworkSepolia.ChainId().Cmp(provider.chainId))
}

func TestConnectAndDisconnect(t *testing.T) {
	provider := newFakeProvider(common.NetworkSepolia.ChainId(), testAccount)
	session := newTestSession(t, provider, nil)
	require.NoError(t, session.Initialize(context.Background()))

	address, err := session.Connect(context.Background())
	require.NoError(t, err)
	require.Equal(t, "0xab8483f64d9c6d1ecf9b849ae677dd3315835cb2", address)

	session.Disconnect()
	_, connected := session.Address()
	require.False(t, connected)
	_, ok := session.Registry()
	require.False(t, ok)
}

func TestConnectRejected(t *testing.T) {
	provider := newFakeProvider(common.NetworkSepolia.ChainId())
	provider.requestErr = errors.New("user rejected the request")
	session := newTestSession(t, provider, nil)
	require.NoError(t, session.Initialize(context.Background()))

	_, err := session.Connect(context.Background())
	require.ErrorIs(t, err, errs.WalletRequired)
}

func TestAccountsRevokedClearsSession(t *testing.T) {
	provider := newFakeProvider(common.NetworkSepolia.ChainId(), testAccount)
	session := newTestSession(t, provider, nil)
	require.NoError(t, session.Initialize(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = session.Run(ctx) }()
	defer func() { _ = session.Shutdown() }()

	provider.accountsChanged <- []ethcommon.Address{}

	require.Eventually(t, func() bool {
		_, connected := session.Address()
		return !connected
	}, time.Second, 10*time.Millisecond)
}

func TestChainChangedClearsSession(t *testing.T) {
	provider := newFakeProvider(common.NetworkSepolia.ChainId(), testAccount)
	session := newTestSession(t, provider, nil)
	require.NoError(t, session.Initialize(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = session.Run(ctx) }()
	defer func() { _ = session.Shutdown() }()

	provider.chainChanged <- big.NewInt(1)

	require.Eventually(t, func() bool {
		_, connected := session.Address()
		return !connected
	}, time.Second, 10*time.Millisecond)

	// back on the configured chain, a fresh connect works again
	provider.chainChanged <- common.NetworkSepolia.ChainId()
	require.Eventually(t, func() bool {
		_, err := session.Connect(context.Background())
		return err == nil
	}, time.Second, 10*time.Millisecond)
}

func TestSubmitAndAwaitConfirmed(t *testing.T) {
	provider := newFakeProvider(common.NetworkSepolia.ChainId(), testAccount)
	notifier := &recordingNotifier{}
	session := newTestSession(t, provider, notifier)

	tx := types.NewTx(&types.LegacyTx{Nonce: 1, Gas: 21000, GasPrice: big.NewInt(1)})
	provider.backend.setReceipt(tx.Hash(), &types.Receipt{
		Status: types.ReceiptStatusSuccessful,
		TxHash: tx.Hash(),
	})

	receipt, err := session.SubmitAndAwait(context.Background(), tx, "mint story")
	require.NoError(t, err)
	require.Equal(t, types.ReceiptStatusSuccessful, receipt.Status)
	require.Equal(t, []string{tx.Hash().Hex()}, notifier.submitted)
	require.Equal(t, []string{tx.Hash().Hex()}, notifier.confirmed)
	require.Empty(t, notifier.failed)
}

func TestSubmitAndAwaitReverted(t *testing.T) {
	provider := newFakeProvider(common.NetworkSepolia.ChainId(), testAccount)
	notifier := &recordingNotifier{}
	session := newTestSession(t, provider, notifier)

	tx := types.NewTx(&types.LegacyTx{Nonce: 2, Gas: 21000, GasPrice: big.NewInt(1)})
	provider.backend.setReceipt(tx.Hash(), &types.Receipt{
		Status: types.ReceiptStatusFailed,
		TxHash: tx.Hash(),
	})

	_, err := session.SubmitAndAwait(context.Background(), tx, "mint story")
	require.ErrorIs(t, err, errs.ChainRejected)
	require.Equal(t, []string{tx.Hash().Hex()}, notifier.failed)
	require.Empty(t, notifier.confirmed)
}
