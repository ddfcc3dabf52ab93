package session

import (
	"context"
	"log/slog"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/narrativelabs/storyforge/common"
	"github.com/narrativelabs/storyforge/common/errs"
	"github.com/narrativelabs/storyforge/modules/stories/registry"
	"github.com/narrativelabs/storyforge/pkg/logger"
	"github.com/narrativelabs/storyforge/pkg/logger/slogx"
)

// Contract is the session surface the use cases depend on: connection state,
// registry bindings and confirmed transaction submission.
type Contract interface {
	// Connect requests wallet access and binds a signing registry to the
	// first granted account. Returns the connected address.
	Connect(ctx context.Context) (string, error)
	// Disconnect clears the connected account and its signing binding. The
	// read-only binding stays usable.
	Disconnect()
	// Address returns the connected account in lower-case hex, or false when
	// no wallet is connected.
	Address() (string, bool)
	// Registry returns the signer-bound registry, or false when no wallet is
	// connected.
	Registry() (registry.Contract, bool)
	// Reader returns the read-only registry binding. Always available.
	Reader() registry.Contract
	Network() common.Network
	// SubmitAndAwait waits for the transaction to be mined and checks the
	// receipt status. Reverted transactions fail with errs.ChainRejected.
	SubmitAndAwait(ctx context.Context, tx *types.Transaction, description string) (*types.Receipt, error)
}

// Session tracks wallet and network state for the story registry. It degrades
// to read-only mode when the provider cannot reach the configured network and
// reacts to provider account/chain change events via its Run loop.
type Session struct {
	provider        Provider
	network         common.Network
	registryAddress ethcommon.Address
	notifier        Notifier

	mu           sync.Mutex
	reader       registry.Contract
	account      *ethcommon.Address
	signing      registry.Contract
	networkReady bool

	quitOnce sync.Once
	quit     chan struct{}
	done     chan struct{}
}

var _ Contract = (*Session)(nil)

func New(provider Provider, network common.Network, registryAddress ethcommon.Address, notifier Notifier) (*Session, error) {
	if !network.IsSupported() {
		return nil, errors.Wrapf(errs.Unsupported, "unsupported network %q", network)
	}
	reader, err := registry.New(registryAddress, provider.Backend(), nil)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if notifier == nil {
		notifier = NewLogNotifier()
	}
	return &Session{
		provider:        provider,
		network:         network,
		registryAddress: registryAddress,
		notifier:        notifier,
		reader:          reader,
		quit:            make(chan struct{}),
		done:            make(chan struct{}),
	}, nil
}

// Initialize brings the provider onto the configured network and restores an
// already-authorized account if one exists. Network failures degrade the
// session to read-only mode instead of failing startup.
func (s *Session) Initialize(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.networkReady = s.ensureNetwork(ctx)
	if !s.networkReady {
		logger.WarnContext(ctx, "Provider is not on the configured network, continuing in read-only mode",
			slog.String("network", s.network.String()),
		)
		return nil
	}

	accounts, err := s.provider.Accounts(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to query authorized accounts")
	}
	if len(accounts) > 0 {
		if err := s.bindAccount(ctx, accounts[0]); err != nil {
			return errors.WithStack(err)
		}
		logger.InfoContext(ctx, "Restored wallet session",
			slog.String("address", accounts[0].Hex()),
		)
	}
	return nil
}

// ensureNetwork moves the provider to the configured chain, registering it
// first if the provider does not know it. Caller must hold s.mu.
func (s *Session) ensureNetwork(ctx context.Context) bool {
	chainId, err := s.provider.ChainId(ctx)
	if err != nil {
		logger.WarnContext(ctx, "Failed to query provider chain id", slogx.Error(err))
		return false
	}
	if chainId.Cmp(s.network.ChainId()) == 0 {
		return true
	}

	err = s.provider.SwitchChain(ctx, s.network.ChainId())
	if errors.Is(err, ErrChainNotAdded) {
		if addErr := s.provider.AddChain(ctx, s.network.ChainParams()); addErr != nil {
			logger.WarnContext(ctx, "Failed to register chain with provider", slogx.Error(addErr))
			return false
		}
		err = s.provider.SwitchChain(ctx, s.network.ChainId())
	}
	if err != nil {
		logger.WarnContext(ctx, "Failed to switch provider to configured network", slogx.Error(err))
		return false
	}
	return true
}

// bindAccount builds a signer-bound registry for the account. Caller must
// hold s.mu.
func (s *Session) bindAccount(ctx context.Context, account ethcommon.Address) error {
	signer, err := s.provider.Signer(ctx, account)
	if err != nil {
		return errors.Wrap(err, "failed to build signer for account")
	}
	signing, err := registry.New(s.registryAddress, s.provider.Backend(), signer)
	if err != nil {
		return errors.WithStack(err)
	}
	s.account = &account
	s.signing = signing
	return nil
}

func (s *Session) clearAccount() {
	s.account = nil
	s.signing = nil
}

func (s *Session) Connect(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.networkReady {
		s.networkReady = s.ensureNetwork(ctx)
		if !s.networkReady {
			return "", errors.Wrapf(errs.NetworkMismatch, "provider is not on network %q", s.network)
		}
	}

	accounts, err := s.provider.RequestAccounts(ctx)
	if err != nil {
		return "", errors.Wrap(errs.WalletRequired, "wallet access was not granted")
	}
	if len(accounts) == 0 {
		return "", errors.Wrap(errs.WalletRequired, "wallet returned no accounts")
	}
	if err := s.bindAccount(ctx, accounts[0]); err != nil {
		return "", errors.WithStack(err)
	}
	return strings.ToLower(accounts[0].Hex()), nil
}

func (s *Session) Disconnect() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearAccount()
}

func (s *Session) Address() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.account == nil {
		return "", false
	}
	return strings.ToLower(s.account.Hex()), true
}

func (s *Session) Registry() (registry.Contract, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.signing == nil {
		return nil, false
	}
	return s.signing, true
}

func (s *Session) Reader() registry.Contract {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reader
}

func (s *Session) Network() common.Network {
	return s.network
}

func (s *Session) SubmitAndAwait(ctx context.Context, tx *types.Transaction, description string) (*types.Receipt, error) {
	txHash := tx.Hash().Hex()
	s.notifier.Submitted(ctx, description, txHash)

	receipt, err := bind.WaitMined(ctx, s.provider.Backend(), tx)
	if err != nil {
		return nil, errors.Wrapf(err, "failed waiting for transaction %s", txHash)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		s.notifier.Failed(ctx, description, txHash)
		return nil, errors.Wrapf(errs.ChainRejected, "transaction %s reverted", txHash)
	}
	s.notifier.Confirmed(ctx, description, txHash, s.network.ExplorerTxURL(txHash))
	return receipt, nil
}

// Run watches provider account and chain change events until Shutdown or
// context cancellation.
func (s *Session) Run(ctx context.Context) error {
	defer close(s.done)

	ctx = logger.WithContext(ctx, slog.String("package", "session"))

	for {
		select {
		case <-ctx.Done():
			return errors.WithStack(ctx.Err())
		case <-s.quit:
			return nil
		case accounts := <-s.provider.AccountsChanged():
			s.handleAccountsChanged(ctx, accounts)
		case chainId := <-s.provider.ChainChanged():
			s.handleChainChanged(ctx, chainId)
		}
	}
}

func (s *Session) handleAccountsChanged(ctx context.Context, accounts []ethcommon.Address) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(accounts) == 0 {
		s.clearAccount()
		logger.InfoContext(ctx, "Wallet access revoked, session cleared")
		return
	}
	if !s.networkReady {
		return
	}
	if err := s.bindAccount(ctx, accounts[0]); err != nil {
		s.clearAccount()
		logger.ErrorContext(ctx, "Failed to rebind changed account, session cleared", slogx.Error(err))
		return
	}
	logger.InfoContext(ctx, "Wallet account changed",
		slog.String("address", accounts[0].Hex()),
	)
}

func (s *Session) handleChainChanged(ctx context.Context, chainId *big.Int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if chainId.Cmp(s.network.ChainId()) == 0 {
		s.networkReady = true
		logger.InfoContext(ctx, "Provider returned to configured network",
			slog.String("network", s.network.String()),
		)
		return
	}
	s.networkReady = false
	s.clearAccount()
	logger.WarnContext(ctx, "Provider moved to another chain, session cleared",
		slog.String("chainId", chainId.String()),
		slog.String("network", s.network.String()),
	)
}

func (s *Session) Shutdown() error {
	return s.ShutdownWithContext(context.Background())
}

func (s *Session) ShutdownWithContext(ctx context.Context) (err error) {
	s.quitOnce.Do(func() {
		close(s.quit)
		select {
		case <-s.done:
		case <-time.After(30 * time.Second):
			err = errors.Wrap(errs.Timeout, "session shutdown timeout")
		case <-ctx.Done():
			err = errors.Wrap(ctx.Err(), "session shutdown context canceled")
		}
	})
	return
}
