package session

import (
	"context"
	"math/big"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/narrativelabs/storyforge/common"
)

// ErrChainNotAdded is returned by Provider.SwitchChain when the wallet does
// not know the requested chain yet. The session reacts by calling AddChain
// and retrying the switch.
var ErrChainNotAdded = errors.New("chain is not added to the wallet")

// Backend is the chain access a session needs: contract calls and
// transactions plus receipt lookups for confirmation waits.
type Backend interface {
	bind.ContractBackend
	bind.DeployBackend
}

// Provider abstracts a wallet provider. The method surface mirrors what
// injected browser wallets expose; KeyProvider implements it over a local
// private key for server-side custody.
type Provider interface {
	// ChainId returns the chain the provider is currently on.
	ChainId(ctx context.Context) (*big.Int, error)
	// Accounts returns the already-authorized accounts without prompting.
	Accounts(ctx context.Context) ([]ethcommon.Address, error)
	// RequestAccounts prompts for account access and returns the granted
	// accounts.
	RequestAccounts(ctx context.Context) ([]ethcommon.Address, error)
	// SwitchChain asks the provider to move to the given chain. Returns
	// ErrChainNotAdded if the chain must be registered first.
	SwitchChain(ctx context.Context, chainId *big.Int) error
	// AddChain registers a chain with the provider.
	AddChain(ctx context.Context, params common.ChainParams) error
	// Signer builds transact opts signing on behalf of the given account.
	Signer(ctx context.Context, account ethcommon.Address) (*bind.TransactOpts, error)

	Backend() Backend

	// AccountsChanged delivers the new account set whenever it changes. An
	// empty slice means access was revoked.
	AccountsChanged() <-chan []ethcommon.Address
	// ChainChanged delivers the new chain id whenever the provider moves to
	// another chain.
	ChainChanged() <-chan *big.Int
}
