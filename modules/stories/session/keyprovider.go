package session

import (
	"context"
	"crypto/ecdsa"
	"math/big"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/narrativelabs/storyforge/common"
	"github.com/narrativelabs/storyforge/common/errs"
)

// KeyProvider is a custodial Provider over a local private key and a single
// RPC endpoint. The endpoint pins the chain, so SwitchChain only succeeds
// when the requested chain is the one the endpoint serves, and the account
// set never changes at runtime.
type KeyProvider struct {
	client  *ethclient.Client
	key     *ecdsa.PrivateKey
	address ethcommon.Address

	accountsChanged chan []ethcommon.Address
	chainChanged    chan *big.Int
}

var _ Provider = (*KeyProvider)(nil)

// NewKeyProvider builds a provider from a hex-encoded private key. An empty
// key yields a provider with no accounts, leaving the session read-only.
func NewKeyProvider(client *ethclient.Client, privateKeyHex string) (*KeyProvider, error) {
	provider := &KeyProvider{
		client:          client,
		accountsChanged: make(chan []ethcommon.Address),
		chainChanged:    make(chan *big.Int),
	}
	if privateKeyHex == "" {
		return provider, nil
	}
	key, err := crypto.HexToECDSA(strings.TrimPrefix(privateKeyHex, "0x"))
	if err != nil {
		return nil, errors.Wrap(err, "invalid wallet private key")
	}
	provider.key = key
	provider.address = crypto.PubkeyToAddress(key.PublicKey)
	return provider, nil
}

func (p *KeyProvider) ChainId(ctx context.Context) (*big.Int, error) {
	chainId, err := p.client.ChainID(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query chain id from rpc endpoint")
	}
	return chainId, nil
}

func (p *KeyProvider) Accounts(_ context.Context) ([]ethcommon.Address, error) {
	if p.key == nil {
		return nil, nil
	}
	return []ethcommon.Address{p.address}, nil
}

func (p *KeyProvider) RequestAccounts(ctx context.Context) ([]ethcommon.Address, error) {
	return p.Accounts(ctx)
}

func (p *KeyProvider) SwitchChain(ctx context.Context, chainId *big.Int) error {
	current, err := p.ChainId(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	if current.Cmp(chainId) != 0 {
		return errors.Wrapf(errs.NetworkMismatch, "rpc endpoint is pinned to chain %s, cannot switch to chain %s", current, chainId)
	}
	return nil
}

func (p *KeyProvider) AddChain(_ context.Context, params common.ChainParams) error {
	return errors.Wrapf(errs.Unsupported, "cannot add chain %q to a fixed rpc endpoint", params.ChainName)
}

func (p *KeyProvider) Signer(ctx context.Context, account ethcommon.Address) (*bind.TransactOpts, error) {
	if p.key == nil {
		return nil, errors.Wrap(errs.WalletRequired, "no signing key is configured")
	}
	if account != p.address {
		return nil, errors.Wrapf(errs.NotAuthorized, "account %s is not held by this provider", account)
	}
	chainId, err := p.client.ChainID(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query chain id from rpc endpoint")
	}
	opts, err := bind.NewKeyedTransactorWithChainID(p.key, chainId)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create keyed transactor")
	}
	return opts, nil
}

func (p *KeyProvider) Backend() Backend {
	return p.client
}

func (p *KeyProvider) AccountsChanged() <-chan []ethcommon.Address {
	return p.accountsChanged
}

func (p *KeyProvider) ChainChanged() <-chan *big.Int {
	return p.chainChanged
}
