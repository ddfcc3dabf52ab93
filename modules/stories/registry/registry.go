package registry

import (
	"context"
	"math/big"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/narrativelabs/storyforge/common/errs"
)

// storyRegistryABI is the ERC-7007 style interface of the deployed StoryNFT
// contract: mint, evolution and verification methods plus the two events the
// coordinator consumes.
const storyRegistryABI = `[
	{"type":"function","name":"mint","stateMutability":"nonpayable","inputs":[{"name":"title","type":"string"},{"name":"initialStory","type":"string"}],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"evolveStory","stateMutability":"nonpayable","inputs":[{"name":"tokenId","type":"uint256"},{"name":"newContent","type":"string"}],"outputs":[]},
	{"type":"function","name":"getStoryContent","stateMutability":"view","inputs":[{"name":"tokenId","type":"uint256"}],"outputs":[{"name":"","type":"string"}]},
	{"type":"function","name":"ownerOf","stateMutability":"view","inputs":[{"name":"tokenId","type":"uint256"}],"outputs":[{"name":"","type":"address"}]},
	{"type":"function","name":"verify","stateMutability":"view","inputs":[{"name":"tokenId","type":"uint256"},{"name":"proof","type":"bytes"}],"outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"getProof","stateMutability":"view","inputs":[{"name":"tokenId","type":"uint256"}],"outputs":[{"name":"","type":"bytes"}]},
	{"type":"event","name":"StoryMinted","anonymous":false,"inputs":[{"name":"tokenId","type":"uint256","indexed":true},{"name":"title","type":"string","indexed":false},{"name":"initialStory","type":"string","indexed":false}]},
	{"type":"event","name":"StoryEvolved","anonymous":false,"inputs":[{"name":"tokenId","type":"uint256","indexed":true},{"name":"newContent","type":"string","indexed":false},{"name":"proof","type":"bytes","indexed":false}]}
]`

// Contract is the minting/evolution/verification surface of the on-chain
// story registry. Implemented by Registry.
type Contract interface {
	Address() ethcommon.Address

	// Mint submits a mint transaction for a new story token. Fails with
	// errs.SignerRequired if no signer is bound.
	Mint(ctx context.Context, title, initialStory string) (*types.Transaction, error)
	// EvolveStory submits an evolution transaction. The contract reverts if
	// the sender is not the current token owner. Fails with
	// errs.SignerRequired if no signer is bound.
	EvolveStory(ctx context.Context, tokenId *big.Int, newContent string) (*types.Transaction, error)

	GetStoryContent(ctx context.Context, tokenId *big.Int) (string, error)
	OwnerOf(ctx context.Context, tokenId *big.Int) (ethcommon.Address, error)
	Verify(ctx context.Context, tokenId *big.Int, proof []byte) (bool, error)
	GetProof(ctx context.Context, tokenId *big.Int) ([]byte, error)

	// MintedTokenId extracts the assigned token id from the StoryMinted event
	// of a mint receipt.
	MintedTokenId(receipt *types.Receipt) (*big.Int, error)
}

type Registry struct {
	address  ethcommon.Address
	abi      abi.ABI
	contract *bind.BoundContract
	signer   *bind.TransactOpts
}

var _ Contract = (*Registry)(nil)

// New binds the story registry at the given address. signer may be nil for a
// read-only binding; mutating calls will then fail with errs.SignerRequired.
func New(address ethcommon.Address, backend bind.ContractBackend, signer *bind.TransactOpts) (*Registry, error) {
	parsed, err := abi.JSON(strings.NewReader(storyRegistryABI))
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse story registry ABI")
	}
	return &Registry{
		address:  address,
		abi:      parsed,
		contract: bind.NewBoundContract(address, parsed, backend, backend, backend),
		signer:   signer,
	}, nil
}

func (r *Registry) Address() ethcommon.Address {
	return r.address
}

func (r *Registry) transactOpts(ctx context.Context) (*bind.TransactOpts, error) {
	if r.signer == nil {
		return nil, errors.Wrap(errs.SignerRequired, "registry binding has no signer")
	}
	opts := *r.signer
	opts.Context = ctx
	return &opts, nil
}

// wrapTransactError classifies submission failures. The contract rejects
// invalid transactions at gas estimation, before anything is mined, so a
// revert reported here must carry the same kind as a reverted receipt.
func wrapTransactError(err error, method string) error {
	var dataErr rpc.DataError
	if errors.As(err, &dataErr) || strings.Contains(err.Error(), "execution reverted") {
		return errors.Wrapf(errs.ChainRejected, "%s rejected by contract: %v", method, err)
	}
	return errors.Wrapf(err, "failed to submit %s transaction", method)
}

func (r *Registry) Mint(ctx context.Context, title, initialStory string) (*types.Transaction, error) {
	opts, err := r.transactOpts(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	tx, err := r.contract.Transact(opts, "mint", title, initialStory)
	if err != nil {
		return nil, wrapTransactError(err, "mint")
	}
	return tx, nil
}

func (r *Registry) EvolveStory(ctx context.Context, tokenId *big.Int, newContent string) (*types.Transaction, error) {
	opts, err := r.transactOpts(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	tx, err := r.contract.Transact(opts, "evolveStory", tokenId, newContent)
	if err != nil {
		return nil, wrapTransactError(err, "evolveStory")
	}
	return tx, nil
}

func (r *Registry) GetStoryContent(ctx context.Context, tokenId *big.Int) (string, error) {
	var out []interface{}
	if err := r.contract.Call(&bind.CallOpts{Context: ctx}, &out, "getStoryContent", tokenId); err != nil {
		return "", errors.Wrap(err, "error during getStoryContent call")
	}
	return *abi.ConvertType(out[0], new(string)).(*string), nil
}

func (r *Registry) OwnerOf(ctx context.Context, tokenId *big.Int) (ethcommon.Address, error) {
	var out []interface{}
	if err := r.contract.Call(&bind.CallOpts{Context: ctx}, &out, "ownerOf", tokenId); err != nil {
		return ethcommon.Address{}, errors.Wrap(err, "error during ownerOf call")
	}
	return *abi.ConvertType(out[0], new(ethcommon.Address)).(*ethcommon.Address), nil
}

func (r *Registry) Verify(ctx context.Context, tokenId *big.Int, proof []byte) (bool, error) {
	var out []interface{}
	if err := r.contract.Call(&bind.CallOpts{Context: ctx}, &out, "verify", tokenId, proof); err != nil {
		return false, errors.Wrap(err, "error during verify call")
	}
	return *abi.ConvertType(out[0], new(bool)).(*bool), nil
}

func (r *Registry) GetProof(ctx context.Context, tokenId *big.Int) ([]byte, error) {
	var out []interface{}
	if err := r.contract.Call(&bind.CallOpts{Context: ctx}, &out, "getProof", tokenId); err != nil {
		return nil, errors.Wrap(err, "error during getProof call")
	}
	return *abi.ConvertType(out[0], new([]byte)).(*[]byte), nil
}

func (r *Registry) MintedTokenId(receipt *types.Receipt) (*big.Int, error) {
	for _, log := range receipt.Logs {
		if log == nil || log.Address != r.address {
			continue
		}
		event, err := r.ParseStoryMinted(*log)
		if err != nil {
			continue
		}
		return event.TokenId, nil
	}
	return nil, errors.Errorf("no StoryMinted event found in receipt logs of tx %s", receipt.TxHash)
}
