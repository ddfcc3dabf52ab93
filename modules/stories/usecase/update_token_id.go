package usecase

import (
	"context"
	"math/big"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/narrativelabs/storyforge/common/errs"
	"github.com/narrativelabs/storyforge/modules/stories/internal/entity"
)

// UpdateTokenId patches a story's token id after a mint whose write-back
// failed. The token must exist on chain and be owned by the caller's wallet;
// this is the recovery path for errs.LedgerInconsistency.
func (u *Usecase) UpdateTokenId(ctx context.Context, id int64, tokenId string) (*entity.Story, error) {
	caller, connected := u.wallet.Address()
	if !connected {
		return nil, errors.Wrap(errs.WalletRequired, "cannot patch a token id without a connected wallet")
	}

	story, err := u.storiesDg.GetStoryById(ctx, id)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if !strings.EqualFold(story.Owner, caller) {
		return nil, errors.Wrapf(errs.NotAuthorized, "story %d belongs to %s", id, story.Owner)
	}

	parsed, ok := new(big.Int).SetString(tokenId, 10)
	if !ok {
		return nil, errors.Wrapf(errs.InvalidArgument, "token id %q is not a decimal token id", tokenId)
	}
	onChainOwner, err := u.wallet.Reader().OwnerOf(ctx, parsed)
	if err != nil {
		return nil, errors.Wrapf(errs.ChainRejected, "failed to resolve on-chain owner of token %s: %v", tokenId, err)
	}
	if !strings.EqualFold(onChainOwner.Hex(), caller) {
		return nil, errors.Wrapf(errs.NotAuthorized, "token %s is owned by %s on chain", tokenId, onChainOwner.Hex())
	}

	updated, err := u.storiesDg.UpdateStoryTokenId(ctx, id, parsed.String())
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return updated, nil
}
