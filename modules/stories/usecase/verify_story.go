package usecase

import (
	"context"
	"math/big"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/narrativelabs/storyforge/common/errs"
	"github.com/narrativelabs/storyforge/modules/stories/internal/entity"
)

type VerifyStoryResult struct {
	Story        *entity.Story
	Valid        bool
	OnChainOwner string
}

// VerifyStory checks the story's on-chain proof against its content and
// reports the current on-chain owner. Works without a connected wallet since
// it only reads from the chain.
func (u *Usecase) VerifyStory(ctx context.Context, id int64) (*VerifyStoryResult, error) {
	story, err := u.storiesDg.GetStoryById(ctx, id)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if !story.IsMinted() {
		return nil, errors.Wrapf(errs.InvalidArgument, "story %d is not minted yet", id)
	}
	tokenId, ok := new(big.Int).SetString(story.TokenId, 10)
	if !ok {
		return nil, errors.Wrapf(errs.LedgerInconsistency, "story %d has malformed token id %q", id, story.TokenId)
	}

	reader := u.wallet.Reader()
	proof, err := reader.GetProof(ctx, tokenId)
	if err != nil {
		return nil, errors.Wrapf(errs.ChainRejected, "failed to fetch proof for token %s: %v", story.TokenId, err)
	}
	valid, err := reader.Verify(ctx, tokenId, proof)
	if err != nil {
		return nil, errors.Wrapf(errs.ChainRejected, "failed to verify token %s: %v", story.TokenId, err)
	}
	owner, err := reader.OwnerOf(ctx, tokenId)
	if err != nil {
		return nil, errors.Wrapf(errs.ChainRejected, "failed to resolve on-chain owner of token %s: %v", story.TokenId, err)
	}

	return &VerifyStoryResult{
		Story:        story,
		Valid:        valid,
		OnChainOwner: strings.ToLower(owner.Hex()),
	}, nil
}
