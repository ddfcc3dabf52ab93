package usecase

import (
	"context"
	"math/big"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/narrativelabs/storyforge/common/errs"
	"github.com/narrativelabs/storyforge/modules/stories/internal/entity"
)

const evolvePromptPrefix = "Continue this story: "

// EvolveStory generates the next chapter from the current one and appends it
// on chain before updating the ledger row. Only the recorded owner may
// evolve, and the chain write must confirm before the off-chain chapter is
// replaced.
func (u *Usecase) EvolveStory(ctx context.Context, id int64) (*entity.Story, error) {
	registry, ok := u.wallet.Registry()
	if !ok {
		return nil, errors.Wrap(errs.WalletRequired, "cannot evolve a story without a connected wallet")
	}
	caller, _ := u.wallet.Address()

	story, err := u.storiesDg.GetStoryById(ctx, id)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if !strings.EqualFold(story.Owner, caller) {
		return nil, errors.Wrapf(errs.NotAuthorized, "story %d belongs to %s", id, story.Owner)
	}
	if !story.IsMinted() {
		return nil, errors.Wrapf(errs.InvalidArgument, "story %d is not minted yet", id)
	}
	tokenId, ok := new(big.Int).SetString(story.TokenId, 10)
	if !ok {
		return nil, errors.Wrapf(errs.LedgerInconsistency, "story %d has malformed token id %q", id, story.TokenId)
	}

	chapter, err := u.generator.Generate(ctx, evolvePromptPrefix+story.CurrentChapter)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	tx, err := registry.EvolveStory(ctx, tokenId, chapter)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if _, err := u.wallet.SubmitAndAwait(ctx, tx, "evolve story"); err != nil {
		return nil, errors.WithStack(err)
	}

	updated, err := u.storiesDg.UpdateStoryChapter(ctx, id, chapter)
	if err != nil {
		return nil, errors.Wrapf(errs.LedgerInconsistency, "token %s evolved on chain but the new chapter could not be recorded for story %d: %v", story.TokenId, id, err)
	}
	return updated, nil
}
