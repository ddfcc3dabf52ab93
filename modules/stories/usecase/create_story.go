package usecase

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/narrativelabs/storyforge/common/errs"
	"github.com/narrativelabs/storyforge/modules/stories/datagateway"
	"github.com/narrativelabs/storyforge/modules/stories/internal/entity"
)

// CreateStory generates the opening chapter, records it off chain and mints
// the story token. The ledger row is created before the mint transaction so a
// chain failure leaves a placeholder row rather than losing the generated
// text; a confirmed mint whose token id cannot be written back fails with
// errs.LedgerInconsistency, carrying the minted token id in the message.
func (u *Usecase) CreateStory(ctx context.Context, title, prompt string) (*entity.Story, error) {
	registry, ok := u.wallet.Registry()
	if !ok {
		return nil, errors.Wrap(errs.WalletRequired, "cannot create a story without a connected wallet")
	}
	owner, _ := u.wallet.Address()

	chapter, err := u.generator.Generate(ctx, prompt)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	story, err := u.storiesDg.CreateStory(ctx, datagateway.CreateStoryParams{
		Title:          title,
		CurrentChapter: chapter,
		TokenId:        entity.NewTokenIdPlaceholder(time.Now()),
		Owner:          owner,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to record story")
	}

	tx, err := registry.Mint(ctx, title, chapter)
	if err != nil {
		return story, errors.WithStack(err)
	}
	receipt, err := u.wallet.SubmitAndAwait(ctx, tx, "mint story")
	if err != nil {
		return story, errors.WithStack(err)
	}
	tokenId, err := registry.MintedTokenId(receipt)
	if err != nil {
		return story, errors.Wrap(err, "mint confirmed but token id could not be read from receipt")
	}

	updated, err := u.storiesDg.UpdateStoryTokenId(ctx, story.Id, tokenId.String())
	if err != nil {
		return story, errors.Wrapf(errs.LedgerInconsistency, "token %s minted on chain but could not be recorded for story %d: %v", tokenId, story.Id, err)
	}
	return updated, nil
}
