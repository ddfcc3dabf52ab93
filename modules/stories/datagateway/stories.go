package datagateway

import (
	"context"

	"github.com/narrativelabs/storyforge/modules/stories/internal/entity"
)

type StoriesDataGateway interface {
	StoriesReaderDataGateway
	StoriesWriterDataGateway
}

type StoriesReaderDataGateway interface {
	// GetStoryById returns the story with the given ledger id. Returns
	// errs.NotFound if the story does not exist.
	GetStoryById(ctx context.Context, id int64) (*entity.Story, error)
	// GetStories returns all stories ordered by creation time ascending.
	GetStories(ctx context.Context) ([]*entity.Story, error)
}

type StoriesWriterDataGateway interface {
	// CreateStory inserts a new story row and returns it with the assigned id
	// and timestamps.
	CreateStory(ctx context.Context, params CreateStoryParams) (*entity.Story, error)
	// UpdateStoryTokenId overwrites the story's token id. Returns
	// errs.NotFound if the story does not exist.
	UpdateStoryTokenId(ctx context.Context, id int64, tokenId string) (*entity.Story, error)
	// UpdateStoryChapter overwrites the current chapter and bumps updated_at.
	// Returns errs.NotFound if the story does not exist.
	UpdateStoryChapter(ctx context.Context, id int64, chapter string) (*entity.Story, error)
}

type CreateStoryParams struct {
	Title          string
	CurrentChapter string
	TokenId        string
	Owner          string
}
