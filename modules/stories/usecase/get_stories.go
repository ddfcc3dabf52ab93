package usecase

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/narrativelabs/storyforge/modules/stories/internal/entity"
)

func (u *Usecase) GetStories(ctx context.Context) ([]*entity.Story, error) {
	stories, err := u.storiesDg.GetStories(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list stories")
	}
	return stories, nil
}

func (u *Usecase) GetStoryById(ctx context.Context, id int64) (*entity.Story, error) {
	story, err := u.storiesDg.GetStoryById(ctx, id)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return story, nil
}
