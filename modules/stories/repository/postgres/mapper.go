package postgres

import (
	"time"

	"github.com/narrativelabs/storyforge/modules/stories/internal/entity"
)

func mapStoryModelToType(src storyModel) entity.Story {
	var createdAt, updatedAt time.Time
	if src.CreatedAt.Valid {
		createdAt = src.CreatedAt.Time
	}
	if src.UpdatedAt.Valid {
		updatedAt = src.UpdatedAt.Time
	}
	return entity.Story{
		Id:             src.Id,
		TokenId:        src.TokenId,
		Title:          src.Title,
		CurrentChapter: src.CurrentChapter,
		Owner:          src.Owner,
		CreatedAt:      createdAt,
		UpdatedAt:      updatedAt,
	}
}
