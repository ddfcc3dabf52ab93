package postgres

import (
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/narrativelabs/storyforge/modules/stories/internal/entity"
	"github.com/stretchr/testify/require"
)

func TestMapStoryModelToType(t *testing.T) {
	createdAt := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	updatedAt := time.Date(2024, 3, 2, 9, 30, 0, 0, time.UTC)

	model := storyModel{
		Id:             7,
		TokenId:        "42",
		Title:          "The Long Road",
		CurrentChapter: "Once upon a time...",
		Owner:          "0xabc",
		CreatedAt:      pgtype.Timestamptz{Time: createdAt, Valid: true},
		UpdatedAt:      pgtype.Timestamptz{Time: updatedAt, Valid: true},
	}

	story := mapStoryModelToType(model)
	require.Equal(t, entity.Story{
		Id:             7,
		TokenId:        "42",
		Title:          "The Long Road",
		CurrentChapter: "Once upon a time...",
		Owner:          "0xabc",
		CreatedAt:      createdAt,
		UpdatedAt:      updatedAt,
	}, story)
	require.True(t, story.IsMinted())
}

func TestMapStoryModelToTypePendingMint(t *testing.T) {
	model := storyModel{
		Id:      1,
		TokenId: entity.NewTokenIdPlaceholder(time.Now()),
		Title:   "Pending",
		Owner:   "0xabc",
	}

	story := mapStoryModelToType(model)
	require.False(t, story.IsMinted())
	require.True(t, story.CreatedAt.IsZero())
	require.True(t, story.UpdatedAt.IsZero())
}
