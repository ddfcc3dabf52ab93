package postgres

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5"
	"github.com/narrativelabs/storyforge/common/errs"
	"github.com/narrativelabs/storyforge/modules/stories/datagateway"
	"github.com/narrativelabs/storyforge/modules/stories/internal/entity"
)

var _ datagateway.StoriesDataGateway = (*Repository)(nil)

// The module owns a single table with a handful of statements, so the SQL
// lives here instead of a generated package.
const (
	createStorySQL = `INSERT INTO stories (token_id, title, current_chapter, owner)
		VALUES ($1, $2, $3, $4)
		RETURNING id, token_id, title, current_chapter, owner, created_at, updated_at`

	getStoryByIdSQL = `SELECT id, token_id, title, current_chapter, owner, created_at, updated_at
		FROM stories WHERE id = $1`

	getStoriesSQL = `SELECT id, token_id, title, current_chapter, owner, created_at, updated_at
		FROM stories ORDER BY created_at ASC`

	updateStoryTokenIdSQL = `UPDATE stories SET token_id = $2
		WHERE id = $1
		RETURNING id, token_id, title, current_chapter, owner, created_at, updated_at`

	updateStoryChapterSQL = `UPDATE stories SET current_chapter = $2, updated_at = now()
		WHERE id = $1
		RETURNING id, token_id, title, current_chapter, owner, created_at, updated_at`
)

func scanStory(row pgx.Row) (storyModel, error) {
	var m storyModel
	err := row.Scan(&m.Id, &m.TokenId, &m.Title, &m.CurrentChapter, &m.Owner, &m.CreatedAt, &m.UpdatedAt)
	return m, err
}

func (r *Repository) CreateStory(ctx context.Context, params datagateway.CreateStoryParams) (*entity.Story, error) {
	model, err := scanStory(r.db.QueryRow(ctx, createStorySQL, params.TokenId, params.Title, params.CurrentChapter, params.Owner))
	if err != nil {
		return nil, errors.Wrap(err, "error during query")
	}
	story := mapStoryModelToType(model)
	return &story, nil
}

func (r *Repository) GetStoryById(ctx context.Context, id int64) (*entity.Story, error) {
	model, err := scanStory(r.db.QueryRow(ctx, getStoryByIdSQL, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errors.WithStack(errs.NotFound)
		}
		return nil, errors.Wrap(err, "error during query")
	}
	story := mapStoryModelToType(model)
	return &story, nil
}

func (r *Repository) GetStories(ctx context.Context) ([]*entity.Story, error) {
	rows, err := r.db.Query(ctx, getStoriesSQL)
	if err != nil {
		return nil, errors.Wrap(err, "error during query")
	}
	defer rows.Close()

	stories := make([]*entity.Story, 0)
	for rows.Next() {
		model, err := scanStory(rows)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan story row")
		}
		story := mapStoryModelToType(model)
		stories = append(stories, &story)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "error during rows iteration")
	}
	return stories, nil
}

func (r *Repository) UpdateStoryTokenId(ctx context.Context, id int64, tokenId string) (*entity.Story, error) {
	model, err := scanStory(r.db.QueryRow(ctx, updateStoryTokenIdSQL, id, tokenId))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errors.WithStack(errs.NotFound)
		}
		return nil, errors.Wrap(err, "error during query")
	}
	story := mapStoryModelToType(model)
	return &story, nil
}

func (r *Repository) UpdateStoryChapter(ctx context.Context, id int64, chapter string) (*entity.Story, error) {
	model, err := scanStory(r.db.QueryRow(ctx, updateStoryChapterSQL, id, chapter))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errors.WithStack(errs.NotFound)
		}
		return nil, errors.Wrap(err, "error during query")
	}
	story := mapStoryModelToType(model)
	return &story, nil
}
