package postgres

import "github.com/jackc/pgx/v5/pgtype"

type storyModel struct {
	Id             int64
	TokenId        string
	Title          string
	CurrentChapter string
	Owner          string
	CreatedAt      pgtype.Timestamptz
	UpdatedAt      pgtype.Timestamptz
}
