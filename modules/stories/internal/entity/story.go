package entity

import (
	"fmt"
	"strings"
	"time"
)

// TokenIdPlaceholderPrefix marks a story that has a ledger row but no minted
// token yet. The real token id overwrites the placeholder once minting
// succeeds.
const TokenIdPlaceholderPrefix = "STORY-"

// NewTokenIdPlaceholder returns a fresh placeholder token id for a story
// created before its mint transaction is submitted.
func NewTokenIdPlaceholder(at time.Time) string {
	return fmt.Sprintf("%s%d", TokenIdPlaceholderPrefix, at.UnixMilli())
}

// Story is the off-chain record of a narrative artifact. The on-chain token
// referenced by TokenId is the source of truth for ownership; Owner is the
// fast-path copy checked before chain calls.
type Story struct {
	Id             int64
	TokenId        string
	Title          string
	CurrentChapter string
	Owner          string // lower-cased wallet address
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// IsMinted reports whether the story carries a real on-chain token id rather
// than a local placeholder.
func (s Story) IsMinted() bool {
	return !strings.HasPrefix(s.TokenId, TokenIdPlaceholderPrefix)
}
