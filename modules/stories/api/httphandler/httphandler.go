package httphandler

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/narrativelabs/storyforge/common"
	"github.com/narrativelabs/storyforge/common/errs"
	"github.com/narrativelabs/storyforge/modules/stories/internal/entity"
	"github.com/narrativelabs/storyforge/modules/stories/usecase"
)

type HttpHandler struct {
	usecase *usecase.Usecase
	network common.Network
}

func New(network common.Network, usecase *usecase.Usecase) *HttpHandler {
	return &HttpHandler{
		usecase: usecase,
		network: network,
	}
}

// requireSessionWallet checks that the wallet named in the request is the one
// the service's session is signing for. Signing happens server-side, so a
// request for a foreign wallet must be rejected before any chain call.
func (h *HttpHandler) requireSessionWallet(wallet string) error {
	connected, ok := h.usecase.ConnectedWallet()
	if !ok {
		return errors.Wrap(errs.WalletRequired, "no wallet session is active")
	}
	if !strings.EqualFold(connected, wallet) {
		return errs.WithPublicMessage(
			errors.Wrapf(errs.NotAuthorized, "wallet %s does not match the active session", wallet),
			"wallet does not match the active session",
		)
	}
	return nil
}

type storyResult struct {
	Id             int64  `json:"id"`
	TokenId        string `json:"tokenId"`
	Title          string `json:"title"`
	CurrentChapter string `json:"currentChapter"`
	Owner          string `json:"owner"`
	Minted         bool   `json:"minted"`
	CreatedAt      int64  `json:"createdAt"` // unix timestamp
	UpdatedAt      int64  `json:"updatedAt"` // unix timestamp
}

func newStoryResult(story *entity.Story) storyResult {
	return storyResult{
		Id:             story.Id,
		TokenId:        story.TokenId,
		Title:          story.Title,
		CurrentChapter: story.CurrentChapter,
		Owner:          story.Owner,
		Minted:         story.IsMinted(),
		CreatedAt:      story.CreatedAt.Unix(),
		UpdatedAt:      story.UpdatedAt.Unix(),
	}
}
