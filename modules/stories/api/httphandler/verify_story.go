package httphandler

import (
	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
	"github.com/narrativelabs/storyforge/common"
	"github.com/narrativelabs/storyforge/common/errs"
	"github.com/samber/lo"
)

type verifyStoryRequest struct {
	Id int64 `params:"id"`
}

func (r *verifyStoryRequest) Validate() error {
	if r.Id <= 0 {
		return errs.WithPublicMessage(errors.New("'id' must be a positive integer"), "validation error")
	}
	return nil
}

type verifyStoryResult struct {
	Valid        bool        `json:"valid"`
	OnChainOwner string      `json:"onChainOwner"`
	Network      string      `json:"network"`
	Story        storyResult `json:"story"`
}

type verifyStoryResponse = common.HttpResponse[verifyStoryResult]

func (h *HttpHandler) VerifyStory(ctx *fiber.Ctx) (err error) {
	var req verifyStoryRequest
	if err := ctx.ParamsParser(&req); err != nil {
		return errs.NewPublicError("invalid id")
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}

	result, err := h.usecase.VerifyStory(ctx.UserContext(), req.Id)
	if err != nil {
		if errors.Is(err, errs.NotFound) {
			return errs.WithPublicMessage(errors.WithStack(err), "story not found")
		}
		return errors.Wrap(err, "error during VerifyStory")
	}

	resp := verifyStoryResponse{
		Result: lo.ToPtr(verifyStoryResult{
			Valid:        result.Valid,
			OnChainOwner: result.OnChainOwner,
			Network:      h.network.String(),
			Story:        newStoryResult(result.Story),
		}),
	}
	return errors.WithStack(ctx.JSON(resp))
}
