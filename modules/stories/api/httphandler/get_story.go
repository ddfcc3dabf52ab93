package httphandler

import (
	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
	"github.com/narrativelabs/storyforge/common"
	"github.com/narrativelabs/storyforge/common/errs"
	"github.com/samber/lo"
)

type getStoryRequest struct {
	Id int64 `params:"id"`
}

func (r *getStoryRequest) Validate() error {
	if r.Id <= 0 {
		return errs.WithPublicMessage(errors.New("'id' must be a positive integer"), "validation error")
	}
	return nil
}

type getStoryResponse = common.HttpResponse[storyResult]

func (h *HttpHandler) GetStory(ctx *fiber.Ctx) (err error) {
	var req getStoryRequest
	if err := ctx.ParamsParser(&req); err != nil {
		return errs.NewPublicError("invalid id")
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}

	story, err := h.usecase.GetStoryById(ctx.UserContext(), req.Id)
	if err != nil {
		if errors.Is(err, errs.NotFound) {
			return errs.WithPublicMessage(errors.WithStack(err), "story not found")
		}
		return errors.Wrap(err, "error during GetStoryById")
	}

	resp := getStoryResponse{
		Result: lo.ToPtr(newStoryResult(story)),
	}
	return errors.WithStack(ctx.JSON(resp))
}
