package httphandler

import (
	"github.com/cockroachdb/errors"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/gofiber/fiber/v2"
	"github.com/narrativelabs/storyforge/common"
	"github.com/narrativelabs/storyforge/common/errs"
	"github.com/samber/lo"
)

type evolveStoryRequest struct {
	Id     int64  `params:"id"`
	Wallet string `json:"wallet"`
}

func (r *evolveStoryRequest) Validate() error {
	var errList []error
	if r.Id <= 0 {
		errList = append(errList, errors.New("'id' must be a positive integer"))
	}
	if r.Wallet == "" {
		errList = append(errList, errors.New("'wallet' is required"))
	} else if !ethcommon.IsHexAddress(r.Wallet) {
		errList = append(errList, errors.Errorf("wallet '%s' is not a valid address", r.Wallet))
	}
	return errs.WithPublicMessage(errors.Join(errList...), "validation error")
}

type evolveStoryResponse = common.HttpResponse[storyResult]

func (h *HttpHandler) EvolveStory(ctx *fiber.Ctx) (err error) {
	var req evolveStoryRequest
	if err := ctx.ParamsParser(&req); err != nil {
		return errs.NewPublicError("invalid id")
	}
	if err := ctx.BodyParser(&req); err != nil {
		return errs.NewPublicError("unable to parse request body")
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}

	if err := h.requireSessionWallet(req.Wallet); err != nil {
		return errors.WithStack(err)
	}

	story, err := h.usecase.EvolveStory(ctx.UserContext(), req.Id)
	if err != nil {
		if errors.Is(err, errs.NotFound) {
			return errs.WithPublicMessage(errors.WithStack(err), "story not found")
		}
		return errors.Wrap(err, "error during EvolveStory")
	}

	resp := evolveStoryResponse{
		Result: lo.ToPtr(newStoryResult(story)),
	}
	return errors.WithStack(ctx.JSON(resp))
}
