package httphandler

import (
	"strings"

	"github.com/cockroachdb/errors"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/gofiber/fiber/v2"
	"github.com/narrativelabs/storyforge/common"
	"github.com/narrativelabs/storyforge/common/errs"
	"github.com/samber/lo"
)

type createStoryRequest struct {
	Title  string `json:"title"`
	Prompt string `json:"prompt"`
	Wallet string `json:"wallet"`
}

func (r *createStoryRequest) Validate() error {
	var errList []error
	if len(strings.TrimSpace(r.Title)) < 3 {
		errList = append(errList, errors.New("'title' must be at least 3 characters"))
	}
	if len(strings.TrimSpace(r.Prompt)) < 10 {
		errList = append(errList, errors.New("'prompt' must be at least 10 characters"))
	}
	if r.Wallet == "" {
		errList = append(errList, errors.New("'wallet' is required"))
	} else if !ethcommon.IsHexAddress(r.Wallet) {
		errList = append(errList, errors.Errorf("wallet '%s' is not a valid address", r.Wallet))
	}
	return errs.WithPublicMessage(errors.Join(errList...), "validation error")
}

type createStoryResponse = common.HttpResponse[storyResult]

func (h *HttpHandler) CreateStory(ctx *fiber.Ctx) (err error) {
	var req createStoryRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errs.NewPublicError("unable to parse request body")
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}

	if err := h.requireSessionWallet(req.Wallet); err != nil {
		return errors.WithStack(err)
	}

	story, err := h.usecase.CreateStory(ctx.UserContext(), strings.TrimSpace(req.Title), strings.TrimSpace(req.Prompt))
	if err != nil {
		return errors.Wrap(err, "error during CreateStory")
	}

	resp := createStoryResponse{
		Result: lo.ToPtr(newStoryResult(story)),
	}
	return errors.WithStack(ctx.JSON(resp))
}
