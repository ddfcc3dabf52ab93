package httphandler

import (
	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
	"github.com/narrativelabs/storyforge/common"
	"github.com/narrativelabs/storyforge/modules/stories/internal/entity"
	"github.com/samber/lo"
)

type getStoriesResult struct {
	List []storyResult `json:"list"`
}

type getStoriesResponse = common.HttpResponse[getStoriesResult]

func (h *HttpHandler) GetStories(ctx *fiber.Ctx) (err error) {
	stories, err := h.usecase.GetStories(ctx.UserContext())
	if err != nil {
		return errors.Wrap(err, "error during GetStories")
	}

	resp := getStoriesResponse{
		Result: lo.ToPtr(getStoriesResult{
			List: lo.Map(stories, func(story *entity.Story, _ int) storyResult {
				return newStoryResult(story)
			}),
		}),
	}
	return errors.WithStack(ctx.JSON(resp))
}
