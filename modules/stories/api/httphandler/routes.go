package httphandler

import (
	"github.com/gofiber/fiber/v2"
)

func (h *HttpHandler) Mount(router fiber.Router) error {
	r := router.Group("/v1/artifacts")

	r.Post("/", h.CreateStory)
	r.Get("/", h.GetStories)
	r.Get("/:id", h.GetStory)
	r.Put("/:id", h.UpdateTokenId)
	r.Post("/:id/evolve", h.EvolveStory)
	r.Get("/:id/verify", h.VerifyStory)

	s := router.Group("/v1/session")

	s.Get("/", h.GetSession)
	s.Post("/connect", h.ConnectSession)
	s.Delete("/", h.DisconnectSession)
	return nil
}
