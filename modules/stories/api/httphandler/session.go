package httphandler

import (
	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
	"github.com/narrativelabs/storyforge/common"
	"github.com/samber/lo"
)

type sessionResult struct {
	Connected bool   `json:"connected"`
	Address   string `json:"address,omitempty"`
	Network   string `json:"network"`
}

type sessionResponse = common.HttpResponse[sessionResult]

func (h *HttpHandler) GetSession(ctx *fiber.Ctx) (err error) {
	status := h.usecase.WalletStatus()

	resp := sessionResponse{
		Result: lo.ToPtr(sessionResult{
			Connected: status.Connected,
			Address:   status.Address,
			Network:   status.Network,
		}),
	}
	return errors.WithStack(ctx.JSON(resp))
}

func (h *HttpHandler) ConnectSession(ctx *fiber.Ctx) (err error) {
	if _, err := h.usecase.ConnectWallet(ctx.UserContext()); err != nil {
		return errors.Wrap(err, "error during ConnectWallet")
	}
	return h.GetSession(ctx)
}

func (h *HttpHandler) DisconnectSession(ctx *fiber.Ctx) (err error) {
	h.usecase.DisconnectWallet()
	return h.GetSession(ctx)
}
