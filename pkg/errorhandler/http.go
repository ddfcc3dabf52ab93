package errorhandler

import (
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
	"github.com/narrativelabs/storyforge/common/errs"
	"github.com/narrativelabs/storyforge/pkg/logger"
	"github.com/narrativelabs/storyforge/pkg/logger/slogx"
)

// kindStatusCodes maps error kinds to HTTP status codes. Kinds not listed
// here fall through to 500.
var kindStatusCodes = map[errs.ErrorKind]int{
	errs.NotFound:            http.StatusNotFound,
	errs.NotAuthorized:       http.StatusForbidden,
	errs.WalletRequired:      http.StatusBadRequest,
	errs.InvalidArgument:     http.StatusBadRequest,
	errs.GenerationError:     http.StatusBadGateway,
	errs.ChainRejected:       http.StatusBadGateway,
	errs.SignerRequired:      http.StatusBadGateway,
	errs.NetworkMismatch:     http.StatusBadGateway,
	errs.LedgerInconsistency: http.StatusBadGateway,
}

func NewHTTPErrorHandler() func(ctx *fiber.Ctx, err error) error {
	return func(ctx *fiber.Ctx, err error) error {
		status := http.StatusBadRequest
		var kind errs.ErrorKind
		if errors.As(err, &kind) {
			s, ok := kindStatusCodes[kind]
			if !ok {
				s = http.StatusInternalServerError
			}
			status = s
		}
		if e := new(errs.PublicError); errors.As(err, &e) {
			return errors.WithStack(ctx.Status(status).JSON(map[string]any{
				"error": e.Message(),
			}))
		}
		if kind != "" {
			return errors.WithStack(ctx.Status(status).JSON(map[string]any{
				"error": kind.Error(),
			}))
		}
		if e := new(fiber.Error); errors.As(err, &e) {
			return errors.WithStack(ctx.Status(e.Code).SendString(e.Error()))
		}

		logger.ErrorContext(ctx.UserContext(), "Something went wrong, unhandled api error",
			slogx.String("event", "api_unhandled_error"),
			slogx.Error(err),
		)

		return errors.WithStack(ctx.Status(http.StatusInternalServerError).JSON(map[string]any{
			"error": "Internal Server Error",
		}))
	}
}
