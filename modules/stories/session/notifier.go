package session

import (
	"context"
	"log/slog"

	"github.com/narrativelabs/storyforge/pkg/logger"
)

// Notifier receives transaction lifecycle updates from the session. The HTTP
// layer has no channel back to the caller mid-request, so the default
// implementation emits structured logs.
type Notifier interface {
	Submitted(ctx context.Context, description string, txHash string)
	Confirmed(ctx context.Context, description string, txHash string, explorerURL string)
	Failed(ctx context.Context, description string, txHash string)
}

type logNotifier struct{}

// NewLogNotifier returns a Notifier that logs every lifecycle update.
func NewLogNotifier() Notifier {
	return logNotifier{}
}

func (logNotifier) Submitted(ctx context.Context, description string, txHash string) {
	logger.InfoContext(ctx, "Transaction submitted",
		slog.String("description", description),
		slog.String("txHash", txHash),
	)
}

func (logNotifier) Confirmed(ctx context.Context, description string, txHash string, explorerURL string) {
	logger.InfoContext(ctx, "Transaction confirmed",
		slog.String("description", description),
		slog.String("txHash", txHash),
		slog.String("explorerUrl", explorerURL),
	)
}

func (logNotifier) Failed(ctx context.Context, description string, txHash string) {
	logger.ErrorContext(ctx, "Transaction reverted",
		slog.String("description", description),
		slog.String("txHash", txHash),
	)
}
