package stories

import (
	"context"

	"github.com/cockroachdb/errors"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/gofiber/fiber/v2"
	"github.com/narrativelabs/storyforge/common/errs"
	"github.com/narrativelabs/storyforge/core/worker"
	"github.com/narrativelabs/storyforge/internal/config"
	"github.com/narrativelabs/storyforge/internal/postgres"
	storiesapi "github.com/narrativelabs/storyforge/modules/stories/api"
	"github.com/narrativelabs/storyforge/modules/stories/generator"
	storiespostgres "github.com/narrativelabs/storyforge/modules/stories/repository/postgres"
	"github.com/narrativelabs/storyforge/modules/stories/session"
	storiesusecase "github.com/narrativelabs/storyforge/modules/stories/usecase"
	"github.com/narrativelabs/storyforge/pkg/logger"
	"github.com/samber/do/v2"
)

// moduleWorker runs the wallet session watch loop and releases the module's
// connections on shutdown.
type moduleWorker struct {
	*session.Session
	cleanup []func()
}

func (w *moduleWorker) Shutdown() error {
	err := w.Session.Shutdown()
	for _, fn := range w.cleanup {
		fn()
	}
	return err
}

func New(injector do.Injector) (worker.Worker, error) {
	ctx := do.MustInvoke[context.Context](injector)
	conf := do.MustInvoke[config.Config](injector)

	if conf.Modules.Stories.RegistryAddress == "" {
		return nil, errors.Wrap(errs.InvalidArgument, "story registry address is not configured")
	}
	if !ethcommon.IsHexAddress(conf.Modules.Stories.RegistryAddress) {
		return nil, errors.Wrapf(errs.InvalidArgument, "%q is not a valid registry address", conf.Modules.Stories.RegistryAddress)
	}

	pg, err := postgres.NewPool(ctx, conf.Modules.Stories.Postgres)
	if err != nil {
		if errors.Is(err, errs.InvalidArgument) {
			return nil, errors.Wrap(err, "invalid Postgres configuration for stories module")
		}
		return nil, errors.Wrap(err, "can't create Postgres connection pool")
	}
	storiesRepo := storiespostgres.NewRepository(pg)

	ethClient, err := ethclient.DialContext(ctx, conf.EthereumNode.RpcURL)
	if err != nil {
		return nil, errors.Wrap(err, "can't dial ethereum rpc endpoint")
	}

	provider, err := session.NewKeyProvider(ethClient, conf.Wallet.PrivateKey)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	walletSession, err := session.New(
		provider,
		conf.Network,
		ethcommon.HexToAddress(conf.Modules.Stories.RegistryAddress),
		session.NewLogNotifier(),
	)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if err := walletSession.Initialize(ctx); err != nil {
		return nil, errors.Wrap(err, "can't initialize wallet session")
	}

	storyGenerator, err := generator.New(generator.Config{
		BaseURL: conf.Generator.BaseURL,
		APIKey:  conf.Generator.APIKey,
		Model:   conf.Generator.Model,
	})
	if err != nil {
		return nil, errors.Wrap(err, "can't create story generator")
	}

	storiesUsecase := storiesusecase.New(storiesRepo, storyGenerator, walletSession)

	httpServer := do.MustInvoke[*fiber.App](injector)
	storiesHTTPHandler := storiesapi.NewHTTPHandler(conf.Network, storiesUsecase)
	if err := storiesHTTPHandler.Mount(httpServer); err != nil {
		return nil, errors.Wrap(err, "can't mount stories API")
	}
	logger.InfoContext(ctx, "Mounted HTTP handler")

	return &moduleWorker{
		Session: walletSession,
		cleanup: []func(){pg.Close, ethClient.Close},
	}, nil
}
