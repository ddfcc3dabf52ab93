package config

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/narrativelabs/storyforge/common"
	"github.com/narrativelabs/storyforge/modules/stories/config"
	"github.com/narrativelabs/storyforge/pkg/logger"
	"github.com/narrativelabs/storyforge/pkg/logger/slogx"
	"github.com/narrativelabs/storyforge/pkg/middleware/requestlogger"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var (
	parseOnce sync.Once
	conf      = &Config{
		Logger: logger.Config{
			Output: "TEXT",
		},
		Network: common.NetworkSepolia,
		HTTPServer: HTTPServer{
			Port: 8080,
		},
	}
)

type Config struct {
	Logger       logger.Config  `mapstructure:"logger"`
	Network      common.Network `mapstructure:"network"`
	APIOnly      bool           `mapstructure:"api_only"`
	HTTPServer   HTTPServer     `mapstructure:"http_server"`
	EthereumNode EthereumNode   `mapstructure:"ethereum_node"`
	Wallet       Wallet         `mapstructure:"wallet"`
	Generator    Generator      `mapstructure:"generator"`
	Modules      Modules        `mapstructure:"modules"`
}

type HTTPServer struct {
	Port   int                  `mapstructure:"port"`
	Logger requestlogger.Config `mapstructure:"logger"`
}

// EthereumNode points the wallet provider at a JSON-RPC endpoint for the
// required network.
type EthereumNode struct {
	RpcURL string `mapstructure:"rpc_url"`
}

// Wallet holds the signing identity for the custodial session. An empty
// private key runs the service in read-only mode.
type Wallet struct {
	PrivateKey string `mapstructure:"private_key"`
}

// Generator configures the text-generation provider (OpenAI-compatible
// chat-completions API).
type Generator struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
}

type Modules struct {
	Stories config.Config `mapstructure:"stories"`
}

// BindPFlag binds a command-line flag to a configuration key.
func BindPFlag(key string, flag *pflag.Flag) {
	if err := viper.BindPFlag(key, flag); err != nil {
		logger.Panic("Failed to bind flag to configuration", slogx.String("key", key), slogx.Error(err))
	}
}

// Parse loads the configuration from the given file (or ./config.yaml by
// default), environment variables and bound flags. Safe to call multiple
// times; only the first call parses.
func Parse(configFile string) Config {
	ctx := logger.WithContext(context.Background(), slog.String("package", "config"))
	parseOnce.Do(func() {
		if configFile != "" {
			viper.SetConfigFile(configFile)
		} else {
			viper.AddConfigPath("./")
			viper.SetConfigName("config")
		}

		viper.AutomaticEnv()
		viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		if err := viper.ReadInConfig(); err != nil {
			var errNotfound viper.ConfigFileNotFoundError
			if errors.As(err, &errNotfound) {
				logger.WarnContext(ctx, "config file not found, use default value", slogx.Error(err))
			} else {
				logger.PanicContext(ctx, "invalid config file", slogx.Error(err))
			}
		}

		if err := viper.Unmarshal(&conf); err != nil {
			logger.PanicContext(ctx, "failed to unmarshal config", slogx.Error(err))
		}
		logger.InfoContext(ctx, "loaded config successfully")
	})

	return *conf
}

// Load returns the parsed configuration. Parse must be called first (the root
// command does this on initialize).
func Load() Config {
	return *conf
}
