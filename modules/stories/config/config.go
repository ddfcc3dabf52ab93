package config

import "github.com/narrativelabs/storyforge/internal/postgres"

type Config struct {
	Postgres postgres.Config `mapstructure:"postgres"`

	// RegistryAddress is the deployed StoryNFT contract address on the
	// required network.
	RegistryAddress string `mapstructure:"registry_address"`
}
