package shared

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const CONFIG_PREFIX = "HONEYBEES"

type AppConfig struct {
	ListenAddr    string `split_words:"true" default:"0.0.0.0:8080"`
	LocalDbPath   string `split_words:"true" default:"honeybees.db"`
	SummaryApiKey string `split_words:"true"`

	RealtimeHeartbeatSeconds int    `split_words:"true" default:"30"`
	WatchdogSpec             string `split_words:"true" default:"@every 15s"`
}

func InitAppConfiguration() (config *AppConfig, err error) {
	// .env is optional, real deployments use plain env vars
	_ = godotenv.Load()

	config = &AppConfig{}

	if err := envconfig.Process(CONFIG_PREFIX, config); err != nil {
		return nil, fmt.Errorf("failed to parse env vars: %v", err)
	}

	return
}
