package config

import (
	"fmt"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
)

// Config holds the process configuration, decoded from the environment.
type Config struct {
	ListenAddr string `env:"LISTEN_ADDR,default=:9000"`
	RedisURL   string `env:"REDIS_URL,default=redis://localhost:6379/0"`

	// FrameHostURL is the websocket endpoint of the embedding host's
	// bridge; empty means no host was configured.
	FrameHostURL string `env:"FRAME_HOST_URL"`

	// LaunchURL is the URL the app was opened with, used for the
	// frame-parameter heuristic.
	LaunchURL string `env:"LAUNCH_URL"`

	// WalletKey is the hex-encoded secp256k1 key backing the local signer
	// in standalone runs; empty means no local wallet.
	WalletKey string `env:"WALLET_KEY"`

	ShareBaseURL string `env:"SHARE_BASE_URL,default=https://warpcast.com/~/compose"`

	EmbedQueryTimeout time.Duration `env:"EMBED_QUERY_TIMEOUT,default=2s"`
	BridgeTimeout     time.Duration `env:"BRIDGE_HANDSHAKE_TIMEOUT,default=5s"`
}

// Load reads .env when present and decodes the configuration.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}
