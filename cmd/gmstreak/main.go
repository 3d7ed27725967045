package main

import (
	"context"
	"log"
	"net/url"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"

	"github.com/layer-3/gmstreak/adapters/events"
	"github.com/layer-3/gmstreak/adapters/frame"
	"github.com/layer-3/gmstreak/adapters/store"
	"github.com/layer-3/gmstreak/adapters/tokenizer"
	"github.com/layer-3/gmstreak/adapters/wallet"
	"github.com/layer-3/gmstreak/core"
	"github.com/layer-3/gmstreak/internal/config"
	"github.com/layer-3/gmstreak/ports"
	"github.com/layer-3/gmstreak/service"
	"github.com/layer-3/gmstreak/transport/http"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()

	// Session token signing key. Ephemeral: a restart invalidates open
	// sessions, which only forces a reconnect.
	sessionKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		logger.Fatal("failed to generate session key", zap.Error(err))
	}

	// Parse Redis URL and create client
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Fatal("failed to parse Redis URL", zap.Error(err))
	}
	redisClient := redis.NewClient(opts)

	// Initialize Watermill Redis publisher
	wmLogger := watermill.NewStdLogger(false, false)
	publisher, err := redisstream.NewPublisher(
		redisstream.PublisherConfig{
			Client: redisClient,
		},
		wmLogger,
	)
	if err != nil {
		logger.Fatal("failed to create Redis publisher", zap.Error(err))
	}

	// Local signer stands in for a browser wallet extension.
	var injected ports.WalletProvider
	if cfg.WalletKey != "" {
		signer, err := wallet.NewLocalSignerFromHex(cfg.WalletKey)
		if err != nil {
			logger.Fatal("failed to load wallet key", zap.Error(err))
		}
		injected = signer
	}

	// Host frame bridge, when one is configured.
	var host ports.HostFrame
	var frameClient *frame.Client
	if cfg.FrameHostURL != "" {
		frameClient, err = frame.Dial(ctx, cfg.FrameHostURL, logger)
		if err != nil {
			// An unreachable host is not fatal; classification falls
			// back to the heuristics.
			logger.Warn("host frame unreachable", zap.Error(err))
		} else {
			defer frameClient.Close()
			host = frameClient
		}
	}

	var launch *url.URL
	if cfg.LaunchURL != "" {
		launch, err = url.Parse(cfg.LaunchURL)
		if err != nil {
			logger.Warn("ignoring malformed launch URL", zap.Error(err))
			launch = nil
		}
	}

	probe := frame.NewRuntimeProbe(host, frameClient, nil, launch)
	env := service.NewEnvironmentResolver(probe, cfg.EmbedQueryTimeout, logger).Classify(ctx)
	logger.Info("runtime classified", zap.Stringer("environment", env))

	providers := service.NewProviderResolver(host, injected, cfg.BridgeTimeout, logger)
	ledger := store.NewRedisStore(redisClient, logger)
	eventPub := events.NewWatermillPublisher(publisher)
	sessionTokenizer := tokenizer.NewJWTTokenizer(sessionKey)

	checkinService := service.NewCheckinService(ledger, providers, sessionTokenizer, eventPub, env, cfg.ShareBaseURL, logger)

	// Tell the embedding host we are done initializing.
	if host != nil && env == core.EnvEmbeddedFrame {
		if err := host.Ready(ctx); err != nil {
			logger.Warn("ready announcement failed", zap.Error(err))
		}
	}

	// Setup Gin router
	router := http.SetupRouter(checkinService)

	// Start server
	if err := router.Run(cfg.ListenAddr); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
