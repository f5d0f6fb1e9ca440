package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/quantex/marketpulse/internal/agent"
	"github.com/quantex/marketpulse/internal/api/binance"
	"github.com/quantex/marketpulse/internal/bus"
	"github.com/quantex/marketpulse/internal/config"
	"github.com/quantex/marketpulse/internal/llm"
	"github.com/quantex/marketpulse/internal/notifier"
	"github.com/quantex/marketpulse/internal/platform"
	"github.com/quantex/marketpulse/internal/storage"
	"github.com/quantex/marketpulse/internal/stream"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Message bus
	kafkaBus := bus.NewKafkaBus(cfg.KafkaBrokers)
	defer kafkaBus.Close()

	// Persistence sinks
	pg, err := storage.NewPostgres(storage.ConnectionParams{
		Host:     cfg.PostgresHost,
		Port:     cfg.PostgresPort,
		User:     cfg.PostgresUser,
		Password: cfg.PostgresPassword,
		DBName:   cfg.PostgresDB,
		SSLMode:  cfg.PostgresSSLMode,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("connecting to postgres")
	}
	defer pg.Close()

	ch, err := storage.NewClickHouse(ctx, storage.ClickHouseParams{
		Addr:     cfg.ClickHouseAddr,
		Database: cfg.ClickHouseDB,
		User:     cfg.ClickHouseUser,
		Password: cfg.ClickHousePassword,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("connecting to clickhouse")
	}
	defer ch.Close()

	var cache *storage.Cache
	if cfg.RedisAddr != "" {
		cache = storage.NewCache(cfg.RedisAddr)
		defer cache.Close()
	}

	manager := storage.NewManager(cache, pg, ch)

	// Recorder: consumes all three topics and fans out to the sinks.
	marketDataC := bus.NewConsumer(cfg.KafkaBrokers, cfg.ConsumerGroup+"-recorder", bus.TopicMarketData)
	analysisC := bus.NewConsumer(cfg.KafkaBrokers, cfg.ConsumerGroup+"-recorder", bus.TopicAnalysis)
	signalsC := bus.NewConsumer(cfg.KafkaBrokers, cfg.ConsumerGroup+"-recorder", bus.TopicSignals)
	defer marketDataC.Close()
	defer analysisC.Close()
	defer signalsC.Close()

	recorder := storage.NewRecorder(manager, marketDataC, analysisC, signalsC)

	// Market-monitoring agent
	var narrative agent.NarrativeGenerator
	if cfg.NarrativeEnabled {
		narrative = llm.NewClient(llm.Options{
			APIKey:      cfg.OpenAIAPIKey,
			Model:       cfg.OpenAIModel,
			Temperature: float32(cfg.LLMTemperature),
			MaxTokens:   cfg.LLMMaxTokens,
		})
	}

	var signalNotifier agent.Notifier
	if cfg.TelegramToken != "" {
		tg, err := notifier.NewTelegram(cfg.TelegramToken, cfg.TelegramChatID)
		if err != nil {
			log.Fatal().Err(err).Msg("creating telegram notifier")
		}
		signalNotifier = tg
	}

	agentC := bus.NewConsumer(cfg.KafkaBrokers, cfg.ConsumerGroup+"-agent", bus.TopicMarketData)
	defer agentC.Close()

	monitor := agent.NewMonitor(agent.Config{
		AgentID:           cfg.AgentID,
		Symbols:           cfg.Symbols,
		AnalysisInterval:  cfg.AnalysisInterval,
		MinSignalStrength: cfg.MinSignalStrength,
		MoveThreshold:     cfg.MoveThreshold,
	}, agentC, kafkaBus, narrative, signalNotifier)

	components := []platform.Component{monitor, recorder}

	if cfg.StreamEnabled {
		rest := binance.NewClient(binance.ClientOptions{
			BaseURL:        cfg.BinanceRESTURL,
			RequestTimeout: cfg.RequestTimeout,
		})
		streamer := stream.New(stream.Config{
			WSBaseURL:         cfg.BinanceWSURL,
			Symbols:           cfg.Symbols,
			BarInterval:       cfg.BarInterval,
			PollInterval:      cfg.PollInterval,
			ReconnectDelay:    cfg.ReconnectDelay,
			BackoffEnabled:    cfg.BackoffEnabled,
			MaxReconnectDelay: cfg.MaxReconnectDelay,
		}, kafkaBus, rest, nil)
		components = append(components, streamer)
	}

	orchestrator := platform.New(components...)

	log.Info().
		Strs("symbols", cfg.Symbols).
		Strs("brokers", cfg.KafkaBrokers).
		Bool("stream", cfg.StreamEnabled).
		Bool("narrative", cfg.NarrativeEnabled).
		Msg("starting marketpulse platform")

	if err := orchestrator.Run(ctx); err != nil {
		log.Error().Err(err).Msg("platform stopped with error")
		os.Exit(1)
	}
	log.Info().Msg("platform stopped")
}
