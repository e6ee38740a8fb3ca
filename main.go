package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	natsgo "github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"pokerserver/config"
	"pokerserver/game"
	"pokerserver/nats"
	"pokerserver/util"
)

func main() {
	var configFile = flag.String("config", "server.yaml", "server configuration file")
	var logLevel = flag.String("log-level", "info", "zerolog level")
	flag.Parse()

	level, err := zerolog.ParseLevel(*logLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	logger := util.GetZeroLogger("main::main", nil)

	conf, err := config.Read(*configFile)
	if err != nil {
		logger.Fatal().Err(err).Msg("Unable to read configuration")
	}

	var persist game.PersistTableState
	if conf.Redis.Addr != "" {
		persist = game.NewRedisStateTracker(conf.Redis.Addr, conf.Redis.Password, conf.Redis.DB)
	} else {
		persist = game.NewMemoryStateTracker()
	}

	registry := game.NewRegistry(game.SessionConfig{
		MaxSeats:      conf.Game.MaxSeats,
		MinPlayers:    conf.Game.MinPlayers,
		ActionTimeSec: conf.Game.ActionTimeSec,
	}, nil, persist)
	registry.CreateLobby()
	// one open table so the first lobby listing has something to join
	_, sessionID := registry.CreateSession()
	logger.Info().Int("session", sessionID).Msg("Initial table created")

	nc, err := natsgo.Connect(conf.Nats.URL)
	if err != nil {
		logger.Fatal().Err(err).Str("url", conf.Nats.URL).Msg("Unable to connect to NATS")
	}
	defer nc.Close()

	listener, err := nats.NewListener(nc, registry, conf.Game.StartingChips)
	if err != nil {
		logger.Fatal().Err(err).Msg("Unable to listen for player connections")
	}
	defer listener.Close()
	logger.Info().Msg("Poker server is running")

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	logger.Info().Msg("Shutting down")
}
