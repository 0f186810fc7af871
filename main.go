package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	natsgo "github.com/nats-io/nats.go"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"holdem.io/server/game"
	"holdem.io/server/logging"
	"holdem.io/server/nats"
	"holdem.io/server/rest"
	"holdem.io/server/util"
)

var configFile *string
var mainLogger = logging.GetZeroLogger("main::main", nil)

func init() {
	configFile = flag.String("config", "config.yaml", "YAML file containing room and server settings")
}

func main() {
	err := run()
	if err != nil {
		mainLogger.Error().Msg(err.Error())
		os.Exit(1)
	}
}

func run() error {
	logLevel := util.Env.GetZeroLogLogLevel()
	fmt.Printf("Setting log level to %s\n", logLevel)
	zerolog.SetGlobalLevel(logLevel)
	flag.Parse()

	config, err := game.ParseConfig(*configFile)
	if err != nil {
		return errors.Wrap(err, "Error while parsing config")
	}

	history, closeHistory, err := newHandHistory(config)
	if err != nil {
		return errors.Wrap(err, "Error while creating hand history")
	}
	defer closeHistory()

	recorder := game.NewRecorder(history, config.Server.EventBuffer)
	recorder.Start()
	defer recorder.Stop()

	hub := rest.NewEventHub(config.Server.EventBuffer)
	sinks := []game.EventSink{recorder, hub}

	var nc *natsgo.Conn
	natsURL := util.Env.GetNatsURL()
	if natsURL != "" {
		mainLogger.Info().Msgf("NATS URL: %s", natsURL)
		nc, err = natsgo.Connect(natsURL)
		if err != nil {
			return errors.Wrap(err, "Error connecting to NATS server")
		}
		defer nc.Close()
		sinks = append(sinks, nats.NewEventPublisher(nc))
	} else {
		mainLogger.Info().Msg("NATS_URL is not set. Running without NATS.")
	}

	roomManager := game.NewManager(config, game.FirstActiveEvaluator{}, sinks...)
	defer roomManager.Shutdown()

	if nc != nil {
		listener, err := nats.NewRoomRequestListener(nc, roomManager)
		if err != nil {
			return errors.Wrap(err, "Error while creating NATS room listener")
		}
		defer listener.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if util.Env.ShouldDisableRest() {
		mainLogger.Warn().Msg("REST server is disabled.")
		<-ctx.Done()
		return nil
	}

	var limiter *rate.Limiter
	if config.Server.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(config.Server.RateLimit), config.Server.RateBurst)
	}
	router := rest.NewRouter(roomManager, history, hub, limiter)
	err = rest.RunRestServer(ctx, util.Env.GetHTTPAddr(), router)
	mainLogger.Info().Msg("Shutting down")
	return err
}

func newHandHistory(config game.Config) (game.HandHistory, func(), error) {
	switch util.Env.GetPersistMethod() {
	case util.PersistRedis:
		redisAddr := util.Env.GetRedisAddr()
		mainLogger.Info().Msgf("Archiving hands in redis at %s", redisAddr)
		history := game.NewRedisHandHistory(redisAddr, util.Env.GetRedisPW(), util.Env.GetRedisDB(), config.Server.HistoryPerRoom)
		if err := history.Ping(context.Background()); err != nil {
			history.Close()
			return nil, nil, errors.Wrap(err, fmt.Sprintf("Unable to reach redis at %s", redisAddr))
		}
		return history, func() { history.Close() }, nil
	default:
		history, err := game.NewMemoryHandHistory(config.Server.HistorySize, config.Server.HistoryPerRoom)
		if err != nil {
			return nil, nil, err
		}
		return history, func() {}, nil
	}
}
