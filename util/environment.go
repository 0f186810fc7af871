package util

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"holdem.io/server/logging"
)

var environmentLogger = log.With().Str("logger_name", "util::environment").Logger()

const (
	PersistMemory = "memory"
	PersistRedis  = "redis"
)

type roomServerEnvironment struct {
	LogLevel      string
	HTTPAddr      string
	PersistMethod string
	RedisHost     string
	RedisPort     string
	RedisPW       string
	RedisDB       string
	NatsURL       string
	DisableRest   string
}

// Env is a helper object for accessing environment variables.
var Env = &roomServerEnvironment{
	LogLevel:      "LOG_LEVEL",
	HTTPAddr:      "HTTP_ADDR",
	PersistMethod: "PERSIST_METHOD",
	RedisHost:     "REDIS_HOST",
	RedisPort:     "REDIS_PORT",
	RedisPW:       "REDIS_PW",
	RedisDB:       "REDIS_DB",
	NatsURL:       "NATS_URL",
	DisableRest:   "DISABLE_REST",
}

func (e *roomServerEnvironment) GetZeroLogLogLevel() zerolog.Level {
	return logging.ParseLevel(os.Getenv(e.LogLevel))
}

func (e *roomServerEnvironment) GetHTTPAddr() string {
	addr := os.Getenv(e.HTTPAddr)
	if addr == "" {
		return ":8080"
	}
	return addr
}

func (e *roomServerEnvironment) GetPersistMethod() string {
	method := strings.ToLower(os.Getenv(e.PersistMethod))
	if method == "" {
		return PersistMemory
	}
	if method != PersistMemory && method != PersistRedis {
		msg := fmt.Sprintf("Invalid %s [%s]. Expected %s or %s", e.PersistMethod, method, PersistMemory, PersistRedis)
		environmentLogger.Error().Msg(msg)
		panic(msg)
	}
	return method
}

func (e *roomServerEnvironment) GetRedisHost() string {
	host := os.Getenv(e.RedisHost)
	if host == "" {
		msg := fmt.Sprintf("%s is not defined", e.RedisHost)
		environmentLogger.Error().Msg(msg)
		panic(msg)
	}
	return host
}

func (e *roomServerEnvironment) GetRedisPort() int {
	portStr := os.Getenv(e.RedisPort)
	if portStr == "" {
		return 6379
	}
	portNum, err := strconv.Atoi(portStr)
	if err != nil {
		msg := fmt.Sprintf("Invalid Redis port %s", portStr)
		environmentLogger.Error().Msg(msg)
		panic(msg)
	}
	return portNum
}

func (e *roomServerEnvironment) GetRedisPW() string {
	return os.Getenv(e.RedisPW)
}

func (e *roomServerEnvironment) GetRedisDB() int {
	dbStr := os.Getenv(e.RedisDB)
	if dbStr == "" {
		return 0
	}
	dbNum, err := strconv.Atoi(dbStr)
	if err != nil {
		msg := fmt.Sprintf("Invalid Redis db %s", dbStr)
		environmentLogger.Error().Msg(msg)
		panic(msg)
	}
	return dbNum
}

func (e *roomServerEnvironment) GetRedisAddr() string {
	return fmt.Sprintf("%s:%d", e.GetRedisHost(), e.GetRedisPort())
}

// GetNatsURL returns an empty string when NATS is not configured.
func (e *roomServerEnvironment) GetNatsURL() string {
	return os.Getenv(e.NatsURL)
}

func (e *roomServerEnvironment) GetDisableRest() string {
	v := os.Getenv(e.DisableRest)
	if v == "" {
		return "false"
	}
	return v
}

func (e *roomServerEnvironment) ShouldDisableRest() bool {
	return e.GetDisableRest() == "1" || strings.ToLower(e.GetDisableRest()) == "true"
}
