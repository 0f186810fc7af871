package game

import (
	"fmt"
	"io/ioutil"
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	DefaultStartingChips = 1000
	DefaultMinPlayers    = 2
)

type RoomConfig struct {
	StartingChips int `yaml:"startingChips"`
	MinPlayers    int `yaml:"minPlayers"`
	// Seed pins the shuffle of every room when non-zero.
	Seed int64 `yaml:"seed"`
}

type ServerConfig struct {
	RequestTimeoutMs uint32  `yaml:"requestTimeoutMs"`
	RequestQueue     int     `yaml:"requestQueue"`
	EventBuffer      int     `yaml:"eventBuffer"`
	HistorySize      int     `yaml:"historySize"`
	HistoryPerRoom   int     `yaml:"historyPerRoom"`
	RateLimit        float64 `yaml:"rateLimit"`
	RateBurst        int     `yaml:"rateBurst"`
}

type Config struct {
	Room   RoomConfig   `yaml:"room"`
	Server ServerConfig `yaml:"server"`
}

func DefaultConfig() Config {
	return Config{
		Room: RoomConfig{
			StartingChips: DefaultStartingChips,
			MinPlayers:    DefaultMinPlayers,
		},
		Server: ServerConfig{
			RequestTimeoutMs: 5000,
			RequestQueue:     64,
			EventBuffer:      256,
			HistorySize:      1000,
			HistoryPerRoom:   50,
			RateLimit:        100,
			RateBurst:        200,
		},
	}
}

func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.Server.RequestTimeoutMs) * time.Millisecond
}

// ParseConfig reads the YAML config file on top of the defaults. A missing
// file is not an error; the defaults are returned.
func ParseConfig(configFile string) (Config, error) {
	config := DefaultConfig()
	if configFile == "" {
		return config, nil
	}
	bytes, err := ioutil.ReadFile(configFile)
	if os.IsNotExist(err) {
		managerLogger.Warn().Msgf("Config file [%s] does not exist. Using defaults.", configFile)
		return config, nil
	}
	if err != nil {
		return Config{}, errors.Wrap(err, fmt.Sprintf("Error reading config file [%s]", configFile))
	}

	err = yaml.Unmarshal(bytes, &config)
	if err != nil {
		return Config{}, errors.Wrap(err, fmt.Sprintf("Error parsing config YAML file [%s]", configFile))
	}
	err = config.validate()
	if err != nil {
		return Config{}, errors.Wrap(err, fmt.Sprintf("Invalid config file [%s]", configFile))
	}
	return config, nil
}

func (c Config) validate() error {
	if c.Room.StartingChips < 0 {
		return fmt.Errorf("room.startingChips must not be negative: %d", c.Room.StartingChips)
	}
	if c.Room.MinPlayers < 2 {
		return fmt.Errorf("room.minPlayers must be at least 2: %d", c.Room.MinPlayers)
	}
	if c.Server.RequestQueue < 1 {
		return fmt.Errorf("server.requestQueue must be positive: %d", c.Server.RequestQueue)
	}
	if c.Server.HistorySize < 1 || c.Server.HistoryPerRoom < 1 {
		return fmt.Errorf("server.historySize and server.historyPerRoom must be positive")
	}
	return nil
}
