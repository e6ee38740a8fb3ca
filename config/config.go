package config

import (
	"io/ioutil"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config is the server configuration read at startup.
type Config struct {
	Nats  Nats  `yaml:"nats"`
	Redis Redis `yaml:"redis"`
	Game  Game  `yaml:"game"`
}

type Nats struct {
	URL string `yaml:"url"`
}

type Redis struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// Game holds the table rules every new session starts with.
type Game struct {
	MaxSeats      int    `yaml:"max-seats"`
	MinPlayers    int    `yaml:"min-players"`
	StartingChips int    `yaml:"starting-chips"`
	ActionTimeSec uint32 `yaml:"action-time"`
}

// Read parses the YAML configuration file.
func Read(path string) (*Config, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "Error reading config file %s", path)
	}
	var conf Config
	if err := yaml.Unmarshal(data, &conf); err != nil {
		return nil, errors.Wrapf(err, "Error parsing config file %s", path)
	}
	if conf.Game.MaxSeats == 0 {
		conf.Game.MaxSeats = 9
	}
	if conf.Game.MinPlayers == 0 {
		conf.Game.MinPlayers = 2
	}
	if conf.Game.StartingChips == 0 {
		conf.Game.StartingChips = 1000
	}
	return &conf, nil
}
