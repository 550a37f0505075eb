package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Game   GameConfig   `mapstructure:"game"`
}

type ServerConfig struct {
	HTTPAddress    string `mapstructure:"http_address"`
	RPCAddress     string `mapstructure:"rpc_address"`
	MetricsAddress string `mapstructure:"metrics_address"`
}

type GameConfig struct {
	MaxPlayers     int           `mapstructure:"max_players"`
	MaxLevel       int           `mapstructure:"max_level"`
	RoomCodeLength int           `mapstructure:"room_code_length"`
	AdvanceDelay   time.Duration `mapstructure:"advance_delay"`
	Heartbeat      time.Duration `mapstructure:"heartbeat"`
}

func setDefaults() {
	viper.SetDefault("server.http_address", ":8080")
	viper.SetDefault("server.rpc_address", ":8081")
	viper.SetDefault("server.metrics_address", ":9090")
	viper.SetDefault("game.max_players", 10)
	viper.SetDefault("game.max_level", 20)
	viper.SetDefault("game.room_code_length", 4)
	viper.SetDefault("game.advance_delay", 3*time.Second)
	viper.SetDefault("game.heartbeat", 60*time.Second)
}

func LoadConfig(path string) (config *Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	setDefaults()
	viper.AutomaticEnv()

	if err = viper.ReadInConfig(); err != nil {
		// A missing config file is fine, the defaults are a complete config.
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return nil, err
		}
	}

	err = viper.Unmarshal(&config)
	return
}
