package config

import (
	"os"

	"github.com/spf13/viper"
)

func initDefaults() {
	viper.SetDefault("server.address", ":8977")
	viper.SetDefault("queue.min_size", 30)
	viper.SetDefault("queue.max_history", 100)
	viper.SetDefault("redis.address", os.Getenv("redis_address"))
	viper.SetDefault("redis.nowplaying.ttl", 86400)
	viper.SetDefault("postgres.dsn", os.Getenv("postgres_dsn"))
}
