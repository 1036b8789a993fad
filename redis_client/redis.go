package redis_client

import (
	"context"
	"time"

	"github.com/Strum355/log"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
)

var (
	RDB *redis.Client
	Ctx = context.Background()
)

// Init connects the now-playing publisher. With no redis address configured
// the client stays nil and every publish is a no-op.
func Init() {
	addr := viper.GetString("redis.address")
	if addr == "" {
		log.Info("redis.address not set, now-playing publisher disabled")
		return
	}
	RDB = redis.NewClient(&redis.Options{
		Addr: addr,
	})
}

// SetNowPlaying records the user's current track under a TTL key for other
// services to read. Session state stays in memory; this is advisory only.
func SetNowPlaying(userID, trackID string) {
	if RDB == nil {
		return
	}
	ttl := time.Duration(viper.GetInt("redis.nowplaying.ttl")) * time.Second
	if err := RDB.Set(Ctx, "nowplaying:"+userID, trackID, ttl).Err(); err != nil {
		log.WithError(err).Error("failed to publish now playing")
	}
}

// ClearNowPlaying drops the user's now-playing key.
func ClearNowPlaying(userID string) {
	if RDB == nil {
		return
	}
	if err := RDB.Del(Ctx, "nowplaying:"+userID).Err(); err != nil {
		log.WithError(err).Error("failed to clear now playing")
	}
}
