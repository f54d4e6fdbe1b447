// Command askrank-seed loads a JSON file of posts into the Redis post store,
// for local development and demos. The file holds an array of post objects,
// each with an "id" plus the usual feed fields.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/campusfeed/askrank/internal/config"
	dbRedis "github.com/campusfeed/askrank/internal/db/redis"
	logpkg "github.com/campusfeed/askrank/internal/logger"
)

func main() {
	file := flag.String("file", "posts.json", "path to the posts JSON file")
	flag.Parse()

	env := config.GetEnv()
	cfg := config.MustLoad(env)

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	data, err := os.ReadFile(*file)
	if err != nil {
		logger.Fatal("Failed to read posts file", zap.String("file", *file), zap.Error(err))
	}

	var posts []map[string]json.RawMessage
	if err := json.Unmarshal(data, &posts); err != nil {
		logger.Fatal("Failed to parse posts file", zap.Error(err))
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Username: cfg.Database.Username,
		Password: cfg.Database.Password,
		DB:       cfg.Database.DB,
	})
	if err != nil {
		logger.Fatal("Failed to create post store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Post store not ready", zap.Error(err))
	}

	seeded := 0
	for i, p := range posts {
		var id string
		if raw, ok := p["id"]; ok {
			_ = json.Unmarshal(raw, &id)
		}
		if id == "" {
			logger.Warn("Skipping post without id", zap.Int("index", i))
			continue
		}
		delete(p, "id")

		doc, err := json.Marshal(p)
		if err != nil {
			logger.Warn("Skipping unmarshalable post", zap.String("id", id), zap.Error(err))
			continue
		}

		key := cfg.Storage.KeyPrefix + "post:" + id
		if err := store.JSONSet(ctx, key, "$", doc); err != nil {
			logger.Fatal("Failed to store post", zap.String("key", key), zap.Error(err))
		}
		seeded++
	}

	logger.Info("Seeded posts", zap.Int("count", seeded), zap.String("file", *file))
}
