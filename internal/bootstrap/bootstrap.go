// Package bootstrap initializes infrastructure (logging, Postgres, Redis),
// seeds quiz content and assembles the bot runtime.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"fidelbot/internal/bot"
	"fidelbot/internal/broadcast"
	"fidelbot/internal/catalog"
	"fidelbot/internal/config"
	"fidelbot/internal/database"
	"fidelbot/internal/kvstore"
	"fidelbot/internal/logger"
	"fidelbot/internal/quiz"
	"fidelbot/internal/storage"
	tg "fidelbot/internal/telegram"
	tgsender "fidelbot/internal/telegram/sender"
)

func loggerConfig(cfg *config.Config) logger.Config {
	return logger.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		DebugSample: cfg.Logging.DebugSample,
		Dir:         cfg.Logging.Dir,
		BotFile:     cfg.Logging.BotFile,
		Profile:     cfg.Logging.Profile,
	}
}

// Run initializes everything and blocks on the bot run loop until ctx ends.
func Run(ctx context.Context, cfg *config.Config) error {
	if cfg == nil {
		return fmt.Errorf("bootstrap: nil config provided")
	}

	if err := logger.Init(loggerConfig(cfg)); err != nil {
		return fmt.Errorf("bootstrap: logger init failed: %w", err)
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return fmt.Errorf("bootstrap: database initialization failed: %w", err)
	}
	defer db.Close()

	if err := database.RunMigrations(cfg.Database); err != nil {
		return fmt.Errorf("bootstrap: migrations failed: %w", err)
	}

	redisClient, err := kvstore.ConnectRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return fmt.Errorf("bootstrap: redis initialization failed: %w", err)
	}
	defer redisClient.Close()
	store := kvstore.NewRedisStore(redisClient)

	if cfg.Quiz.ContentDir != "" {
		if err := SeedContent(ctx, store, cfg.Quiz.ContentDir); err != nil {
			return fmt.Errorf("bootstrap: content seeding failed: %w", err)
		}
	}

	cat := catalog.New()
	users := storage.NewUserRepo(db)
	scores := storage.NewScoreRepo(db)
	names := &bot.ChatNames{}
	engine := quiz.NewEngine(store, scores, names)
	menus := bot.NewMenus(cat, cfg.Telegram.Contact)
	coordinator := broadcast.New(users,
		cfg.Broadcast.PageSize,
		cfg.Broadcast.BatchSize,
		time.Duration(cfg.Broadcast.PauseMS)*time.Millisecond,
	)
	snd := tgsender.New()

	app := bot.New(bot.Deps{
		Config: cfg,
		Engine: engine,
		Menus:  menus,
		Users:  users,
		Scores: scores,
		Bcast:  coordinator,
		Names:  names,
		Sender: snd,
	})

	reg := app.BuildRegistry()
	return tg.RunTelegram(ctx, tg.RunOptions{
		Config:      cfg,
		Registry:    reg,
		Sender:      snd,
		Middlewares: tg.DefaultMiddlewares(cfg),
		Routes:      app.Routes(reg),
		OnStart:     app.OnStart,
	})
}
