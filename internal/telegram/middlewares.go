package telegram

import (
	"fidelbot/internal/config"
	"fidelbot/internal/telegram/middleware"
)

// DefaultMiddlewares builds the shared middleware chain: panic recovery,
// stale-update rejection, receipt logging and message counters, in that
// order.
func DefaultMiddlewares(cfg *config.Config) []Middleware {
	mws := []Middleware{
		{Name: "recover", Use: middleware.RecoverMiddleware},
	}

	if cfg != nil {
		mws = append(mws, Middleware{
			Name: "staleness",
			Use:  middleware.StalenessMiddleware(middleware.StalenessOptions{Window: cfg.FreshnessWindow()}),
		})
	}

	mws = append(mws,
		Middleware{Name: "logger", Use: middleware.LoggerMiddleware},
		Middleware{Name: "metrics", Use: middleware.MessageMetricsMiddleware},
	)

	return mws
}
