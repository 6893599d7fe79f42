package bot

import (
	"context"

	"fidelbot/internal/broadcast"
	"fidelbot/internal/config"
	"fidelbot/internal/logger"
	"fidelbot/internal/nav"
	"fidelbot/internal/quiz"
	"fidelbot/internal/storage"
	tg "fidelbot/internal/telegram"
	"fidelbot/internal/telegram/keyboard"
	"fidelbot/internal/telegram/middleware"
	"fidelbot/internal/telegram/router"
	tgsender "fidelbot/internal/telegram/sender"
	"fidelbot/internal/telegram/ui"
	"log/slog"

	tele "gopkg.in/telebot.v4"
)

// App binds the domain services to Telebot handlers.
type App struct {
	adminID int64
	menus   *Menus
	engine  *quiz.Engine
	users   *storage.UserRepo
	scores  *storage.ScoreRepo
	bcast   *broadcast.Coordinator
	names   *ChatNames
	sender  *tgsender.Sender
}

// Deps collects the collaborators New needs.
type Deps struct {
	Config *config.Config
	Engine *quiz.Engine
	Menus  *Menus
	Users  *storage.UserRepo
	Scores *storage.ScoreRepo
	Bcast  *broadcast.Coordinator
	Names  *ChatNames
	Sender *tgsender.Sender
}

// New assembles the app.
func New(d Deps) *App {
	return &App{
		adminID: d.Config.Telegram.AdminID,
		menus:   d.Menus,
		engine:  d.Engine,
		users:   d.Users,
		scores:  d.Scores,
		bcast:   d.Bcast,
		names:   d.Names,
		sender:  d.Sender,
	}
}

func markupFor(r ui.Render) *tele.ReplyMarkup {
	return keyboard.FromRender(r)
}

// BuildRegistry registers every command, token-kind callback and fallback.
func (a *App) BuildRegistry() *tg.Registry {
	reg := tg.NewRegistry()

	adminOpts := middleware.AdminOptions{AdminID: a.adminID}

	reg.RegisterCommand("/start", tg.Command{
		Handler:     a.handleStartCommand,
		Description: "Open the main menu",
	})
	reg.RegisterCommand("/help", tg.Command{
		Handler:     a.handleHelpCommand,
		Description: "How the quiz works",
	})
	reg.RegisterCommand("/broadcast", tg.Command{
		Handler:     middleware.WithAdminCheck(adminOpts, true, a.handleBroadcast),
		Description: "Broadcast the replied-to message to all users",
		AdminOnly:   true,
	})

	adminGate := middleware.AdminOnlyMiddleware(adminOpts)
	adminPrefix := func(h tg.PrefixHandler) tg.PrefixHandler {
		return func(c tele.Context, suffix string) error {
			return adminGate(func(c tele.Context) error { return h(c, suffix) })(c)
		}
	}
	reg.RegisterPrefixCommand("/broadcast_", adminPrefix(a.handleBroadcastContinue))
	reg.RegisterPrefixCommand("/reply_", adminPrefix(a.handleReply))

	callbacks := map[nav.Kind]tele.HandlerFunc{
		nav.KindGrade:       a.handleGrade,
		nav.KindUnits:       a.handleUnits,
		nav.KindPreQuiz:     a.handlePreQuiz,
		nav.KindStart:       a.handleQuizStart,
		nav.KindNext:        a.handleNext,
		nav.KindAnswer:      a.handleAnswer,
		nav.KindSeen:        a.handleSeen,
		nav.KindBackToGrade: a.handleBackToGrade,
		nav.KindBackToUnits: a.handleBackToUnits,
		nav.KindBackToMain:  a.handleBackToMain,
		nav.KindLeaderboard: a.handleLeaderboard,
		nav.KindContact:     a.handleContact,
		nav.KindHelp:        a.handleHelp,
	}
	for kind, h := range callbacks {
		if err := reg.RegisterCallback(kind, h); err != nil {
			logger.TWire.Warn("callback registration failed",
				slog.String("event", "register.callback.fail"),
				slog.String("key", string(kind)),
				slog.String("err", err.Error()),
			)
		}
	}

	reg.SetTextFallback(a.handleFeedback)

	logger.TWire.Info("tg.wire",
		slog.String("event", "complete"),
		slog.Int("commands", len(reg.Commands())),
		slog.Int("callbacks", len(reg.ListCallbacks())),
	)

	return reg
}

// Routes builds the endpoint routes for the registry.
func (a *App) Routes(reg *tg.Registry) []tg.Route {
	return []tg.Route{
		router.CallbackRoute(reg, router.CallbackOptions{}),
		router.TextRoute(reg, router.TextOptions{}),
		router.PhotoRoute(reg),
	}
}

// OnStart wires the live bot into the name resolver.
func (a *App) OnStart(_ context.Context, rt tg.Runtime) error {
	a.names.SetBot(rt.Bot)
	return nil
}
