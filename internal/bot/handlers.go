package bot

import (
	"context"
	"errors"

	"fidelbot/internal/catalog"
	"fidelbot/internal/logger"
	"fidelbot/internal/nav"
	"fidelbot/internal/quiz"
	tghelpers "fidelbot/internal/telegram/helpers"
	"fidelbot/internal/telegram/ui"
	"log/slog"

	tele "gopkg.in/telebot.v4"
)

// quizCtx builds the logging context for an update and caches the sender's
// display name for score merges.
func (a *App) quizCtx(c tele.Context) context.Context {
	ctx := tghelpers.BuildContext(c)
	if u := c.Sender(); u != nil {
		ctx = withSenderName(ctx, displayName(u.FirstName, u.LastName))
	}
	return ctx
}

func decodeState(c tele.Context) (nav.State, bool) {
	cb := c.Callback()
	if cb == nil {
		return nav.State{}, false
	}
	_, st, err := nav.Decode(cb.Data)
	if err != nil {
		return nav.State{}, false
	}
	return st, true
}

func refFrom(st nav.State) catalog.Ref {
	return catalog.Ref{Grade: st.Grade, Subject: st.Subject, Unit: st.Unit}
}

// deliver routes an engine result to the chat, mapping a missing question
// set to a polite alert instead of a failed handler.
func deliver(c tele.Context, r ui.Render, err error) error {
	if err != nil {
		if errors.Is(err, quiz.ErrQuizNotFound) {
			return tghelpers.Respond(c, "This quiz isn't available yet. Try another unit!")
		}
		return err
	}
	return tghelpers.DeliverRender(c, r)
}

func (a *App) handleStartCommand(c tele.Context) error {
	ctx := a.quizCtx(c)
	if u := c.Sender(); u != nil {
		if err := a.users.Ensure(ctx, u.ID); err != nil {
			logger.Warn(ctx, "bot", "user.register.fail", slog.String("err", err.Error()))
		}
	}
	r := a.menus.Main()
	return tghelpers.SendMD(c, r.Text, markupFor(r))
}

func (a *App) handleGrade(c tele.Context) error {
	st, ok := decodeState(c)
	if !ok {
		return tghelpers.Respond(c, "Unsupported action")
	}
	return tghelpers.DeliverRender(c, a.menus.Subjects(st.Grade))
}

func (a *App) handleUnits(c tele.Context) error {
	st, ok := decodeState(c)
	if !ok {
		return tghelpers.Respond(c, "Unsupported action")
	}
	return tghelpers.DeliverRender(c, a.menus.Units(st.Grade, st.Subject))
}

func (a *App) handlePreQuiz(c tele.Context) error {
	st, ok := decodeState(c)
	if !ok {
		return tghelpers.Respond(c, "Unsupported action")
	}
	return tghelpers.DeliverRender(c, a.menus.PreQuiz(refFrom(st)))
}

func (a *App) handleQuizStart(c tele.Context) error {
	st, ok := decodeState(c)
	if !ok {
		return tghelpers.Respond(c, "Unsupported action")
	}
	ctx := a.quizCtx(c)
	if u := c.Sender(); u != nil {
		if err := a.users.Ensure(ctx, u.ID); err != nil {
			logger.Warn(ctx, "bot", "user.register.fail", slog.String("err", err.Error()))
		}
	}
	r, err := a.engine.Start(ctx, c.Sender().ID, refFrom(st))
	return deliver(c, r, err)
}

func (a *App) handleNext(c tele.Context) error {
	st, ok := decodeState(c)
	if !ok {
		return tghelpers.Respond(c, "Unsupported action")
	}
	r, err := a.engine.Question(a.quizCtx(c), c.Sender().ID, refFrom(st), st.Question)
	return deliver(c, r, err)
}

func (a *App) handleAnswer(c tele.Context) error {
	st, ok := decodeState(c)
	if !ok {
		return tghelpers.Respond(c, "Unsupported action")
	}
	r, err := a.engine.Answer(a.quizCtx(c), c.Sender().ID, refFrom(st), st.Question, st.Choice)
	return deliver(c, r, err)
}

func (a *App) handleSeen(c tele.Context) error {
	st, ok := decodeState(c)
	if !ok {
		return tghelpers.Respond(c, "Unsupported action")
	}
	r, err := a.engine.Review(a.quizCtx(c), refFrom(st), st.Question)
	return deliver(c, r, err)
}

func (a *App) handleBackToGrade(c tele.Context) error {
	st, ok := decodeState(c)
	if !ok {
		return tghelpers.Respond(c, "Unsupported action")
	}
	return tghelpers.DeliverRender(c, a.menus.Subjects(st.Grade))
}

func (a *App) handleBackToUnits(c tele.Context) error {
	st, ok := decodeState(c)
	if !ok {
		return tghelpers.Respond(c, "Unsupported action")
	}
	return tghelpers.DeliverRender(c, a.menus.Units(st.Grade, st.Subject))
}

func (a *App) handleBackToMain(c tele.Context) error {
	return tghelpers.DeliverRender(c, a.menus.Main())
}

func (a *App) handleLeaderboard(c tele.Context) error {
	rows, err := a.scores.Top(a.quizCtx(c), 10)
	if err != nil {
		return err
	}
	return tghelpers.DeliverRender(c, a.menus.Leaderboard(rows))
}

func (a *App) handleContact(c tele.Context) error {
	return tghelpers.DeliverRender(c, a.menus.Contact())
}

func (a *App) handleHelp(c tele.Context) error {
	return tghelpers.DeliverRender(c, a.menus.Help())
}

func (a *App) handleHelpCommand(c tele.Context) error {
	r := a.menus.Help()
	return tghelpers.SendMD(c, r.Text, markupFor(r))
}
