package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/bszet/vertretungsbot/store"
)

// platform tags Telegram subscribers in the store.
const platform = "tg"

// maxGroupLen guards against free-text junk in /setclass arguments.
const maxGroupLen = 15

// Sender is the Telegram send surface, satisfied by *tgbotapi.BotAPI.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Verifier checks a candidate document-source login.
type Verifier interface {
	Verify(ctx context.Context, username, password string) (bool, error)
}

// Router dispatches incoming Telegram commands and pushes agenda updates.
type Router struct {
	Bot      Sender
	Store    *store.Store
	Verifier Verifier
	Log      *slog.Logger
}

func (r *Router) log() *slog.Logger {
	if r.Log != nil {
		return r.Log
	}
	return slog.Default()
}

// HandleUpdate processes one incoming Telegram update.
func (r *Router) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	if upd.Message == nil || !upd.Message.IsCommand() {
		return
	}
	uid := upd.Message.Chat.ID
	var err error
	switch upd.Message.Command() {
	case "start":
		err = r.handleStart(ctx, uid)
	case "verify":
		err = r.handleVerify(ctx, uid, upd.Message.CommandArguments())
	case "setclass":
		err = r.handleSetClass(ctx, uid, upd.Message.CommandArguments())
	case "removeclass":
		err = r.handleRemoveClass(ctx, uid)
	case "listclasses":
		err = r.handleListClasses(ctx, uid)
	case "stop":
		err = r.handleStop(ctx, uid)
	default:
		r.send(uid, "Unknown command. Available: /start, /verify, /setclass, /removeclass, /listclasses, /stop")
	}
	if err != nil {
		r.log().Error("handling command failed",
			"command", upd.Message.Command(), "subscriber", uid, "error", err)
		r.send(uid, "Something went wrong, please try again later.")
	}
}

func (r *Router) handleStart(ctx context.Context, uid int64) error {
	if err := r.Store.AddSubscriber(ctx, uid, platform); err != nil {
		return err
	}
	r.send(uid, "To start using this bot, please verify that you know the login using /verify.")
	return nil
}

func (r *Router) handleVerify(ctx context.Context, uid int64, args string) error {
	parts := strings.Fields(strings.ReplaceAll(args, ",", " "))
	if len(parts) != 2 {
		r.send(uid, "Please specify the current login, separated by space.")
		return nil
	}
	ok, err := r.Verifier.Verify(ctx, parts[0], parts[1])
	if err != nil {
		return err
	}
	if !ok {
		r.send(uid, `That login was rejected. Please use the format: "username" "password".`)
		return nil
	}
	if err := r.Store.AddCredential(ctx, parts[0], parts[1]); err != nil {
		return err
	}
	if err := r.Store.TrustSubscriber(ctx, uid, platform); err != nil {
		return err
	}
	r.send(uid, "You have been successfully verified. Feel free to use /setclass now.")
	return nil
}

func (r *Router) handleSetClass(ctx context.Context, uid int64, args string) error {
	group := strings.TrimSpace(args)
	if group == "" || len(group) >= maxGroupLen {
		r.send(uid, `Please specify a class like "/setclass C_MI 21/3".`)
		return nil
	}
	sub, err := r.Store.Subscriber(ctx, uid, platform)
	if err != nil {
		return err
	}
	if !sub.Trusted {
		r.send(uid, "Please verify first using /verify.")
		return nil
	}
	exists, err := r.Store.GroupExists(ctx, group)
	if err != nil {
		return err
	}
	if !exists {
		r.send(uid, fmt.Sprintf("The class %s is not known. If you believe that this is an error, check back later.", group))
		return nil
	}
	if err := r.Store.SetSubscriberGroup(ctx, uid, platform, group); err != nil {
		return err
	}
	r.send(uid, fmt.Sprintf("You have successfully selected the class %q.", group))
	return nil
}

func (r *Router) handleRemoveClass(ctx context.Context, uid int64) error {
	if err := r.Store.ClearSubscriberGroup(ctx, uid, platform); err != nil {
		return err
	}
	r.send(uid, "You have successfully removed your previous class.")
	return nil
}

func (r *Router) handleStop(ctx context.Context, uid int64) error {
	if err := r.Store.DeleteSubscriber(ctx, uid, platform); err != nil {
		return err
	}
	r.send(uid, "You have been unsubscribed and your data has been deleted. Use /start to subscribe again.")
	return nil
}

func (r *Router) handleListClasses(ctx context.Context, uid int64) error {
	groups, err := r.Store.RecentGroups(ctx)
	if err != nil {
		return err
	}
	r.send(uid, "All known classes:\n"+strings.Join(groups, "\n"))
	return nil
}

func (r *Router) send(uid int64, text string) {
	if _, err := r.Bot.Send(tgbotapi.NewMessage(uid, text)); err != nil {
		r.log().Warn("sending reply failed", "subscriber", uid, "error", err)
	}
}

// Push delivers the current agenda to every stale subscriber. Only agendas
// containing at least one new substitution are sent; a confirmed send
// advances the subscriber's watermark, a permanent rejection removes the
// subscriber, and a transient failure leaves them stale for the next pass.
func (r *Router) Push(ctx context.Context) error {
	ids, err := r.Store.StaleSubscribers(ctx, platform)
	if err != nil {
		return err
	}
	var errs []error
	for _, uid := range ids {
		subs, err := r.Store.SubstitutionsForSubscriber(ctx, uid, platform)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		text, hasNew := FormatAgenda(subs)
		if !hasNew {
			continue
		}
		msg := tgbotapi.NewMessage(uid, text)
		msg.ParseMode = tgbotapi.ModeMarkdownV2
		if _, err := r.Bot.Send(msg); err != nil {
			if isForbidden(err) {
				r.log().Info("subscriber blocked the bot, removing", "subscriber", uid)
				if err := r.Store.DeleteSubscriber(ctx, uid, platform); err != nil {
					errs = append(errs, err)
				}
				continue
			}
			r.log().Warn("delivery failed, will retry", "subscriber", uid, "error", err)
			continue
		}
		if err := r.Store.MarkDelivered(ctx, uid, platform); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// isForbidden reports whether the Telegram API permanently rejected the
// recipient.
func isForbidden(err error) bool {
	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == 403
	}
	return false
}
