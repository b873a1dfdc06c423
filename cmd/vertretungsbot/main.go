package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/bszet/vertretungsbot/bot"
	"github.com/bszet/vertretungsbot/config"
	"github.com/bszet/vertretungsbot/fetch"
	"github.com/bszet/vertretungsbot/ingest"
	"github.com/bszet/vertretungsbot/pdftext"
	"github.com/bszet/vertretungsbot/store"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	cfg := config.Load()

	st, err := store.Open(cfg.DatabaseFile)
	if err != nil {
		log.Fatal(err)
	}
	defer st.Close()

	client := &fetch.Client{
		BaseURL:     cfg.PlanBaseURL,
		Credentials: st,
	}

	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		log.Fatal(err)
	}
	router := &bot.Router{
		Bot:      api,
		Store:    st,
		Verifier: client,
		Log:      logger,
	}

	updater := ingest.NewUpdater(
		client,
		pdftext.Command{Name: cfg.ExtractorCommand},
		st,
		router,
		logger,
	)

	ctx := context.Background()
	go updater.Run(ctx, cfg.PollInterval)

	logger.Info("bot started", "poll", cfg.PollInterval.String())
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30 // long polling timeout (sec)
	for upd := range api.GetUpdatesChan(u) {
		router.HandleUpdate(ctx, upd)
	}
}
