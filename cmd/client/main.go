package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/bingohall/bingo-client/internal/channel"
	"github.com/bingohall/bingo-client/internal/config"
	"github.com/bingohall/bingo-client/internal/httpui"
	"github.com/bingohall/bingo-client/internal/session"
	"github.com/bingohall/bingo-client/internal/transcript"
)

func main() {
	// .env is optional; real config comes from flags and env
	_ = godotenv.Load()

	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()
	log := logger.Sugar()

	ctx := context.Background()

	var rec session.Recorder
	if cfg.TranscriptPath != "" {
		store, err := transcript.Open(cfg.TranscriptPath)
		if err != nil {
			log.Fatalw("open transcript", "path", cfg.TranscriptPath, "err", err)
		}
		defer store.Close()
		rec = store
	}

	dialCtx, cancelDial := context.WithTimeout(ctx, 10*time.Second)
	client, err := channel.Dial(dialCtx, cfg.SocketAddr(), log)
	cancelDial()
	if err != nil {
		log.Fatalw("dial socket", "err", err)
	}
	defer client.Close()

	joinCtx, cancelJoin := context.WithTimeout(ctx, 10*time.Second)
	err = client.Join(joinCtx, cfg.Topic())
	cancelJoin()
	if err != nil {
		log.Fatalw("join channel", "topic", cfg.Topic(), "err", err)
	}
	log.Infow("joined", "topic", cfg.Topic())

	s := session.New(ctx, client, rec, log)
	s.Attach(client.Events())

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: httpui.SetupRoutes(s, log),
	}
	go func() {
		log.Infow("ui listening", "addr", srv.Addr, "game", cfg.GameName)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("serve ui", "err", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	log.Info("shutting down")
	s.Inbox() <- session.Shutdown{}
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	_ = srv.Shutdown(shutdownCtx)
}
