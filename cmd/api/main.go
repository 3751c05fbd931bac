package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/joho/godotenv"

	"github.com/upendo-connect/backend/internal/config"
	"github.com/upendo-connect/backend/internal/handler"
	"github.com/upendo-connect/backend/internal/model/match"
	"github.com/upendo-connect/backend/internal/model/user"
	"github.com/upendo-connect/backend/internal/pubsub"
	"github.com/upendo-connect/backend/internal/service/ai"
	"github.com/upendo-connect/backend/internal/service/chat"
	"github.com/upendo-connect/backend/internal/service/directory"
	"github.com/upendo-connect/backend/internal/service/scheduler"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	bus := pubsub.NewWatermillBus()
	defer bus.Close()

	userStore := user.NewMemoryStore()
	matchStore := match.NewMemoryStore()
	chatService := chat.NewService(
		chat.WithQuota(cfg.Chat.FreeMessageQuota),
		chat.WithPublisher(bus),
	)

	// Without Ark credentials the AI service serves fallback data only.
	var chatModel model.BaseChatModel
	if cfg.AI.Enabled() {
		cm, err := cfg.AI.NewChatModel(ctx)
		if err != nil {
			log.Printf("warning: failed to create chat model: %v", err)
			log.Println("continuing with fallback matches and replies - 请检查 Ark 模型相关环境变量")
		} else {
			chatModel = cm
		}
	} else {
		log.Println("Ark 凭证未配置，使用预置匹配与默认回复")
	}

	aiService, err := ai.NewService(ctx, chatModel, ai.WithBatchSize(cfg.AI.MatchBatchSize))
	if err != nil {
		log.Printf("warning: failed to initialize AI service: %v", err)
		aiService, _ = ai.NewService(ctx, nil, ai.WithBatchSize(cfg.AI.MatchBatchSize))
	} else if aiService.Online() {
		log.Println("AI service initialized successfully")
	}

	replies := scheduler.New(chatService, aiService, directory.New(userStore, matchStore), scheduler.Config{
		DelayMin: cfg.Chat.ReplyDelayMin,
		DelayMax: cfg.Chat.ReplyDelayMax,
		Timeout:  cfg.Chat.ReplyTimeout,
	})
	defer replies.Close()
	if err := replies.Start(ctx, bus); err != nil {
		log.Fatalf("failed to start reply scheduler: %v", err)
	}

	router := handler.NewRouter(handler.Deps{
		Users:     userStore,
		Matches:   matchStore,
		Chat:      chatService,
		Generator: aiService,
		Replies:   replies,
		Events:    bus,
	})

	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("Upendo Connect backend listening on %s", addr)
	if err := runServer(ctx, srv); err != nil {
		log.Printf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
