package main

import (
	"context"
	"log"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/Aurelien-D/ToDoList-IA/api/handler"
	"github.com/Aurelien-D/ToDoList-IA/internal/ai"
	"github.com/Aurelien-D/ToDoList-IA/internal/config"
	"github.com/Aurelien-D/ToDoList-IA/internal/infrastructure/blobstore"
	"github.com/Aurelien-D/ToDoList-IA/internal/notify"
	"github.com/Aurelien-D/ToDoList-IA/internal/router"
	"github.com/Aurelien-D/ToDoList-IA/internal/services"
	"github.com/Aurelien-D/ToDoList-IA/internal/services/lifecycle"
	"github.com/Aurelien-D/ToDoList-IA/pkg/httpcontext"
	"github.com/Aurelien-D/ToDoList-IA/pkg/logger"
	"github.com/Aurelien-D/ToDoList-IA/usecase/board"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	manager.Listen(cancel)

	store, err := blobstore.Open(cfg.Storage.Path, cfg.Storage.Bucket)
	if err != nil {
		zapLogger.Fatal("failed to open storage", zap.Error(err))
	}
	manager.Register("storage", func(ctx context.Context) error {
		return store.Close()
	})

	feed := notify.NewFeed(cfg.Board.NoticeFeedSize, zapLogger)

	gateway := ai.New(ai.Config{
		Endpoint:       cfg.AI.Endpoint,
		RequestTimeout: cfg.AI.RequestTimeout,
		CacheTTL:       cfg.AI.CacheTTL,
	}, feed, zapLogger, nil)
	if !gateway.IsConfigured() {
		zapLogger.Warn("AI backend not configured; AI features disabled",
			zap.String("endpoint", cfg.AI.Endpoint))
	}

	taskBoard := board.New(store, gateway, feed, zapLogger, board.Config{
		SaveDebounce: cfg.Board.SaveDebounce,
		UndoWindow:   cfg.Board.UndoWindow,
	}, nil)
	if err := taskBoard.Load(appCtx); err != nil {
		zapLogger.Error("failed to load persisted state", zap.Error(err))
	}
	manager.Register("board", func(ctx context.Context) error {
		return taskBoard.Close(ctx)
	})

	alertScanner := services.NewAlertScanner(taskBoard, cfg.Board.DueDateInterval, zapLogger)
	alertScanner.Start()
	manager.Register("alert_scanner", func(ctx context.Context) error {
		alertScanner.Stop(ctx)
		return nil
	})

	autoSaver := services.NewAutoSaver(taskBoard, cfg.Board.AutoSaveInterval, zapLogger)
	autoSaver.Start()
	manager.Register("autosaver", func(ctx context.Context) error {
		autoSaver.Stop(ctx)
		return nil
	})

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Board:   apiHandler.NewBoardHandler(taskBoard, ctxAdapter, zapLogger),
		Notices: apiHandler.NewNoticesHandler(feed, ctxAdapter, zapLogger),
		Health:  apiHandler.NewHealthHandler(cfg.AppName, store, gateway, ctxAdapter, zapLogger),
	}
	r := router.New(handlers)

	server := &fasthttp.Server{
		Handler:      r.Handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Name:         cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started", zap.String("address", cfg.Address()))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.Shutdown()
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}
