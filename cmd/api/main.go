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

	"github.com/mberrie/todoapp-service/internal/auth"
	"github.com/mberrie/todoapp-service/internal/router"
	"github.com/mberrie/todoapp-service/internal/todo"
	todorepo "github.com/mberrie/todoapp-service/internal/todo/repo"
	"github.com/mberrie/todoapp-service/internal/user"
	userrepo "github.com/mberrie/todoapp-service/internal/user/repo"
	"github.com/mberrie/todoapp-service/pkg/database"
	"github.com/mberrie/todoapp-service/pkg/utilities"
)

func main() {
	// load .env file if present so os.Getenv picks values from it
	_ = godotenv.Load()

	lg, err := utilities.InitLogger(utilities.LogConfigFromEnv())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer lg.Sync()

	sugar := lg.Sugar()
	sugar.Info("starting todoapp-service")

	authCfg, err := auth.ConfigFromEnv()
	if err != nil {
		sugar.Fatalf("auth config: %v", err)
	}

	db, err := database.Connect(database.ConfigFromEnv())
	if err != nil {
		sugar.Fatalf("db connect: %v", err)
	}
	defer db.Close()

	userRepo := userrepo.NewUserRepo(db)
	todoRepo := todorepo.NewTodoRepo(db)
	{
		// todos references users, so order matters
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := userRepo.EnsureTable(ctx); err != nil {
			sugar.Fatalf("ensure users table: %v", err)
		}
		if err := todoRepo.EnsureTable(ctx); err != nil {
			sugar.Fatalf("ensure todos table: %v", err)
		}
	}

	handler := router.New(router.Deps{
		Logger:  sugar,
		Users:   user.NewService(userRepo, nil),
		Todos:   todo.NewService(todoRepo),
		Tokens:  auth.NewTokenService(authCfg.Secret),
		AuthCfg: authCfg,
	})

	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = "0.0.0.0:8000"
	}
	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	// graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		sugar.Infof("listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			sugar.Fatalf("http server failed: %v", err)
		}
	}()

	<-ctx.Done()

	sugar.Info("shutting down")

	doneCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(doneCtx); err != nil {
		sugar.Warnf("http server shutdown failed: %v", err)
	}

	sugar.Info("goodbye")
}
