package main

// @title           Sercha Auth API
// @version         1.0
// @description     Username and password sign-in with signed bearer tokens.

// @contact.name   Sercha OSS
// @contact.url    https://github.com/custodia-labs/sercha-auth/issues

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:8080
// @BasePath  /api/v1
// @schemes   http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token. Format: "Bearer {token}"

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/custodia-labs/sercha-auth/internal/adapters/driven/auth"
	"github.com/custodia-labs/sercha-auth/internal/adapters/driven/postgres"
	redisadapter "github.com/custodia-labs/sercha-auth/internal/adapters/driven/redis"
	"github.com/custodia-labs/sercha-auth/internal/adapters/driving/http"
	"github.com/custodia-labs/sercha-auth/internal/config"
	"github.com/custodia-labs/sercha-auth/internal/core/domain"
	"github.com/custodia-labs/sercha-auth/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-auth/internal/core/services"
	"github.com/custodia-labs/sercha-auth/internal/observability"
)

var version = "dev"

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "sercha-auth: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	// Run mode from environment (RUN_MODE) or command line arg
	mode := os.Getenv("RUN_MODE")
	if mode == "" {
		mode = "serve"
	}
	if len(args) > 0 {
		mode = args[0]
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := cfg.Log.NewLogger()
	slog.SetDefault(logger)
	logger.Info("sercha-auth starting", "version", version, "mode", mode, "store", cfg.Store.Backend)

	// Cancelled on SIGINT or SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	authAdapter, err := auth.NewAdapterWithCost(cfg.Auth.JWTSecret, cfg.Auth.BcryptCost)
	if err != nil {
		return fmt.Errorf("create auth adapter: %w", err)
	}

	authService := services.NewAuthService(services.AuthServiceConfig{
		UserStore:   store,
		AuthAdapter: authAdapter,
		TokenTTL:    cfg.Auth.TokenTTL,
		CookieName:  cfg.Auth.CookieName,
		Logger:      logger,
	})
	userService := services.NewUserService(store, authAdapter, logger)

	switch mode {
	case "serve":
		registry := prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		metrics := observability.NewMetrics(registry)

		server := http.NewServer(http.Config{
			Host:              cfg.Server.Host,
			Port:              cfg.Server.Port,
			Version:           version,
			CookieName:        cfg.Auth.CookieName,
			SetCookie:         cfg.Auth.SetCookie,
			AllowRegistration: cfg.Auth.AllowRegistration,
		}, authService, userService, store, metrics, logger)

		logger.Info("serving", "addr", cfg.Server.Addr(), "registration", cfg.Auth.AllowRegistration)
		return serve(ctx, server, cfg.Server)

	case "adduser":
		if len(args) < 2 {
			return errors.New("usage: sercha-auth adduser <username>")
		}
		password, err := readPassword(os.Stdin, os.Stderr)
		if err != nil {
			return err
		}
		summary, err := userService.Register(ctx, domain.CreateUserRequest{
			Username: args[1],
			Password: password,
		})
		if err != nil {
			return fmt.Errorf("register %s: %w", args[1], err)
		}
		logger.Info("user created", "username", summary.Username, "user_id", summary.ID)
		return nil

	default:
		return fmt.Errorf("unknown mode: %s (use: serve or adduser)", mode)
	}
}

// serve runs the HTTP server until ctx is cancelled, then shuts it down
func serve(ctx context.Context, server *http.Server, cfg config.ServerConfig) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(server.Start)

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return server.Stop(shutdownCtx)
	})

	return g.Wait()
}

// openStore connects the configured credential store. The returned func
// releases its connections.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (driven.UserStore, func() error, error) {
	switch cfg.Store.Backend {
	case config.BackendRedis:
		logger.Info("connecting to redis")
		client, err := redisadapter.Connect(ctx, cfg.Store.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		return redisadapter.NewUserStore(client), client.Close, nil

	default:
		logger.Info("connecting to postgres")
		db, err := postgres.Connect(ctx, postgres.Config{
			URL:             cfg.Store.DatabaseURL,
			MaxOpenConns:    cfg.Store.DBMaxOpenConns,
			MaxIdleConns:    cfg.Store.DBMaxIdleConns,
			ConnMaxLifetime: cfg.Store.DBConnMaxLifetime,
			ConnMaxIdleTime: cfg.Store.DBConnMaxIdleTime,
			QueryTimeout:    cfg.Store.DBQueryTimeout,
		})
		if err != nil {
			return nil, nil, err
		}
		// Idempotent
		if err := db.InitSchema(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		return postgres.NewUserStore(db), db.Close, nil
	}
}

// readPassword prompts without echo when in is a terminal and asks for
// confirmation. Otherwise it reads a single line, for scripted use.
func readPassword(in *os.File, prompt io.Writer) (string, error) {
	fd := int(in.Fd())
	if !term.IsTerminal(fd) {
		return readLine(in)
	}

	fmt.Fprint(prompt, "Password: ")
	first, err := term.ReadPassword(fd)
	fmt.Fprintln(prompt)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}

	fmt.Fprint(prompt, "Confirm password: ")
	second, err := term.ReadPassword(fd)
	fmt.Fprintln(prompt)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}

	if string(first) != string(second) {
		return "", errors.New("passwords do not match")
	}
	return string(first), nil
}

func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return "", errors.New("empty password")
	}
	return password, nil
}
