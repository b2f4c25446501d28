package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vtrader/internal/admin"
	"vtrader/internal/auth"
	"vtrader/internal/config"
	"vtrader/internal/db"
	"vtrader/internal/health"
	"vtrader/internal/httpserver"
	"vtrader/internal/ledger"
	"vtrader/internal/market"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		bootLog := zerolog.New(os.Stderr)
		bootLog.Fatal().Err(err).Msg("failed to load configuration")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log := zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DBDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	if err := db.Migrate(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	marketStore := market.NewStore(pool)
	instruments, err := marketStore.Bootstrap(ctx, market.SeedInstruments())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to bootstrap instruments")
	}
	board := market.NewBoard(instruments)
	bus := market.NewBus()
	simulator := market.NewSimulator(board, marketStore, bus, cfg.TickInterval, log)

	store := ledger.NewPGStore(pool)
	ledgerSvc := ledger.NewService(store, board, log)
	authSvc := auth.NewService(pool, ledgerSvc, cfg.JWTIssuer, []byte(cfg.JWTSecret), cfg.JWTTTL, cfg.StartingBalance)
	if err := authSvc.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.Fatal().Err(err).Msg("failed to bootstrap admin account")
	}
	adminSvc := admin.NewService(store, board)

	router := httpserver.NewRouter(httpserver.RouterDeps{
		AuthHandler:   auth.NewHandler(authSvc),
		LedgerHandler: ledger.NewHandler(ledgerSvc, board),
		MarketHandler: market.NewHandler(board, market.NewQuoteWS(board, bus, cfg.WebSocketOrigin)),
		AdminHandler:  admin.NewHandler(adminSvc),
		HealthHandler: health.NewHandler(pool, time.Now()),
		AuthService:   authSvc,
		LedgerService: ledgerSvc,
		Simulator:     simulator,
	})
	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	simCtx, cancelSim := context.WithCancel(ctx)
	go simulator.Run(simCtx)

	log.Info().Str("addr", cfg.HTTPAddr).Int("instruments", board.Size()).Msg("server listening")

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-stop
		cancelSim()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("server failed")
	}
}
