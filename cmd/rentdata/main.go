package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/lcyksp/Harmony-Rental/internal/config"
	"github.com/lcyksp/Harmony-Rental/internal/database"
	httpapi "github.com/lcyksp/Harmony-Rental/internal/http"
	"github.com/lcyksp/Harmony-Rental/internal/logger"
	"github.com/lcyksp/Harmony-Rental/internal/repository"
	"github.com/lcyksp/Harmony-Rental/internal/service"
	"github.com/lcyksp/Harmony-Rental/internal/store"
)

func main() {
	cfg := config.Load()

	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, "rentdata")
	if err != nil {
		log, _ = zap.NewProduction()
	}
	defer log.Sync()

	// 仓储装配：DB 可用走 Postgres，否则退回内存实现（联调友好）
	var (
		db            *sql.DB
		listingsRepo  repository.ListingsRepository
		resRepo       repository.ReservationsRepository
		contractsRepo repository.ContractsRepository
		viewsRepo     repository.RecentViewsRepository
	)
	if cfg.DBEnabled {
		if d, derr := database.NewPostgresDB(&cfg.Database); derr == nil {
			if serr := database.EnsureSchema(d); serr != nil {
				log.Warn("EnsureSchema failed", zap.Error(serr))
			}
			db = d
			log.Info("DB enabled for rentdata")
		} else {
			log.Warn("DB enabled but connection failed, falling back to memory stores", zap.Error(derr))
		}
	}
	if db != nil {
		listingsRepo = repository.NewPostgresListingsRepository(db)
		resRepo = repository.NewPostgresReservationsRepository(db)
		contractsRepo = repository.NewPostgresContractsRepository(db)
		viewsRepo = repository.NewPostgresRecentViewsRepository(db)
	} else {
		ml := repository.NewMemoryListingsRepository()
		mr := repository.NewMemoryReservationsRepository()
		mc := repository.NewMemoryContractsRepository()
		ml.AttachLedgers(mr, mc)
		listingsRepo = ml
		resRepo = mr
		contractsRepo = mc
		viewsRepo = repository.NewMemoryRecentViewsRepository()
	}

	// 消息盒子：Redis 持久化；未启用 Redis 时用内存实现
	var (
		redisClient *redis.Client
		mailboxRepo repository.MailboxRepository
	)
	if cfg.RedisEnabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		mailboxRepo = store.NewRedisMailbox(redisClient)
	} else {
		mailboxRepo = repository.NewMemoryMailboxRepository()
	}

	push := service.NewPushClient(cfg.PushGatewayURL, log)
	mailboxSvc := service.NewMailboxService(mailboxRepo, push, log)
	listingSvc := service.NewListingService(listingsRepo, log)
	reservationSvc := service.NewReservationService(resRepo, listingsRepo, mailboxSvc, log)
	contractSvc := service.NewContractService(contractsRepo, listingsRepo, mailboxSvc, log)
	footprintSvc := service.NewFootprintService(viewsRepo, listingsRepo, log)

	router := httpapi.NewRouter(log)
	router.RegisterRentRoutes(
		httpapi.NewListingHandler(listingSvc, log),
		httpapi.NewReservationHandler(reservationSvc, log),
		httpapi.NewContractHandler(contractSvc, log),
		httpapi.NewMailboxHandler(mailboxSvc, log),
		httpapi.NewFootprintHandler(footprintSvc, log),
	)

	srv := service.NewServer(cfg.HTTP.Addr, router, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
		cancel()
	case <-errCh:
		cancel()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 5*time.Second)
	defer shutdownCancel()
	_ = srv.Stop(shutdownCtx)
	if redisClient != nil {
		_ = redisClient.Close()
	}
	if db != nil {
		_ = db.Close()
	}
}
