package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	handlers "safecircle/internal/handler"
	"safecircle/internal/listeners"
	"safecircle/internal/models"
	"safecircle/internal/payment"
	"safecircle/internal/queue"
	"safecircle/internal/sos"
	"safecircle/pkg/cache"
	"safecircle/pkg/config"
	"safecircle/pkg/logger"
	"safecircle/pkg/metrics"
	"safecircle/pkg/notification"
	"safecircle/pkg/scheduler"
	"safecircle/pkg/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	if err := config.Load(); err != nil {
		panic(err)
	}
	cfg := config.GlobalConfig

	if err := logger.Init(cfg.Log); err != nil {
		panic(err)
	}
	defer logger.Sync()

	db, err := util.OpenDatabase(&gorm.Config{}, cfg.DBDriver, cfg.DSN)
	if err != nil {
		logger.Error("open database failed", zap.Error(err))
		os.Exit(1)
	}
	if err := models.Migrate(db); err != nil {
		logger.Error("migrate failed", zap.Error(err))
		os.Exit(1)
	}

	// The queue lives in its own database so alert durability does not
	// depend on the remote-facing store being reachable or healthy.
	q, err := queue.Open("sqlite", cfg.QueueDSN)
	if err != nil {
		logger.Error("open queue failed", zap.Error(err))
		os.Exit(1)
	}

	store, err := cache.New(cfg.Cache)
	if err != nil {
		logger.Error("init cache failed", zap.Error(err))
		os.Exit(1)
	}
	defer store.Close()

	m := metrics.NewMetrics()

	provider := payment.NewMoneyUnify(cfg.MoneyUnifyBaseURL, cfg.MoneyUnifyAuthID)
	payments := payment.NewService(db, provider, m)
	reconciler := payment.NewReconciler(db, m)
	gateway := payment.NewCardGateway(cfg.CardGatewayBaseURL, cfg.CardGatewayAPIKey)
	cardFlow := payment.NewCardFlow(db, gateway, gateway, m)

	locations := sos.NewDeviceProvider(store, 0)
	manager := sos.NewManager(locations, q, sos.NewRecordStore(db), m, sos.Config{
		LocationTimeout: time.Duration(cfg.SOSLocationTimeout) * time.Second,
	})

	sms := notification.NewSMS(
		notification.SMSConfig{SignName: cfg.SMSSignName, TemplateCode: cfg.SMSTemplateCode},
		notification.NewHTTPSMSClient(cfg.SMSGatewayBaseURL, cfg.SMSGatewayAPIKey),
	)
	listeners.InitSOSListeners(db, sms)
	listeners.InitPaymentListeners()

	sched := scheduler.New()
	defer sched.Stop()
	retryEvery := time.Duration(cfg.SOSRetryInterval) * time.Second
	if retryEvery <= 0 {
		retryEvery = 30 * time.Second
	}
	sched.Every(retryEvery, scheduler.FuncJob(func(ctx context.Context) {
		if _, err := manager.RetryPending(ctx); err != nil {
			logger.Warn("retry sweep error", zap.Error(err))
		}
		if n, err := q.CountPending(ctx); err == nil {
			m.SetQueuePending(float64(n))
		}
	}))

	cr := scheduler.NewCron(time.UTC)
	_, _ = cr.Add("0 0 * * *", scheduler.FuncJob(func(ctx context.Context) {
		n, err := q.CountPending(ctx)
		if err != nil {
			logger.Warn("nightly queue stats failed", zap.Error(err))
			return
		}
		logger.Info("nightly queue stats", zap.Int64("pending", n))
	}))
	cr.Start()
	defer cr.Stop()

	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	h := handlers.New(db, payments, reconciler, cardFlow, manager, q)
	handlers.RegisterRoutes(r, h, m, store)

	srv := &http.Server{Addr: cfg.Addr, Handler: r}
	go func() {
		logger.Info("listening", zap.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", zap.Error(err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", zap.Error(err))
	}
}
