package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"liyu1981.xyz/vessel-resource-service/pkg/broadcast"
	"liyu1981.xyz/vessel-resource-service/pkg/common"
	"liyu1981.xyz/vessel-resource-service/pkg/config"
	"liyu1981.xyz/vessel-resource-service/pkg/db"
	"liyu1981.xyz/vessel-resource-service/pkg/engine"
	vesselGrpc "liyu1981.xyz/vessel-resource-service/pkg/grpc"
	vesselHttp "liyu1981.xyz/vessel-resource-service/pkg/http"
	"liyu1981.xyz/vessel-resource-service/pkg/metrics"
	"liyu1981.xyz/vessel-resource-service/pkg/models"
	"liyu1981.xyz/vessel-resource-service/pkg/notify"
	"liyu1981.xyz/vessel-resource-service/pkg/report"
	"liyu1981.xyz/vessel-resource-service/pkg/scheduler"
	"liyu1981.xyz/vessel-resource-service/pkg/store"
	"liyu1981.xyz/vessel-resource-service/pkg/vessel"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// .env is optional outside development, copy .env.example to .env to use one
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatal("Error loading .env file: ", err)
	}

	cfg, err := config.Load(os.Getenv(common.EnvKeyConfigFile))
	if err != nil {
		log.Fatal("Invalid configuration: ", err)
	}

	common.SetLogOptions(common.LogOptions{
		Dir:        cfg.Logging.Dir,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
		Level:      cfg.Logging.Level,
	})
	logger := common.GetLogger()
	defer func() { _ = logger.Sync() }()

	metrics.Init()

	dialector, err := db.UseDialector(cfg.DB.Type, cfg.DB.Path, cfg.DB.DSN)
	if err != nil {
		log.Fatal(err)
	}
	dbInstance, err := db.Open(dialector)
	if err != nil {
		log.Fatal("Failed to open database: ", err)
	}
	defer func() { _ = dbInstance.Close() }()

	st := store.NewGormStore(dbInstance)
	broadcaster := broadcast.NewBroadcaster()

	vesselCore := vessel.New(st,
		vessel.WithPublisher(broadcaster),
		vessel.WithDefaultThresholds(cfg.Thresholds.Thresholds()),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := vesselCore.Seed(ctx, cfg.Resources.Defaults(vesselCore.Now())); err != nil {
		log.Fatal("Failed to seed resources: ", err)
	}

	dispatcher, err := newDispatcher(cfg, vesselCore)
	if err != nil {
		log.Fatal("Failed to create notification dispatcher: ", err)
	}
	vesselCore.Notifier = dispatcher

	sched := scheduler.New(vesselCore.Resource, st,
		scheduler.WithIntervals(cfg.Scheduler.EngineInterval, cfg.Scheduler.BackgroundInterval),
		scheduler.WithWriteBudget(scheduler.NewWriteBudget(cfg.Scheduler.WritesPerMinute, engine.SystemClock{})),
		scheduler.WithTickTimeout(cfg.Scheduler.TickTimeout),
		scheduler.WithPublisher(broadcaster),
		scheduler.WithDepletionHandler(func(t models.ResourceType) {
			logger.Warn("Engine stopped, resource depleted", zap.String("resource", string(t)))
		}),
	)
	if err := sched.Resume(ctx); err != nil {
		log.Fatal("Failed to resume scheduler: ", err)
	}

	limiterInfo := fmt.Sprintf("{\"default_rate\": %v, \"default_burst\": %v}", cfg.Limiter.Rate, cfg.Limiter.Burst)

	grpcServer, healthServer := vesselGrpc.NewServer(&vesselGrpc.ResourceServer{
		Vessel:           vesselCore,
		Broadcaster:      broadcaster,
		RateLimiterStore: vessel.NewRateLimiterStore(rate.Limit(cfg.Limiter.Rate), cfg.Limiter.Burst),
	})
	logger.Info("gRPC server created with:", zap.String("default_limiter", limiterInfo))

	grpcListener, err := net.Listen("tcp", cfg.GRPC.Addr)
	if err != nil {
		log.Fatalf("failed to listen: %v", err)
	}
	go func() {
		logger.Info("start gRPC server on " + cfg.GRPC.Addr)
		if err := grpcServer.Serve(grpcListener); err != nil {
			logger.Error("grpc server failed to serve", zap.Error(err))
		}
	}()

	if common.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	router.Use(cors.New(corsConfig(cfg.HTTP.CORSOrigins)))

	rs := &vesselHttp.RestfulServer{
		Server:           router,
		Vessel:           vesselCore,
		Engine:           sched,
		Broadcaster:      broadcaster,
		Reports:          report.NewRegistry(time.Local),
		RateLimiterStore: vessel.NewRateLimiterStore(rate.Limit(cfg.Limiter.Rate), cfg.Limiter.Burst),
	}
	rs.Setup()
	logger.Info("http server created with:", zap.String("default_limiter", limiterInfo))

	httpServer := &http.Server{
		Addr:    cfg.HTTP.Addr,
		Handler: rs.Server,
	}
	go func() {
		logger.Info("Starting HTTP server on: " + cfg.HTTP.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed to serve", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	// ends SSE and watch streams so both servers can drain
	broadcaster.Close()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown failed", zap.Error(err))
	}
	healthServer.SetServingStatus(vesselGrpc.ResourceServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
	grpcServer.GracefulStop()

	if err := sched.Shutdown(shutdownCtx); err != nil {
		logger.Error("scheduler shutdown failed", zap.Error(err))
	}
	dispatcher.Wait()

	logger.Info("Shutdown complete")
}

func newDispatcher(cfg *config.Config, v *vessel.Vessel) (*notify.Dispatcher, error) {
	opts := []notify.DispatcherOption{notify.WithTimeout(cfg.Notify.Timeout)}

	if cfg.Notify.Template != "" {
		tpl, err := notify.NewTemplate(cfg.Notify.Template)
		if err != nil {
			return nil, err
		}
		opts = append(opts, notify.WithTemplate(tpl))
	}
	if cfg.Notify.Email.Endpoint != "" {
		opts = append(opts, notify.WithEmailSender(notify.NewHTTPGateway(gatewayConfig(cfg.Notify.Email))))
	}
	if cfg.Notify.SMS.Endpoint != "" {
		opts = append(opts, notify.WithSMSSender(notify.NewHTTPGateway(gatewayConfig(cfg.Notify.SMS))))
	}

	return notify.NewDispatcher(v.Threshold, v.Lifecycle, opts...)
}

func gatewayConfig(c config.GatewayConfig) notify.GatewayConfig {
	return notify.GatewayConfig{
		Endpoint:   c.Endpoint,
		Token:      c.Token,
		Timeout:    c.Timeout,
		MaxRetries: c.MaxRetries,
		RetryWait:  c.RetryWait,
	}
}

func corsConfig(origins []string) cors.Config {
	c := cors.DefaultConfig()
	c.AllowHeaders = append(c.AllowHeaders, vesselHttp.HeaderActorID)
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = origins
	}
	return c
}
