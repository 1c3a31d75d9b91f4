package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/harentsoaR/docspot-api/internal/cache"
	"github.com/harentsoaR/docspot-api/internal/config"
	"github.com/harentsoaR/docspot-api/internal/events"
	"github.com/harentsoaR/docspot-api/internal/handlers"
	"github.com/harentsoaR/docspot-api/internal/logger"
	"github.com/harentsoaR/docspot-api/internal/mq"
	"github.com/harentsoaR/docspot-api/internal/obs"
	"github.com/harentsoaR/docspot-api/internal/services"
	"github.com/harentsoaR/docspot-api/internal/store"
	"github.com/harentsoaR/docspot-api/internal/store/memstore"
	"github.com/harentsoaR/docspot-api/internal/store/mongostore"
	"github.com/harentsoaR/docspot-api/internal/utils"
)

const serviceName = "docspot-api"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	lg, err := logger.New(cfg.IsDevelopment())
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = lg.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := obs.InitTracer(ctx, serviceName, cfg.OTLPEndpoint, cfg.Env)
	if err != nil {
		lg.Fatal("init tracer", zap.Error(err))
	}

	// --- Storage ---
	users, appointments, closeStore, err := openStore(ctx, cfg, lg)
	if err != nil {
		lg.Fatal("open store", zap.Error(err))
	}

	// --- Cache ---
	var doctorCache cache.Doctors = cache.Nop{}
	if cfg.RedisAddr != "" {
		rdb, err := cache.Connect(ctx, &redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}, 5, time.Second)
		if err != nil {
			lg.Warn("redis unavailable, doctor cache disabled", zap.Error(err))
		} else {
			defer func() { _ = rdb.Close() }()
			doctorCache = cache.NewRedisDoctors(rdb, cfg.DoctorCacheTTL, lg)
			lg.Info("doctor cache enabled", zap.String("addr", cfg.RedisAddr))
		}
	}

	// --- Events ---
	var pub events.Publisher = events.LogPublisher{Log: lg}
	if cfg.RabbitURL != "" {
		p, err := mq.NewPublisher(cfg.RabbitURL, cfg.EventsExchange)
		if err != nil {
			lg.Warn("rabbitmq unavailable, events are only logged", zap.Error(err))
		} else {
			defer func() { _ = p.Close() }()
			pub = p
			lg.Info("publishing events", zap.String("exchange", cfg.EventsExchange))
		}
	}

	// --- Services ---
	hasher := utils.NewPasswordHasher(cfg.BcryptCost)
	tokens := utils.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL)
	h := handlers.NewHandler(
		services.NewAuthService(users, hasher, tokens, lg),
		services.NewDoctorService(users, doctorCache),
		services.NewAppointmentService(appointments, users, pub, lg),
		services.NewAdminService(users, doctorCache, pub, lg),
		services.NewProfileService(users, hasher, doctorCache),
	)

	router := handlers.NewRouter(h, handlers.RouterOptions{
		ServiceName: serviceName,
		CORSOrigins: cfg.CORSOrigins,
		Development: cfg.IsDevelopment(),
		Log:         lg,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		lg.Info("starting server", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Error("server stopped", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	lg.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		lg.Error("http shutdown", zap.Error(err))
	}
	if err := closeStore(shutdownCtx); err != nil {
		lg.Error("close store", zap.Error(err))
	}
	if err := shutdownTracer(shutdownCtx); err != nil {
		lg.Error("tracer shutdown", zap.Error(err))
	}
}

func openStore(ctx context.Context, cfg config.App, lg *zap.Logger) (store.Users, store.Appointments, func(context.Context) error, error) {
	if cfg.StoreDriver == "memory" {
		lg.Warn("using in-memory store, data is lost on restart")
		return memstore.NewUsers(), memstore.NewAppointments(), func(context.Context) error { return nil }, nil
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, nil, nil, err
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, nil, err
	}
	db := client.Database(cfg.MongoDatabase)
	if err := mongostore.EnsureIndexes(connectCtx, db); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, nil, err
	}
	lg.Info("connected to MongoDB", zap.String("database", cfg.MongoDatabase))
	return mongostore.NewUsers(db), mongostore.NewAppointments(db), client.Disconnect, nil
}
