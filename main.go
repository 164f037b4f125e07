package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.mongodb.org/mongo-driver/mongo/readpref"

	"storefront/internal/auth"
	"storefront/internal/cache"
	"storefront/internal/catalog"
	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/events"
	"storefront/internal/handlers"
	"storefront/internal/shop"
	"storefront/internal/store"
)

func main() {
	config.Load()
	cfg := config.AppEnv
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	var (
		st   *store.Store
		ping func(ctx context.Context) error
	)
	switch cfg.Store {
	case "memory":
		log.Println("[DB] [WARN] using in-memory store, data is lost on restart")
		st = store.NewMemory()
	default:
		client, db, err := database.Connect(cfg.MongoURI, cfg.DBName)
		if err != nil {
			log.Fatal(err)
		}
		defer client.Disconnect(context.Background())

		if err := database.EnsureIndexes(db); err != nil {
			log.Printf("[DB] [WARN] index warning: %v", err)
		}
		st = store.NewMongo(db)
		ping = func(ctx context.Context) error {
			return client.Ping(ctx, readpref.Primary())
		}
	}

	hub := events.NewHub()
	defer hub.Close()
	publishers := events.Multi{hub}

	if len(cfg.KafkaBrokers) > 0 {
		producer := events.NewKafka(cfg.KafkaBrokers, cfg.KafkaTopic, 256)
		producer.Start()
		defer producer.Close()
		publishers = append(publishers, producer)
		log.Printf("[EVENTS] [INFO] publishing to kafka topic %s", cfg.KafkaTopic)
	}

	opts := []shop.Option{shop.WithPublisher(publishers)}
	if cfg.RedisAddr != "" {
		rdb := cache.NewClient(cfg.RedisAddr)
		defer rdb.Close()
		opts = append(opts, shop.WithProductCache(cache.NewProducts(rdb, cfg.ProductCacheTTL)))
		log.Println("[CACHE] [INFO] product cache enabled at", cfg.RedisAddr)
	}
	svc := shop.New(st, opts...)

	seed, err := catalog.LoadSeed(cfg.TaxonomyFile)
	if err != nil {
		log.Fatal(err)
	}
	if _, err := svc.SeedCategories(context.Background(), seed); err != nil {
		log.Fatal(err)
	}

	authSvc := auth.NewService(st.Users, st.RefreshTokens, auth.Options{
		Secret:     cfg.JWTSecret,
		AccessTTL:  cfg.AccessTokenTTL,
		RefreshTTL: cfg.RefreshTokenTTL,
		AdminKey:   cfg.AdminKey,
	})

	r := handlers.NewRouter(handlers.Deps{
		Shop:        svc,
		Auth:        authSvc,
		Hub:         hub,
		Images:      handlers.ImageStore{Root: cfg.UploadDir},
		CORSOrigins: cfg.CORSOrigins,
		Ping:        ping,
	})

	ln, err := net.Listen("tcp", ":"+cfg.Port)
	if err != nil {
		log.Println("[HTTP] [ERROR]", err)
		return
	}
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	log.Println("[HTTP] [INFO] listening on :" + cfg.Port)
	if err := serve(&http.Server{Handler: r}, ln, quit, 10*time.Second); err != nil {
		log.Println("[HTTP] [ERROR]", err)
	}
}

// serve runs srv on ln until a signal arrives or the listener fails, then
// lets in-flight requests finish within grace.
func serve(srv *http.Server, ln net.Listener, quit <-chan os.Signal, grace time.Duration) error {
	serveErr := make(chan error, 1)
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case sig := <-quit:
		log.Printf("[HTTP] [INFO] %s received, shutting down", sig)
	case err := <-serveErr:
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	return srv.Shutdown(ctx)
}
