package main

import (
	"database/sql"
	"os"
	"strconv"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"ProductExplorer/internal/browser"
	"ProductExplorer/internal/catalog"
	"ProductExplorer/internal/favorites"
	"ProductExplorer/pkg/kit"
)

func main() {
	_ = godotenv.Load()

	service := "browser"
	log := kit.NewLogger(service)
	defer func() { _ = log.Sync() }()

	port := getenv("PORT", "8080")

	reg := prometheus.NewRegistry()

	client := catalog.NewClient(getenv("CATALOG_URL", catalog.DefaultBaseURL), log, reg)
	if raw := os.Getenv("CATALOG_CACHE_TTL"); raw != "" {
		ttl, err := time.ParseDuration(raw)
		if err != nil {
			log.Fatal("bad CATALOG_CACHE_TTL", zap.String("value", raw), zap.Error(err))
		}
		client.TTL = ttl
	}

	s := &browser.Server{
		Catalog:   client,
		Favorites: buildFavoritesStore(log),
		Log:       log,
	}

	h := browser.NewHandler(s, browser.HTTPDeps{
		Log:            log,
		Service:        service,
		Registry:       reg,
		MetricsEnabled: true,
		MetricsToken:   os.Getenv("METRICS_TOKEN"),

		RateLimit:         getenvInt("RATE_LIMIT", 120),
		RateWindowSeconds: getenvInt("RATE_WINDOW_SECONDS", 60),
	})

	if err := kit.RunHTTPServer(":"+port, h, log); err != nil {
		log.Fatal("http server stopped", zap.Error(err))
	}
}

func buildFavoritesStore(log *zap.Logger) favorites.Store {
	if dsn := os.Getenv("FAVORITES_DSN"); dsn != "" {
		db, err := sql.Open("pgx", dsn)
		if err != nil {
			log.Fatal("open favorites db failed", zap.Error(err))
		}
		log.Info("favorites store: postgres")
		return favorites.NewPostgresStore(db)
	}

	path := getenv("FAVORITES_PATH", "product-favorites.json")
	log.Info("favorites store: file", zap.String("path", path))
	return favorites.NewFileStore(path, log)
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getenvInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
