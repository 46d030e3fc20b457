package beatmap

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"beatmap-manager/core/storage"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	service *Service
	handler *Handler
}

// NewFeature wires the beatmap feature: memory index, durable store,
// upstream catalogue and object storage for .osu files.
func NewFeature(db *gorm.DB, client storage.Client, bucket string, api Catalogue, cacheCfg CacheConfig, domain string, logger *zap.Logger) *Feature {
	cache := NewMemoryIndex(cacheCfg.TTL())
	store := NewSQLStore(db)
	resolver := NewResolver(cache, store, api, logger)
	files := NewFileManager(client, bucket, api, logger)
	svc := NewService(resolver, store, cache, files, domain, logger)
	h := NewHandler(svc)
	return &Feature{service: svc, handler: h}
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "beatmap"
}

// IsEnabled checks if the feature is enabled.
func (f *Feature) IsEnabled() bool {
	return true
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	f.handler.RegisterRoutes(app)
	return nil
}

// Service exposes the feature's service for other consumers (cli commands).
func (f *Feature) Service() *Service {
	return f.service
}
