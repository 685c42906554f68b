package container

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"library-backend/internal/config"
	"library-backend/internal/infrastructure/ai"
	infraCache "library-backend/internal/infrastructure/cache"
	"library-backend/internal/infrastructure/database"
	"library-backend/pkg/ratelimit"

	authorHandler "library-backend/internal/domains/author/handler"
	authorRepo "library-backend/internal/domains/author/repository"
	authorService "library-backend/internal/domains/author/service"
	bookHandler "library-backend/internal/domains/book/handler"
	bookRepo "library-backend/internal/domains/book/repository"
	bookService "library-backend/internal/domains/book/service"
	recommendHandler "library-backend/internal/domains/recommend/handler"
	recommendService "library-backend/internal/domains/recommend/service"
)

// ========================================
// CONTAINER STRUCT
// ========================================

// Container chứa TẤT CẢ dependencies của application
// Struct này là "root" của dependency graph
type Container struct {
	// ========================================
	// INFRASTRUCTURE LAYER
	// ========================================
	Config           *config.Config
	DB               *database.DB
	Redis            *infraCache.RedisClient // nil when REDIS_ADDR is empty
	AI               *ai.Client
	RecommendLimiter ratelimit.Limiter

	// ========================================
	// REPOSITORY LAYER (DATA ACCESS)
	// ========================================
	AuthorRepo authorRepo.RepositoryInterface
	BookRepo   bookRepo.RepositoryInterface

	// ========================================
	// SERVICE LAYER (BUSINESS LOGIC)
	// ========================================
	AuthorService    authorService.ServiceInterface
	BookService      bookService.ServiceInterface
	RecommendService recommendService.ServiceInterface

	// ========================================
	// HANDLER LAYER (HTTP)
	// ========================================
	AuthorHandler    *authorHandler.AuthorHandler
	BookHandler      *bookHandler.BookHandler
	RecommendHandler *recommendHandler.RecommendHandler

	stopSweeper context.CancelFunc
}

// NewContainer loads configuration from the environment and builds the graph.
func NewContainer() (*Container, error) {
	log.Info().Msg("🔧 Initializing DI Container...")

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	log.Info().Str("environment", cfg.App.Environment).Msg("✅ Config loaded")

	return New(context.Background(), cfg)
}

// New builds every layer for cfg: store, repositories, services, handlers.
func New(ctx context.Context, cfg *config.Config) (*Container, error) {
	c := &Container{Config: cfg}

	if err := c.initInfrastructure(ctx); err != nil {
		c.Cleanup()
		return nil, err
	}

	c.initRepositories()
	c.initServices()
	c.initHandlers()

	log.Info().Msg("🎉 DI Container initialized successfully")
	return c, nil
}

func (c *Container) initInfrastructure(ctx context.Context) error {
	cfg := c.Config

	connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	db, err := database.Open(connectCtx, database.DBConfig{
		URL:          cfg.Database.URL,
		MaxOpenConns: cfg.Database.MaxOpenConns,
		MaxIdleConns: cfg.Database.MaxIdleConns,
		ConnLifetime: cfg.Database.ConnLifetime,
		MaxRetries:   3,
		RetryDelay:   time.Second,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	c.DB = db

	if err := db.Migrate(connectCtx); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	log.Info().Str("dialect", string(db.Dialect)).Msg("✅ Database ready")

	c.AI = ai.NewClient(cfg.AI)
	if !c.AI.Configured() {
		log.Warn().Msg("⚠️  OPENAI_API_KEY not set, recommendations are disabled")
	}

	if cfg.Redis.Addr != "" {
		redis := infraCache.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err := redis.Connect(connectCtx); err != nil {
			// Non-critical: fall back to the in-process limiter.
			log.Warn().Err(err).Msg("⚠️  Redis connection failed, using in-memory rate limiting")
			_ = redis.Close()
		} else {
			c.Redis = redis
		}
	}

	limit, window := cfg.RateLimit.RecommendLimit, cfg.RateLimit.RecommendWindow
	if c.Redis != nil {
		c.RecommendLimiter = ratelimit.NewWindow("recommend", c.Redis, limit, window)
	} else {
		mem := ratelimit.NewMemory("recommend", limit, window)
		sweepCtx, stop := context.WithCancel(context.Background())
		c.stopSweeper = stop
		go mem.RunSweeper(sweepCtx, window)
		c.RecommendLimiter = mem
	}

	return nil
}

func (c *Container) initRepositories() {
	c.AuthorRepo = authorRepo.NewRepository(c.DB.Dialect)
	c.BookRepo = bookRepo.NewRepository(c.DB.Dialect)
}

func (c *Container) initServices() {
	c.AuthorService = authorService.NewAuthorService(c.DB.SQL, c.AuthorRepo, c.BookRepo)
	c.BookService = bookService.NewBookService(c.DB.SQL, c.BookRepo, c.AuthorRepo)
	c.RecommendService = recommendService.NewRecommendService(c.DB.SQL, c.BookRepo, c.AuthorRepo, c.AI)
}

func (c *Container) initHandlers() {
	c.AuthorHandler = authorHandler.NewAuthorHandler(c.AuthorService)
	c.BookHandler = bookHandler.NewBookHandler(c.BookService, c.AuthorService)
	c.RecommendHandler = recommendHandler.NewRecommendHandler(c.RecommendService)
}

// Cleanup releases every resource the container opened.
func (c *Container) Cleanup() {
	log.Info().Msg("🧹 Cleaning up container resources...")

	if c.stopSweeper != nil {
		c.stopSweeper()
	}

	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			log.Warn().Err(err).Msg("⚠️  Failed to close Redis")
		}
	}

	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			log.Warn().Err(err).Msg("⚠️  Failed to close database")
		} else {
			log.Info().Msg("✅ Database connections closed")
		}
	}
}
