// Package container wires the application together with samber/do.
// Each Package function provides one concern; binaries compose the
// packages they need.
package container

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // database/sql driver for goose
	"github.com/jaevor/go-nanoid"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"go.uber.org/zap"

	"github.com/mlazarev/redirector/internal/apierror"
	"github.com/mlazarev/redirector/internal/auth"
	"github.com/mlazarev/redirector/internal/cache"
	"github.com/mlazarev/redirector/internal/events"
	"github.com/mlazarev/redirector/internal/handlers"
	"github.com/mlazarev/redirector/internal/messaging"
	"github.com/mlazarev/redirector/internal/middleware"
	"github.com/mlazarev/redirector/internal/migrations"
	"github.com/mlazarev/redirector/internal/store"
)

const (
	apiTitle   = "Redirect Manager"
	apiVersion = "1.0.0"

	consumerGroupName = "redirector-worker"
	opaqueTokenLength = 32
)

// Options is the process configuration, settable by flag or
// environment variable.
type Options struct {
	Port int `default:"8000" help:"Port to listen on" short:"p"`

	DBHost     string `default:"localhost"  help:"PostgreSQL host"`
	DBPort     int    `default:"5432"       help:"PostgreSQL port"`
	DBUser     string `default:"redirector" help:"PostgreSQL user"`
	DBPassword string `default:"redirector" help:"PostgreSQL password"`
	DBName     string `default:"redirector" help:"PostgreSQL database name"`
	TestDBName string `default:"redirector_test" help:"Database used by integration tests"`

	RedisAddr  string `default:"localhost:6379" help:"Redis address for the response cache and token store" short:"r"`
	BrokerAddr string `default:"localhost:6379" help:"Redis address for the message broker"`

	JWTSecret string `default:"" help:"Secret for signing access tokens"`

	Origin string `default:"http://localhost:3000" help:"Allowed CORS origin"`

	CacheTTLSeconds       int `default:"60"   help:"Response cache TTL in seconds"`
	AccessTokenTTLMinutes int `default:"60"   help:"Access token lifetime in minutes"`
	TokenTTLSeconds       int `default:"3600" help:"Verification/reset token lifetime in seconds"`

	Debug bool `default:"false" help:"Enable debug logging and SQL echo"`
}

// DatabaseURL composes the pgx connection string from the parts.
func (o *Options) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s",
		o.DBUser, o.DBPassword, o.DBHost, o.DBPort, o.DBName)
}

// LoggerPackage provides the zap logger.
func LoggerPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*zap.Logger, error) {
		options := do.MustInvoke[*Options](i)

		if options.Debug {
			return zap.NewDevelopment()
		}

		return zap.NewProduction()
	})
}

// postgresService owns the connection pool lifecycle so that
// injector.Shutdown() closes the pool with the rest of the services.
type postgresService struct {
	pool *pgxpool.Pool
}

func (s *postgresService) Shutdown() error {
	s.pool.Close()

	return nil
}

// PostgresPackage applies migrations and provides the connection
// pool. The pool is closed on injector shutdown.
func PostgresPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*postgresService, error) {
		options := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)

		if err := migrate(options.DatabaseURL()); err != nil {
			return nil, fmt.Errorf("applying migrations: %w", err)
		}

		logger.Info("migrations applied", zap.String("database", options.DBName))

		pool, err := pgxpool.New(context.Background(), options.DatabaseURL())
		if err != nil {
			return nil, err
		}

		return &postgresService{pool: pool}, nil
	})
	do.Provide(injector, func(i *do.Injector) (*pgxpool.Pool, error) {
		return do.MustInvoke[*postgresService](i).pool, nil
	})
}

func migrate(databaseURL string) error {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	goose.SetBaseFS(migrations.FS)

	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	return goose.Up(db, ".")
}

// redisService owns the Redis client lifecycle so that
// injector.Shutdown() closes the connection with the rest of the
// services.
type redisService struct {
	client *redis.Client
}

func (s *redisService) Shutdown() error {
	return s.client.Close()
}

// RedisPackage provides the Redis client backing the response cache
// and the token store. The client is closed on injector shutdown.
func RedisPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*redisService, error) {
		options := do.MustInvoke[*Options](i)

		return &redisService{
			client: redis.NewClient(&redis.Options{Addr: options.RedisAddr}),
		}, nil
	})
	do.Provide(injector, func(i *do.Injector) (*redis.Client, error) {
		return do.MustInvoke[*redisService](i).client, nil
	})
}

// RepositoryPackage provides the Postgres repositories and the token
// store.
func RepositoryPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*store.RedirectRepository, error) {
		return store.NewRedirectRepository(do.MustInvoke[*pgxpool.Pool](i)), nil
	})
	do.Provide(injector, func(i *do.Injector) (*store.UserRepository, error) {
		return store.NewUserRepository(do.MustInvoke[*pgxpool.Pool](i)), nil
	})
	do.Provide(injector, func(i *do.Injector) (*store.RedisTokenStore, error) {
		return store.NewRedisTokenStore(do.MustInvoke[*redis.Client](i)), nil
	})
}

// PublisherGroupPackage provides the broker publisher.
func PublisherGroupPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*messaging.PublisherGroup, error) {
		options := do.MustInvoke[*Options](i)

		publisher, err := redisstream.NewPublisher(
			redisstream.PublisherConfig{
				Client: redis.NewClient(&redis.Options{Addr: options.BrokerAddr}),
			},
			watermill.NewStdLogger(options.Debug, false),
		)
		if err != nil {
			return nil, err
		}

		return messaging.NewPublisherGroup(publisher), nil
	})
}

// AuthPackage provides the auth service and handler.
func AuthPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*auth.Service, error) {
		options := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)
		users := do.MustInvoke[*store.UserRepository](i)
		tokens := do.MustInvoke[*store.RedisTokenStore](i)
		publishers := do.MustInvoke[*messaging.PublisherGroup](i)

		newToken, err := nanoid.Standard(opaqueTokenLength)
		if err != nil {
			return nil, err
		}

		return auth.NewService(
			users,
			tokens,
			[]byte(options.JWTSecret),
			time.Duration(options.AccessTokenTTLMinutes)*time.Minute,
			time.Duration(options.TokenTTLSeconds)*time.Second,
			newToken,
			messaging.NewPublishFunc[events.UserRegistered](publishers.Publisher(), events.TopicUserRegistered),
			messaging.NewPublishFunc[events.VerifyRequested](publishers.Publisher(), events.TopicVerifyRequested),
			messaging.NewPublishFunc[events.ResetRequested](publishers.Publisher(), events.TopicResetRequested),
			logger,
		), nil
	})
	do.Provide(injector, func(i *do.Injector) (*auth.Handler, error) {
		return auth.NewHandler(do.MustInvoke[*auth.Service](i)), nil
	})
}

// HTTPPackage provides the router and the API with every route and
// middleware registered.
func HTTPPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*chi.Mux, error) {
		options := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)
		redisClient := do.MustInvoke[*redis.Client](i)

		router := chi.NewMux()
		router.Use(middleware.Recover(logger))
		router.Use(middleware.Logging(logger))
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{options.Origin},
			AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Authorization", "Content-Type"},
			AllowCredentials: true,
		}))
		router.Use(cache.Middleware(
			redisClient,
			time.Duration(options.CacheTTLSeconds)*time.Second,
			cacheableRequest,
			logger,
		))

		return router, nil
	})
	do.Provide(injector, func(i *do.Injector) (huma.API, error) {
		logger := do.MustInvoke[*zap.Logger](i)
		router := do.MustInvoke[*chi.Mux](i)
		pool := do.MustInvoke[*pgxpool.Pool](i)
		redisClient := do.MustInvoke[*redis.Client](i)
		redirects := do.MustInvoke[*store.RedirectRepository](i)
		authService := do.MustInvoke[*auth.Service](i)
		authHandler := do.MustInvoke[*auth.Handler](i)

		apierror.Install(logger)

		api := humachi.New(router, huma.DefaultConfig(apiTitle, apiVersion))
		api.UseMiddleware(middleware.RequestMetaMiddleware())
		api.UseMiddleware(auth.NewMiddleware(authService))

		handlers.RegisterRoutes(api,
			handlers.NewRedirectHandler(redirects, logger),
			handlers.NewHealthHandler(pool, handlers.RedisPinger{Client: redisClient}),
		)
		auth.RegisterRoutes(api, authHandler)

		return api, nil
	})
}

// ConsumerGroupPackage provides the worker's consumer group with all
// user-event consumers registered.
func ConsumerGroupPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*messaging.ConsumerGroup, error) {
		options := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)

		subscriber, err := redisstream.NewSubscriber(
			redisstream.SubscriberConfig{
				Client:        redis.NewClient(&redis.Options{Addr: options.BrokerAddr}),
				ConsumerGroup: consumerGroupName,
			},
			watermill.NewStdLogger(options.Debug, false),
		)
		if err != nil {
			return nil, err
		}

		group := messaging.NewConsumerGroup(subscriber, logger)
		group.Add(messaging.NewConsumer(subscriber, events.TopicUserRegistered,
			events.NewUserRegisteredHandler(logger), logger))
		group.Add(messaging.NewConsumer(subscriber, events.TopicVerifyRequested,
			events.NewVerifyRequestedHandler(logger), logger))
		group.Add(messaging.NewConsumer(subscriber, events.TopicResetRequested,
			events.NewResetRequestedHandler(logger), logger))

		return group, nil
	})
}

// cacheableRequest marks the read endpoints of the redirect resource
// as cacheable.
func cacheableRequest(r *http.Request) bool {
	if r.Method != http.MethodGet {
		return false
	}

	path := r.URL.Path

	return path == handlers.APIPrefix+"/urls" ||
		strings.HasPrefix(path, handlers.APIPrefix+"/urls/")
}
