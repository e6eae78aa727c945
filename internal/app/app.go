package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/alimikegami/point-of-sales/storefront-service/config"
	"github.com/alimikegami/point-of-sales/storefront-service/internal/controller"
	circuitbreaker "github.com/alimikegami/point-of-sales/storefront-service/internal/infrastructure/circuit-breaker"
	"github.com/alimikegami/point-of-sales/storefront-service/internal/infrastructure/database/postgres"
	"github.com/alimikegami/point-of-sales/storefront-service/internal/infrastructure/message-queue/kafka"
	paymentgateway "github.com/alimikegami/point-of-sales/storefront-service/internal/infrastructure/payment-gateway"
	posgateway "github.com/alimikegami/point-of-sales/storefront-service/internal/infrastructure/pos-gateway"
	"github.com/alimikegami/point-of-sales/storefront-service/internal/infrastructure/tracing"
	localmiddleware "github.com/alimikegami/point-of-sales/storefront-service/internal/middleware"
	"github.com/alimikegami/point-of-sales/storefront-service/internal/repository"
	"github.com/alimikegami/point-of-sales/storefront-service/internal/service"
	"github.com/alimikegami/point-of-sales/storefront-service/pkg/errs"
	"github.com/alimikegami/point-of-sales/storefront-service/pkg/httpclient"
	"github.com/alimikegami/point-of-sales/storefront-service/pkg/response"
	"github.com/go-co-op/gocron/v2"
	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/trace"
)

type App struct {
	Config     *config.Config
	DB         *sqlx.DB
	Server     *echo.Echo
	Repository repository.OrderRepository
	Service    service.OrderService
	// Registerer receives the service metrics. Defaults to the global registry.
	Registerer prometheus.Registerer

	metricsServer  *echo.Echo
	scheduler      gocron.Scheduler
	tracerProvider *trace.TracerProvider
	publisher      *kafka.Publisher
}

// Setup wires every dependency and registers the routes without listening.
func (app *App) Setup() error {
	if app.Registerer == nil {
		app.Registerer = prometheus.DefaultRegisterer
	}

	traceProvider, err := tracing.InitTracing(app.Config.TracingConfig.CollectorHost, app.Config.ServiceName)
	if err != nil {
		log.Error().Err(err).Str("component", "Setup").Msg("Failed to initialize tracing")
	}
	app.tracerProvider = traceProvider
	tracer := otel.Tracer(app.Config.ServiceName)

	if app.Repository == nil {
		repo, err := app.createRepository()
		if err != nil {
			return err
		}
		app.Repository = repo
	}

	cb := circuitbreaker.CreateCircuitBreaker("moka", 30*time.Second)
	mokaClient := posgateway.CreateMokaClient(app.Config, httpclient.NewClient(), cb)
	midtransClient := paymentgateway.CreateMidtransClient(app.Config)
	metrics := service.CreateMetrics(app.Registerer)

	app.Service = service.CreateOrderService(app.Repository, mokaClient, midtransClient, app.createPublisher(), metrics, app.Config)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(localmiddleware.Tracing(tracer))
	// Used empty string so that metrics are not prefixed with the service name making it easier to aggregate across services
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "",
		Registerer: app.Registerer,
	}))
	e.Use(localmiddleware.Logger)

	g := e.Group("/api/v1")
	g.GET("/ping", func(c echo.Context) error {
		return response.WriteSuccessResponse(c, "Hello, World!", nil)
	})

	controller.CreateOrderController(g, app.Service, app.isLoggedIn())

	app.Server = e

	return nil
}

func (app *App) createRepository() (repository.OrderRepository, error) {
	if app.Config.OrderStore != config.OrderStorePostgres {
		log.Info().Str("component", "Setup").Msg("using in-memory order store")
		return repository.CreateOrderMemoryRepository(), nil
	}

	if app.DB == nil {
		db, err := postgres.GetDBInstance(app.Config.PostgreSQLConfig)
		if err != nil {
			return nil, fmt.Errorf("connecting to postgres: %w", err)
		}
		app.DB = db
	}

	if err := postgres.Migrate(context.Background(), app.DB); err != nil {
		return nil, err
	}

	return repository.CreateOrderRepository(app.DB), nil
}

func (app *App) createPublisher() service.EventPublisher {
	if app.Config.KafkaConfig.BrokerAddress == "" {
		return service.CreateLogEventPublisher()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	conn, err := kafka.CreateKafkaProducer(ctx, app.Config)
	if err != nil {
		log.Error().Err(err).Str("component", "Setup").Msg("falling back to log-only events")
		return service.CreateLogEventPublisher()
	}
	app.publisher = kafka.CreatePublisher(conn, app.Config)

	return app.publisher
}

func (app *App) isLoggedIn() echo.MiddlewareFunc {
	if app.Config.JWTSecret == "" {
		log.Warn().Str("component", "Setup").Msg("JWT_SECRET is not set, operator routes are disabled")
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error {
				return response.WriteErrorResponse(c, errs.ErrUnauthorized, nil)
			}
		}
	}

	return middleware.JWTWithConfig(middleware.JWTConfig{
		SigningKey: []byte(app.Config.JWTSecret),
		ErrorHandlerWithContext: func(err error, c echo.Context) error {
			return response.WriteErrorResponse(c, errs.ErrUnauthorized, nil)
		},
	})
}

// StartScheduler runs the background reconciliation jobs.
func (app *App) StartScheduler() error {
	conf := app.Config.SchedulerConfig
	if !conf.Enabled {
		return nil
	}

	s, err := gocron.NewScheduler()
	if err != nil {
		return err
	}

	jobs := []struct {
		name     string
		interval time.Duration
		task     func(ctx context.Context)
	}{
		{"sync-pending-payments", conf.SyncInterval, app.Service.SyncPendingPayments},
		{"retry-pos-recording", conf.PosRetryInterval, app.Service.RetryPosRecording},
	}

	for _, job := range jobs {
		job := job
		_, err = s.NewJob(
			gocron.DurationJob(
				job.interval,
			),
			gocron.NewTask(func() {
				ctx, cancel := context.WithTimeout(context.Background(), job.interval)
				defer cancel()
				job.task(ctx)
			}),
			gocron.WithName(job.name),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			return fmt.Errorf("scheduling %s: %w", job.name, err)
		}
	}

	s.Start()
	app.scheduler = s

	return nil
}

func (app *App) Start() error {
	if err := app.Setup(); err != nil {
		return err
	}

	if err := app.StartScheduler(); err != nil {
		return err
	}

	app.metricsServer = echo.New()
	app.metricsServer.HideBanner = true
	app.metricsServer.GET("/metrics", echoprometheus.NewHandler())
	go func() {
		if err := app.metricsServer.Start(fmt.Sprintf(":%s", app.Config.MetricsPort)); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start metrics server")
		}
	}()

	if err := app.Server.Start(fmt.Sprintf(":%s", app.Config.ServicePort)); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func (app *App) StopServer() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var errList []error
	if app.Server != nil {
		errList = append(errList, app.Server.Shutdown(ctx))
	}
	if app.metricsServer != nil {
		errList = append(errList, app.metricsServer.Shutdown(ctx))
	}
	if app.scheduler != nil {
		errList = append(errList, app.scheduler.Shutdown())
	}
	if app.tracerProvider != nil {
		errList = append(errList, app.tracerProvider.Shutdown(ctx))
	}
	if app.publisher != nil {
		errList = append(errList, app.publisher.Close())
	}
	if app.DB != nil {
		errList = append(errList, app.DB.Close())
	}

	return errors.Join(errList...)
}
