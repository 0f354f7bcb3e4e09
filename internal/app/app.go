package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexedwards/scs/goredisstore"
	"github.com/alexedwards/scs/v2"
	"github.com/denizerden/table-reservation-system/internal/booking"
	"github.com/denizerden/table-reservation-system/internal/domain"
	"github.com/denizerden/table-reservation-system/internal/mailer"
	"github.com/denizerden/table-reservation-system/internal/repository"
	"github.com/denizerden/table-reservation-system/internal/schedule"
	appvalidator "github.com/denizerden/table-reservation-system/internal/validator"
	"github.com/denizerden/table-reservation-system/internal/vcs"
	"github.com/exaring/otelpgx"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"github.com/riandyrn/otelchi"
	"github.com/shopspring/decimal"
)

var (
	version = vcs.Version()
)

type Application struct {
	config         Config
	logger         *slog.Logger
	db             *pgxpool.Pool
	redis          redis.UniversalClient
	validator      *validator.Validate
	mailer         mailer.Mailer
	sessionManager *scs.SessionManager
	calendar       *schedule.Calendar

	tableRepo       domain.TableRepository
	menuRepo        domain.MenuRepository
	reservationRepo domain.ReservationRepository
	paymentRepo     domain.PaymentRepository

	availability *booking.Availability
	lifecycle    *booking.Lifecycle
}

type Config struct {
	Port             int
	Env              string
	DB               DBConfig
	Redis            RedisConfig
	SMTP             SMTPConfig
	Booking          BookingConfig
	OtelCollectorUrl string
}

type DBConfig struct {
	DSN          string
	MaxOpenConns int
	MaxIdleTime  time.Duration
}

type RedisConfig struct {
	URL          string
	MaxOpenConns int
	MaxIdleConns int
	MaxIdleTime  time.Duration
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	Sender   string
}

type BookingConfig struct {
	Timezone       string
	OperatingHours string
	SlotDuration   time.Duration
	LookAheadDays  int
	HoldTTL        time.Duration
	TableFee       string
	SweepInterval  time.Duration
}

func Run() error {
	var cfg Config

	flag.IntVar(&cfg.Port, "port", 3000, "server port")
	flag.StringVar(&cfg.Env, "env", "dev", "Environment (dev|staging|prod)")

	flag.StringVar(&cfg.DB.DSN, "db-dsn", "", "PostgreSQL DSN")
	flag.IntVar(&cfg.DB.MaxOpenConns, "db-max-open-conns", 25, "PostgreSQL max open connections")
	flag.DurationVar(&cfg.DB.MaxIdleTime, "db-max-idle-time", 15*time.Minute, "PostgreSQL max idle time for connections")

	flag.StringVar(&cfg.Redis.URL, "redis-url", "", "Redis URL")
	flag.IntVar(&cfg.Redis.MaxOpenConns, "redis-max-open-conns", 25, "Redis max open connections")
	flag.IntVar(&cfg.Redis.MaxIdleConns, "redis-max-idle-conns", 10, "Redis max idle connections")
	flag.DurationVar(&cfg.Redis.MaxIdleTime, "redis-max-idle-time", 2*time.Minute, "Redis max idle time for connections")

	flag.StringVar(&cfg.SMTP.Host, "smtp-host", "sandbox.smtp.mailtrap.io", "SMTP host")
	flag.IntVar(&cfg.SMTP.Port, "smtp-port", 2525, "SMTP port")
	flag.StringVar(&cfg.SMTP.Username, "smtp-username", "", "SMTP username")
	flag.StringVar(&cfg.SMTP.Password, "smtp-password", "", "SMTP password")
	flag.StringVar(&cfg.SMTP.Sender, "smtp-sender", "Lokanta <no-reply@lokanta.denizerden.net>", "SMTP sender")

	flag.StringVar(&cfg.Booking.Timezone, "timezone", "Europe/Istanbul", "Restaurant local time zone")
	flag.StringVar(&cfg.Booking.OperatingHours, "operating-hours", "default=11:00-23:00", "Operating hours per weekday, e.g. default=11:00-23:00,Sun=closed")
	flag.DurationVar(&cfg.Booking.SlotDuration, "slot-duration", 90*time.Minute, "Reservation slot duration")
	flag.IntVar(&cfg.Booking.LookAheadDays, "look-ahead-days", 30, "How many days ahead reservations are accepted")
	flag.DurationVar(&cfg.Booking.HoldTTL, "hold-ttl", 10*time.Minute, "How long a pending reservation holds its tables")
	flag.StringVar(&cfg.Booking.TableFee, "table-fee", "500", "Flat reservation fee charged per table")
	flag.DurationVar(&cfg.Booking.SweepInterval, "sweep-interval", time.Minute, "How often expired holds are swept")

	flag.StringVar(&cfg.OtelCollectorUrl, "otel-collector-url", "", "OpenTelemetry collector URL")

	displayVersion := flag.Bool("version", false, "Display version and exit")

	flag.Parse()

	if *displayVersion {
		fmt.Printf("Version:\t%s\n", version)
		os.Exit(0)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	app, err := New(cfg, logger)
	if err != nil {
		return err
	}
	defer app.Close()

	shutdownTelemetry, err := app.InitTelemetry()
	if err != nil {
		return err
	}
	defer shutdownTelemetry(context.Background())

	return app.serve()
}

// New wires the full application from config: database and Redis pools,
// repositories, the slot calendar, and the booking engine on top of them.
func New(cfg Config, logger *slog.Logger) (*Application, error) {
	location, err := time.LoadLocation(cfg.Booking.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", cfg.Booking.Timezone, err)
	}

	hours, err := schedule.ParseWeekHours(cfg.Booking.OperatingHours)
	if err != nil {
		return nil, err
	}

	tableFee, err := decimal.NewFromString(cfg.Booking.TableFee)
	if err != nil {
		return nil, fmt.Errorf("invalid table fee %q: %w", cfg.Booking.TableFee, err)
	}

	db, err := NewDatabasePool(cfg)
	if err != nil {
		return nil, err
	}

	redisClient, err := NewRedisClient(cfg)
	if err != nil {
		db.Close()
		return nil, err
	}

	calendar := schedule.New(schedule.Config{
		Location:      location,
		SlotDuration:  cfg.Booking.SlotDuration,
		LookAheadDays: cfg.Booking.LookAheadDays,
		Hours:         hours,
	})

	tableRepo := repository.NewPostgresTableRepository(db)
	menuRepo := repository.NewPostgresMenuRepository(db)
	reservationRepo := repository.NewPostgresReservationRepository(db)
	paymentRepo := repository.NewPostgresPaymentRepository(db)

	locker := booking.NewRedisTableLocker(redisClient, cfg.Booking.HoldTTL)
	availability := booking.NewAvailability(tableRepo, reservationRepo)
	allocator := booking.NewAllocator(locker, reservationRepo, cfg.Booking.HoldTTL)
	lifecycle := booking.NewLifecycle(calendar, availability, allocator, locker, menuRepo, reservationRepo, tableFee)

	smtpMailer := mailer.NewSMTPMailer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.Sender)

	return NewApp(
		cfg,
		logger,
		db,
		redisClient,
		smtpMailer,
		NewSessionManager(redisClient),
		calendar,
		tableRepo,
		menuRepo,
		reservationRepo,
		paymentRepo,
		availability,
		lifecycle,
	), nil
}

// NewApp assembles an Application from already-constructed dependencies.
func NewApp(
	cfg Config,
	logger *slog.Logger,
	db *pgxpool.Pool,
	redisClient redis.UniversalClient,
	mailer mailer.Mailer,
	sessionManager *scs.SessionManager,
	calendar *schedule.Calendar,
	tableRepo domain.TableRepository,
	menuRepo domain.MenuRepository,
	reservationRepo domain.ReservationRepository,
	paymentRepo domain.PaymentRepository,
	availability *booking.Availability,
	lifecycle *booking.Lifecycle,
) *Application {
	return &Application{
		config:          cfg,
		logger:          logger,
		db:              db,
		redis:           redisClient,
		validator:       appvalidator.NewValidator(),
		mailer:          mailer,
		sessionManager:  sessionManager,
		calendar:        calendar,
		tableRepo:       tableRepo,
		menuRepo:        menuRepo,
		reservationRepo: reservationRepo,
		paymentRepo:     paymentRepo,
		availability:    availability,
		lifecycle:       lifecycle,
	}
}

func (app *Application) Close() {
	if app.redis != nil {
		app.redis.Close()
	}
	if app.db != nil {
		app.db.Close()
	}
}

func NewSessionManager(client *redis.Client) *scs.SessionManager {
	sessionManager := scs.New()

	sessionManager.Store = goredisstore.New(client)
	sessionManager.IdleTimeout = 20 * time.Minute
	sessionManager.Cookie.Name = "session_id"

	return sessionManager
}

func NewRedisClient(cfg Config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:            cfg.Redis.URL,
		MaxIdleConns:    cfg.Redis.MaxIdleConns,
		MaxActiveConns:  cfg.Redis.MaxOpenConns,
		ConnMaxIdleTime: cfg.Redis.MaxIdleTime,
	})

	if err := redisotel.InstrumentTracing(rdb); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err := rdb.Ping(ctx).Err()
	if err != nil {
		return nil, err
	}

	return rdb, nil
}

func NewDatabasePool(cfg Config) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(cfg.DB.DSN)
	if err != nil {
		return nil, err
	}

	config.MaxConnIdleTime = cfg.DB.MaxIdleTime
	config.MaxConns = int32(cfg.DB.MaxOpenConns)
	config.ConnConfig.Tracer = otelpgx.NewTracer()

	db, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err = db.Ping(ctx)
	if err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

func (app *Application) serve() error {
	srv := &http.Server{
		Addr:         fmt.Sprintf("0.0.0.0:%d", app.config.Port),
		Handler:      app.Routes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		ErrorLog:     slog.NewLogLogger(app.logger.Handler(), slog.LevelDebug),
	}

	sweepCtx, stopSweeper := context.WithCancel(context.Background())
	defer stopSweeper()

	go app.sweepExpiredHolds(sweepCtx)

	shutdownError := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		app.logger.Info("shutting down server", "signal", s.String())

		stopSweeper()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		err := srv.Shutdown(ctx)
		if err != nil {
			shutdownError <- err
		}

		shutdownError <- nil
	}()

	app.logger.Info("starting server", "addr", srv.Addr, "env", app.config.Env)

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdownError
	if err != nil {
		return err
	}

	app.logger.Info("stopped server", "addr", srv.Addr)

	return nil
}

func (app *Application) Routes() http.Handler {
	r := chi.NewRouter()

	r.NotFound(app.notFoundResponse)

	r.Use(middleware.Logger)
	r.Use(middleware.RequestID)
	r.Use(otelchi.Middleware("table-reservation-api", otelchi.WithChiRoutes(r)))
	r.Use(app.recoverPanic)
	r.Use(app.requestLogger)
	r.Use(app.sessionManager.LoadAndSave)
	r.Use(app.ensureGuestUserSession)

	r.Get("/health", app.GetHealth)

	r.Get("/availability", app.GetAvailabilityHandler)
	r.Get("/slots", app.GetSlotsHandler)

	r.Route("/reservations", func(r chi.Router) {
		r.Post("/", app.CreateReservationHandler)
		r.Get("/", app.ListReservationsHandler)
		r.Get("/{reservationId}", app.GetReservationHandler)
	})

	r.Post("/payments/notifications", app.PaymentNotificationHandler)

	r.Route("/admin/reservations/{reservationId}", func(r chi.Router) {
		r.Patch("/cancel", app.AdminCancelReservationHandler)
		r.Patch("/complete", app.AdminCompleteReservationHandler)
	})

	return r
}
