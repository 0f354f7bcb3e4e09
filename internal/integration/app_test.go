package integration_test

import (
	"log/slog"
	"os"
	"time"

	"github.com/denizerden/table-reservation-system/internal/app"
	"github.com/denizerden/table-reservation-system/internal/booking"
	"github.com/denizerden/table-reservation-system/internal/mailer"
	"github.com/denizerden/table-reservation-system/internal/repository"
	"github.com/denizerden/table-reservation-system/internal/schedule"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

type TestApp struct {
	App    *app.Application
	DB     *pgxpool.Pool
	Redis  *redis.Client
	Mailer *mailer.MockMailer
}

func newTestApp(cfg app.Config) (*TestApp, error) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	mockMailer := mailer.NewMockMailer()

	location, err := time.LoadLocation(cfg.Booking.Timezone)
	if err != nil {
		return nil, err
	}

	hours, err := schedule.ParseWeekHours(cfg.Booking.OperatingHours)
	if err != nil {
		return nil, err
	}

	tableFee, err := decimal.NewFromString(cfg.Booking.TableFee)
	if err != nil {
		return nil, err
	}

	db, err := app.NewDatabasePool(cfg)
	if err != nil {
		return nil, err
	}

	redisClient, err := app.NewRedisClient(cfg)
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

	application := app.NewApp(
		cfg,
		logger,
		db,
		redisClient,
		mockMailer,
		app.NewSessionManager(redisClient),
		calendar,
		tableRepo,
		menuRepo,
		reservationRepo,
		paymentRepo,
		availability,
		lifecycle,
	)

	return &TestApp{
		App:    application,
		DB:     db,
		Redis:  redisClient,
		Mailer: mockMailer,
	}, nil
}

// bookableDate returns the next weekday at least two days out, so scenarios
// never collide with the skip-elapsed-slots rule or a closed Sunday.
func bookableDate() string {
	date := time.Now().AddDate(0, 0, 2)
	if date.Weekday() == time.Sunday {
		date = date.AddDate(0, 0, 1)
	}

	return date.Format("2006-01-02")
}

