package integration_test

import (
	"context"
	"log"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/denizerden/table-reservation-system/api"
	"github.com/denizerden/table-reservation-system/internal/app"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
)

const (
	dbName         = "table_reservation"
	dbUser         = "test_user"
	dbPassword     = "test_password"
	dbImageName    = "postgres:17-alpine"
	cacheImageName = "redis:7"
)

type BaseSuite struct {
	suite.Suite
	app            *TestApp
	dbContainer    *PostgresContainer
	cacheContainer *RedisContainer
	server         *httptest.Server
}

func (s *BaseSuite) SetupSuite() {
	ctx := context.Background()

	postgresContainer, err := getDbContainer(ctx)
	if err != nil {
		log.Printf("failed to start container: %s", err)
		return
	}

	redisContainer, err := getCacheContainer(ctx)
	if err != nil {
		log.Printf("failed to start container: %s", err)
		return
	}

	s.dbContainer = postgresContainer
	s.cacheContainer = redisContainer

	cfg := app.Config{
		Port: 3000,
		Env:  "test",
		DB: app.DBConfig{
			DSN:          postgresContainer.ConnectionString,
			MaxOpenConns: 25,
			MaxIdleTime:  2 * time.Minute,
		},
		Redis: app.RedisConfig{
			URL:          redisContainer.ConnectionString,
			MaxOpenConns: 10,
			MaxIdleConns: 10,
			MaxIdleTime:  2 * time.Minute,
		},
		Booking: app.BookingConfig{
			Timezone:       "UTC",
			OperatingHours: "default=11:00-23:00,Sun=closed",
			SlotDuration:   90 * time.Minute,
			LookAheadDays:  30,
			HoldTTL:        10 * time.Minute,
			TableFee:       "500",
			SweepInterval:  time.Minute,
		},
	}

	testApp, err := newTestApp(cfg)
	if err != nil {
		log.Printf("cannot initialize app: %s", err)
		return
	}

	s.app = testApp
	s.server = httptest.NewServer(testApp.App.Routes())
}

func (s *BaseSuite) TearDownSuite() {
	s.server.Close()
	if err := testcontainers.TerminateContainer(s.dbContainer.Container.Container); err != nil {
		log.Printf("failed to terminate container: %s", err)
	}
	if err := testcontainers.TerminateContainer(s.cacheContainer.Container); err != nil {
		log.Printf("failed to terminate container: %s", err)
	}
}

// client simulates one guest: a fresh cookie jar means a fresh session and
// with it a distinct lock owner.
func (s *BaseSuite) client() *http.Client {
	jar, err := newCookieJar()
	s.Require().NoError(err)

	return &http.Client{Jar: jar}
}

func (s *BaseSuite) createReservation(client *http.Client, req api.CreateReservationRequest) *http.Response {
	return doRequest(s.T(), client, http.MethodPost, s.server.URL+"/reservations", req)
}

// resetState clears reservation data and the lock keyspace between tests and
// reseeds the fixed table and menu fixtures.
func (s *BaseSuite) resetState() {
	ctx := context.Background()

	_, err := s.app.DB.Exec(ctx, `
		TRUNCATE payments, reservation_items, reservation_tables, reservations RESTART IDENTITY CASCADE;
		TRUNCATE restaurant_tables, menu_items RESTART IDENTITY CASCADE;
	`)
	s.Require().NoError(err)

	err = s.app.Redis.FlushAll(ctx).Err()
	s.Require().NoError(err)

	_, err = s.app.DB.Exec(ctx, `
		INSERT INTO restaurant_tables (id, capacity, active) VALUES
			(1, 2, TRUE),
			(2, 4, TRUE),
			(3, 4, TRUE),
			(4, 6, TRUE),
			(5, 8, FALSE);

		INSERT INTO menu_items (name, price, available) VALUES
			('Adana Kebab', 500, TRUE),
			('Ayran', 300, TRUE),
			('Kunefe', 400, FALSE);
	`)
	s.Require().NoError(err)
}
