package store

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	ferrors "github.com/ferremas/backend/internal/errors"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const skipIntegrationTests = "FERREMAS_SKIP_INTEGRATION_TESTS"

// PgStoreSuite is a test suite for the PostgreSQL store implementation.
type PgStoreSuite struct {
	suite.Suite
	pgContainer *postgres.PostgresContainer
	dbPool      *pgxpool.Pool
	store       *PgStore
	logger      *slog.Logger
	ctx         context.Context
}

// SetupSuite starts a PostgreSQL container and applies the migrations.
func (s *PgStoreSuite) SetupSuite() {
	s.ctx = context.Background()
	var err error
	s.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))

	dbName := "ferremas_db"
	dbUser := "user"
	dbPassword := "password"

	// 1. Start a PostgreSQL container. Wait for the container to be ready.
	s.pgContainer, err = postgres.Run(s.ctx,
		"postgres:17.5-alpine",
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPassword),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Minute),
		),
		testcontainers.WithWaitStrategy(
			wait.ForListeningPort("5432/tcp"),
		),
	)
	require.NoError(s.T(), err, "Failed to run PostgreSQL container")

	// 2. Get the connection string from the container
	connStr, err := s.pgContainer.ConnectionString(s.ctx, "sslmode=disable")
	require.NoError(s.T(), err, "Failed to get connection string from container")

	// 3. Create a new pgxpool instance using the connection string
	s.dbPool, err = pgxpool.New(s.ctx, connStr)
	require.NoError(s.T(), err, "Failed to create pgxpool")

	for i := range 10 {
		s.logger.Info("Pinging PostgreSQL database", "attempt", i+1)
		err = s.dbPool.Ping(s.ctx)
		if err == nil {
			break
		}
		time.Sleep(time.Second * 2)
	}
	require.NoError(s.T(), err, "Failed to connect to PostgreSQL after retries")

	// 4. Database migration
	wd, _ := os.Getwd()
	migrationsPath := filepath.Join(wd, "../../migrations")
	sourceURL := "file://" + migrationsPath
	m, err := migrate.New(sourceURL, connStr)
	require.NoError(s.T(), err, "Failed to create migrate instance")
	err = m.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		_, _ = m.Close()
		require.NoError(s.T(), err, "Failed to apply migrations")
	}

	s.store = NewPgStore(s.dbPool)
}

// TearDownSuite closes the pool and terminates the container.
func (s *PgStoreSuite) TearDownSuite() {
	if s.dbPool != nil {
		s.dbPool.Close()
	}
	if s.pgContainer != nil {
		require.NoError(s.T(), s.pgContainer.Terminate(s.ctx), "Failed to terminate PostgreSQL container")
	}
}

// SetupTest truncates the tables so every test starts from a clean state.
func (s *PgStoreSuite) SetupTest() {
	_, err := s.dbPool.Exec(s.ctx, "TRUNCATE TABLE price_history, contacts, products RESTART IDENTITY CASCADE")
	require.NoError(s.T(), err, "Failed to truncate tables")
}

func (s *PgStoreSuite) createProduct(code string) *Product {
	p, err := s.store.CreateProduct(s.ctx, CreateProductParams{
		Code: code, Name: "Hammer", Brand: "B", Model: "M", Stock: 10,
	})
	require.NoError(s.T(), err)
	return p
}

func (s *PgStoreSuite) TestCreateAndFindByCode() {
	created := s.createProduct("P1")
	assert.NotZero(s.T(), created.ID)

	found, err := s.store.FindByCode(s.ctx, "P1")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), created, found)

	byID, err := s.store.FindByID(s.ctx, created.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), created, byID)
}

func (s *PgStoreSuite) TestFindByCodeNotFound() {
	_, err := s.store.FindByCode(s.ctx, "UNKNOWN")
	assert.ErrorIs(s.T(), err, ferrors.ErrProductNotFound)
}

func (s *PgStoreSuite) TestUniqueConstraintOnCode() {
	s.createProduct("P1")

	_, err := s.store.CreateProduct(s.ctx, CreateProductParams{Code: "P1", Name: "Other"})
	assert.ErrorIs(s.T(), err, ferrors.ErrProductCodeExists)

	list, err := s.store.FindAll(s.ctx, 0, 100)
	require.NoError(s.T(), err)
	assert.Len(s.T(), list, 1)
}

func (s *PgStoreSuite) TestFindAllPagination() {
	codes := []string{"A", "B", "C", "D", "E"}
	for _, c := range codes {
		s.createProduct(c)
	}

	var seen []string
	for skip := int32(0); ; skip += 2 {
		page, err := s.store.FindAll(s.ctx, skip, 2)
		require.NoError(s.T(), err)
		assert.LessOrEqual(s.T(), len(page), 2)
		if len(page) == 0 {
			break
		}
		for _, p := range page {
			seen = append(seen, p.Code)
		}
	}
	assert.Equal(s.T(), codes, seen)
}

func (s *PgStoreSuite) TestUpdateReplacesAllFields() {
	s.createProduct("P1")

	updated, err := s.store.Update(s.ctx, "P1", UpdateProductParams{
		Code: "P1", Name: "Hammer XL", Brand: "", Model: "", Stock: 0,
	})
	require.NoError(s.T(), err)
	// supplying a field resets it, even to a default-equivalent value
	assert.Equal(s.T(), "", updated.Brand)
	assert.Equal(s.T(), int32(0), updated.Stock)
	assert.Equal(s.T(), "Hammer XL", updated.Name)
}

func (s *PgStoreSuite) TestUpdateRenameConflict() {
	s.createProduct("P1")
	s.createProduct("P2")

	_, err := s.store.Update(s.ctx, "P1", UpdateProductParams{Code: "P2", Name: "Hammer"})
	assert.ErrorIs(s.T(), err, ferrors.ErrProductCodeExists)
}

func (s *PgStoreSuite) TestUpdateNotFound() {
	_, err := s.store.Update(s.ctx, "UNKNOWN", UpdateProductParams{Code: "UNKNOWN", Name: "Nope"})
	assert.ErrorIs(s.T(), err, ferrors.ErrProductNotFound)
}

func (s *PgStoreSuite) TestDeleteCascadesToPriceHistory() {
	p := s.createProduct("P1")
	_, err := s.store.Append(s.ctx, AppendPriceParams{ProductID: p.ID, Price: 9900.0})
	require.NoError(s.T(), err)

	deleted, err := s.store.DeleteByCode(s.ctx, "P1")
	require.NoError(s.T(), err)
	assert.True(s.T(), deleted)

	history, err := s.store.ListByProduct(s.ctx, p.ID)
	require.NoError(s.T(), err)
	assert.Empty(s.T(), history)

	deleted, err = s.store.DeleteByCode(s.ctx, "P1")
	require.NoError(s.T(), err)
	assert.False(s.T(), deleted)
}

func (s *PgStoreSuite) TestAppendForeignKeyViolation() {
	_, err := s.store.Append(s.ctx, AppendPriceParams{ProductID: 9999, Price: 100})
	assert.ErrorIs(s.T(), err, ferrors.ErrProductNotFound)

	history, err := s.store.ListByProduct(s.ctx, 9999)
	require.NoError(s.T(), err)
	assert.Empty(s.T(), history)
}

func (s *PgStoreSuite) TestAppendKeepsExactPriceAndOrder() {
	p := s.createProduct("P1")
	ts := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	for _, price := range []float64{9900.0, 10500.5, 9999.99} {
		_, err := s.store.Append(s.ctx, AppendPriceParams{ProductID: p.ID, Price: price, Timestamp: ts})
		require.NoError(s.T(), err)
	}

	history, err := s.store.ListByProduct(s.ctx, p.ID)
	require.NoError(s.T(), err)
	require.Len(s.T(), history, 3)
	assert.Equal(s.T(), 9900.0, history[0].Price)
	assert.Equal(s.T(), 10500.5, history[1].Price)
	assert.Equal(s.T(), 9999.99, history[2].Price)
	assert.True(s.T(), history[0].Timestamp.Equal(ts))
}

func (s *PgStoreSuite) TestCreateContact() {
	contact, err := s.store.CreateContact(s.ctx, CreateContactParams{
		Name: "Ada", Email: "a@b.com", Message: "Hello",
	})
	require.NoError(s.T(), err)
	assert.NotZero(s.T(), contact.ID)
	assert.Equal(s.T(), "a@b.com", contact.Email)
}

func TestPgStoreSuite(t *testing.T) {
	if os.Getenv(skipIntegrationTests) != "" {
		t.Skipf("Skipping integration tests because %s is set", skipIntegrationTests)
	}
	suite.Run(t, new(PgStoreSuite))
}
