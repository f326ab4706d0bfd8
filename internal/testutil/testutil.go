// Package testutil provides test utilities and helpers.
package testutil

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"aliados/internal/dataset"
	"aliados/internal/db"
	"aliados/internal/engine"
	"aliados/internal/intent"
	"aliados/internal/logger"
	"aliados/internal/models"
	"aliados/internal/partners"
	"aliados/internal/period"
	"aliados/internal/report"
)

// TestDB creates a test database connection and returns a cleanup function.
// The test is skipped when TEST_DATABASE_URL is not set.
func TestDB(t *testing.T) (*db.DB, func()) {
	t.Helper()

	connString := os.Getenv("TEST_DATABASE_URL")
	if connString == "" {
		t.Skip("Skipping integration test: TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	database, err := db.New(ctx, connString)
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}

	// Run migrations
	if err := database.RunMigrations(connString); err != nil {
		database.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	cleanupTestData(ctx, database.Pool)
	cleanup := func() {
		cleanupTestData(ctx, database.Pool)
		database.Close()
	}

	return database, cleanup
}

// cleanupTestData removes all test data from the database.
func cleanupTestData(ctx context.Context, pool *pgxpool.Pool) {
	pool.Exec(ctx, "DELETE FROM intent_stats")
	pool.Exec(ctx, "DELETE FROM users")
}

// HashPassword returns a low-cost bcrypt hash for fixtures.
func HashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	return string(hash)
}

// CreateTestUser creates a test user and returns it.
func CreateTestUser(t *testing.T, database *db.DB, username, password, role, homePartner string) *models.User {
	t.Helper()

	user := &models.User{
		Username:     username,
		PasswordHash: HashPassword(t, password),
		Role:         role,
		HomePartner:  homePartner,
	}
	if err := database.UpsertUser(context.Background(), user); err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// SampleActivity is a small activity table. CLARO rolls up every label
// below; ATENTO owns the first and COS the last two.
func SampleActivity() []dataset.Record {
	return []dataset.Record{
		{CampaignLabel: "ATENTO SWAT BOGOTÁ", Period: "2025-01", Units: 100, Revenue: 5000},
		{CampaignLabel: "COS WHATSAPP", Period: "2025-01", Units: 40, Revenue: 400},
		{CampaignLabel: "COS WHATSAPP", Period: "2025-02", Units: 60, Revenue: 600},
	}
}

// SampleGoals holds goals for ATENTO in January 2025 only.
func SampleGoals() []dataset.Record {
	return []dataset.Record{
		{CampaignLabel: "ATENTO SWAT BOGOTÁ", Period: "2025-01", Units: 150, Revenue: 6000},
	}
}

// NewEngine builds a keyword-classifying engine over the sample tables.
func NewEngine(t *testing.T) *engine.Engine {
	t.Helper()

	res, err := period.NewResolver([]int{2024, 2025})
	if err != nil {
		t.Fatalf("failed to create resolver: %v", err)
	}
	dir := partners.Default()
	e, err := engine.New(engine.Options{
		Classifier: intent.NewKeywordClassifier(intent.DefaultTable()),
		Directory:  dir,
		Reports: report.NewGenerator(report.Config{
			Directory: dir,
			Resolver:  res,
			Activity:  dataset.New(dataset.Activity, SampleActivity()),
			Goals:     dataset.New(dataset.Goal, SampleGoals()),
		}),
		Formatter: report.NewFormatter("S/"),
		Logger:    logger.NewNoOpLogger(),
	})
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}
	return e
}
