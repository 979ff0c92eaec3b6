package ranking

import (
	"os"
	"sync"
	"testing"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/tierfolio/tierfolio-backend/internal/domain"
	"github.com/tierfolio/tierfolio-backend/internal/pkg/logger"
)

var (
	testDBOnce sync.Once
	testDB     *gorm.DB
	testDBErr  error
)

// openTestDB connects to the database named by TEST_POSTGRES_DSN and
// migrates the ranking schema. Tests isolate themselves by scoping every row
// under a fresh collection id, so no teardown is needed.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("set TEST_POSTGRES_DSN to run database integration tests")
	}
	testDBOnce.Do(func() {
		testDB, testDBErr = gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if testDBErr != nil {
			return
		}
		if testDBErr = testDB.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error; testDBErr != nil {
			return
		}
		testDBErr = testDB.AutoMigrate(
			&domain.Collection{},
			&domain.Item{},
			&domain.CustomRank{},
			&domain.ActivityEvent{},
		)
	})
	if testDBErr != nil {
		t.Fatalf("open test database: %v", testDBErr)
	}
	return testDB
}

func repoLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	return log
}
