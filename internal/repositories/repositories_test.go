package repositories_test

import (
	"testing"

	"warehouse/internal/config"
	"warehouse/internal/database"
	"warehouse/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// setupTestDB opens a private in-memory SQLite database with the schema
// migrated.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open(config.DatabaseConfig{
		Driver: "sqlite",
		DSN:    "file:" + uuid.NewString() + "?mode=memory&cache=shared",
	}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	require.NoError(t, database.Migrate(db))
	return db
}

func newProduct(title, owner string, quantity int) *models.Product {
	return &models.Product{
		Title:    title,
		Price:    models.MustPrice("100.00"),
		Quantity: quantity,
		UserID:   owner,
	}
}
