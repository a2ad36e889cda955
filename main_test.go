package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"warehouse/internal/config"
	"warehouse/internal/database"
	"warehouse/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func testConfig() *config.Config {
	return &config.Config{
		AppPort: ":0",
		Database: config.DatabaseConfig{
			Driver: "sqlite",
			DSN:    "file:" + uuid.NewString() + "?mode=memory&cache=shared",
		},
		Token:  config.TokenConfig{Secret: "test_jwt_secret", Algorithm: "HS256", TTL: time.Hour},
		Hasher: config.HasherConfig{Cost: bcrypt.MinCost},
		Log:    config.LogConfig{Level: "info"},
	}
}

func setupDB(t *testing.T, cfg *config.Config) *gorm.DB {
	t.Helper()
	db, err := database.Open(cfg.Database, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func TestNewApp_Health(t *testing.T) {
	cfg := testConfig()
	db := setupDB(t, cfg)

	app, err := newApp(cfg, db, nil, zap.NewNop())
	require.NoError(t, err)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
	require.NoError(t, err)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "healthy", body["status"])
	assert.NotEmpty(t, body["time"])

	require.NoError(t, database.Close(db))
	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestNewApp_Routes(t *testing.T) {
	cfg := testConfig()
	db := setupDB(t, cfg)
	t.Cleanup(func() { _ = database.Close(db) })

	app, err := newApp(cfg, db, nil, zap.NewNop())
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/auth/sign-up",
		strings.NewReader(`{"username":"user1","email":"user1@example.com","category":"seller","password":"Strong123"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/products/"+uuid.NewString(), nil), -1)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/nowhere", nil), -1)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestNewApp_RejectsBadTokenConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Token.Secret = ""
	_, err := newApp(cfg, nil, nil, zap.NewNop())
	assert.Error(t, err)
}

func TestLogPurchase(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	handle := logPurchase(zap.New(core))

	err := handle(models.PurchaseEvent{ProductID: "p1", Quantity: 2, Remaining: 3, Price: models.MustPrice("9.5")})
	require.NoError(t, err)

	entries := logs.FilterMessage("Received purchase event").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "9.50", entries[0].ContextMap()["price"])
	assert.Equal(t, "p1", entries[0].ContextMap()["product_id"])
}
