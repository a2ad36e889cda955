package services_test

import (
	"context"
	"testing"

	"warehouse/internal/models"
	"warehouse/internal/services"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLoggingInventory(t *testing.T) {
	ctx := context.Background()
	core, logs := observer.New(zapcore.DebugLevel)
	svc, _ := newInventory(t, nil)
	inventory := services.NewLoggingInventory(svc, zap.New(core))

	product, err := inventory.Create(ctx, seller, productInput("Laptop", 1))
	require.NoError(t, err)
	assert.Equal(t, 1, logs.FilterMessage("Entering Create").Len())
	assert.Equal(t, 1, logs.FilterMessage("Exiting Create").Len())

	_, err = inventory.Decrease(ctx, buyer, product.ID, models.PurchaseRequest{Quantity: 2})
	require.Error(t, err)

	rejected := logs.FilterMessage("Decrease rejected").All()
	require.Len(t, rejected, 1)
	assert.Equal(t, zapcore.InfoLevel, rejected[0].Level)
	fields := rejected[0].ContextMap()
	assert.Equal(t, "insufficient_stock", fields["kind"])
	assert.Equal(t, "Max quantity: 1", fields["reason"])
	assert.Equal(t, buyer.ID, fields["caller_id"])
}

func TestLoggingAuthenticator_NeverLogsSecrets(t *testing.T) {
	ctx := context.Background()
	core, logs := observer.New(zapcore.DebugLevel)
	mockRepo := new(MockUserRepository)
	authService, _ := newAuthService(t, mockRepo)
	authenticator := services.NewLoggingAuthenticator(authService, zap.New(core))

	mockRepo.On("GetByUsername", ctx, "user1").Return(nil, errors.New("connection refused"))

	_, err := authenticator.Authenticate(ctx, "user1", "Strong123")
	require.Error(t, err)

	failed := logs.FilterMessage("Authenticate failed").All()
	require.Len(t, failed, 1)
	assert.Equal(t, zapcore.ErrorLevel, failed[0].Level)

	for _, entry := range logs.All() {
		for key, value := range entry.ContextMap() {
			if s, ok := value.(string); ok {
				assert.NotContains(t, s, "Strong123", key)
			}
		}
	}
	mockRepo.AssertCalled(t, "GetByUsername", ctx, "user1")
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}
