package services

import (
	"context"
	"time"

	"warehouse/internal/apperrors"
	"warehouse/internal/models"

	"go.uber.org/zap"
)

// NewLoggingAuthenticator wraps next so that every call is logged. Secrets
// and tokens are never written.
func NewLoggingAuthenticator(next Authenticator, log *zap.Logger) Authenticator {
	return &loggingAuthenticator{next: next, log: log.Named("auth")}
}

type loggingAuthenticator struct {
	next Authenticator
	log  *zap.Logger
}

func (l *loggingAuthenticator) Register(ctx context.Context, req models.RegisterRequest) (token *models.Token, err error) {
	defer trace(l.log, "Register",
		zap.String("username", req.Username),
		zap.String("email", req.Email),
		zap.String("category", string(req.Category)),
	)(&err)
	return l.next.Register(ctx, req)
}

func (l *loggingAuthenticator) Authenticate(ctx context.Context, username, password string) (token *models.Token, err error) {
	defer trace(l.log, "Authenticate", zap.String("username", username))(&err)
	return l.next.Authenticate(ctx, username, password)
}

func (l *loggingAuthenticator) Resolve(ctx context.Context, token string) (user *models.User, err error) {
	defer trace(l.log, "Resolve")(&err)
	return l.next.Resolve(ctx, token)
}

// NewLoggingInventory wraps next so that every call is logged.
func NewLoggingInventory(next Inventory, log *zap.Logger) Inventory {
	return &loggingInventory{next: next, log: log.Named("inventory")}
}

type loggingInventory struct {
	next Inventory
	log  *zap.Logger
}

func (l *loggingInventory) Fetch(ctx context.Context, caller *models.User, id string) (product *models.Product, err error) {
	defer trace(l.log, "Fetch", callerField(caller), zap.String("product_id", id))(&err)
	return l.next.Fetch(ctx, caller, id)
}

func (l *loggingInventory) Create(ctx context.Context, caller *models.User, in models.ProductInput) (product *models.Product, err error) {
	defer trace(l.log, "Create", callerField(caller), zap.String("title", in.Title))(&err)
	return l.next.Create(ctx, caller, in)
}

func (l *loggingInventory) Update(ctx context.Context, caller *models.User, id string, patch models.ProductUpdate) (product *models.Product, err error) {
	defer trace(l.log, "Update", callerField(caller), zap.String("product_id", id))(&err)
	return l.next.Update(ctx, caller, id, patch)
}

func (l *loggingInventory) Delete(ctx context.Context, caller *models.User, id string) (err error) {
	defer trace(l.log, "Delete", callerField(caller), zap.String("product_id", id))(&err)
	return l.next.Delete(ctx, caller, id)
}

func (l *loggingInventory) Decrease(ctx context.Context, caller *models.User, id string, req models.PurchaseRequest) (product *models.Product, err error) {
	defer trace(l.log, "Decrease",
		callerField(caller),
		zap.String("product_id", id),
		zap.Int("quantity", req.Quantity),
	)(&err)
	return l.next.Decrease(ctx, caller, id, req)
}

// trace logs entry to op and returns a func that logs its outcome.
// Classified failures are logged at info, internal ones at error.
func trace(log *zap.Logger, op string, fields ...zap.Field) func(*error) {
	start := time.Now()
	log.Debug("Entering "+op, fields...)

	return func(errp *error) {
		out := make([]zap.Field, 0, len(fields)+3)
		out = append(out, fields...)
		out = append(out, zap.Duration("elapsed", time.Since(start)))

		err := *errp
		if err == nil {
			log.Debug("Exiting "+op, out...)
			return
		}

		kind := apperrors.KindOf(err)
		if kind == apperrors.KindInternal {
			log.Error(op+" failed", append(out, zap.Error(err))...)
			return
		}
		log.Info(op+" rejected", append(out,
			zap.String("kind", kind.String()),
			zap.String("reason", apperrors.From(err).Message),
		)...)
	}
}

func callerField(caller *models.User) zap.Field {
	if caller == nil {
		return zap.Skip()
	}
	return zap.String("caller_id", caller.ID)
}
