// Package txn runs multi-row writes as one transaction.
package txn

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/AR-Project/wpt-v3/pkg/config"
	"github.com/AR-Project/wpt-v3/pkg/logger"
	"github.com/AR-Project/wpt-v3/prometheus"

	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const tracerName = "github.com/AR-Project/wpt-v3/internal/txn"

// SQLSTATEs that mean the transaction lost a conflict and can be rerun
const (
	sqlStateSerializationFailure = "40001"
	sqlStateDeadlockDetected     = "40P01"
)

// Manager runs functions inside gorm transactions. On Postgres every
// transaction is SERIALIZABLE and retried on serialization failure.
type Manager struct {
	db           *gorm.DB
	maxRetries   int
	serializable bool
	tracer       trace.Tracer
}

func NewManager(db *gorm.DB, cfg config.TxConfig) *Manager {
	return &Manager{
		db:           db,
		maxRetries:   cfg.MaxRetries,
		serializable: db.Dialector.Name() == "postgres",
		tracer:       otel.Tracer(tracerName),
	}
}

// DB returns a session bound to ctx for reads outside a transaction
func (m *Manager) DB(ctx context.Context) *gorm.DB {
	return m.db.WithContext(ctx)
}

type options struct {
	name string
}

type Option func(*options)

// Named labels the transaction in spans, logs and metrics
func Named(name string) Option {
	return func(o *options) { o.name = name }
}

// Do runs fn in a transaction. fn may run more than once, so it must not
// keep state across attempts.
func (m *Manager) Do(ctx context.Context, fn func(tx *gorm.DB) error, opts ...Option) error {
	o := options{name: "tx"}
	for _, opt := range opts {
		opt(&o)
	}

	ctx, span := m.tracer.Start(ctx, "txn."+o.name, trace.WithAttributes(
		attribute.String("db.system", m.db.Dialector.Name()),
		attribute.Bool("db.serializable", m.serializable),
	))
	defer span.End()
	defer prometheus.TrackDBOperation(o.name)(time.Now())

	log := logger.FromCtx(ctx)

	var txOpts []*sql.TxOptions
	if m.serializable {
		txOpts = append(txOpts, &sql.TxOptions{Isolation: sql.LevelSerializable})
	}

	var err error
	for attempt := 0; ; attempt++ {
		err = m.db.WithContext(ctx).Transaction(fn, txOpts...)
		state, retryable := retryableState(err)
		if !retryable || attempt >= m.maxRetries || ctx.Err() != nil {
			break
		}
		prometheus.RecordTxRetry(state)
		span.AddEvent("retry", trace.WithAttributes(attribute.Int("attempt", attempt+1), attribute.String("sqlstate", state)))
		log.Warn("Retrying transaction",
			zap.String("tx", o.name),
			zap.Int("attempt", attempt+1),
			zap.String("sqlstate", state))
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func retryableState(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case sqlStateSerializationFailure, sqlStateDeadlockDetected:
			return pgErr.Code, true
		}
	}
	return "", false
}

// ForUpdate adds a row lock to tx on stores that support one
func ForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() != "postgres" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}
