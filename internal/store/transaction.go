package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type contextKey int

const (
	transactionKey contextKey = iota
)

// Tx is the transactional handle carried by the request context. Every
// transaction is tagged with the tenant identity of the authenticated caller;
// queries issued through the handle are scoped to that tenant.
type Tx struct {
	txId     int64
	tx       *gorm.DB
	tenantID uuid.UUID
}

func Commit(ctx context.Context) (context.Context, error) {
	tx, ok := ctx.Value(transactionKey).(*Tx)
	if !ok {
		return ctx, nil
	}

	newCtx := context.WithValue(ctx, transactionKey, nil)
	return newCtx, tx.Commit()
}

func Rollback(ctx context.Context) (context.Context, error) {
	tx, ok := ctx.Value(transactionKey).(*Tx)
	if !ok {
		return ctx, nil
	}

	newCtx := context.WithValue(ctx, transactionKey, nil)
	return newCtx, tx.Rollback()
}

func FromContext(ctx context.Context) *gorm.DB {
	if tx, found := ctx.Value(transactionKey).(*Tx); found && tx != nil {
		if dbTx, err := tx.Db(); err == nil {
			return dbTx
		}
	}
	return nil
}

// TenantFromContext returns the tenant identity the current transaction was
// opened with.
func TenantFromContext(ctx context.Context) (uuid.UUID, bool) {
	if tx, found := ctx.Value(transactionKey).(*Tx); found && tx != nil {
		return tx.tenantID, true
	}
	return uuid.UUID{}, false
}

func newTransactionContext(ctx context.Context, db *gorm.DB, tenantID uuid.UUID) (context.Context, error) {
	// reuse the transaction already opened for this request, if any
	_, found := ctx.Value(transactionKey).(*Tx)
	if found {
		return ctx, nil
	}

	conn := db.Session(&gorm.Session{
		Context: ctx,
	})

	tx, err := newTransaction(conn, tenantID)
	if err != nil {
		return ctx, err
	}

	ctx = context.WithValue(ctx, transactionKey, tx)
	return ctx, nil
}

func newTransaction(db *gorm.DB, tenantID uuid.UUID) (*Tx, error) {
	tx := db.Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}

	if tx.Dialector.Name() == "postgres" {
		// current transaction ID set by postgres. these are *not* distinct
		// across time and do get reset after postgres reclaims used IDs.
		var txid struct{ ID int64 }
		tx.Raw("select txid_current() as id").Scan(&txid)

		// propagate the tenant into the session so row-level security
		// policies apply inside the storage boundary as well.
		if err := tx.Exec("SELECT set_config('app.tenant_id', ?, true)", tenantID.String()).Error; err != nil {
			_ = tx.Rollback()
			return nil, err
		}

		return &Tx{txId: txid.ID, tx: tx, tenantID: tenantID}, nil
	}

	return &Tx{tx: tx, tenantID: tenantID}, nil
}

func (t *Tx) Db() (*gorm.DB, error) {
	if t.tx != nil {
		return t.tx, nil
	}
	return nil, errors.New("transaction hasn't started yet")
}

func (t *Tx) Commit() error {
	if t.tx == nil {
		return errors.New("transaction hasn't started yet")
	}

	if err := t.tx.Commit().Error; err != nil {
		zap.S().Named("store").Errorf("failed to commit transaction %d: %v", t.txId, err)
		return err
	}
	zap.S().Named("store").Debugf("transaction %d committed", t.txId)
	t.tx = nil // in case we call commit twice
	return nil
}

func (t *Tx) Rollback() error {
	if t.tx == nil {
		return errors.New("transaction hasn't started yet")
	}

	if err := t.tx.Rollback().Error; err != nil {
		zap.S().Named("store").Errorf("failed to rollback transaction %d: %v", t.txId, err)
		return err
	}
	t.tx = nil

	zap.S().Named("store").Debugf("transaction %d rollback", t.txId)
	return nil
}
