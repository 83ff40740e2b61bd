package database

import (
	"context"
	"errors"
	"strconv"
)

func savepointName(depth int) string {
	return "SP_" + strconv.Itoa(depth)
}

// TransactionDepth returns the number of open transaction levels.
func (d *Driver) TransactionDepth() int { return d.txDepth }

// TransactionStart opens a transaction. With asSavepoint set and a
// transaction already open, it creates the savepoint SP_<depth> instead.
// A savepoint request with no open transaction starts a real transaction.
func (d *Driver) TransactionStart(ctx context.Context, asSavepoint bool) error {
	if !asSavepoint || d.txDepth == 0 {
		if _, err := d.ExecuteUnprepared(ctx, d.dialect.StartTransaction()); err != nil {
			return err
		}
		d.txDepth = 1
		d.log.Debug("Transaction started")
		return nil
	}

	name := savepointName(d.txDepth)
	if _, err := d.ExecuteUnprepared(ctx, d.dialect.Savepoint(name)); err != nil {
		return err
	}
	d.txDepth++
	d.log.Debug("Savepoint created", "savepoint", name, "depth", d.txDepth)
	return nil
}

// TransactionCommit commits the transaction, or releases the innermost
// savepoint when toSavepoint is set and one exists. It does nothing when no
// transaction is open.
func (d *Driver) TransactionCommit(ctx context.Context, toSavepoint bool) error {
	if d.txDepth == 0 {
		return nil
	}
	if !toSavepoint || d.txDepth <= 1 {
		if _, err := d.ExecuteUnprepared(ctx, "COMMIT"); err != nil {
			return err
		}
		d.txDepth = 0
		d.log.Debug("Transaction committed")
		return nil
	}

	name := savepointName(d.txDepth - 1)
	if _, err := d.ExecuteUnprepared(ctx, d.dialect.ReleaseSavepoint(name)); err != nil {
		return err
	}
	d.txDepth--
	d.log.Debug("Savepoint released", "savepoint", name, "depth", d.txDepth)
	return nil
}

// TransactionRollback rolls the transaction back, or rolls back to the
// innermost savepoint when toSavepoint is set and one exists. It does
// nothing when no transaction is open.
func (d *Driver) TransactionRollback(ctx context.Context, toSavepoint bool) error {
	if d.txDepth == 0 {
		return nil
	}
	if !toSavepoint || d.txDepth <= 1 {
		if _, err := d.ExecuteUnprepared(ctx, "ROLLBACK"); err != nil {
			return err
		}
		d.txDepth = 0
		d.log.Debug("Transaction rolled back")
		return nil
	}

	name := savepointName(d.txDepth - 1)
	if _, err := d.ExecuteUnprepared(ctx, d.dialect.RollbackToSavepoint(name)); err != nil {
		return err
	}
	d.txDepth--
	d.log.Debug("Rolled back to savepoint", "savepoint", name, "depth", d.txDepth)
	return nil
}

// Transaction runs fn inside a transaction, nested as a savepoint when one
// is already open. fn's error or panic rolls back; otherwise the level is
// committed.
func (d *Driver) Transaction(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	nested := d.txDepth > 0
	if err := d.TransactionStart(ctx, nested); err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = d.TransactionRollback(ctx, nested)
			panic(p)
		}
	}()

	if err := fn(ctx); err != nil {
		if rerr := d.TransactionRollback(ctx, nested); rerr != nil {
			return errors.Join(err, rerr)
		}
		return err
	}
	return d.TransactionCommit(ctx, nested)
}
