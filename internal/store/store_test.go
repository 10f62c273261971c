package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTx struct {
	commitErr   error
	rollbackErr error
	committed   bool
	rolledBack  bool
}

func (t *fakeTx) Query(context.Context, string, ...any) (Rows, error) { return nil, nil }
func (t *fakeTx) QueryRow(context.Context, string, ...any) Row         { return nil }
func (t *fakeTx) Exec(context.Context, string, ...any) (int64, error)  { return 0, nil }

func (t *fakeTx) Commit(context.Context) error {
	t.committed = true
	return t.commitErr
}

func (t *fakeTx) Rollback(context.Context) error {
	t.rolledBack = true
	return t.rollbackErr
}

type fakeConn struct {
	tx       *fakeTx
	beginErr error
	opts     []TxOptions
}

func (c *fakeConn) Begin(_ context.Context, opts TxOptions) (Tx, error) {
	c.opts = append(c.opts, opts)
	if c.beginErr != nil {
		return nil, c.beginErr
	}
	return c.tx, nil
}

func (c *fakeConn) Close() {}

func TestManager_Commit(t *testing.T) {
	conn := &fakeConn{tx: &fakeTx{}}
	m := NewManager(conn)

	err := m.WithinTx(context.Background(), TxOptions{ReadOnly: true}, func(ctx context.Context, q Querier) error {
		assert.Equal(t, int64(1), m.OpenTransactions())
		return nil
	})

	require.NoError(t, err)
	assert.True(t, conn.tx.committed)
	assert.False(t, conn.tx.rolledBack)
	assert.Equal(t, []TxOptions{{ReadOnly: true}}, conn.opts)
	assert.NoError(t, m.CheckClosed())
}

func TestManager_RollbackOnError(t *testing.T) {
	conn := &fakeConn{tx: &fakeTx{}}
	m := NewManager(conn)
	want := errors.New("flight is full")

	err := m.WithinTx(context.Background(), TxOptions{}, func(context.Context, Querier) error {
		return want
	})

	assert.ErrorIs(t, err, want)
	assert.False(t, conn.tx.committed)
	assert.True(t, conn.tx.rolledBack)
	assert.NoError(t, m.CheckClosed())
}

func TestManager_CommitFailureRollsBack(t *testing.T) {
	conn := &fakeConn{tx: &fakeTx{commitErr: ErrConflict, rollbackErr: ErrTxDone}}
	m := NewManager(conn)

	err := m.WithinTx(context.Background(), TxOptions{}, func(context.Context, Querier) error { return nil })

	assert.ErrorIs(t, err, ErrConflict)
	assert.True(t, conn.tx.rolledBack)
	assert.NoError(t, m.CheckClosed())
}

func TestManager_FailedRollbackLeavesTransactionOpen(t *testing.T) {
	conn := &fakeConn{tx: &fakeTx{rollbackErr: errors.New("connection lost")}}
	m := NewManager(conn)

	_ = m.WithinTx(context.Background(), TxOptions{}, func(context.Context, Querier) error {
		return errors.New("boom")
	})

	err := m.CheckClosed()
	var dangling *DanglingTxError
	require.ErrorAs(t, err, &dangling)
	assert.Equal(t, int64(1), dangling.Open)
}

func TestManager_PanicRollsBack(t *testing.T) {
	conn := &fakeConn{tx: &fakeTx{}}
	m := NewManager(conn)

	assert.Panics(t, func() {
		_ = m.WithinTx(context.Background(), TxOptions{}, func(context.Context, Querier) error {
			panic("bug")
		})
	})
	assert.True(t, conn.tx.rolledBack)
	assert.NoError(t, m.CheckClosed())
}

func TestManager_BeginError(t *testing.T) {
	conn := &fakeConn{beginErr: errors.New("refused")}
	m := NewManager(conn)
	called := false

	err := m.WithinTx(context.Background(), TxOptions{}, func(context.Context, Querier) error {
		called = true
		return nil
	})

	assert.Error(t, err)
	assert.False(t, called)
	assert.Zero(t, m.OpenTransactions())
}
