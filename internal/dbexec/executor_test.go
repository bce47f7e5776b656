package dbexec

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStandardExecutorQueryContext(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT zero FROM meta").
		WillReturnRows(sqlmock.NewRows([]string{"zero"}).AddRow(0))

	exec := NewStandardExecutor(db)
	rows, err := exec.QueryContext(context.Background(), "SELECT zero FROM meta")
	require.NoError(t, err)
	defer rows.Close()

	require.True(t, rows.Next())
	var zero int
	require.NoError(t, rows.Scan(&zero))
	assert.Equal(t, 0, zero)
}

func TestStandardExecutorBeginTxCommit(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO updates").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	exec := NewStandardExecutor(db)
	tx, err := exec.BeginTx(context.Background())
	require.NoError(t, err)

	_, err = tx.ExecContext(context.Background(), "INSERT INTO updates (time_epoch_millis) VALUES (?)", 123)
	require.NoError(t, err)
	require.NoError(t, tx.Commit())

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStandardExecutorBeginTxRollback(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO updates").WillReturnError(assert.AnError)
	mock.ExpectRollback()

	exec := NewStandardExecutor(db)
	tx, err := exec.BeginTx(context.Background())
	require.NoError(t, err)

	_, err = tx.ExecContext(context.Background(), "INSERT INTO updates (time_epoch_millis) VALUES (?)", 123)
	require.Error(t, err)
	require.NoError(t, tx.Rollback())

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStandardExecutorNilDB(t *testing.T) {
	exec := NewStandardExecutor(nil)
	_, err := exec.QueryContext(context.Background(), "SELECT 1")
	require.Error(t, err)
	_, err = exec.ExecContext(context.Background(), "SELECT 1")
	require.Error(t, err)
	_, err = exec.BeginTx(context.Background())
	require.Error(t, err)
}
