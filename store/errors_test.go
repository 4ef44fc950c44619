package store

import (
	"context"
	"errors"
	"fmt"
	"net"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestClassify(t *testing.T) {
	refused := &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}

	tests := []struct {
		name   string
		err    error
		fkKind error
		want   error
	}{
		{"record not found", gorm.ErrRecordNotFound, nil, ErrNotFound},
		{"gorm fk", gorm.ErrForeignKeyViolated, ErrConflict, ErrConflict},
		{"mysql parent row", &mysqldriver.MySQLError{Number: 1451, Message: "Cannot delete or update a parent row"}, ErrConflict, ErrConflict},
		{"mysql child row", &mysqldriver.MySQLError{Number: 1452, Message: "Cannot add or update a child row"}, ErrReference, ErrReference},
		{"postgres fk", &pgconn.PgError{Code: "23503"}, ErrReference, ErrReference},
		{"sqlite fk", sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintForeignKey}, ErrConflict, ErrConflict},
		{"wrapped fk", fmt.Errorf("exec: %w", &pgconn.PgError{Code: "23503"}), ErrConflict, ErrConflict},
		{"network", refused, nil, ErrConnection},
		{"bad conn", mysqldriver.ErrInvalidConn, nil, ErrConnection},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classify(tt.err, tt.fkKind)
			assert.ErrorIs(t, got, tt.want)
			assert.ErrorIs(t, got, tt.err)
		})
	}

	t.Run("fk ignored without kind", func(t *testing.T) {
		err := &mysqldriver.MySQLError{Number: 1062, Message: "Duplicate entry"}
		assert.Same(t, err, classify(err, nil))
	})
	t.Run("nil", func(t *testing.T) {
		assert.NoError(t, classify(nil, ErrConflict))
	})
}

func TestTransactionErrorUnwrap(t *testing.T) {
	err := error(&TransactionError{Index: 3, Err: validationError("title is required")})
	assert.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "item 3")
}

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{Conn: sqlDB, SkipInitializeWithVersion: true}), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	return New(db, Options{}), mock
}

func TestDeleteUser_MySQLForeignKeyIsConflict(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM `user` WHERE id = ?")).
		WithArgs(2).
		WillReturnError(&mysqldriver.MySQLError{Number: 1451, Message: "Cannot delete or update a parent row"})

	err := s.DeleteUser(context.Background(), 2)
	assert.ErrorIs(t, err, ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteUser_MySQLNoRowsIsNotFound(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM `user` WHERE id = ?")).
		WithArgs(9).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, s.DeleteUser(context.Background(), 9), ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetUserByID_UnreachableIsConnectionError(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery("SELECT \\* FROM `user` WHERE id = \\?").
		WillReturnError(&net.OpError{Op: "read", Net: "tcp", Err: errors.New("connection reset by peer")})

	_, err := s.GetUserByID(context.Background(), 1)
	assert.ErrorIs(t, err, ErrConnection)
	assert.NoError(t, mock.ExpectationsWereMet())
}
