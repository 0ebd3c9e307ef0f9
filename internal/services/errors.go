package services

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	appErrors "github.com/everafterhq/everafter/pkg/errors"
)

// isUniqueConstraintError reports whether the error stems from a unique index
// violation, across the supported database drivers.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}

	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
		return true
	}

	// modernc/mattn sqlite drivers surface constraint failures as plain text.
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// translateDBError maps gorm errors onto the API error taxonomy, keeping the
// driver error attached for logging.
func translateDBError(err error, notFoundMessage string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return appErrors.ErrNotFound.WithMessage(notFoundMessage)
	case isUniqueConstraintError(err):
		return appErrors.ErrConflict.WithInternal(err)
	default:
		return appErrors.ErrInternalServer.WithInternal(err)
	}
}
