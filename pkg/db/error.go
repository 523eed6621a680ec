package db

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Violation names the integrity constraint an insert or update broke.
type Violation int

const (
	NoViolation Violation = iota
	UniqueViolation
	ForeignKeyViolation
)

var driverCodes = map[string]Violation{
	// postgres SQLSTATE
	"23505": UniqueViolation,
	"23503": ForeignKeyViolation,
}

// Message fragments for drivers without typed errors (sqlite, mysql).
var driverMessages = []struct {
	fragment  string
	violation Violation
}{
	{"UNIQUE constraint failed", UniqueViolation},
	{"Error 1062", UniqueViolation},
	{"FOREIGN KEY constraint failed", ForeignKeyViolation},
	{"Error 1452", ForeignKeyViolation},
}

// ViolationOf classifies err whether or not gorm already translated it.
func ViolationOf(err error) Violation {
	switch {
	case err == nil:
		return NoViolation
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return UniqueViolation
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return ForeignKeyViolation
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return driverCodes[pgErr.Code]
	}

	msg := err.Error()
	for _, m := range driverMessages {
		if strings.Contains(msg, m.fragment) {
			return m.violation
		}
	}
	return NoViolation
}

// IsDuplicateKeyErr reports a unique index collision, such as a reused plan
// code or invoice number.
func IsDuplicateKeyErr(err error) bool {
	return ViolationOf(err) == UniqueViolation
}
