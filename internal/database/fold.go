package database

import (
	"database/sql/driver"
	"fmt"
	"strings"

	"modernc.org/sqlite"
)

// foldFunc is a Unicode-aware lower() for SQLite, whose built-in lower()
// only folds ASCII letters.
const foldFunc = "unicode_lower"

func init() {
	err := sqlite.RegisterDeterministicScalarFunction(foldFunc, 1, func(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
		switch v := args[0].(type) {
		case nil:
			return nil, nil
		case string:
			return strings.ToLower(v), nil
		case []byte:
			return strings.ToLower(string(v)), nil
		default:
			return nil, fmt.Errorf("%s: unsupported argument type %T", foldFunc, v)
		}
	})
	if err != nil {
		panic(fmt.Sprintf("register %s: %v", foldFunc, err))
	}
}

// Lower wraps a SQL expression in the driver's Unicode-aware lowercase
// function. Both sides of a case-insensitive comparison must go through it.
func (db *DB) Lower(expr string) string {
	if db.driver == DriverPostgres {
		return "lower(" + expr + ")"
	}
	return foldFunc + "(" + expr + ")"
}
