package versionstore

import (
	"errors"
	"fmt"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"
)

// Supported database driver names.
const (
	DriverSQLite   = "sqlite"
	DriverSQLite3  = "sqlite3"
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

const (
	gooseDialectSQLiteConstant        = "sqlite3"
	gooseDialectPostgresConstant      = "postgres"
	gooseDialectMySQLConstant         = "mysql"
	unsupportedDriverMessageConstant  = "unsupported database driver"
	unsupportedDriverTemplateConstant = "%w %q (expected one of %s)"
	driverListSeparatorConstant       = ", "
)

// ErrUnsupportedDriver indicates the configured driver is not one of the supported names.
var ErrUnsupportedDriver = errors.New(unsupportedDriverMessageConstant)

// dialect captures the per-driver differences the store depends on.
type dialect struct {
	driverName         string
	gooseDialect       string
	numberedParameters bool
	singleConnection   bool
}

var dialectsByDriver = map[string]dialect{
	DriverSQLite:   {driverName: DriverSQLite, gooseDialect: gooseDialectSQLiteConstant, singleConnection: true},
	DriverSQLite3:  {driverName: DriverSQLite3, gooseDialect: gooseDialectSQLiteConstant, singleConnection: true},
	DriverPostgres: {driverName: DriverPostgres, gooseDialect: gooseDialectPostgresConstant, numberedParameters: true},
	DriverMySQL:    {driverName: DriverMySQL, gooseDialect: gooseDialectMySQLConstant},
}

// SupportedDrivers lists the accepted driver names.
func SupportedDrivers() []string {
	return []string{DriverSQLite, DriverSQLite3, DriverPostgres, DriverMySQL}
}

func lookupDialect(driverName string) (dialect, error) {
	selectedDialect, supported := dialectsByDriver[strings.ToLower(strings.TrimSpace(driverName))]
	if !supported {
		return dialect{}, fmt.Errorf(unsupportedDriverTemplateConstant, ErrUnsupportedDriver, driverName, strings.Join(SupportedDrivers(), driverListSeparatorConstant))
	}
	return selectedDialect, nil
}

// placeholder returns the bind parameter marker for the 1-based position.
func (selectedDialect dialect) placeholder(position int) string {
	if selectedDialect.numberedParameters {
		return fmt.Sprintf("$%d", position)
	}
	return "?"
}
