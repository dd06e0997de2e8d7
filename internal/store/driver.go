package store

import (
	"fmt"
	"slices"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// DriverFactory is a function that creates a gorm.Dialector
type DriverFactory func(dsn string) gorm.Dialector

// driverFactories maps DATABASE_DRIVER values to their factory functions
var driverFactories = map[string]DriverFactory{
	"sqlite":   sqlite.Open,
	"postgres": postgres.Open,
}

// GetDialector returns a GORM dialector for the given driver name and DSN
func GetDialector(driver, dsn string) (gorm.Dialector, error) {
	factory, exists := driverFactories[driver]
	if !exists {
		return nil, fmt.Errorf(
			"unsupported database driver: %s (must be: %s)",
			driver, strings.Join(SupportedDrivers(), ", "),
		)
	}
	return factory(dsn), nil
}

// SupportedDrivers returns the accepted driver names, sorted
func SupportedDrivers() []string {
	names := make([]string, 0, len(driverFactories))
	for name := range driverFactories {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// isInMemorySQLite reports whether the DSN names a private in-memory database,
// which lives and dies with its single connection
func isInMemorySQLite(driver, dsn string) bool {
	return driver == "sqlite" && strings.Contains(dsn, ":memory:")
}
