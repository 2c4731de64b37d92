// Package mysql registers the MySQL dialector with the store layer.
package mysql

import (
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/clima-cdmx/archivador/internal/store"
)

// init registers the MySQL dialector factory. Importing this package (blank
// import in the command entry point) enables the "mysql" type.
func init() {
	store.RegisterDialector("mysql", func(cfg store.DatabaseConfig) (gorm.Dialector, error) {
		return mysql.Open(ConnectionString(cfg)), nil
	})
}

// ConnectionString generates the DSN for MySQL connections in the format
// expected by gorm.io/driver/mysql.
func ConnectionString(c store.DatabaseConfig) string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		c.User, c.Password, c.Host, c.Port, c.Database)
}
