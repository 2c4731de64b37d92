package store

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/clima-cdmx/archivador/internal/config"
	"github.com/clima-cdmx/archivador/pkg/util/configbinder"
	"github.com/clima-cdmx/archivador/pkg/util/logger"
)

// DialectorFactory generates a gorm.Dialector from a DatabaseConfig.
type DialectorFactory func(cfg DatabaseConfig) (gorm.Dialector, error)

var (
	dialectorRegistry = make(map[string]DialectorFactory)
	dialectorMutex    sync.RWMutex
)

// RegisterDialector registers a DialectorFactory for the given database type.
// Dialect packages call this from init, so importing a dialect package is all
// it takes to enable its type.
func RegisterDialector(dbType string, factory DialectorFactory) {
	dialectorMutex.Lock()
	defer dialectorMutex.Unlock()
	if _, exists := dialectorRegistry[dbType]; exists {
		logger.Warnf("Dialector for type '%s' already registered. Overwriting.", dbType)
	}
	dialectorRegistry[dbType] = factory
}

// GetDialectorFactory retrieves the DialectorFactory for the given DB type.
func GetDialectorFactory(dbType string) (DialectorFactory, error) {
	dialectorMutex.RLock()
	defer dialectorMutex.RUnlock()
	factory, ok := dialectorRegistry[dbType]
	if !ok {
		return nil, fmt.Errorf("no dialector registered for database type: %s (is the dialect package imported?)", dbType)
	}
	return factory, nil
}

// Connection wraps a GORM connection with its configuration and name.
type Connection struct {
	db   *gorm.DB
	cfg  DatabaseConfig
	name string
}

// NewConnection wraps an already opened GORM handle. Exposed so tests can
// inject a connection backed by sqlmock.
func NewConnection(db *gorm.DB, cfg DatabaseConfig, name string) *Connection {
	return &Connection{db: db, cfg: cfg, name: name}
}

// DB returns the underlying GORM handle.
func (c *Connection) DB() *gorm.DB {
	return c.db
}

// SQLDB returns the underlying *sql.DB, used by the migrator.
func (c *Connection) SQLDB() (*sql.DB, error) {
	return c.db.DB()
}

// Type returns the database type of this connection.
func (c *Connection) Type() string {
	return c.cfg.Type
}

// Name returns the configured name of this connection.
func (c *Connection) Name() string {
	return c.name
}

// Close closes the underlying database connection.
func (c *Connection) Close() error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB for '%s': %w", c.name, err)
	}
	return sqlDB.Close()
}

// Provider manages named database connections defined in the configuration's
// database section.
type Provider struct {
	cfg         *config.Config
	connections map[string]*Connection
	mu          sync.RWMutex
}

// NewProvider creates a Provider backed by the application configuration.
func NewProvider(cfg *config.Config) *Provider {
	return &Provider{
		cfg:         cfg,
		connections: make(map[string]*Connection),
	}
}

// GetConnection retrieves an existing connection or establishes a new one
// from the named entry in the configuration.
func (p *Provider) GetConnection(name string) (*Connection, error) {
	p.mu.RLock()
	conn, ok := p.connections[name]
	p.mu.RUnlock()
	if ok {
		return conn, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if conn, ok = p.connections[name]; ok {
		return conn, nil
	}

	rawConfig, ok := p.cfg.Archivador.AdapterConfigs[name]
	if !ok {
		return nil, fmt.Errorf("database configuration '%s' not found", name)
	}
	configMap, ok := rawConfig.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("invalid database configuration format for '%s': expected a mapping", name)
	}

	var dbConfig DatabaseConfig
	if err := configbinder.BindProperties(configMap, &dbConfig); err != nil {
		return nil, fmt.Errorf("failed to decode database config for '%s': %w", name, err)
	}

	gormDB, err := p.connect(dbConfig)
	if err != nil {
		return nil, err
	}

	conn = NewConnection(gormDB, dbConfig, name)
	p.connections[name] = conn
	logger.Infof("Established new DB connection: %s (%s)", name, dbConfig.Type)
	return conn, nil
}

// connect establishes a GORM connection based on DatabaseConfig.
func (p *Provider) connect(dbConfig DatabaseConfig) (*gorm.DB, error) {
	dialectorFactory, err := GetDialectorFactory(dbConfig.Type)
	if err != nil {
		return nil, err
	}
	dialector, err := dialectorFactory(dbConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create dialector for %s: %w", dbConfig.Type, err)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open GORM connection: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	if dbConfig.Pool.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(dbConfig.Pool.MaxOpenConns)
	}
	if dbConfig.Pool.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(dbConfig.Pool.MaxIdleConns)
	}
	if dbConfig.Pool.ConnMaxLifetimeMinutes > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(dbConfig.Pool.ConnMaxLifetimeMinutes) * time.Minute)
	}

	return db, nil
}

// CloseAll closes all connections managed by this provider.
func (p *Provider) CloseAll() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var lastErr error
	for name, conn := range p.connections {
		if err := conn.Close(); err != nil {
			logger.Errorf("Failed to close connection '%s': %v", name, err)
			lastErr = err
		}
		delete(p.connections, name)
	}
	return lastErr
}
