// Package driver provides the ods2sql driver implementation for database/sql.
//
// This package implements a database/sql driver that loads spreadsheet documents
// (.ods, .fods, .xlsx, including compressed versions) into an in-memory SQLite
// database. Every sheet becomes a table named after the sheet, with an "_id"
// key column followed by columns A, B, C, ... typed from the sheet's content.
//
// Key features:
//   - Support for OpenDocument and Excel workbooks
//   - Support for compressed files (gzip, bzip2, xz, zstd)
//   - Duplicate table name validation across multiple files
//   - Directory scanning with automatic file discovery
//
// Usage:
//
//	import _ "github.com/nao1215/ods2sql"
//	db, err := sql.Open("ods2sql", "budget.ods;exports?column_naming=spreadsheet")
package driver

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nao1215/ods2sql/domain/model"
	"modernc.org/sqlite"
)

const (
	// ParamColumnNaming selects the column naming scheme (legacy, spreadsheet)
	ParamColumnNaming = "column_naming"
	// ParamRowGroups keeps rows nested in row groups when "true"
	ParamRowGroups = "row_groups"
)

// Driver implements database/sql/driver.Driver interface for spreadsheet files.
// It serves as the entry point for creating connections to spreadsheet-backed databases.
type Driver struct{}

// Config is the parsed form of a data source name.
//
// A DSN lists file or directory paths separated by semicolons, optionally
// followed by "?" and URL encoded parameters:
//
//	people.ods;exports/?column_naming=spreadsheet&row_groups=true
type Config struct {
	Paths        []string
	ColumnNaming model.ColumnNaming
	RowGroups    bool
}

// Connector implements database/sql/driver.Connector interface.
// It holds connection parameters and manages the creation of database connections.
type Connector struct {
	driver *Driver
	config *Config
}

// Connection implements database/sql/driver.Conn interface.
// It wraps an underlying SQLite connection that contains loaded spreadsheet data.
type Connection struct {
	conn driver.Conn // Underlying SQLite connection with loaded tables
}

// Transaction implements database/sql/driver.Tx interface.
// It wraps an underlying SQLite transaction for atomic operations.
type Transaction struct {
	tx driver.Tx // Underlying SQLite transaction
}

// NewDriver creates a new spreadsheet SQL driver
func NewDriver() *Driver {
	return &Driver{}
}

// Open implements driver.Driver interface
func (d *Driver) Open(dsn string) (driver.Conn, error) {
	connector, err := d.OpenConnector(dsn)
	if err != nil {
		return nil, err
	}
	return connector.Connect(context.Background())
}

// OpenConnector implements driver.DriverContext interface
func (d *Driver) OpenConnector(dsn string) (driver.Connector, error) {
	config, err := ParseDSN(dsn)
	if err != nil {
		return nil, err
	}
	return &Connector{
		driver: d,
		config: config,
	}, nil
}

// ParseDSN parses a data source name
func ParseDSN(dsn string) (*Config, error) {
	pathPart, query, _ := strings.Cut(dsn, "?")

	config := &Config{ColumnNaming: model.ColumnNamingLegacy}
	for _, path := range strings.Split(pathPart, ";") {
		if path = strings.TrimSpace(path); path != "" {
			config.Paths = append(config.Paths, path)
		}
	}
	if len(config.Paths) == 0 {
		return nil, ErrNoPathsProvided
	}

	params, err := url.ParseQuery(query)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDSN, err)
	}
	for key := range params {
		switch key {
		case ParamColumnNaming:
			naming, err := model.ParseColumnNaming(params.Get(key))
			if err != nil {
				return nil, fmt.Errorf("%w: %w", ErrInvalidDSN, err)
			}
			config.ColumnNaming = naming
		case ParamRowGroups:
			enabled, err := strconv.ParseBool(params.Get(key))
			if err != nil {
				return nil, fmt.Errorf("%w: %s: %w", ErrInvalidDSN, key, err)
			}
			config.RowGroups = enabled
		default:
			return nil, fmt.Errorf("%w: unknown parameter %q", ErrInvalidDSN, key)
		}
	}
	return config, nil
}

// Connect implements driver.Connector interface
func (c *Connector) Connect(ctx context.Context) (driver.Conn, error) {
	filesToLoad, err := c.collectAllFiles(c.config.Paths)
	if err != nil {
		return nil, err
	}
	if len(filesToLoad) == 0 {
		return nil, ErrNoFilesLoaded
	}

	// Get SQLite driver and create connection
	sqliteDriver := &sqlite.Driver{}
	conn, err := sqliteDriver.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory database: %w", err)
	}

	if err := c.loadCollectedFiles(ctx, conn, filesToLoad); err != nil {
		_ = conn.Close() // Ignore close error since we're already returning an error
		return nil, err
	}

	return &Connection{conn: conn}, nil
}

// Driver implements driver.Connector interface
func (c *Connector) Driver() driver.Driver {
	return c.driver
}

// collectAllFiles collects the files of every path, expanding directories
func (c *Connector) collectAllFiles(paths []string) ([]string, error) {
	seen := make(map[string]bool)
	var filesToLoad []string

	for _, path := range paths {
		pathFiles, err := c.collectFilesFromPath(path)
		if err != nil {
			return nil, err
		}
		for _, file := range pathFiles {
			abs, err := filepath.Abs(file)
			if err != nil {
				return nil, fmt.Errorf("failed to get absolute path for %s: %w", file, err)
			}
			if !seen[abs] {
				seen[abs] = true
				filesToLoad = append(filesToLoad, file)
			}
		}
	}
	return filesToLoad, nil
}

// collectFilesFromPath collects files from a single path (file or directory)
func (c *Connector) collectFilesFromPath(path string) ([]string, error) {
	if err := ValidatePath(path); err != nil {
		return nil, fmt.Errorf("%w: %w: %s", ErrSecurityViolation, err, path)
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("path does not exist: %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to stat path: %w", err)
	}

	if info.IsDir() {
		return c.collectDirectoryFiles(path)
	}
	if !model.IsSupportedFile(filepath.Base(path)) {
		return nil, fmt.Errorf("unsupported file type: %s", path)
	}
	if err := ValidateFileSize(info.Size()); err != nil {
		return nil, fmt.Errorf("%w: %w: %s", ErrResourceExhaustion, err, path)
	}
	return []string{path}, nil
}

// collectDirectoryFiles collects the supported files directly inside a directory.
// When a document exists both plain and compressed, the less compressed file wins.
func (c *Connector) collectDirectoryFiles(dirPath string) ([]string, error) {
	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	byBase := make(map[string]string)
	var order []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue // Skip subdirectories
		}

		fileName := entry.Name()
		if !IsValidFileName(fileName) || !model.IsSupportedFile(fileName) {
			continue
		}
		filePath := filepath.Join(dirPath, fileName)

		info, err := entry.Info()
		if err != nil {
			return nil, fmt.Errorf("failed to stat file: %w", err)
		}
		if err := ValidateFileSize(info.Size()); err != nil {
			return nil, fmt.Errorf("%w: %w: %s", ErrResourceExhaustion, err, filePath)
		}

		base := model.RemoveCompressionExtension(fileName)
		existing, ok := byBase[base]
		if !ok {
			byBase[base] = filePath
			order = append(order, base)
			continue
		}
		if countCompressionExtensions(fileName) < countCompressionExtensions(filepath.Base(existing)) {
			byBase[base] = filePath
		}
	}

	if err := ValidateFileCount(len(order)); err != nil {
		return nil, fmt.Errorf("%w: %w: %s", ErrResourceExhaustion, err, dirPath)
	}

	files := make([]string, 0, len(order))
	for _, base := range order {
		files = append(files, byBase[base])
	}
	return files, nil
}

// countCompressionExtensions counts how many compression extensions a file has
func countCompressionExtensions(fileName string) int {
	count := 0
	for model.DetectCompressionType(fileName) != model.CompressionNone {
		fileName = model.RemoveCompressionExtension(fileName)
		count++
	}
	return count
}

// loadCollectedFiles parses every file and loads its tables in one transaction
func (c *Connector) loadCollectedFiles(ctx context.Context, conn driver.Conn, filesToLoad []string) error {
	options := model.TreeOptions{RowGroups: c.config.RowGroups}

	tableNames := make(map[string]string) // table name -> file path
	var tables []*model.Node
	for _, filePath := range filesToLoad {
		root, err := model.NewFile(filePath).Parse(ctx, options)
		if err != nil {
			return fmt.Errorf("failed to load file %s: %w", filePath, err)
		}

		for _, table := range root.Tables() {
			if existingFile, exists := tableNames[table.Name()]; exists {
				return fmt.Errorf("%w: table '%s' from files '%s' and '%s'",
					ErrDuplicateTableName, table.Name(), existingFile, filePath)
			}
			// one extra column for the surrogate key
			if err := ValidateColumnCount(table.ColumnCount() + 1); err != nil {
				return fmt.Errorf("%w: table '%s' in '%s' has %d columns", err, table.Name(), filePath, table.ColumnCount())
			}
			tableNames[table.Name()] = filePath
			tables = append(tables, table)
		}
	}

	beginner, ok := conn.(driver.ConnBeginTx)
	if !ok {
		return ErrBeginTxNotSupported
	}
	tx, err := beginner.BeginTx(ctx, driver.TxOptions{})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	for _, table := range tables {
		if err := c.loadTableIntoDatabase(ctx, conn, table); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to load table %s from %s: %w", table.Name(), tableNames[table.Name()], err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// loadTableIntoDatabase creates table and inserts data into the database
func (c *Connector) loadTableIntoDatabase(ctx context.Context, conn driver.Conn, table *model.Node) error {
	if err := c.executeStatement(ctx, conn, table.CreateTableStatement(c.config.ColumnNaming), nil); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}
	if err := c.insertRows(ctx, conn, table); err != nil {
		return fmt.Errorf("failed to insert records: %w", err)
	}
	return nil
}

// insertRows inserts every row, preparing one statement per row width
func (c *Connector) insertRows(ctx context.Context, conn driver.Conn, table *model.Node) error {
	stmts := make(map[int]driver.Stmt)
	defer func() {
		for _, stmt := range stmts {
			_ = stmt.Close()
		}
	}()

	for _, row := range table.Rows() {
		values := table.RowValues(row)
		stmt, ok := stmts[len(values)]
		if !ok {
			var err error
			stmt, err = conn.Prepare(table.InsertStatement(len(values), c.config.ColumnNaming))
			if err != nil {
				return err
			}
			stmts[len(values)] = stmt
		}
		if err := c.executeStatement(ctx, stmt, "", c.convertToDriverValues(values)); err != nil {
			return err
		}
	}
	return nil
}

// convertToDriverValues converts typed cell values to driver.Value slice
func (c *Connector) convertToDriverValues(values []any) []driver.Value {
	args := make([]driver.Value, len(values))
	for i, val := range values {
		args[i] = val
	}
	return args
}

// executeStatement executes a statement with proper context support
func (c *Connector) executeStatement(ctx context.Context, conn any, query string, args []driver.Value) error {
	switch stmt := conn.(type) {
	case driver.Conn:
		// For CREATE TABLE queries
		preparedStmt, err := stmt.Prepare(query)
		if err != nil {
			return err
		}
		defer preparedStmt.Close()
		return c.executeStatement(ctx, preparedStmt, "", args)

	case driver.Stmt:
		// For INSERT queries with prepared statement
		if stmtExecCtx, ok := stmt.(driver.StmtExecContext); ok {
			_, err := stmtExecCtx.ExecContext(ctx, c.convertToNamedValues(args))
			return err
		}
		return ErrStmtExecContextNotSupported

	default:
		return errors.New("unsupported statement type")
	}
}

// convertToNamedValues converts driver.Value slice to driver.NamedValue slice
func (c *Connector) convertToNamedValues(args []driver.Value) []driver.NamedValue {
	namedArgs := make([]driver.NamedValue, len(args))
	for i, arg := range args {
		namedArgs[i] = driver.NamedValue{
			Ordinal: i + 1,
			Value:   arg,
		}
	}
	return namedArgs
}

// Close implements driver.Conn interface
func (conn *Connection) Close() error {
	if conn.conn != nil {
		return conn.conn.Close()
	}
	return nil
}

// Begin implements driver.Conn interface (deprecated, use BeginTx instead)
func (conn *Connection) Begin() (driver.Tx, error) {
	return conn.BeginTx(context.Background(), driver.TxOptions{})
}

// BeginTx implements driver.ConnBeginTx interface
func (conn *Connection) BeginTx(ctx context.Context, opts driver.TxOptions) (driver.Tx, error) {
	if connBeginTx, ok := conn.conn.(driver.ConnBeginTx); ok {
		tx, err := connBeginTx.BeginTx(ctx, opts)
		if err != nil {
			return nil, err
		}
		return &Transaction{tx: tx}, nil
	}
	return nil, ErrBeginTxNotSupported
}

// Commit implements driver.Tx interface
func (t *Transaction) Commit() error {
	return t.tx.Commit()
}

// Rollback implements driver.Tx interface
func (t *Transaction) Rollback() error {
	return t.tx.Rollback()
}

// Prepare implements driver.Conn interface (deprecated, use PrepareContext instead)
func (conn *Connection) Prepare(query string) (driver.Stmt, error) {
	return conn.PrepareContext(context.Background(), query)
}

// PrepareContext implements driver.ConnPrepareContext interface
func (conn *Connection) PrepareContext(ctx context.Context, query string) (driver.Stmt, error) {
	if connPrepareCtx, ok := conn.conn.(driver.ConnPrepareContext); ok {
		return connPrepareCtx.PrepareContext(ctx, query)
	}
	return nil, ErrPrepareContextNotSupported
}
