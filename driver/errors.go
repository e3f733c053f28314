package driver

import "errors"

// Predefined errors
var (
	// ErrNoPathsProvided is returned when no paths are provided
	ErrNoPathsProvided = errors.New("ods2sql driver: no paths provided")

	// ErrNoFilesLoaded is returned when no files were loaded
	ErrNoFilesLoaded = errors.New("ods2sql driver: no files were loaded")

	// ErrInvalidDSN is returned when the data source name cannot be parsed
	ErrInvalidDSN = errors.New("ods2sql driver: invalid data source name")

	// ErrStmtExecContextNotSupported is returned when statement does not support ExecContext
	ErrStmtExecContextNotSupported = errors.New("ods2sql driver: statement does not support ExecContext")

	// ErrBeginTxNotSupported is returned when underlying connection does not support BeginTx
	ErrBeginTxNotSupported = errors.New("ods2sql driver: underlying connection does not support BeginTx")

	// ErrPrepareContextNotSupported is returned when underlying connection does not support PrepareContext
	ErrPrepareContextNotSupported = errors.New("ods2sql driver: underlying connection does not support PrepareContext")

	// ErrDuplicateTableName is returned when multiple sheets would create the same table name
	ErrDuplicateTableName = errors.New("ods2sql driver: duplicate table name")

	// ErrResourceExhaustion is returned when resource limits are exceeded
	ErrResourceExhaustion = errors.New("ods2sql driver: resource exhaustion detected")

	// ErrSecurityViolation is returned when a security policy is violated
	ErrSecurityViolation = errors.New("ods2sql driver: security policy violation")
)
