// Package errors provides structured error handling for dropignore.
//
// Error codes follow the pattern ERR_XXX_DESCRIPTION where:
//   - 1XX: Configuration errors
//   - 2XX: IO errors (files, flag store, locks)
//   - 3XX: Watch session errors
//   - 4XX: Validation errors (input, rule syntax)
//   - 5XX: Internal errors
package errors

// Category defines error categories for classification.
type Category string

const (
	// CategoryConfig indicates configuration-related errors.
	CategoryConfig Category = "CONFIG"
	// CategoryIO indicates file, attribute and lock I/O errors.
	CategoryIO Category = "IO"
	// CategoryWatch indicates change source errors.
	CategoryWatch Category = "WATCH"
	// CategoryValidation indicates input validation errors.
	CategoryValidation Category = "VALIDATION"
	// CategoryInternal indicates unexpected internal errors.
	CategoryInternal Category = "INTERNAL"
)

// Severity defines error severity levels.
type Severity string

const (
	// SeverityFatal indicates unrecoverable error, must abort.
	SeverityFatal Severity = "FATAL"
	// SeverityError indicates operation failed but can continue.
	SeverityError Severity = "ERROR"
	// SeverityWarning indicates degraded operation, continuing.
	SeverityWarning Severity = "WARNING"
	// SeverityInfo indicates informational only.
	SeverityInfo Severity = "INFO"
)

// Error codes organized by category.
const (
	// Config errors (100-199)
	ErrCodeConfigNotFound = "ERR_101_CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid  = "ERR_102_CONFIG_INVALID"
	ErrCodeNoUsableRules  = "ERR_103_NO_USABLE_RULES"

	// IO errors (200-299)
	ErrCodeFileNotFound     = "ERR_201_FILE_NOT_FOUND"
	ErrCodeFilePermission   = "ERR_202_FILE_PERMISSION"
	ErrCodeFlagStore        = "ERR_203_FLAG_STORE"
	ErrCodeXattrUnsupported = "ERR_204_XATTR_UNSUPPORTED"
	ErrCodeStoreOpen        = "ERR_205_STORE_OPEN"
	ErrCodeSessionLocked    = "ERR_206_SESSION_LOCKED"

	// Watch errors (300-399)
	ErrCodeWatchInit   = "ERR_301_WATCH_INIT"
	ErrCodeWatchFailed = "ERR_302_WATCH_FAILED"

	// Validation errors (400-499)
	ErrCodeInvalidInput = "ERR_401_INVALID_INPUT"
	ErrCodeRuleSyntax   = "ERR_402_RULE_SYNTAX"
	ErrCodeInvalidPath  = "ERR_406_INVALID_PATH"

	// Internal errors (500-599)
	ErrCodeInternal = "ERR_501_INTERNAL"
)

// categoryFromCode extracts category from error code.
func categoryFromCode(code string) Category {
	if len(code) < 7 {
		return CategoryInternal
	}

	// Extract numeric portion (e.g., "101" from "ERR_101_CONFIG_NOT_FOUND")
	numStr := code[4:7]

	switch numStr[0] {
	case '1':
		return CategoryConfig
	case '2':
		return CategoryIO
	case '3':
		return CategoryWatch
	case '4':
		return CategoryValidation
	default:
		return CategoryInternal
	}
}

// severityFromCode determines severity based on error code.
func severityFromCode(code string) Severity {
	switch code {
	case ErrCodeWatchInit, ErrCodeWatchFailed, ErrCodeNoUsableRules, ErrCodeSessionLocked:
		return SeverityFatal
	case ErrCodeRuleSyntax:
		// A bad rule line is skipped; the session continues with the rest.
		return SeverityWarning
	default:
		return SeverityError
	}
}
