package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Fatal startup errors. None of these are retried.
const (
	// ErrCodeConfiguration indicates an invalid or out-of-range setting.
	ErrCodeConfiguration ErrorCode = "CONFIGURATION_ERROR"
	// ErrCodeBind indicates the listening socket could not be acquired.
	ErrCodeBind ErrorCode = "BIND_ERROR"
	// ErrCodePrivilege indicates the target identity is missing or the switch failed.
	ErrCodePrivilege ErrorCode = "PRIVILEGE_ERROR"
	// ErrCodeInternal indicates an unexpected failure.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// Transient errors, managed by the external supervisor.
const (
	// ErrCodeHealthCheckFailed indicates a single failed liveness probe.
	ErrCodeHealthCheckFailed ErrorCode = "HEALTH_CHECK_FAILED"
)

// Process exit codes.
const (
	ExitOK            = 0
	ExitFailure       = 1
	ExitConfiguration = 2
	ExitBind          = 3
	ExitPrivilege     = 4
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeHealthCheckFailed: true,
}

var exitCodes = map[ErrorCode]int{
	ErrCodeConfiguration: ExitConfiguration,
	ErrCodeBind:          ExitBind,
	ErrCodePrivilege:     ExitPrivilege,
}

// IsRetryableCode returns true if the error code indicates a transient error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}

// ExitCodeFor returns the process exit code for an error code.
func ExitCodeFor(code ErrorCode) int {
	if c, ok := exitCodes[code]; ok {
		return c
	}
	return ExitFailure
}
