package errors

import (
	"errors"
	"fmt"
)

// Common error types
var (
	// ErrNotFound indicates that a requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates that invalid input was provided
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnknownEnvironment indicates an environment name outside the allow-list
	ErrUnknownEnvironment = errors.New("unknown environment")

	// ErrEnvFileNotFound indicates that the selected environment file is missing
	ErrEnvFileNotFound = errors.New("environment file not found")

	// ErrExternalService indicates an error with an external service
	ErrExternalService = errors.New("external service error")

	// ErrServerBusy indicates that a remote server rejected a request as busy
	ErrServerBusy = errors.New("server busy")

	// ErrDatabaseOperation indicates a database operation failure
	ErrDatabaseOperation = errors.New("database operation failed")

	// ErrTransferFailed indicates that an FTP or SFTP transfer failed
	ErrTransferFailed = errors.New("transfer failed")

	// ErrMailDelivery indicates that an email could not be delivered
	ErrMailDelivery = errors.New("mail delivery failed")
)

// ServiceError represents a service-level error with additional context
type ServiceError struct {
	Op      string                 // Operation that failed
	Service string                 // Service where the error occurred
	Err     error                  // Underlying error
	Context map[string]interface{} // Additional context
}

// Error implements the error interface
func (e *ServiceError) Error() string {
	if len(e.Context) > 0 {
		return fmt.Sprintf("%s.%s: %v (context: %v)", e.Service, e.Op, e.Err, e.Context)
	}
	return fmt.Sprintf("%s.%s: %v", e.Service, e.Op, e.Err)
}

// Unwrap allows errors.Is and errors.As to work
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError creates a new ServiceError
func NewServiceError(service, op string, err error) *ServiceError {
	return &ServiceError{
		Service: service,
		Op:      op,
		Err:     err,
	}
}

// WithContext adds context to a ServiceError
func (e *ServiceError) WithContext(key string, value interface{}) *ServiceError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsServerBusy checks if an error is a busy-server error
func IsServerBusy(err error) bool {
	return errors.Is(err, ErrServerBusy)
}

// IsRetryable checks if an error is retryable
func IsRetryable(err error) bool {
	return errors.Is(err, ErrServerBusy) ||
		errors.Is(err, ErrExternalService) ||
		errors.Is(err, ErrTransferFailed)
}
