package errs

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Upload & storage errors
var (
	ErrUnsupportedFormat = errors.New("unsupported image format")
	ErrIngestionFailed   = errors.New("image ingestion failed")
	ErrStorage           = errors.New("storage operation failed")
)

// Outbound delivery errors
var (
	ErrEmailDelivery  = errors.New("email delivery failed")
	ErrConfigMissing  = errors.New("configuration missing")
	ErrServiceTimeout = errors.New("service timeout")
)

func NewUnsupportedFormatError(extension string, allowed []string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusUnsupportedMediaType,
		err:        ErrUnsupportedFormat,
		Details:    fmt.Sprintf("extension %q is not one of %s", extension, strings.Join(allowed, ", ")),
		Field:      "image",
	}
}

func NewIngestionFailedError(cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusUnprocessableEntity,
		err:        ErrIngestionFailed,
		Details:    "The uploaded image could not be processed",
		Cause:      cause,
		Field:      "image",
	}
}

func NewStorageError(operation, location string, cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusInternalServerError,
		err:        ErrStorage,
		Details:    fmt.Sprintf("Failed to %s %s", operation, location),
		Cause:      cause,
	}
}

func NewEmailDeliveryError(statusCode int, message string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadGateway,
		err:        ErrEmailDelivery,
		Details:    fmt.Sprintf("provider returned %d: %s", statusCode, message),
	}
}

func NewConfigError(configName string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusInternalServerError,
		err:        ErrConfigMissing,
		Details:    fmt.Sprintf("%s is not configured", configName),
		Field:      configName,
	}
}

func IsUnsupportedFormat(err error) bool {
	return errors.Is(err, ErrUnsupportedFormat)
}

func IsIngestionFailed(err error) bool {
	return errors.Is(err, ErrIngestionFailed)
}
