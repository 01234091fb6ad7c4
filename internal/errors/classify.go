package errors

import (
	"context"
	"database/sql/driver"
	stderrors "errors"
	"net"
	"strings"
	"syscall"

	"gorm.io/gorm"
)

// connectivitySignatures are fragments of driver error messages that indicate
// the backing store could not be reached rather than that the query was bad.
var connectivitySignatures = []string{
	"connection",
	"database is closed",
	"database error",
	"no such host",
	"broken pipe",
	"i/o timeout",
	"server closed",
}

// FromStore converts an error returned by the record store into an AppError.
// A missing record maps to notFound (ErrNotFound when nil); connectivity
// failures map to ErrServiceUnavailable; anything else is an internal error
// with the original error preserved for diagnostics. AppErrors pass through.
func FromStore(err error, notFound *AppError) error {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}

	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		if notFound == nil {
			return ErrNotFound
		}
		return notFound
	}

	if IsConnectivity(err) {
		return Wrap(ErrServiceUnavailable, err)
	}

	return Wrap(ErrInternalServer, err)
}

// uniqueSignatures are driver messages for a unique index violation:
// postgres, mysql and sqlite in that order.
var uniqueSignatures = []string{
	"duplicate key value violates unique constraint",
	"duplicate entry",
	"unique constraint failed",
}

// IsUniqueViolation reports whether err was caused by a unique index.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if stderrors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, sig := range uniqueSignatures {
		if strings.Contains(msg, sig) {
			return true
		}
	}
	return false
}

// IsConnectivity reports whether err looks like the store being unreachable.
func IsConnectivity(err error) bool {
	if err == nil {
		return false
	}
	if stderrors.Is(err, driver.ErrBadConn) ||
		stderrors.Is(err, context.DeadlineExceeded) ||
		stderrors.Is(err, syscall.ECONNREFUSED) ||
		stderrors.Is(err, syscall.ECONNRESET) {
		return true
	}

	var netErr net.Error
	if stderrors.As(err, &netErr) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, sig := range connectivitySignatures {
		if strings.Contains(msg, sig) {
			return true
		}
	}
	return false
}
