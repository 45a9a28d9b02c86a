// Package dberr maps storage failures (gorm, postgres, sqlite, redis) onto errs codes.
package dberr

import (
	"context"
	"errors"
	"net"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/trackdechets/bsd-events/internal/domain/errs"
)

// MapError maps infrastructure failures into coded errors. Already coded errors pass through.
func MapError(op string, err error) error {
	if err == nil {
		return nil
	}
	var coded *errs.Error
	if errors.As(err, &coded) {
		return err
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound), errors.Is(err, redis.Nil):
		return errs.Wrap(errs.CodeNotFound, op, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return errs.Wrap(errs.CodeRetryable, op, err)
	case errors.Is(err, redis.ErrClosed):
		return errs.Wrap(errs.CodeRetryable, op, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch strings.TrimSpace(pgErr.Code) {
		case "40001", "40P01", "55P03":
			return errs.Wrap(errs.CodeRetryable, op, err) // serialization/deadlock/lock_not_available
		case "57P01", "57P03", "53300":
			return errs.Wrap(errs.CodeRetryable, op, err) // admin_shutdown/cannot_connect_now/too_many_connections
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return errs.Wrap(errs.CodeRetryable, op, err)
	}

	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	switch {
	case strings.Contains(msg, "deadlock"),
		strings.Contains(msg, "serialization"),
		strings.Contains(msg, "timeout"),
		strings.Contains(msg, "temporar"),
		strings.Contains(msg, "connection refused"),
		strings.Contains(msg, "connection reset"),
		strings.Contains(msg, "database is locked"),
		strings.Contains(msg, "loading"):
		return errs.Wrap(errs.CodeRetryable, op, err)
	default:
		return errs.Wrap(errs.CodeInternal, op, err)
	}
}

// Retryable reports whether err is worth another attempt after a pause.
func Retryable(err error) bool {
	return errs.IsCode(err, errs.CodeRetryable)
}
