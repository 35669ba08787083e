package util

import (
	"strings"
	"time"
)

const (
	maxRetries = 3
	baseDelay  = 100 * time.Millisecond
)

// RetryOnLock retries the given function if it fails with a SQLite lock
// error, backing off 100ms, 200ms, 400ms between attempts. Any other error
// returns immediately.
func RetryOnLock(operation func() error) error {
	var err error
	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if strings.Contains(err.Error(), "database is locked") {
			time.Sleep(baseDelay * time.Duration(1<<i))
			continue
		}

		return err
	}

	return err
}

// RetryOnLockWithResult is RetryOnLock for operations that return a value
func RetryOnLockWithResult[T any](operation func() (T, error)) (T, error) {
	var result T
	var err error

	for i := 0; i < maxRetries; i++ {
		result, err = operation()
		if err == nil {
			return result, nil
		}

		if strings.Contains(err.Error(), "database is locked") {
			time.Sleep(baseDelay * time.Duration(1<<i))
			continue
		}

		return result, err
	}

	return result, err
}
