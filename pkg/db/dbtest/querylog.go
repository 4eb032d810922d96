package dbtest

import (
	"context"
	"sync"
	"time"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// QueryErrors is a gorm logger that keeps the error of every traced statement.
type QueryErrors struct {
	mu   sync.Mutex
	errs []error
}

// RecordQueryErrors returns a session of conn that reports into a fresh QueryErrors.
func RecordQueryErrors(conn *gorm.DB) (*gorm.DB, *QueryErrors) {
	recorder := &QueryErrors{}
	return conn.Session(&gorm.Session{Logger: recorder}), recorder
}

func (q *QueryErrors) LogMode(gormlogger.LogLevel) gormlogger.Interface { return q }

func (q *QueryErrors) Info(context.Context, string, ...any) {}

func (q *QueryErrors) Warn(context.Context, string, ...any) {}

func (q *QueryErrors) Error(context.Context, string, ...any) {}

func (q *QueryErrors) Trace(_ context.Context, _ time.Time, _ func() (string, int64), err error) {
	if err == nil {
		return
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.errs = append(q.errs, err)
}

// Errors returns the recorded statement errors.
func (q *QueryErrors) Errors() []error {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]error(nil), q.errs...)
}
