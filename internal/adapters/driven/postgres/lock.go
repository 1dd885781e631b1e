package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"github.com/custodia-labs/docucortex/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.DistributedLock = (*AdvisoryLock)(nil)

// AdvisoryLock implements DistributedLock using PostgreSQL session advisory locks.
//
// Advisory locks belong to the session that took them, so each held lock
// pins one pooled connection until Release. Limitations:
// - TTL is ignored; the lock lasts until Release or the connection drops
// - Extend only checks that the lock is still held by this process
//
// Redis locks are preferred when REDIS_URL is configured.
type AdvisoryLock struct {
	db *DB

	mu    sync.Mutex
	conns map[string]*sql.Conn
}

// NewAdvisoryLock creates a new PostgreSQL advisory lock adapter.
func NewAdvisoryLock(db *DB) *AdvisoryLock {
	return &AdvisoryLock{
		db:    db,
		conns: make(map[string]*sql.Conn),
	}
}

// hashLockName converts a lock name to the 64-bit key PostgreSQL expects.
func hashLockName(name string) int64 {
	h := fnv.New64a()
	h.Write([]byte("docucortex:lock:" + name))
	return int64(h.Sum64())
}

// Acquire tries pg_try_advisory_lock without blocking.
// Acquiring a name this process already holds returns false.
func (l *AdvisoryLock) Acquire(ctx context.Context, name string, ttl time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, held := l.conns[name]; held {
		return false, nil
	}

	conn, err := l.db.Conn(ctx)
	if err != nil {
		return false, fmt.Errorf("get connection: %w", err)
	}

	var acquired bool
	if err := conn.QueryRowContext(ctx, "SELECT pg_try_advisory_lock($1)", hashLockName(name)).Scan(&acquired); err != nil {
		conn.Close()
		return false, err
	}
	if !acquired {
		conn.Close()
		return false, nil
	}

	l.conns[name] = conn
	return true, nil
}

// Release unlocks on the session that holds the lock and returns its connection.
// Safe to call when the lock is not held.
func (l *AdvisoryLock) Release(ctx context.Context, name string) error {
	l.mu.Lock()
	conn, held := l.conns[name]
	delete(l.conns, name)
	l.mu.Unlock()

	if !held {
		return nil
	}
	defer conn.Close()

	var released bool
	if err := conn.QueryRowContext(ctx, "SELECT pg_advisory_unlock($1)", hashLockName(name)).Scan(&released); err != nil {
		// Closing a broken session drops its locks
		_ = conn.Raw(func(any) error { return driver.ErrBadConn })
		return err
	}
	return nil
}

// Extend reports whether the lock is still held; advisory locks have no TTL.
func (l *AdvisoryLock) Extend(ctx context.Context, name string, ttl time.Duration) error {
	l.mu.Lock()
	conn, held := l.conns[name]
	l.mu.Unlock()

	if !held {
		return fmt.Errorf("lock %s not held", name)
	}
	return conn.PingContext(ctx)
}

// Ping checks if the PostgreSQL backend is healthy.
func (l *AdvisoryLock) Ping(ctx context.Context) error {
	return l.db.PingContext(ctx)
}
