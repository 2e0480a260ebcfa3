// Package lock serializes read-validate-write sequences per key, e.g. one
// customer's ledger. A Redis-backed locker is used when several server
// processes share the same database.
package lock

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"shop-ledger/internal/apperr"
	"shop-ledger/internal/config"
)

// Locker hands out an exclusive hold on key. The returned func releases it.
type Locker interface {
	Obtain(ctx context.Context, key string) (release func(), err error)
}

// ---------------------------------------------------------------------
// Local
// ---------------------------------------------------------------------

type Local struct {
	mu   sync.Mutex
	held map[string]*entry
}

type entry struct {
	ch   chan struct{}
	refs int
}

func NewLocal() *Local {
	return &Local{held: make(map[string]*entry)}
}

func (l *Local) Obtain(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	e, ok := l.held[key]
	if !ok {
		e = &entry{ch: make(chan struct{}, 1)}
		l.held[key] = e
	}
	e.refs++
	l.mu.Unlock()

	select {
	case e.ch <- struct{}{}:
	case <-ctx.Done():
		l.drop(key, e)
		return nil, apperr.Conflict("ledger is busy, try again")
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-e.ch
			l.drop(key, e)
		})
	}, nil
}

func (l *Local) drop(key string, e *entry) {
	l.mu.Lock()
	e.refs--
	if e.refs == 0 {
		delete(l.held, key)
	}
	l.mu.Unlock()
}

// ---------------------------------------------------------------------
// Redis
// ---------------------------------------------------------------------

type Redis struct {
	client *redislock.Client
	ttl    time.Duration
	log    *logrus.Logger
}

func NewRedis(rdb redis.UniversalClient, ttl time.Duration) *Redis {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &Redis{client: redislock.New(rdb), ttl: ttl, log: config.GetLogger()}
}

// Obtain retries every 100ms until ctx ends or ttl elapses.
func (r *Redis) Obtain(ctx context.Context, key string) (func(), error) {
	lockKey := "shop-ledger:lock:" + key
	waitCtx, cancel := context.WithTimeout(ctx, r.ttl)
	defer cancel()

	lk, err := r.client.Obtain(waitCtx, lockKey, r.ttl, &redislock.Options{
		RetryStrategy: redislock.LinearBackoff(100 * time.Millisecond),
	})
	if errors.Is(err, redislock.ErrNotObtained) || errors.Is(err, context.DeadlineExceeded) {
		config.LogError(r.log, "lock", "Obtain", "could not obtain lock", key, err)
		return nil, apperr.Conflict("ledger is busy, try again")
	} else if err != nil {
		config.LogError(r.log, "lock", "Obtain", "error obtaining lock", key, err)
		return nil, apperr.Storage("lock: obtain", err)
	}

	return func() {
		if releaseErr := lk.Release(context.Background()); releaseErr != nil && !errors.Is(releaseErr, redislock.ErrLockNotHeld) {
			r.log.WithFields(logrus.Fields{"key": key}).Warn("failed to release redis lock: " + releaseErr.Error())
		}
	}, nil
}

// compile-time interface checks
var (
	_ Locker = (*Local)(nil)
	_ Locker = (*Redis)(nil)
)
