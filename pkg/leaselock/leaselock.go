// Package leaselock implements expiring advisory locks on Postgres. The
// evaluation worker claims a job key before processing it, so a redelivered
// queue message or a second worker replica never evaluates the same job
// concurrently. A claim is held by a random holder token and auto-renewed in
// the background until released; if renewal fails the claim's context is
// cancelled so the holder can stop early instead of racing a new claimant.
package leaselock

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

var (
	// ErrHeld means another holder owns a live claim on the key.
	ErrHeld = errors.New("lease already held")
	// ErrLost means the claim expired and was taken over before renewal.
	ErrLost = errors.New("lease lost")
)

type querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Locker hands out claims backed by the job_leases table.
type Locker struct {
	db querier
}

// New creates a Locker on the shared connection pool.
func New(pool *pgxpool.Pool) *Locker {
	return &Locker{db: pool}
}

// Options tunes claim acquisition. The zero value claims with a 5 minute TTL,
// renews at half the TTL, and fails fast when the key is held.
type Options struct {
	// TTL is how long the claim survives without renewal.
	TTL time.Duration
	// RenewEvery is the background renewal interval, clamped below TTL.
	RenewEvery time.Duration

	// Wait retries acquisition instead of returning ErrHeld.
	Wait bool
	// WaitInterval is the base delay between acquisition attempts.
	WaitInterval time.Duration
}

// Claim is a held lease. Context is cancelled if the lease is lost or
// released, so long-running work should derive from it.
type Claim struct {
	Key    string
	Holder string

	Context context.Context

	locker *Locker
	cancel context.CancelCauseFunc

	stopOnce sync.Once
	stopCh   chan struct{}
}

// WithClaim acquires the key, runs fn under the claim's context, and releases
// the claim regardless of fn's outcome.
func (l *Locker) WithClaim(ctx context.Context, key string, opts Options, fn func(ctx context.Context) error) error {
	claim, err := l.Acquire(ctx, key, opts)
	if err != nil {
		return err
	}
	defer func() {
		_ = claim.Release(context.Background())
	}()
	return fn(claim.Context)
}

// Acquire claims the key, taking over expired claims. Without Wait it
// returns ErrHeld when a live claim exists.
func (l *Locker) Acquire(ctx context.Context, key string, opts Options) (*Claim, error) {
	if key == "" {
		return nil, errors.New("lease key is empty")
	}

	if opts.TTL <= 0 {
		opts.TTL = 5 * time.Minute
	}
	if opts.RenewEvery <= 0 || opts.RenewEvery >= opts.TTL {
		opts.RenewEvery = max(opts.TTL/2, time.Second)
	}
	if opts.WaitInterval <= 0 {
		opts.WaitInterval = 250 * time.Millisecond
	}
	ttlMs := opts.TTL.Milliseconds()

	holder, err := gonanoid.New()
	if err != nil {
		return nil, err
	}

	for {
		var claimed string
		err := l.db.QueryRow(ctx, claimSQL, key, holder, ttlMs).Scan(&claimed)
		if err == nil {
			break
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		if !opts.Wait {
			return nil, ErrHeld
		}
		// Jitter spreads competing workers apart.
		if err := sleep(ctx, opts.WaitInterval+time.Duration(rand.Int64N(int64(opts.WaitInterval)))); err != nil {
			return nil, err
		}
	}

	claimCtx, cancel := context.WithCancelCause(ctx)
	c := &Claim{
		Key:     key,
		Holder:  holder,
		Context: claimCtx,
		locker:  l,
		cancel:  cancel,
		stopCh:  make(chan struct{}),
	}
	go c.renewLoop(opts.RenewEvery, ttlMs)
	return c, nil
}

// Release drops the claim. Releasing twice is harmless.
func (c *Claim) Release(ctx context.Context) error {
	c.stopOnce.Do(func() {
		close(c.stopCh)
		c.cancel(context.Canceled)
	})
	_, err := c.locker.db.Exec(ctx, releaseSQL, c.Key, c.Holder)
	return err
}

func (c *Claim) renewLoop(every time.Duration, ttlMs int64) {
	t := time.NewTicker(every)
	defer t.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-c.Context.Done():
			return
		case <-t.C:
			if err := c.renewOnce(ttlMs); err != nil {
				c.cancel(err)
				return
			}
		}
	}
}

func (c *Claim) renewOnce(ttlMs int64) error {
	for attempt := range 3 {
		renewCtx, cancel := context.WithTimeout(c.Context, 15*time.Second)
		var renewed string
		err := c.locker.db.QueryRow(renewCtx, renewSQL, c.Key, c.Holder, ttlMs).Scan(&renewed)
		cancel()
		if err == nil {
			return nil
		}
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrLost
		}
		if attempt == 2 {
			return err
		}
		if err := sleep(c.Context, 200*time.Millisecond); err != nil {
			return err
		}
	}
	return ErrLost
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

const claimSQL = `
INSERT INTO job_leases (job_key, holder, expires_at)
VALUES ($1, $2, now() + ($3::bigint * interval '1 millisecond'))
ON CONFLICT (job_key) DO UPDATE
SET holder     = EXCLUDED.holder,
    expires_at = EXCLUDED.expires_at
WHERE job_leases.expires_at < now()
   OR job_leases.holder = EXCLUDED.holder
RETURNING job_key;
`

const renewSQL = `
UPDATE job_leases
SET expires_at = now() + ($3::bigint * interval '1 millisecond')
WHERE job_key = $1 AND holder = $2
RETURNING job_key;
`

const releaseSQL = `
DELETE FROM job_leases
WHERE job_key = $1 AND holder = $2;
`
