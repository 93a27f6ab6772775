package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	authDomain "github.com/allisson/screening/internal/auth/domain"
)

// maxCachedUsers bounds the lookup cache; expired entries are swept when it is exceeded.
const maxCachedUsers = 10_000

type cachedUser struct {
	user      authDomain.User
	expiresAt time.Time
}

// cachedUserLookup implements UserLookup on top of a UserRepository with a short TTL cache.
// Concurrent misses for the same user share one repository call.
type cachedUserLookup struct {
	repo    UserRepository
	ttl     time.Duration
	timeout time.Duration
	now     func() time.Time

	mu      sync.RWMutex
	entries map[uuid.UUID]cachedUser
	gen     uint64 // bumped by Invalidate so in-flight fetches do not repopulate stale records
	group   singleflight.Group
}

// NewCachedUserLookup creates a UserLookup. A zero ttl disables caching; timeout bounds
// every repository call.
func NewCachedUserLookup(repo UserRepository, ttl, timeout time.Duration) UserLookup {
	return &cachedUserLookup{
		repo:    repo,
		ttl:     ttl,
		timeout: timeout,
		now:     time.Now,
		entries: make(map[uuid.UUID]cachedUser),
	}
}

// LookupUser implements UserLookup.
func (l *cachedUserLookup) LookupUser(ctx context.Context, userID uuid.UUID) (*authDomain.User, error) {
	if user, ok := l.get(userID); ok {
		return user, nil
	}

	// The shared call must not die with the first caller's context, so it runs detached
	// with its own timeout while each caller still honours its own cancellation.
	ch := l.group.DoChan(userID.String(), func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), l.timeout)
		defer cancel()

		l.mu.RLock()
		gen := l.gen
		l.mu.RUnlock()

		user, err := l.repo.Get(fetchCtx, userID)
		if err != nil {
			if fetchCtx.Err() != nil {
				return nil, fmt.Errorf("user lookup timed out: %w", fetchCtx.Err())
			}
			return nil, err
		}
		l.set(user, gen)
		return user, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		user := *res.Val.(*authDomain.User)
		return &user, nil
	}
}

// Invalidate implements UserLookup.
func (l *cachedUserLookup) Invalidate(userID uuid.UUID) {
	l.mu.Lock()
	delete(l.entries, userID)
	l.gen++
	l.mu.Unlock()
	l.group.Forget(userID.String())
}

func (l *cachedUserLookup) get(userID uuid.UUID) (*authDomain.User, bool) {
	l.mu.RLock()
	entry, ok := l.entries[userID]
	l.mu.RUnlock()

	if !ok || !l.now().Before(entry.expiresAt) {
		return nil, false
	}
	user := entry.user
	return &user, true
}

func (l *cachedUserLookup) set(user *authDomain.User, gen uint64) {
	if l.ttl <= 0 {
		return
	}

	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()

	if gen != l.gen {
		return
	}
	if len(l.entries) >= maxCachedUsers {
		for id, entry := range l.entries {
			if !now.Before(entry.expiresAt) {
				delete(l.entries, id)
			}
		}
	}
	l.entries[user.ID] = cachedUser{user: *user, expiresAt: now.Add(l.ttl)}
}
