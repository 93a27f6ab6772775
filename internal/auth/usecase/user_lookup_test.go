package usecase

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	authDomain "github.com/allisson/screening/internal/auth/domain"
	usecaseMocks "github.com/allisson/screening/internal/auth/usecase/mocks"
)

func newTestLookup(repo UserRepository, ttl, timeout time.Duration) *cachedUserLookup {
	return NewCachedUserLookup(repo, ttl, timeout).(*cachedUserLookup)
}

func activeUser() *authDomain.User {
	return &authDomain.User{
		ID:     uuid.Must(uuid.NewV7()),
		Email:  "qa@example.com",
		Role:   authDomain.RoleQASpecialist,
		Status: authDomain.UserStatusActive,
	}
}

func TestCachedUserLookup_CachesWithinTTL(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx := context.Background()
	user := activeUser()
	repo := &usecaseMocks.MockUserRepository{}
	repo.On("Get", mock.Anything, user.ID).Return(user, nil).Twice()

	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	lookup := newTestLookup(repo, 10*time.Second, time.Second)
	lookup.now = func() time.Time { return now }

	got, err := lookup.LookupUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	now = now.Add(9 * time.Second)
	_, err = lookup.LookupUser(ctx, user.ID)
	require.NoError(t, err)
	repo.AssertNumberOfCalls(t, "Get", 1)

	now = now.Add(2 * time.Second)
	_, err = lookup.LookupUser(ctx, user.ID)
	require.NoError(t, err)
	repo.AssertNumberOfCalls(t, "Get", 2)
}

func TestCachedUserLookup_ReturnsCopies(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx := context.Background()
	user := activeUser()
	repo := &usecaseMocks.MockUserRepository{}
	repo.On("Get", mock.Anything, user.ID).Return(user, nil).Once()

	lookup := newTestLookup(repo, time.Minute, time.Second)

	first, err := lookup.LookupUser(ctx, user.ID)
	require.NoError(t, err)
	first.Status = authDomain.UserStatusSuspended

	second, err := lookup.LookupUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, authDomain.UserStatusActive, second.Status)
}

func TestCachedUserLookup_Invalidate(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx := context.Background()
	user := activeUser()
	deactivated := *user
	deactivated.Status = authDomain.UserStatusInactive

	repo := &usecaseMocks.MockUserRepository{}
	repo.On("Get", mock.Anything, user.ID).Return(user, nil).Once()
	repo.On("Get", mock.Anything, user.ID).Return(&deactivated, nil).Once()

	lookup := newTestLookup(repo, time.Minute, time.Second)

	got, err := lookup.LookupUser(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, got.IsActive())

	lookup.Invalidate(user.ID)

	got, err = lookup.LookupUser(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive())
	repo.AssertExpectations(t)
}

func TestCachedUserLookup_NotFoundIsNotCached(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx := context.Background()
	id := uuid.Must(uuid.NewV7())
	repo := &usecaseMocks.MockUserRepository{}
	repo.On("Get", mock.Anything, id).Return(nil, authDomain.ErrUserNotFound).Twice()

	lookup := newTestLookup(repo, time.Minute, time.Second)

	for i := 0; i < 2; i++ {
		_, err := lookup.LookupUser(ctx, id)
		assert.ErrorIs(t, err, authDomain.ErrUserNotFound)
	}
	repo.AssertNumberOfCalls(t, "Get", 2)
}

// slowRepo blocks Get until release is closed or the context ends.
type slowRepo struct {
	UserRepository
	user    *authDomain.User
	calls   atomic.Int32
	release chan struct{}
}

func (r *slowRepo) Get(ctx context.Context, _ uuid.UUID) (*authDomain.User, error) {
	r.calls.Add(1)
	select {
	case <-r.release:
		return r.user, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func TestCachedUserLookup_CoalescesConcurrentMisses(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx := context.Background()
	repo := &slowRepo{user: activeUser(), release: make(chan struct{})}
	lookup := newTestLookup(repo, time.Minute, 5*time.Second)

	const callers = 16
	var wg sync.WaitGroup
	errs := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := lookup.LookupUser(ctx, repo.user.ID)
			errs <- err
		}()
	}

	require.Eventually(t, func() bool { return repo.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	close(repo.release)
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, int32(1), repo.calls.Load())
}

func TestCachedUserLookup_TimeoutFailsClosed(t *testing.T) {
	defer goleak.VerifyNone(t)

	repo := &slowRepo{user: activeUser(), release: make(chan struct{})}
	lookup := newTestLookup(repo, time.Minute, 20*time.Millisecond)

	user, err := lookup.LookupUser(context.Background(), repo.user.ID)
	require.Error(t, err)
	assert.Nil(t, user)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Contains(t, err.Error(), "timed out")

	_, cached := lookup.get(repo.user.ID)
	assert.False(t, cached)
}

func TestCachedUserLookup_CallerCancellation(t *testing.T) {
	defer goleak.VerifyNone(t)

	repo := &slowRepo{user: activeUser(), release: make(chan struct{})}
	lookup := newTestLookup(repo, time.Minute, 50*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := lookup.LookupUser(ctx, repo.user.ID)
	assert.ErrorIs(t, err, context.Canceled)

	// The detached fetch still runs once and ends on its own timeout.
	require.Eventually(t, func() bool { return repo.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(100 * time.Millisecond)
	_, cached := lookup.get(repo.user.ID)
	assert.False(t, cached)
}

func TestCachedUserLookup_ZeroTTLDisablesCache(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx := context.Background()
	user := activeUser()
	repo := &usecaseMocks.MockUserRepository{}
	repo.On("Get", mock.Anything, user.ID).Return(user, nil).Twice()

	lookup := newTestLookup(repo, 0, time.Second)
	_, err := lookup.LookupUser(ctx, user.ID)
	require.NoError(t, err)
	_, err = lookup.LookupUser(ctx, user.ID)
	require.NoError(t, err)
	repo.AssertNumberOfCalls(t, "Get", 2)
}
