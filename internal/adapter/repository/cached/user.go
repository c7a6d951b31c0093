package cached

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"user-crud-api/internal/adapter/cache"
	domain "user-crud-api/internal/domain/user"
	"user-crud-api/internal/usecase/user"
)

// loadTimeout bounds a shared database read once it is detached from callers.
const loadTimeout = 5 * time.Second

// UserRepository decorates a persistent user.Repository with a cache-aside
// read path for GetByID. Cache failures degrade to the database and are only
// logged. Misses are never cached.
type UserRepository struct {
	dbRepo user.Repository
	cache  cache.UserCache
	log    *zap.Logger
	group  singleflight.Group
}

var _ user.Repository = (*UserRepository)(nil)

// NewUserRepository creates a new caching decorator around dbRepo.
func NewUserRepository(dbRepo user.Repository, c cache.UserCache, log *zap.Logger) *UserRepository {
	return &UserRepository{
		dbRepo: dbRepo,
		cache:  c,
		log:    log,
	}
}

// Create delegates to the DB repository.
func (r *UserRepository) Create(ctx context.Context, u *domain.User) (int64, error) {
	return r.dbRepo.Create(ctx, u)
}

// List delegates to the DB repository.
func (r *UserRepository) List(ctx context.Context) ([]domain.User, error) {
	return r.dbRepo.List(ctx)
}

// GetByID serves from cache when possible. Concurrent misses for the same ID
// share a single database read, which is not bound to any one caller's
// cancellation; each caller still stops waiting when its own ctx ends.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	if u := r.fromCache(ctx, id); u != nil {
		return u, nil
	}

	ch := r.group.DoChan(strconv.FormatInt(id, 10), func() (any, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), loadTimeout)
		defer cancel()
		return r.load(loadCtx, id)
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res = <-ch:
	}
	if res.Err != nil {
		return nil, res.Err
	}

	u, _ := res.Val.(*domain.User)
	if u == nil {
		return nil, nil
	}
	// Callers must not share the instance handed to other waiters
	cp := *u
	return &cp, nil
}

// load reads id from the database and fills the cache unless the user was
// invalidated after the read began.
func (r *UserRepository) load(ctx context.Context, id int64) (*domain.User, error) {
	// Another caller may have filled the cache while we waited
	if u := r.fromCache(ctx, id); u != nil {
		return u, nil
	}

	version, verr := r.cache.Version(ctx, id)
	if verr != nil {
		r.log.Warn("cache version error, result will not be cached", zap.Int64("id", id), zap.Error(verr))
	}

	u, err := r.dbRepo.GetByID(ctx, id)
	if err != nil || u == nil || verr != nil {
		return u, err
	}

	if _, err := r.cache.SetIfVersion(ctx, u, version); err != nil {
		r.log.Warn("failed to cache user", zap.Int64("id", id), zap.Error(err))
	}
	return u, nil
}

// Update writes through to the DB and drops the cached copy.
func (r *UserRepository) Update(ctx context.Context, u *domain.User) (bool, error) {
	updated, err := r.dbRepo.Update(ctx, u)
	if err != nil {
		return false, err
	}
	if updated {
		r.invalidate(ctx, u.ID)
	}
	return updated, nil
}

// Delete removes the user from the DB and drops the cached copy.
func (r *UserRepository) Delete(ctx context.Context, id int64) (bool, error) {
	deleted, err := r.dbRepo.Delete(ctx, id)
	if err != nil {
		return false, err
	}
	if deleted {
		r.invalidate(ctx, id)
	}
	return deleted, nil
}

func (r *UserRepository) fromCache(ctx context.Context, id int64) *domain.User {
	u, err := r.cache.Get(ctx, id)
	if err != nil {
		r.log.Warn("cache get error, falling back to database", zap.Int64("id", id), zap.Error(err))
		return nil
	}
	return u
}

func (r *UserRepository) invalidate(ctx context.Context, id int64) {
	if err := r.cache.Delete(ctx, id); err != nil {
		r.log.Warn("failed to invalidate cached user", zap.Int64("id", id), zap.Error(err))
	}
}
