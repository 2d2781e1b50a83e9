package service

import (
	"context"

	"socialite-be/internal/dto"
	"socialite-be/internal/pkg/apperror"
	"socialite-be/internal/repository/memory"
	"socialite-be/internal/repository/specification"
	"socialite-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

// ProjectionResolver turns user ids into the small projections embedded in
// chat and notification payloads, going through the cache tiers first.
type ProjectionResolver struct {
	uowFactory unitofwork.RepositoryFactory
	cache      *memory.ProjectionCache
}

func NewProjectionResolver(uowFactory unitofwork.RepositoryFactory, cache *memory.ProjectionCache) *ProjectionResolver {
	return &ProjectionResolver{uowFactory: uowFactory, cache: cache}
}

func (r *ProjectionResolver) Resolve(ctx context.Context, userID uuid.UUID) (dto.UserProjection, error) {
	if p, ok := r.cache.Get(ctx, userID); ok {
		return dto.UserProjection{Id: p.Id, Username: p.Username, ProfilePic: p.ProfilePic}, nil
	}

	uow := r.uowFactory.NewUnitOfWork(ctx)
	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userID})
	if err != nil {
		return dto.UserProjection{}, apperror.Storage("failed to load user projection", err)
	}
	if user == nil {
		return dto.UserProjection{}, apperror.NotFound("user not found")
	}

	p := user.Projection()
	r.cache.Set(ctx, p)
	return dto.UserProjection{Id: p.Id, Username: p.Username, ProfilePic: p.ProfilePic}, nil
}

// ResolveMany resolves a batch, skipping ids that no longer exist.
func (r *ProjectionResolver) ResolveMany(ctx context.Context, userIDs []uuid.UUID) ([]dto.UserProjection, error) {
	out := make([]dto.UserProjection, 0, len(userIDs))
	for _, id := range userIDs {
		p, err := r.Resolve(ctx, id)
		if err != nil {
			if apperror.IsNotFound(err) {
				continue
			}
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}
