package service

import (
	"context"
	"strings"
	"time"

	"socialite-be/internal/dto"
	"socialite-be/internal/entity"
	"socialite-be/internal/pkg/apperror"
	"socialite-be/internal/pkg/logger"
	"socialite-be/internal/repository/memory"
	"socialite-be/internal/repository/specification"
	"socialite-be/internal/repository/unitofwork"

	"socialite-be/pkg/events"
	pktNats "socialite-be/pkg/nats"

	"github.com/google/uuid"
)

type IUserService interface {
	GetCurrentUser(ctx context.Context, userID uuid.UUID) (*dto.UserWithStatusResponse, error)
	GetUser(ctx context.Context, currentUserID, targetUserID uuid.UUID) (*dto.UserWithStatusResponse, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, req *dto.UpdateProfileRequest) (*dto.UpdateProfileResponse, error)

	Follow(ctx context.Context, currentUserID, targetUserID uuid.UUID) (*dto.FollowResponse, error)
	AcceptFollowRequest(ctx context.Context, currentUserID, requesterID uuid.UUID) (*dto.FollowResponse, error)
	RejectFollowRequest(ctx context.Context, currentUserID, requesterID uuid.UUID) (*dto.FollowResponse, error)
	ListFollowRequests(ctx context.Context, userID uuid.UUID) ([]dto.UserProjection, error)
	ListFollowersFollowing(ctx context.Context, userID uuid.UUID, kind string) ([]dto.UserProjection, error)

	SearchUsers(ctx context.Context, term string) ([]dto.UserResponse, error)
	ListUsers(ctx context.Context, currentUserID uuid.UUID) ([]dto.UserWithStatusResponse, error)
	FindFriends(ctx context.Context, userID uuid.UUID) ([]dto.UserProjection, error)
}

type userService struct {
	uowFactory     unitofwork.RepositoryFactory
	projections    *memory.ProjectionCache
	chatService    IChatService
	eventPublisher *pktNats.Publisher
	logger         logger.ILogger
}

func NewUserService(
	uowFactory unitofwork.RepositoryFactory,
	projections *memory.ProjectionCache,
	chatService IChatService,
	eventPublisher *pktNats.Publisher,
	log logger.ILogger,
) IUserService {
	return &userService{
		uowFactory:     uowFactory,
		projections:    projections,
		chatService:    chatService,
		eventPublisher: eventPublisher,
		logger:         log,
	}
}

func (s *userService) GetCurrentUser(ctx context.Context, userID uuid.UUID) (*dto.UserWithStatusResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userID})
	if err != nil {
		return nil, apperror.Storage("failed to load user", err)
	}
	if user == nil {
		return nil, apperror.NotFound("user not found")
	}

	resp := toUserWithStatus(user, nil)
	return &resp, nil
}

func (s *userService) GetUser(ctx context.Context, currentUserID, targetUserID uuid.UUID) (*dto.UserWithStatusResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	target, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: targetUserID})
	if err != nil {
		return nil, apperror.Storage("failed to load user", err)
	}
	if target == nil {
		return nil, apperror.NotFound("user not found")
	}

	current, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: currentUserID})
	if err != nil {
		return nil, apperror.Storage("failed to load current user", err)
	}

	resp := toUserWithStatus(target, current)
	return &resp, nil
}

// UpdateProfile applies a typed partial update: only the fields present in
// the request change, and the response reports exactly which ones did.
func (s *userService) UpdateProfile(ctx context.Context, userID uuid.UUID, req *dto.UpdateProfileRequest) (*dto.UpdateProfileResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userID})
	if err != nil {
		return nil, apperror.Storage("failed to load user", err)
	}
	if user == nil {
		return nil, apperror.NotFound("user not found")
	}

	changed := make([]string, 0, 4)
	setString := func(name string, dst *string, src *string) {
		if src != nil && *src != *dst {
			*dst = *src
			changed = append(changed, name)
		}
	}

	// Username and email carry uniqueness constraints, check before applying.
	if req.Username != nil && *req.Username != user.Username {
		existing, err := uow.UserRepository().FindOne(ctx, specification.ByUsername{Username: *req.Username})
		if err != nil {
			return nil, apperror.Storage("failed to check username", err)
		}
		if existing != nil {
			return nil, apperror.Conflict("username already taken")
		}
	}
	if req.Email != nil && *req.Email != user.Email {
		existing, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: *req.Email})
		if err != nil {
			return nil, apperror.Storage("failed to check email", err)
		}
		if existing != nil {
			return nil, apperror.Conflict("email already registered")
		}
	}

	setString("fullName", &user.FullName, req.FullName)
	setString("username", &user.Username, req.Username)
	setString("email", &user.Email, req.Email)
	setString("bio", &user.Bio, req.Bio)
	setString("profilePic", &user.ProfilePic, req.ProfilePic)
	setString("coverPhoto", &user.CoverPhoto, req.CoverPhoto)
	setString("website", &user.Website, req.Website)
	setString("location", &user.Location, req.Location)
	setString("phoneNumber", &user.PhoneNumber, req.PhoneNumber)

	if req.Interests != nil {
		user.Interests = *req.Interests
		changed = append(changed, "interests")
	}
	if req.IsPrivate != nil && *req.IsPrivate != user.IsPrivate {
		user.IsPrivate = *req.IsPrivate
		changed = append(changed, "isPrivate")
	}

	if len(changed) > 0 {
		user.UpdatedAt = time.Now()
		if err := uow.UserRepository().Update(ctx, user); err != nil {
			return nil, apperror.Storage("failed to update profile", err)
		}
		// Stale usernames/avatars must not linger in chat payloads.
		s.projections.Invalidate(ctx, user.Id)
	}

	return &dto.UpdateProfileResponse{
		ChangedFields: changed,
		Profile:       toUserResponse(user),
	}, nil
}

// Follow is a toggle against the target's follow state:
// already following -> unfollow; request already pending -> no-op;
// private target -> queue a request; public target -> follow and make sure
// the pair has a chat room.
func (s *userService) Follow(ctx context.Context, currentUserID, targetUserID uuid.UUID) (*dto.FollowResponse, error) {
	if currentUserID == targetUserID {
		return nil, apperror.Validation("you cannot follow yourself")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	target, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: targetUserID})
	if err != nil {
		return nil, apperror.Storage("failed to load target user", err)
	}
	current, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: currentUserID})
	if err != nil {
		return nil, apperror.Storage("failed to load current user", err)
	}
	if target == nil || current == nil {
		return nil, apperror.NotFound("user not found")
	}

	// 1. Toggle off
	if target.IsFollowedBy(currentUserID) {
		target.RemoveFollower(currentUserID)
		current.RemoveFollowing(targetUserID)
		if err := s.saveBoth(ctx, uow, target, current); err != nil {
			return nil, err
		}
		return &dto.FollowResponse{Status: dto.FollowStatusUnfollowed}, nil
	}

	// 2. Request already queued
	if target.HasFollowRequestFrom(currentUserID) {
		return &dto.FollowResponse{Status: dto.FollowStatusAlreadyAsked}, nil
	}

	// 3. Private target: queue a request
	if target.IsPrivate {
		target.AddFollowRequest(currentUserID)
		if err := uow.UserRepository().Update(ctx, target); err != nil {
			return nil, apperror.Storage("failed to save follow request", err)
		}
		s.publishSocial(ctx, events.NewFollowRequestEvent(currentUserID, current.Username, targetUserID))
		return &dto.FollowResponse{Status: dto.FollowStatusRequestSent}, nil
	}

	// 4. Public target: follow directly
	target.AddFollower(currentUserID)
	current.AddFollowing(targetUserID)
	if err := s.saveBoth(ctx, uow, target, current); err != nil {
		return nil, err
	}

	// New mutuals get a chat room right away so the conversation list shows
	// them. Best effort: the follow itself is already durable.
	if _, err := s.chatService.FindOrCreateRoom(ctx, currentUserID, targetUserID); err != nil {
		s.logger.Warn("UserService", "Failed to open chat room after follow", map[string]interface{}{
			"user_id":   currentUserID,
			"target_id": targetUserID,
			"error":     err.Error(),
		})
	}

	s.publishSocial(ctx, events.NewFollowEvent(currentUserID, current.Username, targetUserID))
	return &dto.FollowResponse{Status: dto.FollowStatusFollowing}, nil
}

func (s *userService) AcceptFollowRequest(ctx context.Context, currentUserID, requesterID uuid.UUID) (*dto.FollowResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	current, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: currentUserID})
	if err != nil {
		return nil, apperror.Storage("failed to load current user", err)
	}
	requester, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: requesterID})
	if err != nil {
		return nil, apperror.Storage("failed to load requester", err)
	}
	if current == nil || requester == nil {
		return nil, apperror.NotFound("user not found")
	}
	if !current.HasFollowRequestFrom(requesterID) {
		return nil, apperror.NotFound("no such follow request")
	}

	current.RemoveFollowRequest(requesterID)
	current.AddFollower(requesterID)
	requester.AddFollowing(currentUserID)
	if err := s.saveBoth(ctx, uow, current, requester); err != nil {
		return nil, err
	}

	if _, err := s.chatService.FindOrCreateRoom(ctx, currentUserID, requesterID); err != nil {
		s.logger.Warn("UserService", "Failed to open chat room after accept", map[string]interface{}{
			"user_id":      currentUserID,
			"requester_id": requesterID,
			"error":        err.Error(),
		})
	}

	s.publishSocial(ctx, events.NewFollowAcceptedEvent(currentUserID, current.Username, requesterID))
	return &dto.FollowResponse{Status: dto.FollowStatusAccepted}, nil
}

func (s *userService) RejectFollowRequest(ctx context.Context, currentUserID, requesterID uuid.UUID) (*dto.FollowResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	current, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: currentUserID})
	if err != nil {
		return nil, apperror.Storage("failed to load current user", err)
	}
	if current == nil {
		return nil, apperror.NotFound("user not found")
	}

	current.RemoveFollowRequest(requesterID)
	if err := uow.UserRepository().Update(ctx, current); err != nil {
		return nil, apperror.Storage("failed to save rejection", err)
	}

	return &dto.FollowResponse{Status: dto.FollowStatusRejected}, nil
}

func (s *userService) ListFollowRequests(ctx context.Context, userID uuid.UUID) ([]dto.UserProjection, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userID})
	if err != nil {
		return nil, apperror.Storage("failed to load user", err)
	}
	if user == nil {
		return nil, apperror.NotFound("user not found")
	}

	return s.projectUsers(ctx, uow, user.FollowRequests)
}

func (s *userService) ListFollowersFollowing(ctx context.Context, userID uuid.UUID, kind string) ([]dto.UserProjection, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userID})
	if err != nil {
		return nil, apperror.Storage("failed to load user", err)
	}
	if user == nil {
		return nil, apperror.NotFound("user not found")
	}

	switch kind {
	case "followers":
		return s.projectUsers(ctx, uow, user.Followers)
	case "following":
		return s.projectUsers(ctx, uow, user.Following)
	default:
		return nil, apperror.Validation("invalid type value")
	}
}

func (s *userService) SearchUsers(ctx context.Context, term string) ([]dto.UserResponse, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, apperror.Validation("search term is required")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	users, err := uow.UserRepository().FindAll(ctx, specification.SearchByName{Term: term})
	if err != nil {
		return nil, apperror.Storage("failed to search users", err)
	}

	out := make([]dto.UserResponse, len(users))
	for i, u := range users {
		out[i] = toUserResponse(u)
	}
	return out, nil
}

// ListUsers returns every other user annotated with the friendship status
// relative to the caller.
func (s *userService) ListUsers(ctx context.Context, currentUserID uuid.UUID) ([]dto.UserWithStatusResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	current, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: currentUserID})
	if err != nil {
		return nil, apperror.Storage("failed to load current user", err)
	}
	if current == nil {
		return nil, apperror.NotFound("user not found")
	}

	users, err := uow.UserRepository().FindAll(ctx, specification.NotID{ID: currentUserID})
	if err != nil {
		return nil, apperror.Storage("failed to load users", err)
	}

	out := make([]dto.UserWithStatusResponse, len(users))
	for i, u := range users {
		out[i] = toUserWithStatus(u, current)
	}
	return out, nil
}

// FindFriends suggests users the caller has no chat room with yet.
func (s *userService) FindFriends(ctx context.Context, userID uuid.UUID) ([]dto.UserProjection, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	rooms, err := uow.ChatRoomRepository().FindAll(ctx, specification.HasParticipant{UserID: userID})
	if err != nil {
		return nil, apperror.Storage("failed to load chat rooms", err)
	}

	exclude := []uuid.UUID{userID}
	for _, room := range rooms {
		if otherID, ok := room.OtherParticipant(userID); ok {
			exclude = append(exclude, otherID)
		}
	}

	users, err := uow.UserRepository().FindAll(ctx, specification.NotIDs{IDs: exclude})
	if err != nil {
		return nil, apperror.Storage("failed to load users", err)
	}

	out := make([]dto.UserProjection, len(users))
	for i, u := range users {
		p := u.Projection()
		out[i] = dto.UserProjection{Id: p.Id, Username: p.Username, ProfilePic: p.ProfilePic}
	}
	return out, nil
}

func (s *userService) saveBoth(ctx context.Context, uow unitofwork.UnitOfWork, a, b *entity.User) error {
	if err := uow.UserRepository().Update(ctx, a); err != nil {
		return apperror.Storage("failed to save user", err)
	}
	if err := uow.UserRepository().Update(ctx, b); err != nil {
		return apperror.Storage("failed to save user", err)
	}
	return nil
}

func (s *userService) projectUsers(ctx context.Context, uow unitofwork.UnitOfWork, ids []uuid.UUID) ([]dto.UserProjection, error) {
	if len(ids) == 0 {
		return []dto.UserProjection{}, nil
	}

	users, err := uow.UserRepository().FindAll(ctx, specification.ByIDs{IDs: ids})
	if err != nil {
		return nil, apperror.Storage("failed to load users", err)
	}

	out := make([]dto.UserProjection, len(users))
	for i, u := range users {
		p := u.Projection()
		out[i] = dto.UserProjection{Id: p.Id, Username: p.Username, ProfilePic: p.ProfilePic}
	}
	return out, nil
}

// publishSocial is fire and forget: follow flows already committed, the
// notification is auxiliary.
func (s *userService) publishSocial(ctx context.Context, evt events.SocialEvent) {
	if s.eventPublisher == nil {
		return
	}
	if err := s.eventPublisher.Publish(ctx, evt); err != nil {
		s.logger.Warn("UserService", "Failed to publish social event", map[string]interface{}{
			"type":  evt.Type,
			"error": err.Error(),
		})
	}
}

func toUserWithStatus(user *entity.User, viewer *entity.User) dto.UserWithStatusResponse {
	resp := dto.UserWithStatusResponse{
		UserResponse:   toUserResponse(user),
		FollowerCount:  len(user.Followers),
		FollowingCount: len(user.Following),
	}

	if viewer == nil || viewer.Id == user.Id {
		return resp
	}

	switch {
	case user.IsFollowedBy(viewer.Id):
		resp.FriendshipStatus = dto.FriendshipFriends
	case user.HasFollowRequestFrom(viewer.Id):
		resp.FriendshipStatus = dto.FriendshipRequested
	case viewer.HasFollowRequestFrom(user.Id):
		resp.FriendshipStatus = dto.FriendshipPending
	}
	return resp
}
