package service

import (
	"context"
	"sort"
	"strings"
	"sync"

	"socialite-be/internal/entity"
	"socialite-be/internal/repository/contract"
	"socialite-be/internal/repository/memory"
	"socialite-be/internal/repository/specification"
	"socialite-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

// In-memory repository fakes. Specifications are interpreted by type so the
// fakes answer the same queries the GORM implementations do.

type fakeUserRepo struct {
	users     []*entity.User
	updates   int
	findErr   error
	updateErr error
}

func (r *fakeUserRepo) Create(_ context.Context, user *entity.User) error {
	r.users = append(r.users, user)
	return nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *entity.User) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	r.updates++
	for i, u := range r.users {
		if u.Id == user.Id {
			r.users[i] = user
			return nil
		}
	}
	r.users = append(r.users, user)
	return nil
}

func (r *fakeUserRepo) FindOne(_ context.Context, specs ...specification.Specification) (*entity.User, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	for _, u := range r.users {
		if userMatches(u, specs) {
			return u, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) FindAll(_ context.Context, specs ...specification.Specification) ([]*entity.User, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	out := make([]*entity.User, 0, len(r.users))
	for _, u := range r.users {
		if userMatches(u, specs) {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	users, err := r.FindAll(ctx, specs...)
	return int64(len(users)), err
}

func userMatches(u *entity.User, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.ByID:
			if u.Id != s.ID {
				return false
			}
		case specification.NotID:
			if u.Id == s.ID {
				return false
			}
		case specification.ByIDs:
			if !idIn(u.Id, s.IDs) {
				return false
			}
		case specification.NotIDs:
			if idIn(u.Id, s.IDs) {
				return false
			}
		case specification.ByEmail:
			if u.Email != s.Email {
				return false
			}
		case specification.ByUsername:
			if u.Username != s.Username {
				return false
			}
		case specification.SearchByName:
			term := strings.ToLower(s.Term)
			if !strings.Contains(strings.ToLower(u.Username), term) &&
				!strings.Contains(strings.ToLower(u.FullName), term) {
				return false
			}
		}
	}
	return true
}

func idIn(id uuid.UUID, ids []uuid.UUID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

type fakeChatRoomRepo struct {
	rooms   []*entity.ChatRoom
	saves   int
	findErr error
	saveErr error

	// saveErrFor fails Save for specific rooms, leaving the rest working.
	saveErrFor map[uuid.UUID]error

	// conflictRoom simulates losing the unique-key race: CreateIfAbsent
	// reports a conflict and this room appears as the winner's row.
	conflictRoom *entity.ChatRoom
}

func (r *fakeChatRoomRepo) CreateIfAbsent(_ context.Context, room *entity.ChatRoom) (bool, error) {
	if r.conflictRoom != nil {
		r.rooms = append(r.rooms, r.conflictRoom)
		r.conflictRoom = nil
		return false, nil
	}
	for _, existing := range r.rooms {
		if existing.PairKey() == room.PairKey() {
			return false, nil
		}
	}
	r.rooms = append(r.rooms, room)
	return true, nil
}

func (r *fakeChatRoomRepo) Save(_ context.Context, room *entity.ChatRoom) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	if err, ok := r.saveErrFor[room.Id]; ok {
		return err
	}
	r.saves++
	for i, existing := range r.rooms {
		if existing.Id == room.Id {
			r.rooms[i] = room
			return nil
		}
	}
	r.rooms = append(r.rooms, room)
	return nil
}

func (r *fakeChatRoomRepo) FindOne(_ context.Context, specs ...specification.Specification) (*entity.ChatRoom, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	for _, room := range r.rooms {
		if roomMatches(room, specs) {
			return room, nil
		}
	}
	return nil, nil
}

func (r *fakeChatRoomRepo) FindOneLocked(ctx context.Context, specs ...specification.Specification) (*entity.ChatRoom, error) {
	return r.FindOne(ctx, specs...)
}

func (r *fakeChatRoomRepo) FindAll(_ context.Context, specs ...specification.Specification) ([]*entity.ChatRoom, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	out := make([]*entity.ChatRoom, 0, len(r.rooms))
	for _, room := range r.rooms {
		if roomMatches(room, specs) {
			out = append(out, room)
		}
	}
	return out, nil
}

func roomMatches(room *entity.ChatRoom, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.ByID:
			if room.Id != s.ID {
				return false
			}
		case specification.ByPairKey:
			if room.PairKey() != s.Key {
				return false
			}
		case specification.HasParticipant:
			if !room.HasParticipant(s.UserID) {
				return false
			}
		case specification.NotDeletedFor:
			if room.IsDeletedFor(s.UserID) {
				return false
			}
		}
	}
	return true
}

type fakeNotificationRepo struct {
	notifications []*entity.Notification
	createErr     error
}

func (r *fakeNotificationRepo) Create(_ context.Context, n *entity.Notification) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.notifications = append(r.notifications, n)
	return nil
}

func (r *fakeNotificationRepo) FindAll(_ context.Context, specs ...specification.Specification) ([]*entity.Notification, error) {
	out := make([]*entity.Notification, 0, len(r.notifications))
	for _, n := range r.notifications {
		if notificationMatches(n, specs) {
			out = append(out, n)
		}
	}
	for _, spec := range specs {
		if s, ok := spec.(specification.OrderBy); ok && s.Field == "created_at" && s.Desc {
			sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
		}
	}
	for _, spec := range specs {
		if s, ok := spec.(specification.Pagination); ok {
			if s.Offset >= len(out) {
				return nil, nil
			}
			out = out[s.Offset:]
			if s.Limit < len(out) {
				out = out[:s.Limit]
			}
		}
	}
	return out, nil
}

func (r *fakeNotificationRepo) Count(_ context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	for _, n := range r.notifications {
		if notificationMatches(n, specs) {
			count++
		}
	}
	return count, nil
}

func (r *fakeNotificationRepo) MarkAsRead(_ context.Context, notificationID uuid.UUID) error {
	for _, n := range r.notifications {
		if n.Id == notificationID {
			n.IsRead = true
		}
	}
	return nil
}

func (r *fakeNotificationRepo) MarkAllAsRead(_ context.Context, userID uuid.UUID) error {
	for _, n := range r.notifications {
		if n.ToUser == userID {
			n.IsRead = true
		}
	}
	return nil
}

func notificationMatches(n *entity.Notification, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.ByID:
			if n.Id != s.ID {
				return false
			}
		case specification.ForRecipient:
			if n.ToUser != s.UserID {
				return false
			}
		case specification.Unread:
			if n.IsRead {
				return false
			}
		}
	}
	return true
}

type fakeUnitOfWork struct {
	userRepo         *fakeUserRepo
	chatRoomRepo     *fakeChatRoomRepo
	notificationRepo *fakeNotificationRepo

	begins    int
	commits   int
	rollbacks int
}

func (u *fakeUnitOfWork) Begin(context.Context) error { u.begins++; return nil }
func (u *fakeUnitOfWork) Commit() error               { u.commits++; return nil }
func (u *fakeUnitOfWork) Rollback() error             { u.rollbacks++; return nil }

func (u *fakeUnitOfWork) UserRepository() contract.UserRepository { return u.userRepo }
func (u *fakeUnitOfWork) ChatRoomRepository() contract.ChatRoomRepository {
	return u.chatRoomRepo
}
func (u *fakeUnitOfWork) NotificationRepository() contract.NotificationRepository {
	return u.notificationRepo
}

type fakeFactory struct {
	uow *fakeUnitOfWork
}

func newFakeFactory() *fakeFactory {
	return &fakeFactory{uow: &fakeUnitOfWork{
		userRepo:         &fakeUserRepo{},
		chatRoomRepo:     &fakeChatRoomRepo{},
		notificationRepo: &fakeNotificationRepo{},
	}}
}

func (f *fakeFactory) NewUnitOfWork(context.Context) unitofwork.UnitOfWork { return f.uow }

// fakeDelivery records every push and simulates per-user reachability.
type sentEvent struct {
	UserID  uuid.UUID
	Event   string
	Payload interface{}
}

type fakeDelivery struct {
	mu     sync.Mutex
	sent   []sentEvent
	online map[uuid.UUID]bool
}

func newFakeDelivery(onlineUsers ...uuid.UUID) *fakeDelivery {
	online := make(map[uuid.UUID]bool, len(onlineUsers))
	for _, id := range onlineUsers {
		online[id] = true
	}
	return &fakeDelivery{online: online}
}

func (d *fakeDelivery) SendToUser(userID uuid.UUID, event string, payload interface{}) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sent = append(d.sent, sentEvent{UserID: userID, Event: event, Payload: payload})
	return d.online[userID]
}

func (d *fakeDelivery) IsOnline(userID uuid.UUID) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.online[userID]
}

func (d *fakeDelivery) eventsFor(userID uuid.UUID, event string) []sentEvent {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []sentEvent
	for _, e := range d.sent {
		if e.UserID == userID && e.Event == event {
			out = append(out, e)
		}
	}
	return out
}

func (d *fakeDelivery) totalSent() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.sent)
}

type fakePublisher struct {
	payloads [][]byte
	err      error
}

func (p *fakePublisher) Publish(_ context.Context, payload []byte) error {
	if p.err != nil {
		return p.err
	}
	p.payloads = append(p.payloads, payload)
	return nil
}

type nopLogger struct{}

func (nopLogger) Debug(string, string, map[string]interface{}) {}
func (nopLogger) Info(string, string, map[string]interface{})  {}
func (nopLogger) Warn(string, string, map[string]interface{})  {}
func (nopLogger) Error(string, string, map[string]interface{}) {}
func (nopLogger) Sync() error                                  { return nil }

func newTestResolver(factory unitofwork.RepositoryFactory) *ProjectionResolver {
	return NewProjectionResolver(factory, memory.NewProjectionCache(nil))
}

func seedUser(repo *fakeUserRepo, username string) *entity.User {
	user := &entity.User{
		Id:       uuid.New(),
		FullName: username + " example",
		Username: username,
		Email:    username + "@example.com",
		Role:     entity.UserRoleUser,
	}
	repo.users = append(repo.users, user)
	return user
}
