package service

import (
	"context"
	"encoding/json"
	"testing"

	"socialite-be/internal/dto"
	"socialite-be/internal/entity"
	"socialite-be/internal/pkg/apperror"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func newChatFixture(onlineUsers ...uuid.UUID) (IChatService, *fakeFactory, *fakeDelivery, *fakePublisher) {
	factory := newFakeFactory()
	delivery := newFakeDelivery(onlineUsers...)
	publisher := &fakePublisher{}
	svc := NewChatService(factory, newTestResolver(factory), delivery, publisher, nopLogger{})
	return svc, factory, delivery, publisher
}

func TestFindOrCreateRoom(t *testing.T) {
	ctx := context.Background()

	t.Run("self chat rejected", func(t *testing.T) {
		svc, factory, _, _ := newChatFixture()
		me := seedUser(factory.uow.userRepo, "alice")

		_, err := svc.FindOrCreateRoom(ctx, me.Id, me.Id)

		appErr, ok := apperror.As(err)
		require.True(t, ok)
		require.Equal(t, apperror.CodeValidation, appErr.Code)
	})

	t.Run("unknown recipient", func(t *testing.T) {
		svc, factory, _, _ := newChatFixture()
		me := seedUser(factory.uow.userRepo, "alice")

		_, err := svc.FindOrCreateRoom(ctx, me.Id, uuid.New())
		require.True(t, apperror.IsNotFound(err))
	})

	t.Run("creates one room per pair", func(t *testing.T) {
		svc, factory, _, _ := newChatFixture()
		alice := seedUser(factory.uow.userRepo, "alice")
		bob := seedUser(factory.uow.userRepo, "bob")

		first, err := svc.FindOrCreateRoom(ctx, alice.Id, bob.Id)
		require.NoError(t, err)

		// Same pair from the other direction resolves to the same room.
		second, err := svc.FindOrCreateRoom(ctx, bob.Id, alice.Id)
		require.NoError(t, err)
		require.Equal(t, first.ChatRoomId, second.ChatRoomId)
		require.Len(t, factory.uow.chatRoomRepo.rooms, 1)

		// The viewer is excluded from the participants payload.
		require.Len(t, first.Participants, 1)
		require.Equal(t, bob.Id, first.Participants[0].Id)
	})

	t.Run("lost creation race returns winner's room", func(t *testing.T) {
		svc, factory, _, _ := newChatFixture()
		alice := seedUser(factory.uow.userRepo, "alice")
		bob := seedUser(factory.uow.userRepo, "bob")

		winner := entity.NewChatRoom(bob.Id, alice.Id)
		factory.uow.chatRoomRepo.conflictRoom = winner

		res, err := svc.FindOrCreateRoom(ctx, alice.Id, bob.Id)
		require.NoError(t, err)
		require.Equal(t, winner.Id, res.ChatRoomId)
		require.Len(t, factory.uow.chatRoomRepo.rooms, 1)
	})
}

func TestSendMessage(t *testing.T) {
	ctx := context.Background()

	t.Run("appends, delivers and publishes", func(t *testing.T) {
		factory := newFakeFactory()
		alice := seedUser(factory.uow.userRepo, "alice")
		bob := seedUser(factory.uow.userRepo, "bob")

		svc, _, delivery, publisher := newChatFixtureWith(factory, bob.Id)

		res, err := svc.SendMessage(ctx, alice.Id, bob.Id, &dto.SendMessageRequest{Content: "hello"})
		require.NoError(t, err)
		require.Equal(t, "hello", res.Content)
		require.Equal(t, alice.Id, res.Sender.Id)

		require.Len(t, factory.uow.chatRoomRepo.rooms, 1)
		room := factory.uow.chatRoomRepo.rooms[0]
		require.Len(t, room.Messages, 1)
		require.Equal(t, "hello", room.LastMessage.Message)
		require.Equal(t, alice.Id, room.LastMessage.User)

		require.Len(t, delivery.eventsFor(bob.Id, dto.SocketSendMessage), 1)
		require.Len(t, delivery.eventsFor(bob.Id, dto.SocketUpdateLastMessage), 1)
		require.Empty(t, delivery.eventsFor(alice.Id, dto.SocketSendMessage))

		require.Len(t, publisher.payloads, 1)
		var evt dto.MessageSentEvent
		require.NoError(t, json.Unmarshal(publisher.payloads[0], &evt))
		require.Equal(t, bob.Id, evt.RecipientId)
		require.Equal(t, "hello", evt.Summary)
	})

	t.Run("media-only message gets a media summary", func(t *testing.T) {
		factory := newFakeFactory()
		alice := seedUser(factory.uow.userRepo, "alice")
		bob := seedUser(factory.uow.userRepo, "bob")
		svc, _, _, _ := newChatFixtureWith(factory)

		_, err := svc.SendMessage(ctx, alice.Id, bob.Id, &dto.SendMessageRequest{
			Media: []dto.MediaRef{{Type: "image", URL: "https://cdn.example.com/a.png"}},
		})
		require.NoError(t, err)

		room := factory.uow.chatRoomRepo.rooms[0]
		require.Equal(t, "image message", room.LastMessage.Message)
	})

	t.Run("new activity clears room-level deletion", func(t *testing.T) {
		factory := newFakeFactory()
		alice := seedUser(factory.uow.userRepo, "alice")
		bob := seedUser(factory.uow.userRepo, "bob")

		room := entity.NewChatRoom(alice.Id, bob.Id)
		room.DeleteFor(bob.Id)
		factory.uow.chatRoomRepo.rooms = append(factory.uow.chatRoomRepo.rooms, room)

		svc, _, _, _ := newChatFixtureWith(factory)

		_, err := svc.SendMessage(ctx, alice.Id, bob.Id, &dto.SendMessageRequest{Content: "you there?"})
		require.NoError(t, err)
		require.False(t, room.IsDeletedFor(bob.Id))
	})

	t.Run("offline recipient is not an error", func(t *testing.T) {
		factory := newFakeFactory()
		alice := seedUser(factory.uow.userRepo, "alice")
		bob := seedUser(factory.uow.userRepo, "bob")
		svc, _, _, publisher := newChatFixtureWith(factory) // nobody online

		_, err := svc.SendMessage(ctx, alice.Id, bob.Id, &dto.SendMessageRequest{Content: "hi"})
		require.NoError(t, err)

		// The pipeline event still goes out so the consumer can record the miss.
		require.Len(t, publisher.payloads, 1)
	})

	t.Run("self send rejected", func(t *testing.T) {
		svc, factory, _, _ := newChatFixture()
		alice := seedUser(factory.uow.userRepo, "alice")

		_, err := svc.SendMessage(ctx, alice.Id, alice.Id, &dto.SendMessageRequest{Content: "hi"})
		appErr, ok := apperror.As(err)
		require.True(t, ok)
		require.Equal(t, apperror.CodeValidation, appErr.Code)
	})
}

func newChatFixtureWith(factory *fakeFactory, onlineUsers ...uuid.UUID) (IChatService, *fakeFactory, *fakeDelivery, *fakePublisher) {
	delivery := newFakeDelivery(onlineUsers...)
	publisher := &fakePublisher{}
	svc := NewChatService(factory, newTestResolver(factory), delivery, publisher, nopLogger{})
	return svc, factory, delivery, publisher
}

func TestListMessages(t *testing.T) {
	ctx := context.Background()

	factory := newFakeFactory()
	alice := seedUser(factory.uow.userRepo, "alice")
	bob := seedUser(factory.uow.userRepo, "bob")
	eve := seedUser(factory.uow.userRepo, "eve")

	room := entity.NewChatRoom(alice.Id, bob.Id)
	room.Append(entity.Message{Id: uuid.New(), Sender: alice.Id, Content: "one"})
	room.Append(entity.Message{Id: uuid.New(), Sender: bob.Id, Content: "two"})
	factory.uow.chatRoomRepo.rooms = append(factory.uow.chatRoomRepo.rooms, room)

	svc, _, _, _ := newChatFixtureWith(factory)

	t.Run("unknown room", func(t *testing.T) {
		_, err := svc.ListMessages(ctx, alice.Id, uuid.New())
		require.True(t, apperror.IsNotFound(err))
	})

	t.Run("non-participant forbidden", func(t *testing.T) {
		_, err := svc.ListMessages(ctx, eve.Id, room.Id)
		require.True(t, apperror.IsForbidden(err))
	})

	t.Run("hides messages deleted for the reader", func(t *testing.T) {
		room.Messages[0].DeleteFor(alice.Id)

		mine, err := svc.ListMessages(ctx, alice.Id, room.Id)
		require.NoError(t, err)
		require.Len(t, mine, 1)
		require.Equal(t, "two", mine[0].Content)

		// The other participant still sees the full log.
		theirs, err := svc.ListMessages(ctx, bob.Id, room.Id)
		require.NoError(t, err)
		require.Len(t, theirs, 2)
	})

	t.Run("deleted-for room forbidden", func(t *testing.T) {
		room.DeleteFor(bob.Id)
		_, err := svc.ListMessages(ctx, bob.Id, room.Id)
		require.True(t, apperror.IsForbidden(err))
	})
}

func TestMarkMessagesSeen(t *testing.T) {
	ctx := context.Background()

	factory := newFakeFactory()
	alice := seedUser(factory.uow.userRepo, "alice")
	bob := seedUser(factory.uow.userRepo, "bob")

	room := entity.NewChatRoom(alice.Id, bob.Id)
	room.Append(entity.Message{Id: uuid.New(), Sender: alice.Id, Content: "one"})
	room.Append(entity.Message{Id: uuid.New(), Sender: alice.Id, Content: "two"})
	factory.uow.chatRoomRepo.rooms = append(factory.uow.chatRoomRepo.rooms, room)

	svc, _, _, _ := newChatFixtureWith(factory)

	otherID, flipped, err := svc.MarkMessagesSeen(ctx, bob.Id, room.Id)
	require.NoError(t, err)
	require.Equal(t, alice.Id, otherID)
	require.Equal(t, 2, flipped)

	// Already-seen messages stay settled.
	_, flipped, err = svc.MarkMessagesSeen(ctx, bob.Id, room.Id)
	require.NoError(t, err)
	require.Zero(t, flipped)

	_, _, err = svc.MarkMessagesSeen(ctx, uuid.New(), room.Id)
	require.True(t, apperror.IsForbidden(err))
}

func TestMarkAllRoomsSeen(t *testing.T) {
	ctx := context.Background()

	t.Run("no rooms", func(t *testing.T) {
		svc, factory, _, _ := newChatFixture()
		alice := seedUser(factory.uow.userRepo, "alice")

		_, err := svc.MarkAllRoomsSeen(ctx, alice.Id)
		require.True(t, apperror.IsNotFound(err))
	})

	t.Run("stamps every room", func(t *testing.T) {
		factory := newFakeFactory()
		alice := seedUser(factory.uow.userRepo, "alice")
		bob := seedUser(factory.uow.userRepo, "bob")
		cara := seedUser(factory.uow.userRepo, "cara")

		roomAB := entity.NewChatRoom(alice.Id, bob.Id)
		roomAC := entity.NewChatRoom(alice.Id, cara.Id)
		factory.uow.chatRoomRepo.rooms = append(factory.uow.chatRoomRepo.rooms, roomAB, roomAC)

		svc, _, _, _ := newChatFixtureWith(factory)

		res, err := svc.MarkAllRoomsSeen(ctx, alice.Id)
		require.NoError(t, err)
		require.ElementsMatch(t, []uuid.UUID{roomAB.Id, roomAC.Id}, res.UpdatedChatRooms)

		for _, room := range []*entity.ChatRoom{roomAB, roomAC} {
			found := false
			for _, e := range room.LastSeen {
				if e.User == alice.Id {
					found = true
				}
			}
			require.True(t, found)
		}
	})
}

func TestDeleteRoomForUser(t *testing.T) {
	ctx := context.Background()

	factory := newFakeFactory()
	alice := seedUser(factory.uow.userRepo, "alice")
	bob := seedUser(factory.uow.userRepo, "bob")

	room := entity.NewChatRoom(alice.Id, bob.Id)
	factory.uow.chatRoomRepo.rooms = append(factory.uow.chatRoomRepo.rooms, room)

	svc, _, _, _ := newChatFixtureWith(factory)

	require.NoError(t, svc.DeleteRoomForUser(ctx, alice.Id, room.Id))
	require.True(t, room.IsDeletedFor(alice.Id))
	require.False(t, room.IsDeletedFor(bob.Id))

	err := svc.DeleteRoomForUser(ctx, uuid.New(), room.Id)
	require.True(t, apperror.IsForbidden(err))
}

func TestDeleteMessageForUser(t *testing.T) {
	ctx := context.Background()

	factory := newFakeFactory()
	alice := seedUser(factory.uow.userRepo, "alice")
	bob := seedUser(factory.uow.userRepo, "bob")

	msg := entity.Message{Id: uuid.New(), Sender: alice.Id, Content: "oops"}
	room := entity.NewChatRoom(alice.Id, bob.Id)
	room.Append(msg)
	factory.uow.chatRoomRepo.rooms = append(factory.uow.chatRoomRepo.rooms, room)

	svc, _, _, _ := newChatFixtureWith(factory)

	require.NoError(t, svc.DeleteMessageForUser(ctx, alice.Id, room.Id, msg.Id))

	// Hidden for the deleter, untouched for the counterpart.
	require.True(t, room.Messages[0].IsDeletedFor(alice.Id))
	require.False(t, room.Messages[0].IsDeletedFor(bob.Id))

	err := svc.DeleteMessageForUser(ctx, alice.Id, room.Id, uuid.New())
	require.True(t, apperror.IsNotFound(err))
}

func TestReactToMessage(t *testing.T) {
	ctx := context.Background()

	factory := newFakeFactory()
	alice := seedUser(factory.uow.userRepo, "alice")
	bob := seedUser(factory.uow.userRepo, "bob")

	msg := entity.Message{Id: uuid.New(), Sender: alice.Id, Content: "look at this"}
	room := entity.NewChatRoom(alice.Id, bob.Id)
	room.Append(msg)
	factory.uow.chatRoomRepo.rooms = append(factory.uow.chatRoomRepo.rooms, room)

	svc, _, delivery, _ := newChatFixtureWith(factory, alice.Id)

	res, err := svc.ReactToMessage(ctx, bob.Id, room.Id, msg.Id, &dto.ReactionRequest{Value: "👍"})
	require.NoError(t, err)
	require.Len(t, res.Reactions, 1)
	require.Equal(t, "👍", res.Reactions[0].Value)

	// Reacting again replaces, never stacks.
	res, err = svc.ReactToMessage(ctx, bob.Id, room.Id, msg.Id, &dto.ReactionRequest{Value: "❤️"})
	require.NoError(t, err)
	require.Len(t, res.Reactions, 1)
	require.Equal(t, "❤️", res.Reactions[0].Value)

	// The counterpart sees the reaction land live.
	require.Len(t, delivery.eventsFor(alice.Id, dto.SocketSendMessage), 2)
}

func TestListParticipants(t *testing.T) {
	ctx := context.Background()

	factory := newFakeFactory()
	alice := seedUser(factory.uow.userRepo, "alice")
	bob := seedUser(factory.uow.userRepo, "bob")
	cara := seedUser(factory.uow.userRepo, "cara")
	dave := seedUser(factory.uow.userRepo, "dave")

	roomAB := entity.NewChatRoom(alice.Id, bob.Id)
	roomAB.Append(entity.Message{Id: uuid.New(), Sender: bob.Id, Content: "yo"})
	roomAC := entity.NewChatRoom(alice.Id, cara.Id)
	roomAC.DeleteFor(alice.Id)
	factory.uow.chatRoomRepo.rooms = append(factory.uow.chatRoomRepo.rooms, roomAB, roomAC)

	svc, _, _, _ := newChatFixtureWith(factory)

	views, err := svc.ListParticipants(ctx, alice.Id)
	require.NoError(t, err)

	byUser := make(map[uuid.UUID]dto.ParticipantView, len(views))
	for _, v := range views {
		byUser[v.Participant.Id] = v
	}

	// Bob has a live room with summary fields.
	require.NotNil(t, byUser[bob.Id].ChatRoomId)
	require.Equal(t, "yo", byUser[bob.Id].LastMessage.Message)

	// Cara's room is soft-deleted for alice, so she shows as "no chat yet",
	// and dave never had one.
	require.Nil(t, byUser[cara.Id].ChatRoomId)
	require.Nil(t, byUser[dave.Id].ChatRoomId)

	// The caller never lists themselves.
	_, ok := byUser[alice.Id]
	require.False(t, ok)
}
