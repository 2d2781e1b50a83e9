package entity

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestPairKey(t *testing.T) {
	a := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	b := uuid.MustParse("22222222-2222-2222-2222-222222222222")

	// Order of arguments never matters.
	require.Equal(t, PairKey(a, b), PairKey(b, a))
	require.Equal(t, a.String()+":"+b.String(), PairKey(b, a))
}

func TestChatRoomPairKey(t *testing.T) {
	a, b := uuid.New(), uuid.New()

	room := NewChatRoom(a, b)
	require.Equal(t, PairKey(a, b), room.PairKey())

	broken := &ChatRoom{Participants: []uuid.UUID{a}}
	require.Empty(t, broken.PairKey())
}

func TestAppend(t *testing.T) {
	a, b := uuid.New(), uuid.New()

	t.Run("refreshes the summary", func(t *testing.T) {
		room := NewChatRoom(a, b)
		require.Equal(t, NoMessageYet, room.LastMessage.Message)

		sentAt := time.Now()
		room.Append(Message{Id: uuid.New(), Sender: b, Content: "hello", SentAt: sentAt})

		require.Len(t, room.Messages, 1)
		require.Equal(t, "hello", room.LastMessage.Message)
		require.Equal(t, b, room.LastMessage.User)
		require.Equal(t, sentAt, *room.LastMessageAt)
	})

	t.Run("media-only message summarizes by media type", func(t *testing.T) {
		room := NewChatRoom(a, b)
		room.Append(Message{Id: uuid.New(), Sender: a, Media: []MediaRef{{Type: "video", URL: "v.mp4"}}})
		require.Equal(t, "video message", room.LastMessage.Message)
	})

	t.Run("clears room-level deletion for participants", func(t *testing.T) {
		room := NewChatRoom(a, b)
		room.DeleteFor(a)
		room.DeleteFor(b)

		room.Append(Message{Id: uuid.New(), Sender: a, Content: "back again"})

		require.False(t, room.IsDeletedFor(a))
		require.False(t, room.IsDeletedFor(b))
	})
}

func TestMarkMessagesSeenBy(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	room := NewChatRoom(a, b)
	room.Append(Message{Id: uuid.New(), Sender: a, Content: "one"})
	room.Append(Message{Id: uuid.New(), Sender: a, Content: "two"})

	require.Equal(t, 2, room.MarkMessagesSeenBy(b))

	// Settled messages are not flipped twice.
	require.Zero(t, room.MarkMessagesSeenBy(b))

	for _, m := range room.Messages {
		require.True(t, m.Seen)
		require.Contains(t, m.SeenBy, b)
	}

	room.Append(Message{Id: uuid.New(), Sender: a, Content: "three"})
	require.Equal(t, 1, room.MarkMessagesSeenBy(b))
}

func TestReact(t *testing.T) {
	userID := uuid.New()
	msg := Message{Id: uuid.New()}

	msg.React(userID, "👍", time.Now())
	require.Len(t, msg.Reactions, 1)

	// A later reaction by the same user replaces the earlier one.
	msg.React(userID, "❤️", time.Now())
	require.Len(t, msg.Reactions, 1)
	require.Equal(t, "❤️", msg.Reactions[0].Value)

	msg.React(uuid.New(), "😂", time.Now())
	require.Len(t, msg.Reactions, 2)
}

func TestVisibleMessagesFor(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	room := NewChatRoom(a, b)

	first := Message{Id: uuid.New(), Sender: a, Content: "one"}
	second := Message{Id: uuid.New(), Sender: b, Content: "two"}
	room.Append(first)
	room.Append(second)

	room.Messages[0].DeleteFor(a)

	visible := room.VisibleMessagesFor(a)
	require.Len(t, visible, 1)
	require.Equal(t, second.Id, visible[0].Id)

	// Message deletion is one-sided.
	require.Len(t, room.VisibleMessagesFor(b), 2)
}

func TestUpsertLastSeen(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	room := NewChatRoom(a, b)

	first := time.Now().Add(-time.Hour)
	room.UpsertLastSeen(a, first)
	room.UpsertLastSeen(b, first)
	require.Len(t, room.LastSeen, 2)

	later := time.Now()
	room.UpsertLastSeen(a, later)
	require.Len(t, room.LastSeen, 2)

	for _, e := range room.LastSeen {
		if e.User == a {
			require.Equal(t, later, e.SeenAt)
		}
	}
}

func TestOtherParticipant(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	room := NewChatRoom(a, b)

	other, ok := room.OtherParticipant(a)
	require.True(t, ok)
	require.Equal(t, b, other)

	// A non-participant still gets someone, callers must check membership
	// first; a degenerate single-member room yields nothing for that member.
	solo := &ChatRoom{Participants: []uuid.UUID{a}}
	_, ok = solo.OtherParticipant(a)
	require.False(t, ok)
}

func TestFindMessage(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	room := NewChatRoom(a, b)
	msg := Message{Id: uuid.New(), Sender: a, Content: "hi"}
	room.Append(msg)

	found := room.FindMessage(msg.Id)
	require.NotNil(t, found)

	// The pointer reaches into the log, mutations stick.
	found.DeleteFor(b)
	require.True(t, room.Messages[0].IsDeletedFor(b))

	require.Nil(t, room.FindMessage(uuid.New()))
}
