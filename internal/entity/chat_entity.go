package entity

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NoMessageYet is the lastMessage placeholder written when a room is created
// before any message has been sent into it.
const NoMessageYet = "No message yet"

// MediaRef points at an uploaded media object attached to a message.
type MediaRef struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

// Reaction records one user's reaction to a message. A later reaction by the
// same user replaces the earlier one.
type Reaction struct {
	User      uuid.UUID `json:"user"`
	Value     string    `json:"value"`
	ReactedAt time.Time `json:"reactedAt"`
}

// Message is embedded inside its ChatRoom. The log is append-only: messages
// are never removed or reordered, only flagged via Seen and DeletedFor.
type Message struct {
	Id         uuid.UUID   `json:"id"`
	Sender     uuid.UUID   `json:"sender"`
	Content    string      `json:"content"`
	Media      []MediaRef  `json:"media,omitempty"`
	SentAt     time.Time   `json:"sentAt"`
	Seen       bool        `json:"seen"`
	SeenBy     []uuid.UUID `json:"seenBy,omitempty"`
	DeletedFor []uuid.UUID `json:"deletedFor,omitempty"`
	Reactions  []Reaction  `json:"reactions,omitempty"`
}

// IsDeletedFor reports whether this message is hidden for the user.
// Message-level deletion is permanent: DeletedFor only grows.
func (m *Message) IsDeletedFor(userID uuid.UUID) bool {
	return containsID(m.DeletedFor, userID)
}

func (m *Message) DeleteFor(userID uuid.UUID) {
	if !m.IsDeletedFor(userID) {
		m.DeletedFor = append(m.DeletedFor, userID)
	}
}

// React upserts the user's reaction: at most one reaction per user.
func (m *Message) React(userID uuid.UUID, value string, at time.Time) {
	for i := range m.Reactions {
		if m.Reactions[i].User == userID {
			m.Reactions[i].Value = value
			m.Reactions[i].ReactedAt = at
			return
		}
	}
	m.Reactions = append(m.Reactions, Reaction{User: userID, Value: value, ReactedAt: at})
}

// MarkSeenBy flips the seen flag and records the viewer. Returns false when
// the message was already seen, so bulk marking can skip settled messages.
func (m *Message) MarkSeenBy(userID uuid.UUID) bool {
	if m.Seen {
		return false
	}
	m.Seen = true
	if !containsID(m.SeenBy, userID) {
		m.SeenBy = append(m.SeenBy, userID)
	}
	return true
}

// LastMessage is the denormalized conversation summary shown in list views.
type LastMessage struct {
	User    uuid.UUID `json:"user"`
	Message string    `json:"message"`
}

// LastSeenEntry records when a participant last saw the room.
type LastSeenEntry struct {
	User   uuid.UUID `json:"user"`
	SeenAt time.Time `json:"seenAt"`
}

// ChatRoom is the durable conversation between exactly two users. At most one
// room exists per unordered participant pair; the pair key enforces that.
type ChatRoom struct {
	Id            uuid.UUID
	Participants  []uuid.UUID
	Messages      []Message
	DeletedFor    []uuid.UUID
	LastMessage   *LastMessage
	LastMessageAt *time.Time
	LastSeen      []LastSeenEntry
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// PairKey builds the canonical key for an unordered participant pair.
func PairKey(a, b uuid.UUID) string {
	first, second := a.String(), b.String()
	if strings.Compare(first, second) > 0 {
		first, second = second, first
	}
	return fmt.Sprintf("%s:%s", first, second)
}

func NewChatRoom(creator, recipient uuid.UUID) *ChatRoom {
	now := time.Now()
	return &ChatRoom{
		Id:            uuid.New(),
		Participants:  []uuid.UUID{creator, recipient},
		Messages:      []Message{},
		DeletedFor:    []uuid.UUID{},
		LastMessage:   &LastMessage{User: creator, Message: NoMessageYet},
		LastMessageAt: &now,
		LastSeen:      []LastSeenEntry{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func (r *ChatRoom) PairKey() string {
	if len(r.Participants) != 2 {
		return ""
	}
	return PairKey(r.Participants[0], r.Participants[1])
}

// OtherParticipant returns the counterpart of userID in this two-party room.
func (r *ChatRoom) OtherParticipant(userID uuid.UUID) (uuid.UUID, bool) {
	for _, p := range r.Participants {
		if p != userID {
			return p, true
		}
	}
	return uuid.Nil, false
}

func (r *ChatRoom) HasParticipant(userID uuid.UUID) bool {
	return containsID(r.Participants, userID)
}

func (r *ChatRoom) IsDeletedFor(userID uuid.UUID) bool {
	return containsID(r.DeletedFor, userID)
}

// DeleteFor hides the room from one participant's view. Reversed by Append.
func (r *ChatRoom) DeleteFor(userID uuid.UUID) {
	if !r.IsDeletedFor(userID) {
		r.DeletedFor = append(r.DeletedFor, userID)
	}
}

// Append adds a message to the log, refreshes the summary fields and clears
// room-level deletion for every participant: new activity makes the
// conversation reappear on both sides.
func (r *ChatRoom) Append(msg Message) {
	r.Messages = append(r.Messages, msg)

	summary := msg.Content
	if summary == "" && len(msg.Media) > 0 {
		summary = msg.Media[0].Type + " message"
	}
	r.LastMessage = &LastMessage{User: msg.Sender, Message: summary}
	sentAt := msg.SentAt
	r.LastMessageAt = &sentAt

	kept := r.DeletedFor[:0]
	for _, id := range r.DeletedFor {
		if !r.HasParticipant(id) {
			kept = append(kept, id)
		}
	}
	r.DeletedFor = kept
}

// VisibleMessagesFor filters the log to messages not hidden for the reader,
// preserving append order.
func (r *ChatRoom) VisibleMessagesFor(userID uuid.UUID) []Message {
	visible := make([]Message, 0, len(r.Messages))
	for _, m := range r.Messages {
		if !m.IsDeletedFor(userID) {
			visible = append(visible, m)
		}
	}
	return visible
}

// UpsertLastSeen records that userID saw the room at the given time.
// One entry per participant.
func (r *ChatRoom) UpsertLastSeen(userID uuid.UUID, at time.Time) {
	for i := range r.LastSeen {
		if r.LastSeen[i].User == userID {
			r.LastSeen[i].SeenAt = at
			return
		}
	}
	r.LastSeen = append(r.LastSeen, LastSeenEntry{User: userID, SeenAt: at})
}

// MarkMessagesSeenBy marks every currently-unseen message as seen by userID
// and returns how many were flipped. Already-seen messages are untouched.
func (r *ChatRoom) MarkMessagesSeenBy(userID uuid.UUID) int {
	flipped := 0
	for i := range r.Messages {
		if r.Messages[i].MarkSeenBy(userID) {
			flipped++
		}
	}
	return flipped
}

// FindMessage returns a pointer into the log, or nil.
func (r *ChatRoom) FindMessage(messageID uuid.UUID) *Message {
	for i := range r.Messages {
		if r.Messages[i].Id == messageID {
			return &r.Messages[i]
		}
	}
	return nil
}
