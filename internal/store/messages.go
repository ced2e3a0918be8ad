package store

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"umuhinzilink/internal/domain/model"
)

var (
	ErrConversationNotFound = errors.New("conversation not found")
	ErrEmptyMessage         = errors.New("message is empty")
)

// MessageStoreは会話一覧・メッセージ・オンライン状態を持つ
type MessageStore struct {
	self          string
	conversations *Collection[model.Conversation]

	mu       sync.RWMutex
	messages map[string][]model.Message
	online   map[string]bool
}

func NewMessageStore(self string, seed []model.Conversation, msgs []model.Message) *MessageStore {
	s := &MessageStore{
		self:          self,
		conversations: NewCollection[model.Conversation](),
		messages:      map[string][]model.Message{},
		online:        map[string]bool{},
	}
	t := s.conversations.Begin()
	s.conversations.Apply(t, seed, nil)
	for _, m := range msgs {
		s.messages[m.ConversationID] = append(s.messages[m.ConversationID], m)
	}
	return s
}

// Conversationsは最新メッセージ順に返す。Onlineは現在の在席状態で埋める。
func (s *MessageStore) Conversations() []model.Conversation {
	items := s.conversations.Items()
	s.mu.RLock()
	for i := range items {
		items[i].Online = s.online[items[i].Participant.ID]
	}
	s.mu.RUnlock()

	sort.SliceStable(items, func(i, j int) bool {
		return lastAt(items[i]).After(lastAt(items[j]))
	})
	return items
}

func lastAt(c model.Conversation) time.Time {
	if c.LastMessage == nil {
		return time.Time{}
	}
	return c.LastMessage.CreatedAt
}

func (s *MessageStore) Messages(conversationID string) ([]model.Message, error) {
	if _, ok := s.conversations.Get(conversationID); !ok {
		return nil, ErrConversationNotFound
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Message, len(s.messages[conversationID]))
	copy(out, s.messages[conversationID])
	return out, nil
}

// Sendは自分の発言を追加する
func (s *MessageStore) Send(conversationID string, id string, content string, now time.Time) (model.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return model.Message{}, ErrEmptyMessage
	}
	conv, ok := s.conversations.Get(conversationID)
	if !ok {
		return model.Message{}, ErrConversationNotFound
	}

	msg := model.Message{
		ID:             id,
		ConversationID: conversationID,
		SenderID:       s.self,
		Content:        content,
		Read:           true,
		CreatedAt:      now,
	}
	s.mu.Lock()
	s.messages[conversationID] = append(s.messages[conversationID], msg)
	s.mu.Unlock()

	conv.LastMessage = &msg
	s.conversations.Replace(conv)
	return msg, nil
}

// Receiveは相手からの発言を追加し、未読数を増やす
func (s *MessageStore) Receive(msg model.Message) error {
	conv, ok := s.conversations.Get(msg.ConversationID)
	if !ok {
		return ErrConversationNotFound
	}
	msg.Read = false
	s.mu.Lock()
	s.messages[msg.ConversationID] = append(s.messages[msg.ConversationID], msg)
	s.mu.Unlock()

	conv.LastMessage = &msg
	conv.UnreadCount++
	s.conversations.Replace(conv)
	return nil
}

func (s *MessageStore) MarkRead(conversationID string) error {
	conv, ok := s.conversations.Get(conversationID)
	if !ok {
		return ErrConversationNotFound
	}
	s.mu.Lock()
	msgs := s.messages[conversationID]
	for i := range msgs {
		msgs[i].Read = true
	}
	s.mu.Unlock()

	conv.UnreadCount = 0
	s.conversations.Replace(conv)
	return nil
}

func (s *MessageStore) UnreadTotal() int {
	total := 0
	for _, c := range s.conversations.Items() {
		total += c.UnreadCount
	}
	return total
}

// ConversationWithは相手ユーザーとの会話id
func (s *MessageStore) ConversationWith(participantID string) (string, bool) {
	for _, c := range s.conversations.Items() {
		if c.Participant.ID == participantID {
			return c.ID, true
		}
	}
	return "", false
}

// Participantは会話の相手
func (s *MessageStore) Participant(conversationID string) (model.User, bool) {
	c, ok := s.conversations.Get(conversationID)
	if !ok {
		return model.User{}, false
	}
	return c.Participant, true
}

func (s *MessageStore) SetOnline(userID string, online bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if online {
		s.online[userID] = true
		return
	}
	delete(s.online, userID)
}

// Onlineはオンラインのユーザーid（昇順）
func (s *MessageStore) Online() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.online))
	for id := range s.online {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
