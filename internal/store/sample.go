package store

import (
	"time"

	"umuhinzilink/internal/domain/model"
)

// SampleConversationsはメッセージ機能のサンプルデータ。
// バックエンドにメッセージAPIができるまでの開発用。
func SampleConversations(p model.Principal) ([]model.Conversation, []model.Message) {
	base := time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)

	partners := []model.User{
		{ID: "sample-buyer-1", Names: "Aline Uwase", Role: model.RoleBuyer, Address: model.Address{Province: "Kigali", District: "Gasabo"}},
		{ID: "sample-farmer-1", Names: "Jean Mugabo", Role: model.RoleFarmer, Address: model.Address{Province: "Eastern", District: "Nyagatare"}},
		{ID: "sample-supplier-1", Names: "Agro Inputs Ltd", Role: model.RoleSupplier, Address: model.Address{Province: "Southern", District: "Huye"}},
	}

	var convs []model.Conversation
	var msgs []model.Message
	for i, partner := range partners {
		if partner.Role == p.Role {
			continue
		}
		convID := "conv-" + partner.ID
		m := model.Message{
			ID:             convID + "-1",
			ConversationID: convID,
			SenderID:       partner.ID,
			Content:        "Hello, is the produce still available?",
			CreatedAt:      base.Add(time.Duration(i) * time.Hour),
		}
		msgs = append(msgs, m)
		last := m
		convs = append(convs, model.Conversation{
			ID:          convID,
			Participant: partner,
			LastMessage: &last,
			UnreadCount: 1,
		})
	}
	return convs, msgs
}
