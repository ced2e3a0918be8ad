package store

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"umuhinzilink/internal/domain/model"
	"umuhinzilink/internal/logging"
	"umuhinzilink/internal/upstream"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSources(productCalls *atomic.Int32) Sources {
	return Sources{
		Products: func(role model.Role) Loader[model.Product] {
			return func(ctx context.Context) upstream.Envelope[[]model.Product] {
				productCalls.Add(1)
				return upstream.Envelope[[]model.Product]{Success: true, Data: []model.Product{{ID: string(role) + "-p"}}}
			}
		},
		Orders: func(role model.Role) Loader[model.Order] {
			return func(ctx context.Context) upstream.Envelope[[]model.Order] {
				return upstream.Fail[[]model.Order](500, "orders down")
			}
		},
		Users: func(role model.Role) Loader[model.User] {
			if role != model.RoleAdmin {
				return nil
			}
			return func(ctx context.Context) upstream.Envelope[[]model.User] {
				return upstream.Envelope[[]model.User]{Success: true, Data: []model.User{{ID: "u1"}}}
			}
		},
		Conversations: SampleConversations,
	}
}

func TestRegistry_OpenLoadsOnceAndShares(t *testing.T) {
	var calls atomic.Int32
	r := NewRegistry(testSources(&calls), time.Minute, logging.Discard())
	p := model.Principal{UserID: "f1", Role: model.RoleFarmer}

	s1 := r.Open(context.Background(), p)
	s2 := r.Open(context.Background(), p)

	assert.Same(t, s1, s2)
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, "FARMER-p", s1.Products.Items()[0].ID)
	assert.Error(t, s1.Orders.Err())
	assert.Nil(t, s1.Users)
}

func TestRegistry_AdminGetsUsers(t *testing.T) {
	var calls atomic.Int32
	r := NewRegistry(testSources(&calls), time.Minute, logging.Discard())

	s := r.Open(context.Background(), model.Principal{UserID: "a1", Role: model.RoleAdmin})
	require.NotNil(t, s.Users)
	assert.Equal(t, 1, s.Users.Len())
}

func TestRegistry_RoleChangeRebuilds(t *testing.T) {
	var calls atomic.Int32
	r := NewRegistry(testSources(&calls), time.Minute, logging.Discard())

	s1 := r.Open(context.Background(), model.Principal{UserID: "x", Role: model.RoleFarmer})
	s2 := r.Open(context.Background(), model.Principal{UserID: "x", Role: model.RoleBuyer})
	assert.NotSame(t, s1, s2)
	assert.Equal(t, "BUYER-p", s2.Products.Items()[0].ID)
}

func TestRegistry_SweepAndClose(t *testing.T) {
	var calls atomic.Int32
	r := NewRegistry(testSources(&calls), time.Minute, logging.Discard())
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return now }

	r.Open(context.Background(), model.Principal{UserID: "a", Role: model.RoleBuyer})
	r.Open(context.Background(), model.Principal{UserID: "b", Role: model.RoleBuyer})

	now = now.Add(30 * time.Second)
	r.Open(context.Background(), model.Principal{UserID: "b", Role: model.RoleBuyer})

	now = now.Add(45 * time.Second)
	assert.Equal(t, 1, r.Sweep())
	_, ok := r.Get("a")
	assert.False(t, ok)

	r.Close("b")
	assert.Equal(t, 0, r.Len())
}

func TestRegistry_ConcurrentOpenWaitsForFirstLoad(t *testing.T) {
	release := make(chan struct{})
	var calls atomic.Int32
	src := Sources{
		Products: func(role model.Role) Loader[model.Product] {
			return func(ctx context.Context) upstream.Envelope[[]model.Product] {
				calls.Add(1)
				<-release
				return upstream.Envelope[[]model.Product]{Success: true, Data: []model.Product{{ID: "p1"}}}
			}
		},
	}
	r := NewRegistry(src, time.Minute, logging.Discard())
	p := model.Principal{UserID: "f1", Role: model.RoleFarmer}

	go r.Open(context.Background(), p)
	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, time.Millisecond)

	second := make(chan *Session, 1)
	go func() { second <- r.Open(context.Background(), p) }()
	assert.Never(t, func() bool { return len(second) > 0 }, 50*time.Millisecond, 5*time.Millisecond)

	close(release)
	var s *Session
	select {
	case s = <-second:
	case <-time.After(time.Second):
		t.Fatal("second Open did not return")
	}
	assert.False(t, s.Products.Loading())
	assert.Equal(t, 1, s.Products.Len())
	assert.Equal(t, int32(1), calls.Load())
}

func TestRegistry_OpenGivesUpWhenCallerCancels(t *testing.T) {
	release := make(chan struct{})
	t.Cleanup(func() { close(release) })
	var calls atomic.Int32
	src := Sources{
		Products: func(role model.Role) Loader[model.Product] {
			return func(ctx context.Context) upstream.Envelope[[]model.Product] {
				calls.Add(1)
				<-release
				return upstream.Envelope[[]model.Product]{Success: true}
			}
		},
	}
	r := NewRegistry(src, time.Minute, logging.Discard())
	p := model.Principal{UserID: "f1", Role: model.RoleFarmer}
	go r.Open(context.Background(), p)
	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := r.Open(ctx, p)
	require.NotNil(t, s)
	assert.True(t, s.Products.Loading())
}

// pairedは f1 と b1 が互いに会話を持つ
func pairedSources() Sources {
	return Sources{
		Conversations: func(p model.Principal) ([]model.Conversation, []model.Message) {
			other := model.User{ID: "b1", Role: model.RoleBuyer}
			if p.UserID == "b1" {
				other = model.User{ID: "f1", Role: model.RoleFarmer}
			}
			return []model.Conversation{{ID: "conv-" + p.UserID, Participant: other}}, nil
		},
	}
}

func TestRegistry_DeliverReachesRecipient(t *testing.T) {
	r := NewRegistry(pairedSources(), time.Minute, logging.Discard())
	f := r.Open(context.Background(), model.Principal{UserID: "f1", Role: model.RoleFarmer})

	sent, err := f.Messages.Send("conv-f1", "m1", "Maize ready", time.Now())
	require.NoError(t, err)

	// 相手がまだセッションを持っていない
	assert.False(t, r.Deliver("b1", sent))

	b := r.Open(context.Background(), model.Principal{UserID: "b1", Role: model.RoleBuyer})
	require.True(t, r.Deliver("b1", sent))

	got, err := b.Messages.Messages("conv-b1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Maize ready", got[0].Content)
	assert.Equal(t, "conv-b1", got[0].ConversationID)
	assert.False(t, got[0].Read)
	assert.Equal(t, 1, b.Messages.UnreadTotal())

	// 会話のない相手には届かない
	stranger := sent
	stranger.SenderID = "x9"
	assert.False(t, r.Deliver("b1", stranger))
}

func TestRegistry_SetOnlineReachesSessions(t *testing.T) {
	r := NewRegistry(pairedSources(), time.Minute, logging.Discard())
	f := r.Open(context.Background(), model.Principal{UserID: "f1", Role: model.RoleFarmer})

	r.SetOnline("b1", true)
	assert.Equal(t, []string{"b1"}, f.Messages.Online())
	assert.True(t, f.Messages.Conversations()[0].Online)

	// 後から開いたセッションにも今の在席が入る
	r.SetOnline("f1", true)
	b := r.Open(context.Background(), model.Principal{UserID: "b1", Role: model.RoleBuyer})
	assert.Equal(t, []string{"f1"}, b.Messages.Online())
	assert.Equal(t, []string{"b1"}, f.Messages.Online())

	r.SetOnline("b1", false)
	assert.Empty(t, f.Messages.Online())
}
