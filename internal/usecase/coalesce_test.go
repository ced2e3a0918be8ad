package usecase

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"umuhinzilink/internal/domain/model"
	"umuhinzilink/internal/logging"
	"umuhinzilink/internal/notify"
	"umuhinzilink/internal/service"
	"umuhinzilink/internal/upstream"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// slowAuthは"right"だけ通す。releaseが閉じるまで返さない。
type slowAuth struct {
	calls   atomic.Int32
	release chan struct{}
}

func (a *slowAuth) Authenticate(ctx context.Context, req service.LoginRequest) upstream.Envelope[service.LoginResult] {
	a.calls.Add(1)
	<-a.release
	if req.Password != "right" {
		return upstream.Fail[service.LoginResult](http.StatusUnauthorized, "Invalid email or password")
	}
	return upstream.Envelope[service.LoginResult]{
		Success: true,
		Status:  http.StatusOK,
		Data:    service.LoginResult{Token: "owner-token", User: model.User{ID: "u1", Email: req.Email}},
	}
}

func TestAuthLogin_ConcurrentLoginsAreIndependent(t *testing.T) {
	auth := &slowAuth{release: make(chan struct{})}
	prefs := &memPrefs{items: map[string]model.Preference{}}
	a := NewAuthActions(auth, prefs, notify.NewRecorder(), logging.Discard())
	ctx := context.Background()

	var wg sync.WaitGroup
	var owner, other Result[service.LoginResult]
	wg.Add(2)
	go func() {
		defer wg.Done()
		owner = a.Login(ctx, LoginInput{Email: "v@x.rw", Password: "right", RememberMe: true, ClientKey: "owner"})
	}()
	require.Eventually(t, func() bool { return auth.calls.Load() == 1 }, time.Second, time.Millisecond)
	go func() {
		defer wg.Done()
		other = a.Login(ctx, LoginInput{Email: "v@x.rw", Password: "wrong", RememberMe: true, ClientKey: "other"})
	}()

	//両方がログイン先まで届いてから返す
	require.Eventually(t, func() bool { return auth.calls.Load() == 2 }, time.Second, time.Millisecond)
	close(auth.release)
	wg.Wait()

	require.True(t, owner.OK)
	assert.Equal(t, "owner-token", owner.Data.Token)

	assert.False(t, other.OK)
	assert.Empty(t, other.Data.Token)
	assert.Equal(t, http.StatusUnauthorized, other.Status)
	assert.Empty(t, a.Remembered(ctx, "other").RememberedEmail)
	assert.Equal(t, "v@x.rw", a.Remembered(ctx, "owner").RememberedEmail)
}

// echoNameは受け取った商品名をそのまま返す。releaseまで待つ。
func echoName(release chan struct{}) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		<-release
		var body struct {
			Name   string `json:"name"`
			Status string `json:"status"`
		}
		b, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(b, &body)
		out, _ := json.Marshal(map[string]interface{}{
			"success": true,
			"data":    map[string]interface{}{"id": "p1", "name": body.Name, "status": body.Status, "quantity": 1},
		})
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(out)
	}
}

func TestProductUpdate_DistinctEditsAreNotMerged(t *testing.T) {
	f := newFixture(t)
	release := make(chan struct{})
	f.be.handle("PUT /products/p1", echoName(release))
	ctx, s := f.session(t, model.RoleFarmer)

	first, second := avocado(), avocado()
	first.Name = "FIRST"
	second.Name = "SECOND"

	var wg sync.WaitGroup
	results := make([]Result[model.Product], 2)
	for i, req := range []service.ProductRequest{first, second} {
		wg.Add(1)
		go func(i int, req service.ProductRequest) {
			defer wg.Done()
			results[i] = f.products.Update(ctx, s, "p1", req)
		}(i, req)
	}
	require.Eventually(t, func() bool { return f.be.count("PUT /products/p1") == 2 }, time.Second, time.Millisecond)
	close(release)
	wg.Wait()

	require.True(t, results[0].OK)
	require.True(t, results[1].OK)
	assert.Equal(t, "FIRST", results[0].Data.Name)
	assert.Equal(t, "SECOND", results[1].Data.Name)
	assert.Equal(t, 2, f.rec.Count(s.Principal.UserID, model.NotificationSuccess))
}

func TestProductUpdate_SameEditIsMerged(t *testing.T) {
	f := newFixture(t)
	release := make(chan struct{})
	f.be.handle("PUT /products/p1", echoName(release))
	ctx, s := f.session(t, model.RoleFarmer)

	var wg sync.WaitGroup
	results := make([]Result[model.Product], 2)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = f.products.Update(ctx, s, "p1", avocado())
		}(i)
	}
	require.Eventually(t, func() bool { return f.products.inflight.Load() == 2 }, time.Second, time.Millisecond)
	close(release)
	wg.Wait()

	assert.True(t, results[0].OK)
	assert.True(t, results[1].OK)
	assert.Equal(t, 1, f.be.count("PUT /products/p1"))
}

func TestOrderUpdateStatus_DistinctStatusesAreNotMerged(t *testing.T) {
	f := newFixture(t)
	release := make(chan struct{})
	f.be.handle("PUT /orders/o1/status", echoName(release))
	ctx, s := f.session(t, model.RoleFarmer)

	var wg sync.WaitGroup
	results := make([]Result[model.Order], 2)
	for i, st := range []model.OrderStatus{model.OrderStatusShipped, model.OrderStatusDelivered} {
		wg.Add(1)
		go func(i int, st model.OrderStatus) {
			defer wg.Done()
			results[i] = f.orders.UpdateStatus(ctx, s, "o1", st)
		}(i, st)
	}
	require.Eventually(t, func() bool { return f.be.count("PUT /orders/o1/status") == 2 }, time.Second, time.Millisecond)
	close(release)
	wg.Wait()

	require.True(t, results[0].OK)
	require.True(t, results[1].OK)
	assert.Equal(t, model.OrderStatusShipped, results[0].Data.Status)
	assert.Equal(t, model.OrderStatusDelivered, results[1].Data.Status)
}
