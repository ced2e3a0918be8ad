package usecase

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"umuhinzilink/internal/domain/model"
	"umuhinzilink/internal/logging"
	"umuhinzilink/internal/notify"
	"umuhinzilink/internal/proxy"
	repo "umuhinzilink/internal/repository"
	"umuhinzilink/internal/service"
	"umuhinzilink/internal/store"
	"umuhinzilink/internal/upload"
	"umuhinzilink/internal/upstream"

	"github.com/stretchr/testify/mock"
)

type mockAuditRepo struct {
	mock.Mock
}

func (m *mockAuditRepo) Create(ctx context.Context, log model.AuditLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *mockAuditRepo) List(ctx context.Context, filter repo.AuditLogFilter) ([]model.AuditLog, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]model.AuditLog), args.Error(1)
}

func (m *mockAuditRepo) logs() []model.AuditLog {
	var out []model.AuditLog
	for _, c := range m.Calls {
		if c.Method == "Create" {
			out = append(out, c.Arguments.Get(1).(model.AuditLog))
		}
	}
	return out
}

// backendは "METHOD /path" ごとの呼び出し回数を数える偽バックエンド。
// 登録のないGETは空の一覧、それ以外はSpring風の404。
type backend struct {
	mu     sync.Mutex
	hits   map[string]int
	routes map[string]http.HandlerFunc
}

func (b *backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key := r.Method + " " + r.URL.Path
	b.mu.Lock()
	b.hits[key]++
	h, ok := b.routes[key]
	b.mu.Unlock()
	if ok {
		h(w, r)
		return
	}
	if r.Method == http.MethodGet {
		_, _ = io.WriteString(w, `{"success":true,"data":[]}`)
		return
	}
	w.WriteHeader(http.StatusNotFound)
	_, _ = io.WriteString(w, `{"message":"No static resource `+r.URL.Path+`."}`)
}

func (b *backend) handle(key string, h http.HandlerFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.routes[key] = h
}

func (b *backend) count(key string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hits[key]
}

func (b *backend) total() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, v := range b.hits {
		n += v
	}
	return n
}

type fixture struct {
	be     *backend
	client *upstream.Client
	rec    *notify.Recorder
	audit  *mockAuditRepo
	reg    *store.Registry

	orders    *OrderActions
	products  *ProductActions
	suppliers *SupplierActions
	admin     *AdminActions
	profile   *ProfileActions
	uploads   *UploadActions
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	be := &backend{hits: map[string]int{}, routes: map[string]http.HandlerFunc{}}
	srv := httptest.NewServer(be)
	t.Cleanup(srv.Close)

	logger := logging.Discard()
	client := upstream.NewClient(srv.URL, 2*time.Second, logger)
	productSvc := service.NewProductService(client, proxy.NewResolver(client, logger))
	orderSvc := service.NewOrderService(client)
	userSvc := service.NewUserService(client)
	supplierSvc := service.NewSupplierService(client)

	rec := notify.NewRecorder()
	audit := &mockAuditRepo{}
	audit.On("Create", mock.Anything, mock.Anything).Return(nil)

	products := NewProductActions(productSvc, rec, audit, logger)
	return &fixture{
		be:        be,
		client:    client,
		rec:       rec,
		audit:     audit,
		reg:       store.NewRegistry(service.NewStoreSources(productSvc, orderSvc, userSvc, supplierSvc, false), time.Minute, logger),
		orders:    NewOrderActions(orderSvc, rec, audit, logger),
		products:  products,
		suppliers: NewSupplierActions(supplierSvc, products, rec, audit, logger),
		admin:     NewAdminActions(userSvc, rec, audit, logger),
		profile:   NewProfileActions(userSvc, rec, audit, logger),
		uploads:   NewUploadActions(service.NewUploadService(client), upload.DefaultPolicy(), rec, audit, logger),
	}
}

// sessionは指定ロールのセッションを開き、トークン付きのctxを返す
func (f *fixture) session(t *testing.T, role model.Role) (context.Context, *store.Session) {
	t.Helper()
	p := model.Principal{UserID: "u-" + string(role), Role: role, Token: "tok"}
	ctx := upstream.WithToken(context.Background(), p.Token)
	return ctx, f.reg.Open(ctx, p)
}

func jsonHandler(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}
}

func matchAudit(action model.AuditAction, outcome model.AuditOutcome, resourceID string) interface{} {
	return mock.MatchedBy(func(l model.AuditLog) bool {
		return l.Action == action && l.Outcome == outcome && l.ResourceID == resourceID
	})
}
