package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"linkshort.local/internal/app/links"
	"linkshort.local/internal/app/links/stats"
	"linkshort.local/internal/platform/auth"
)

type fakeLinks struct {
	m map[string]links.Link
}

func (f *fakeLinks) FindBySlug(_ context.Context, slug string) (links.Link, error) {
	l, ok := f.m[slug]
	if !ok {
		return links.Link{}, links.ErrLinkNotFound
	}
	return l, nil
}

func (f *fakeLinks) FindActiveByURL(_ context.Context, fullURL, ownerID string, createdAfter time.Time) (links.Link, error) {
	for _, l := range f.m {
		if l.FullURL == fullURL && l.OwnerID == ownerID && l.CreatedAt.After(createdAfter) {
			return l, nil
		}
	}
	return links.Link{}, links.ErrLinkNotFound
}

func (f *fakeLinks) Insert(_ context.Context, l links.Link) error {
	f.m[l.Slug] = l
	return nil
}

func (f *fakeLinks) IncrementAttempts(_ context.Context, slug string) error {
	l, ok := f.m[slug]
	if !ok {
		return links.ErrLinkNotFound
	}
	l.Attempts++
	f.m[slug] = l
	return nil
}

func (f *fakeLinks) UpdateLimit(_ context.Context, slug string, limit *int) error {
	l := f.m[slug]
	l.AttemptsLimit = limit
	f.m[slug] = l
	return nil
}

func (f *fakeLinks) Delete(_ context.Context, slug string) error {
	delete(f.m, slug)
	return nil
}

func (f *fakeLinks) DeleteCreatedBefore(_ context.Context, cutoff time.Time) (int64, error) {
	var n int64
	for slug, l := range f.m {
		if l.CreatedAt.Before(cutoff) {
			delete(f.m, slug)
			n++
		}
	}
	return n, nil
}

type fakeUsers struct {
	ids map[string]bool
}

func (f *fakeUsers) FindByID(_ context.Context, id string) (links.User, error) {
	if !f.ids[id] {
		return links.User{}, links.ErrUserNotFound
	}
	return links.User{ID: id}, nil
}

func (f *fakeUsers) Create(_ context.Context) (links.User, error) {
	f.ids["anon"] = true
	return links.User{ID: "anon"}, nil
}

type captureCollector struct {
	events []stats.ResolveEvent
}

func (c *captureCollector) Collect(e stats.ResolveEvent) { c.events = append(c.events, e) }
func (c *captureCollector) Close()                       {}

func newTestRouter(t *testing.T) (*gin.Engine, *fakeLinks, *captureCollector) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := &fakeLinks{m: map[string]links.Link{}}
	users := &fakeUsers{ids: map[string]bool{"u1": true, "u2": true}}
	svc := links.NewService(store, users, links.Config{
		TTL:      time.Hour,
		Scheme:   "http",
		HostName: "sho.rt",
	})
	collector := &captureCollector{}

	r := gin.New()
	RegisterRoutes(r, NewLinksAPI(svc, collector), nil, DefaultRateLimits())
	return r, store, collector
}

func doJSON(r http.Handler, method, path, body string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateAndRedirect(t *testing.T) {
	r, _, collector := newTestRouter(t)

	w := doJSON(r, http.MethodPost, "/", `{"url":"https://example.com/page"}`, map[string]string{"X-User-Id": "u1"})
	if w.Code != http.StatusOK {
		t.Fatalf("create status = %d body = %s", w.Code, w.Body.String())
	}
	var created struct {
		UserID   string `json:"userId"`
		ShortURL string `json:"shortUrl"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatal(err)
	}
	if created.UserID != "u1" {
		t.Fatalf("userId = %q", created.UserID)
	}
	slug := strings.TrimPrefix(created.ShortURL, "http://sho.rt/")

	w = doJSON(r, http.MethodGet, "/"+slug, "", nil)
	if w.Code != http.StatusFound {
		t.Fatalf("redirect status = %d", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "https://example.com/page" {
		t.Fatalf("Location = %q", loc)
	}
	if len(collector.events) != 1 || collector.events[0].Slug != slug {
		t.Fatalf("collector events = %+v", collector.events)
	}
}

func TestCreateAnonymousIssuesUser(t *testing.T) {
	r, _, _ := newTestRouter(t)

	w := doJSON(r, http.MethodPost, "/", `{"url":"https://example.com"}`, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", w.Code, w.Body.String())
	}
	var created struct {
		UserID string `json:"userId"`
	}
	json.Unmarshal(w.Body.Bytes(), &created)
	if created.UserID == "" {
		t.Fatal("匿名创建应当在响应里带新用户 id")
	}
}

func TestErrorStatusMapping(t *testing.T) {
	r, _, _ := newTestRouter(t)

	// 先建一条 u1 的链接
	w := doJSON(r, http.MethodPost, "/", `{"url":"https://example.com/page"}`, map[string]string{"X-User-Id": "u1"})
	var created struct {
		ShortURL string `json:"shortUrl"`
	}
	json.Unmarshal(w.Body.Bytes(), &created)
	slug := strings.TrimPrefix(created.ShortURL, "http://sho.rt/")

	cases := []struct {
		name   string
		method string
		path   string
		body   string
		header map[string]string
		want   int
	}{
		{"bad url", http.MethodPost, "/", `{"url":"ftp://x"}`, map[string]string{"X-User-Id": "u1"}, http.StatusBadRequest},
		{"bad limit", http.MethodPost, "/", `{"url":"https://ok.example.com","limit":0}`, map[string]string{"X-User-Id": "u1"}, http.StatusBadRequest},
		{"unknown user", http.MethodPost, "/", `{"url":"https://ok2.example.com"}`, map[string]string{"X-User-Id": "ghost"}, http.StatusUnauthorized},
		{"duplicate", http.MethodPost, "/", `{"url":"https://example.com/page"}`, map[string]string{"X-User-Id": "u1"}, http.StatusConflict},
		{"redirect unknown", http.MethodGet, "/zzzzzzzz", "", nil, http.StatusNotFound},
		{"delete no owner", http.MethodDelete, "/" + slug, "", nil, http.StatusUnauthorized},
		{"delete wrong owner", http.MethodDelete, "/" + slug, "", map[string]string{"X-User-Id": "u2"}, http.StatusForbidden},
		{"edit unknown slug", http.MethodPut, "/zzzzzzzz", `{"limit":5}`, map[string]string{"X-User-Id": "u1"}, http.StatusNotFound},
	}
	for _, tc := range cases {
		w := doJSON(r, tc.method, tc.path, tc.body, tc.header)
		if w.Code != tc.want {
			t.Errorf("%s: status = %d, want %d (body %s)", tc.name, w.Code, tc.want, w.Body.String())
		}
		var resp map[string]any
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil || resp["error"] == nil {
			t.Errorf("%s: 错误响应应当是 {\"error\": ...}，得到 %s", tc.name, w.Body.String())
		}
	}
}

func TestExhaustedReturnsGone(t *testing.T) {
	r, _, _ := newTestRouter(t)

	w := doJSON(r, http.MethodPost, "/", `{"url":"https://example.com/once","limit":1}`, map[string]string{"X-User-Id": "u1"})
	var created struct {
		ShortURL string `json:"shortUrl"`
	}
	json.Unmarshal(w.Body.Bytes(), &created)
	slug := strings.TrimPrefix(created.ShortURL, "http://sho.rt/")

	if w := doJSON(r, http.MethodGet, "/"+slug, "", nil); w.Code != http.StatusFound {
		t.Fatalf("first resolve: %d", w.Code)
	}
	if w := doJSON(r, http.MethodGet, "/"+slug, "", nil); w.Code != http.StatusGone {
		t.Fatalf("second resolve: %d, want 410", w.Code)
	}
}

func TestDeleteAndEditHappyPath(t *testing.T) {
	r, store, _ := newTestRouter(t)

	w := doJSON(r, http.MethodPost, "/", `{"url":"https://example.com/page"}`, map[string]string{"X-User-Id": "u1"})
	var created struct {
		ShortURL string `json:"shortUrl"`
	}
	json.Unmarshal(w.Body.Bytes(), &created)
	slug := strings.TrimPrefix(created.ShortURL, "http://sho.rt/")

	w = doJSON(r, http.MethodPut, "/"+slug, `{"limit":7}`, map[string]string{"X-User-Id": "u1"})
	if w.Code != http.StatusOK {
		t.Fatalf("edit status = %d body = %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "has been edited successfully") {
		t.Fatalf("edit body = %s", w.Body.String())
	}
	if l := store.m[slug]; l.AttemptsLimit == nil || *l.AttemptsLimit != 7 {
		t.Fatalf("limit = %v", l.AttemptsLimit)
	}

	w = doJSON(r, http.MethodDelete, "/"+slug, "", map[string]string{"X-User-Id": "u1"})
	if w.Code != http.StatusOK {
		t.Fatalf("delete status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "has been deleted") {
		t.Fatalf("delete body = %s", w.Body.String())
	}
	if _, ok := store.m[slug]; ok {
		t.Fatal("记录没有被删除")
	}
}

func TestHealthz(t *testing.T) {
	r, _, _ := newTestRouter(t)
	w := doJSON(r, http.MethodGet, "/healthz", "", nil)
	if w.Code != http.StatusOK || w.Body.String() != "ok" {
		t.Fatalf("healthz: %d %q", w.Code, w.Body.String())
	}
}

func TestAdminAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)

	store := &fakeLinks{m: map[string]links.Link{}}
	users := &fakeUsers{ids: map[string]bool{}}
	svc := links.NewService(store, users, links.Config{TTL: time.Hour, Scheme: "http", HostName: "sho.rt"})

	ts, err := auth.NewHS256Service("test-secret-0123456789", "linkshort", time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	r := gin.New()
	RegisterAdmin(r, NewAdminAPI(svc, nil), ts)

	// 没带 token
	w := doJSON(r, http.MethodPost, "/admin/cleanup", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("no token: %d", w.Code)
	}

	// 角色不对
	userToken, _ := ts.Sign("ops", "viewer")
	w = doJSON(r, http.MethodPost, "/admin/cleanup", "", map[string]string{"Authorization": "Bearer " + userToken})
	if w.Code != http.StatusForbidden {
		t.Fatalf("viewer token: %d", w.Code)
	}

	// admin 放行
	adminToken, _ := ts.Sign("ops", "admin")
	w = doJSON(r, http.MethodPost, "/admin/cleanup", "", map[string]string{"Authorization": "Bearer " + adminToken})
	if w.Code != http.StatusOK {
		t.Fatalf("admin token: %d body = %s", w.Code, w.Body.String())
	}
	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if _, ok := resp["deleted"]; !ok {
		t.Fatalf("cleanup body = %s", w.Body.String())
	}
}
