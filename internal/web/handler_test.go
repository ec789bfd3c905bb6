package web

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/fruits/internal/memory"
	"github.com/mesh-intelligence/fruits/pkg/types"
)

// testServer returns a strict server over an attached memory cupboard.
func testServer(t *testing.T, strict bool) (*Server, types.Table) {
	t.Helper()
	cup := memory.NewBackend()
	require.NoError(t, cup.Attach(context.Background(), types.Config{Backend: types.BackendMemory}))
	t.Cleanup(func() { cup.Detach() })

	s, err := NewServer(cup, Options{Strict: strict}, zap.NewNop())
	require.NoError(t, err)
	tbl, err := cup.GetTable(types.TableFruits)
	require.NoError(t, err)
	return s, tbl
}

func do(t *testing.T, h http.Handler, method, target string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func fruitForm(name, color, ready string) url.Values {
	v := url.Values{"name": {name}, "color": {color}}
	if ready != "" {
		v.Set("readyToEat", ready)
	}
	return v
}

func onlyFruit(t *testing.T, tbl types.Table) *types.Fruit {
	t.Helper()
	all, err := tbl.Fetch(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, all, 1)
	return all[0]
}

func TestCreateCoercesReadyToEat(t *testing.T) {
	tests := []struct {
		name  string
		ready string
		want  bool
	}{
		{"on", "on", true},
		{"absent", "", false},
		{"off", "off", false},
		{"true", "true", false},
		{"uppercase", "ON", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, tbl := testServer(t, true)
			rec := do(t, s.Handler(), http.MethodPost, "/fruits", fruitForm("mango", "orange", tt.ready))
			assert.Equal(t, http.StatusFound, rec.Code)
			assert.Equal(t, "/fruits", rec.Header().Get("Location"))

			got := onlyFruit(t, tbl)
			assert.Equal(t, "mango", got.Name)
			assert.Equal(t, "orange", got.Color)
			assert.Equal(t, tt.want, got.ReadyToEat)
		})
	}
}

func TestCreateAcceptsEmptyFields(t *testing.T) {
	s, tbl := testServer(t, true)
	rec := do(t, s.Handler(), http.MethodPost, "/fruits", url.Values{})
	assert.Equal(t, http.StatusFound, rec.Code)
	got := onlyFruit(t, tbl)
	assert.Empty(t, got.Name)
	assert.Empty(t, got.Color)
	assert.NotEmpty(t, got.FruitID)
}

func TestCreateWithTrailingSlash(t *testing.T) {
	s, tbl := testServer(t, true)
	rec := do(t, s.Handler(), http.MethodPost, "/fruits/", fruitForm("lime", "green", "on"))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/fruits", rec.Header().Get("Location"))
	assert.Equal(t, "lime", onlyFruit(t, tbl).Name)
}

func TestListAndShow(t *testing.T) {
	s, tbl := testServer(t, true)
	h := s.Handler()

	rec := do(t, h, http.MethodGet, "/fruits", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "No fruits yet.")

	do(t, h, http.MethodPost, "/fruits", fruitForm("kiwi", "green", "on"))
	fruit := onlyFruit(t, tbl)

	for _, path := range []string{"/fruits", "/fruits/"} {
		rec = do(t, h, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `href="/fruits/`+fruit.FruitID+`"`)
		assert.Contains(t, rec.Body.String(), "kiwi")
	}

	rec = do(t, h, http.MethodGet, "/fruits/"+fruit.FruitID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	body := rec.Body.String()
	assert.Contains(t, body, "The kiwi is green.")
	assert.Contains(t, body, "It is ready to eat.")
	assert.Contains(t, body, "?_method=DELETE")
}

func TestNewForm(t *testing.T) {
	s, _ := testServer(t, true)
	rec := do(t, s.Handler(), http.MethodGet, "/fruits/new", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `action="/fruits" method="POST"`)
	assert.Contains(t, body, `name="readyToEat"`)
}

func TestEditFormIsPrepopulated(t *testing.T) {
	s, tbl := testServer(t, true)
	do(t, s.Handler(), http.MethodPost, "/fruits", fruitForm("plum", "purple", "on"))
	fruit := onlyFruit(t, tbl)

	rec := do(t, s.Handler(), http.MethodGet, "/fruits/"+fruit.FruitID+"/edit", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `value="plum"`)
	assert.Contains(t, body, `value="purple"`)
	assert.Contains(t, body, `name="readyToEat" checked`)
	assert.Contains(t, body, `action="/fruits/`+fruit.FruitID+`?_method=PUT"`)
}

func TestUpdate(t *testing.T) {
	overrides := []struct {
		name   string
		method string
		target func(id string) string
		extra  url.Values
	}{
		{"query override", http.MethodPost, func(id string) string { return "/fruits/" + id + "?_method=PUT" }, nil},
		{"form override", http.MethodPost, func(id string) string { return "/fruits/" + id }, url.Values{"_method": {"put"}}},
		{"patch override", http.MethodPost, func(id string) string { return "/fruits/" + id + "?_method=PATCH" }, nil},
		{"direct put", http.MethodPut, func(id string) string { return "/fruits/" + id }, nil},
	}
	for _, tt := range overrides {
		t.Run(tt.name, func(t *testing.T) {
			s, tbl := testServer(t, true)
			do(t, s.Handler(), http.MethodPost, "/fruits", fruitForm("mango", "orange", "on"))
			before := onlyFruit(t, tbl)

			form := fruitForm("mango", "yellow", "off")
			for k, v := range tt.extra {
				form[k] = v
			}
			rec := do(t, s.Handler(), tt.method, tt.target(before.FruitID), form)
			assert.Equal(t, http.StatusFound, rec.Code)
			assert.Equal(t, "/fruits", rec.Header().Get("Location"))

			after := onlyFruit(t, tbl)
			assert.Equal(t, before.FruitID, after.FruitID)
			assert.Equal(t, "yellow", after.Color)
			assert.False(t, after.ReadyToEat)
			assert.True(t, after.CreatedAt.Equal(before.CreatedAt))
		})
	}
}

func TestDeleteThenShow(t *testing.T) {
	s, tbl := testServer(t, true)
	h := s.Handler()
	do(t, h, http.MethodPost, "/fruits", fruitForm("fig", "purple", ""))
	fruit := onlyFruit(t, tbl)

	rec := do(t, h, http.MethodPost, "/fruits/"+fruit.FruitID+"?_method=DELETE", url.Values{})
	assert.Equal(t, http.StatusFound, rec.Code)

	rec = do(t, h, http.MethodGet, "/fruits/"+fruit.FruitID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "No such fruit")
}

func TestMissingIDs(t *testing.T) {
	missing := uuid.NewString()
	tests := []struct {
		name     string
		method   string
		target   string
		form     url.Values
		wantCode int
	}{
		{"show missing", http.MethodGet, "/fruits/" + missing, nil, http.StatusNotFound},
		{"show malformed", http.MethodGet, "/fruits/not-an-id", nil, http.StatusNotFound},
		{"edit missing", http.MethodGet, "/fruits/" + missing + "/edit", nil, http.StatusNotFound},
		{"update missing", http.MethodPut, "/fruits/" + missing, fruitForm("a", "b", ""), http.StatusFound},
		{"update malformed", http.MethodPut, "/fruits/nope", fruitForm("a", "b", ""), http.StatusFound},
		{"delete missing", http.MethodDelete, "/fruits/" + missing, nil, http.StatusFound},
		{"delete malformed", http.MethodDelete, "/fruits/nope", nil, http.StatusFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, tbl := testServer(t, true)
			rec := do(t, s.Handler(), tt.method, tt.target, tt.form)
			assert.Equal(t, tt.wantCode, rec.Code)

			all, err := tbl.Fetch(context.Background(), nil)
			require.NoError(t, err)
			assert.Empty(t, all)
		})
	}
}

func TestListCountAfterCreatesAndDeletes(t *testing.T) {
	s, tbl := testServer(t, true)
	h := s.Handler()
	names := []string{"apple", "banana", "cherry", "date", "elderberry"}
	for _, n := range names {
		do(t, h, http.MethodPost, "/fruits", fruitForm(n, "", ""))
	}
	all, err := tbl.Fetch(context.Background(), nil)
	require.NoError(t, err)
	for _, f := range all[:2] {
		do(t, h, http.MethodDelete, "/fruits/"+f.FruitID, nil)
	}

	rec := do(t, h, http.MethodGet, "/fruits", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, len(names)-2, strings.Count(rec.Body.String(), "<li>"))
}

// failingTable fails every operation with err.
type failingTable struct{ err error }

func (f failingTable) Get(context.Context, string) (*types.Fruit, error) { return nil, f.err }
func (f failingTable) Set(context.Context, string, *types.Fruit) (string, error) {
	return "", f.err
}
func (f failingTable) Delete(context.Context, string) error { return f.err }
func (f failingTable) Fetch(context.Context, map[string]any) ([]*types.Fruit, error) {
	return nil, f.err
}
func (f failingTable) Clear(context.Context) error { return f.err }
func (f failingTable) Import(context.Context, []*types.Fruit) ([]string, error) {
	return nil, f.err
}

func failingMux(t *testing.T, strict bool) http.Handler {
	t.Helper()
	views, err := NewViews()
	require.NoError(t, err)
	h := &Handler{
		Fruits:  failingTable{err: errors.New("connection reset")},
		Views:   views,
		Log:     zap.NewNop(),
		Metrics: NewMetrics(),
		Strict:  strict,
	}
	mux := http.NewServeMux()
	h.Register(mux)
	return methodOverride(mux)
}

func TestStoreFailures(t *testing.T) {
	id := uuid.NewString()
	tests := []struct {
		name       string
		method     string
		target     string
		form       url.Values
		wantStrict int
		wantLegacy int
	}{
		{"list", http.MethodGet, "/fruits", nil, http.StatusInternalServerError, http.StatusOK},
		{"show", http.MethodGet, "/fruits/" + id, nil, http.StatusInternalServerError, http.StatusOK},
		{"edit", http.MethodGet, "/fruits/" + id + "/edit", nil, http.StatusInternalServerError, http.StatusOK},
		{"create", http.MethodPost, "/fruits", fruitForm("a", "b", "on"), http.StatusInternalServerError, http.StatusFound},
		{"update", http.MethodPut, "/fruits/" + id, fruitForm("a", "b", ""), http.StatusInternalServerError, http.StatusFound},
		{"delete", http.MethodPost, "/fruits/" + id + "?_method=DELETE", url.Values{}, http.StatusInternalServerError, http.StatusFound},
	}
	for _, tt := range tests {
		t.Run(tt.name+"/strict", func(t *testing.T) {
			rec := do(t, failingMux(t, true), tt.method, tt.target, tt.form)
			assert.Equal(t, tt.wantStrict, rec.Code)
			assert.Contains(t, rec.Body.String(), "Something went wrong")
			assert.NotContains(t, rec.Body.String(), "connection reset")
		})
		t.Run(tt.name+"/legacy", func(t *testing.T) {
			rec := do(t, failingMux(t, false), tt.method, tt.target, tt.form)
			assert.Equal(t, tt.wantLegacy, rec.Code)
			assert.NotContains(t, rec.Body.String(), "Something went wrong")
		})
	}
}

func TestLegacyAbsentRecordRendersEmptyView(t *testing.T) {
	s, _ := testServer(t, false)
	rec := do(t, s.Handler(), http.MethodGet, "/fruits/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "No such fruit")
}

// brokenViews fails every render.
type brokenViews struct{}

func (brokenViews) Render(io.Writer, string, any) error {
	return errors.New("template exploded")
}

func TestRenderFailure(t *testing.T) {
	_, tbl := testServer(t, true)
	h := &Handler{Fruits: tbl, Views: brokenViews{}, Log: zap.NewNop(), Strict: true}
	mux := http.NewServeMux()
	h.Register(mux)

	rec := do(t, mux, http.MethodGet, "/fruits", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "template exploded")
}
