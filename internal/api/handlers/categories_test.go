package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Project-Sylos/Canopy/internal/auth"
	"github.com/Project-Sylos/Canopy/internal/categories"
	"github.com/Project-Sylos/Canopy/internal/db"
	"github.com/Project-Sylos/Canopy/internal/i18n"
	"github.com/Project-Sylos/Canopy/internal/log"
	"github.com/Project-Sylos/Canopy/internal/tree"
	"github.com/Project-Sylos/Canopy/internal/types"
)

var (
	admin     = auth.Principal{Name: "admin-1", Role: auth.RoleAdministrator}
	member    = auth.Principal{Name: "user-1", Role: auth.RoleUser}
	anonymous = auth.Anonymous
)

type fixture struct {
	store   *db.Memory
	handler *CategoryHandler
}

func newFixture(t *testing.T, enabled bool) *fixture {
	t.Helper()
	store := db.NewMemory()
	t.Cleanup(func() { store.Close() })

	cfg := types.CategoriesConfig{Enabled: enabled, IndexURL: "/questions/"}
	service := categories.NewService(store, log.Discard())
	return &fixture{
		store:   store,
		handler: NewCategoryHandler(service, i18n.New("en"), cfg, log.Discard()),
	}
}

// seedBooks creates Root [1,1] with child Books [1,2]
func (f *fixture) seedBooks(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	root, _, err := f.store.GetOrCreate(ctx, "Root", nil)
	require.NoError(t, err)
	_, _, err = f.store.GetOrCreate(ctx, "Books", root)
	require.NoError(t, err)
}

func (f *fixture) names(t *testing.T) []string {
	t.Helper()
	all, err := f.store.All(context.Background())
	require.NoError(t, err)
	out := make([]string, 0, len(all))
	for _, c := range all {
		out = append(out, c.Name)
	}
	return out
}

func ajax(method, path, body string, p auth.Principal) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	req.Header.Set("Content-Type", "application/json")
	return req.WithContext(auth.WithPrincipal(req.Context(), p))
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) types.APIResponse {
	t.Helper()
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	var resp types.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestAddCategory_Scenario(t *testing.T) {
	f := newFixture(t, true)
	f.seedBooks(t)

	w := httptest.NewRecorder()
	f.handler.AddCategory(w, ajax(http.MethodPost, "/categories/add", `{"name":"Movies","parent":[1,1]}`, admin))

	resp := decodeEnvelope(t, w)
	assert.True(t, resp.Success)
	assert.Empty(t, resp.Message)
	assert.JSONEq(t, `{"success":true}`, w.Body.String())

	got, err := tree.Generate(context.Background(), f.store)
	require.NoError(t, err)
	require.Len(t, got.Root.Children, 2)
	assert.Equal(t, "Books", got.Root.Children[0].Name)
	assert.Equal(t, types.NodeID{1, 2}, got.Root.Children[0].ID)
	assert.Equal(t, "Movies", got.Root.Children[1].Name)
	assert.Equal(t, types.NodeID{1, 4}, got.Root.Children[1].ID)
}

func TestAddCategory_Failures(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		principal   auth.Principal
		wantMessage string
	}{
		{"duplicate name", `{"name":"Books","parent":[1,1]}`, admin, i18n.MsgDuplicateName},
		{"duplicate of a root", `{"name":"Root"}`, admin, i18n.MsgDuplicateName},
		{"missing parent", `{"name":"Movies","parent":[7,7]}`, admin, i18n.MsgParentMissing},
		{"non-administrator", `{"name":"Movies","parent":[1,1]}`, member, i18n.MsgNotAdmin},
		{"anonymous", `{"name":"Movies","parent":[1,1]}`, anonymous, i18n.MsgAnonymous},
		{"malformed payload", `{"name":`, admin, "invalid JSON payload"},
		{"missing name", `{"parent":[1,1]}`, admin, "name is required"},
		{"numeric name", `{"name":42,"parent":[1,1]}`, admin, "name must be a string"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, true)
			f.seedBooks(t)
			before := f.names(t)

			w := httptest.NewRecorder()
			f.handler.AddCategory(w, ajax(http.MethodPost, "/categories/add", tt.body, tt.principal))

			resp := decodeEnvelope(t, w)
			assert.False(t, resp.Success)
			assert.Contains(t, resp.Message, tt.wantMessage)
			assert.Equal(t, before, f.names(t), "store must be unchanged")
		})
	}
}

func TestRenameCategory(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		principal   auth.Principal
		wantSuccess bool
		wantMessage string
		wantNames   []string
	}{
		{
			name:        "rename",
			body:        `{"id":[1,2],"name":"Literature"}`,
			principal:   admin,
			wantSuccess: true,
			wantNames:   []string{"Root", "Literature"},
		},
		{
			name:        "nonexistent node",
			body:        `{"id":[9,9],"name":"Literature"}`,
			principal:   admin,
			wantMessage: i18n.MsgNodeMissing,
			wantNames:   []string{"Root", "Books"},
		},
		{
			name:        "name already used",
			body:        `{"id":[1,2],"name":"Root"}`,
			principal:   admin,
			wantMessage: i18n.MsgDuplicateName,
			wantNames:   []string{"Root", "Books"},
		},
		{
			name:        "unchanged name is reported as duplicate",
			body:        `{"id":[1,2],"name":"Books"}`,
			principal:   admin,
			wantMessage: i18n.MsgDuplicateName,
			wantNames:   []string{"Root", "Books"},
		},
		{
			name:        "non-administrator",
			body:        `{"id":[1,2],"name":"Literature"}`,
			principal:   member,
			wantMessage: i18n.MsgNotAdmin,
			wantNames:   []string{"Root", "Books"},
		},
		{
			name:        "missing id",
			body:        `{"name":"Literature"}`,
			principal:   admin,
			wantMessage: "id is required",
			wantNames:   []string{"Root", "Books"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, true)
			f.seedBooks(t)

			w := httptest.NewRecorder()
			f.handler.RenameCategory(w, ajax(http.MethodPost, "/categories/rename", tt.body, tt.principal))

			resp := decodeEnvelope(t, w)
			assert.Equal(t, tt.wantSuccess, resp.Success)
			if tt.wantMessage != "" {
				assert.Contains(t, resp.Message, tt.wantMessage)
			}
			assert.Equal(t, tt.wantNames, f.names(t))
		})
	}
}

func TestAdminProtocol(t *testing.T) {
	endpoints := map[string]func(*CategoryHandler) http.HandlerFunc{
		"add":    func(h *CategoryHandler) http.HandlerFunc { return h.AddCategory },
		"rename": func(h *CategoryHandler) http.HandlerFunc { return h.RenameCategory },
	}

	for name, endpoint := range endpoints {
		t.Run(name+" disabled is not found", func(t *testing.T) {
			f := newFixture(t, false)
			f.seedBooks(t)

			w := httptest.NewRecorder()
			endpoint(f.handler)(w, ajax(http.MethodPost, "/categories/"+name, `{"name":"Movies","id":[1,2],"parent":[1,1]}`, admin))

			assert.Equal(t, http.StatusNotFound, w.Code)
			assert.Equal(t, []string{"Root", "Books"}, f.names(t))
		})

		t.Run(name+" non-AJAX redirects", func(t *testing.T) {
			f := newFixture(t, true)
			req := httptest.NewRequest(http.MethodPost, "/categories/"+name, strings.NewReader(`{}`))
			req = req.WithContext(auth.WithPrincipal(req.Context(), admin))

			w := httptest.NewRecorder()
			endpoint(f.handler)(w, req)

			assert.Equal(t, http.StatusFound, w.Code)
			assert.Equal(t, "/questions/", w.Header().Get("Location"))
		})

		t.Run(name+" AJAX GET is denied", func(t *testing.T) {
			f := newFixture(t, true)

			w := httptest.NewRecorder()
			endpoint(f.handler)(w, ajax(http.MethodGet, "/categories/"+name, "", admin))

			resp := decodeEnvelope(t, w)
			assert.False(t, resp.Success)
			assert.Equal(t, "must use POST request", resp.Message)
		})

		t.Run(name+" transport is checked before the caller", func(t *testing.T) {
			f := newFixture(t, true)

			w := httptest.NewRecorder()
			endpoint(f.handler)(w, ajax(http.MethodGet, "/categories/"+name, "", anonymous))

			resp := decodeEnvelope(t, w)
			assert.Equal(t, "must use POST request", resp.Message)
		})
	}
}

func TestAddCategory_Localized(t *testing.T) {
	f := newFixture(t, true)
	f.seedBooks(t)

	req := ajax(http.MethodPost, "/categories/add", `{"name":"Books"}`, admin)
	req.Header.Set("Accept-Language", "es-MX,es;q=0.9,en;q=0.5")

	w := httptest.NewRecorder()
	f.handler.AddCategory(w, req)

	resp := decodeEnvelope(t, w)
	assert.False(t, resp.Success)
	assert.Equal(t, "Ya existe una categoría con ese nombre", resp.Message)
}

type stubService struct {
	tree   func() (tree.Tree, error)
	add    func() (*types.Category, error)
	rename func() (*types.Category, error)
}

func (s stubService) Tree(context.Context) (tree.Tree, error) { return s.tree() }
func (s stubService) Add(context.Context, string, *types.NodeID) (*types.Category, error) {
	return s.add()
}
func (s stubService) Rename(context.Context, types.NodeID, string) (*types.Category, error) {
	return s.rename()
}

func TestAdminErrorsAreNormalized(t *testing.T) {
	cfg := types.CategoriesConfig{Enabled: true, IndexURL: "/"}

	tests := []struct {
		name    string
		service stubService
	}{
		{
			name: "store failure",
			service: stubService{add: func() (*types.Category, error) {
				return nil, errors.New("database is locked")
			}},
		},
		{
			name: "panic",
			service: stubService{add: func() (*types.Category, error) {
				panic("nil map")
			}},
		},
		{
			name: "categorized error without message",
			service: stubService{add: func() (*types.Category, error) {
				return nil, &categories.Error{Kind: categories.KindValidation}
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewCategoryHandler(tt.service, i18n.New("en"), cfg, log.Discard())

			w := httptest.NewRecorder()
			h.AddCategory(w, ajax(http.MethodPost, "/categories/add", `{"name":"Movies"}`, admin))

			resp := decodeEnvelope(t, w)
			assert.False(t, resp.Success)
			assert.Equal(t, i18n.MsgGenericError, resp.Message)
		})
	}
}

func TestGetTree(t *testing.T) {
	t.Run("empty store", func(t *testing.T) {
		f := newFixture(t, true)
		w := httptest.NewRecorder()
		f.handler.GetTree(w, httptest.NewRequest(http.MethodGet, "/categories/tree", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{}`, w.Body.String())
	})

	t.Run("populated store", func(t *testing.T) {
		f := newFixture(t, true)
		f.seedBooks(t)
		w := httptest.NewRecorder()
		f.handler.GetTree(w, httptest.NewRequest(http.MethodGet, "/categories/tree", nil))

		assert.JSONEq(t,
			`{"name":"Root","id":[1,1],"children":[{"name":"Books","id":[1,2],"children":[]}]}`,
			w.Body.String())
	})

	t.Run("disabled", func(t *testing.T) {
		f := newFixture(t, false)
		w := httptest.NewRecorder()
		f.handler.GetTree(w, httptest.NewRequest(http.MethodGet, "/categories/tree", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("store failure", func(t *testing.T) {
		svc := stubService{tree: func() (tree.Tree, error) { return tree.Tree{}, errors.New("boom") }}
		h := NewCategoryHandler(svc, i18n.New("en"), types.CategoriesConfig{Enabled: true, IndexURL: "/"}, log.Discard())
		w := httptest.NewRecorder()
		h.GetTree(w, httptest.NewRequest(http.MethodGet, "/categories/tree", nil))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}
