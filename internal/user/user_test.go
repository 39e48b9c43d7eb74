// AngelaMos | 2026
// user_test.go

package user

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/jobtracker/internal/core"
	"github.com/carterperez-dev/jobtracker/internal/middleware"
)

type memRepo struct {
	mu    sync.Mutex
	users map[string]*User
}

func newMemRepo() *memRepo {
	return &memRepo{users: make(map[string]*User)}
}

func (m *memRepo) live(id string) (*User, bool) {
	u, ok := m.users[id]
	if !ok || u.DeletedAt != nil {
		return nil, false
	}
	return u, true
}

func (m *memRepo) Create(_ context.Context, user *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == user.Email && u.DeletedAt == nil {
			return fmt.Errorf("create user: %w", core.ErrDuplicateKey)
		}
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *memRepo) GetByID(_ context.Context, id string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.live(id)
	if !ok {
		return nil, fmt.Errorf("get user: %w", core.ErrNotFound)
	}
	cp := *u
	return &cp, nil
}

func (m *memRepo) GetByEmail(_ context.Context, email string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email && u.DeletedAt == nil {
			cp := *u
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("get user by email: %w", core.ErrNotFound)
}

func (m *memRepo) UpdateName(_ context.Context, id, name string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.live(id)
	if !ok {
		return nil, fmt.Errorf("update user name: %w", core.ErrNotFound)
	}
	u.Name = name
	u.UpdatedAt = time.Now()
	cp := *u
	return &cp, nil
}

func (m *memRepo) UpdateRole(_ context.Context, id, role string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.live(id)
	if !ok {
		return nil, fmt.Errorf("update user role: %w", core.ErrNotFound)
	}
	if u.Role != role {
		u.TokenVersion++
	}
	u.Role = role
	cp := *u
	return &cp, nil
}

func (m *memRepo) UpdatePassword(_ context.Context, id, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.live(id)
	if !ok {
		return core.ErrNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (m *memRepo) IncrementTokenVersion(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.live(id)
	if !ok {
		return core.ErrNotFound
	}
	u.TokenVersion++
	return nil
}

func (m *memRepo) Deactivate(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.live(id)
	if !ok {
		return fmt.Errorf("deactivate user: %w", core.ErrNotFound)
	}
	now := time.Now()
	u.DeletedAt = &now
	u.TokenVersion++
	return nil
}

func (m *memRepo) List(_ context.Context, params ListParams) ([]User, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []User
	for _, u := range m.users {
		if u.DeletedAt != nil {
			continue
		}
		if params.Role != "" && u.Role != params.Role {
			continue
		}
		if params.Search != "" && !strings.Contains(u.Email, params.Search) {
			continue
		}
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	total := len(out)
	start := min(params.Offset(), total)
	end := min(start+params.PageSize, total)
	return out[start:end], total, nil
}

func seed(t *testing.T, svc *Service, email string) string {
	t.Helper()
	info, err := svc.Create(context.Background(), email, "hash", "Name")
	require.NoError(t, err)
	return info.ID
}

func TestService_CreateLowercasesEmail(t *testing.T) {
	svc := NewService(newMemRepo())

	info, err := svc.Create(context.Background(), "Ada@Example.COM", "hash", "Ada")
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", info.Email)
	assert.Equal(t, RoleUser, info.Role)

	found, err := svc.GetByEmail(context.Background(), "ADA@example.com")
	require.NoError(t, err)
	assert.Equal(t, info.ID, found.ID)
}

func TestService_SetRoleBumpsTokenVersion(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo)
	ctx := context.Background()
	admin := seed(t, svc, "admin@example.com")
	id := seed(t, svc, "ada@example.com")

	u, err := svc.SetRole(ctx, admin, id, RoleAdmin)
	require.NoError(t, err)
	assert.True(t, u.IsAdmin())
	assert.Equal(t, 1, u.TokenVersion)

	u, err = svc.SetRole(ctx, admin, id, RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, 1, u.TokenVersion)

	_, err = svc.SetRole(ctx, admin, id, "owner")
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestService_AdminCannotDemoteSelf(t *testing.T) {
	svc := NewService(newMemRepo())
	ctx := context.Background()
	admin := seed(t, svc, "admin@example.com")
	_, err := svc.SetRole(ctx, "someone-else", admin, RoleAdmin)
	require.NoError(t, err)

	_, err = svc.SetRole(ctx, admin, admin, RoleUser)
	assert.ErrorIs(t, err, core.ErrForbidden)
}

func TestService_Remove(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo)
	ctx := context.Background()
	admin := seed(t, svc, "admin@example.com")
	_, err := svc.SetRole(ctx, "bootstrap", admin, RoleAdmin)
	require.NoError(t, err)
	bob := seed(t, svc, "bob@example.com")
	root := seed(t, svc, "root@example.com")
	_, err = svc.SetRole(ctx, "bootstrap", root, RoleAdmin)
	require.NoError(t, err)

	require.NoError(t, svc.Remove(ctx, admin, bob))
	assert.Equal(t, 1, repo.users[bob].TokenVersion)
	assert.NotNil(t, repo.users[bob].DeletedAt)

	assert.ErrorIs(t, svc.Remove(ctx, admin, root), core.ErrForbidden)
	assert.ErrorIs(t, svc.Remove(ctx, admin, "not-a-uuid"), core.ErrNotFound)
	assert.NoError(t, svc.Remove(ctx, admin, admin))
}

func TestService_ListRejectsUnknownRole(t *testing.T) {
	svc := NewService(newMemRepo())

	_, _, err := svc.List(context.Background(), ListParams{Role: "owner"})
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestRepository_UpdateRoleSQL(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	id := "8a3f0c4e-6b1d-4c8e-9a57-2f1e0b6d9c31"
	mock.ExpectQuery(`UPDATE users\s+SET role = \$2,\s+token_version = token_version \+ CASE`).
		WithArgs(id, RoleAdmin).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "role", "token_version"}).
			AddRow(id, "ada@example.com", RoleAdmin, 4))

	u, err := NewRepository(sqlx.NewDb(db, "sqlmock")).UpdateRole(context.Background(), id, RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, 4, u.TokenVersion)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_DeactivateMissing(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`UPDATE users\s+SET deleted_at = NOW\(\)`).
		WithArgs("gone").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = NewRepository(sqlx.NewDb(db, "sqlmock")).Deactivate(context.Background(), "gone")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestRepository_ListFilters(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM users WHERE deleted_at IS NULL AND \(email ILIKE \$1 OR name ILIKE \$1\) AND role = \$2`).
		WithArgs(`%100\%%`, RoleAdmin).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`LIMIT \$3 OFFSET \$4`).
		WithArgs(`%100\%%`, RoleAdmin, 20, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	users, total, err := NewRepository(sqlx.NewDb(db, "sqlmock")).List(
		context.Background(), ListParams{Search: "100%", Role: RoleAdmin})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, users)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func withUser(id, role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := middleware.WithClaims(r.Context(), &middleware.AccessTokenClaims{UserID: id, Role: role})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func TestHandler_MeLifecycle(t *testing.T) {
	svc := NewService(newMemRepo())
	id := seed(t, svc, "ada@example.com")

	r := chi.NewRouter()
	NewHandler(svc).RegisterRoutes(r, withUser(id, RoleUser))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users/me", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"createdAt"`)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/users/me",
		strings.NewReader(`{"name":"Ada Lovelace"}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Ada Lovelace")

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/users/me", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users/me", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_AdminList(t *testing.T) {
	svc := NewService(newMemRepo())
	for i := range 3 {
		seed(t, svc, fmt.Sprintf("user%d@example.com", i))
	}

	r := chi.NewRouter()
	pass := func(next http.Handler) http.Handler { return next }
	NewHandler(svc).RegisterAdminRoutes(r, withUser("admin", RoleAdmin), pass)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/users?page=1&page_size=2", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"total":3`)
	assert.Contains(t, rec.Body.String(), `"totalPages":2`)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/users?role=owner", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
