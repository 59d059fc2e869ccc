package users

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/taskhive/taskhive/internal/authz"
	"github.com/taskhive/taskhive/internal/shared"
)

type mockRepository struct {
	users  map[int64]*User
	nextID int64

	lastFilters *Filters
	listResult  []User
	listTotal   int
}

func newMockRepository(seed ...User) *mockRepository {
	m := &mockRepository{users: make(map[int64]*User), nextID: 1}
	for _, u := range seed {
		u := u
		m.users[u.ID] = &u
		if u.ID >= m.nextID {
			m.nextID = u.ID + 1
		}
	}
	return m
}

func (m *mockRepository) Get(ctx context.Context, id int64) (*User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (m *mockRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	for _, u := range m.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (m *mockRepository) Principal(ctx context.Context, id int64) (*authz.Principal, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	p := u.Principal()
	return &p, nil
}

func (m *mockRepository) List(ctx context.Context, f Filters) ([]User, int, error) {
	m.lastFilters = &f
	return m.listResult, m.listTotal, nil
}

func (m *mockRepository) Create(ctx context.Context, u User) (*User, error) {
	u.ID = m.nextID
	m.nextID++
	m.users[u.ID] = &u
	copied := u
	return &copied, nil
}

func (m *mockRepository) Update(ctx context.Context, id int64, upd UserUpdate) (*User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	if upd.Name != nil {
		u.Name = *upd.Name
	}
	if upd.Email != nil {
		u.Email = *upd.Email
	}
	if upd.PasswordHash != nil {
		u.PasswordHash = *upd.PasswordHash
	}
	if upd.Role != nil {
		u.Role = *upd.Role
	}
	if upd.Status != nil {
		u.Status = *upd.Status
	}
	copied := *u
	return &copied, nil
}

func (m *mockRepository) Delete(ctx context.Context, id int64) error {
	if _, ok := m.users[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.users, id)
	return nil
}

var (
	superUser = User{ID: 1, Name: "Root", Email: "root@example.com", Role: authz.RoleSuperAdmin, Status: authz.StatusEnabled}
	adminUser = User{ID: 2, Name: "Alice", Email: "alice@example.com", Role: authz.RoleAdmin, Status: authz.StatusEnabled}
	plainUser = User{ID: 3, Name: "Bob", Email: "bob@example.com", Role: authz.RoleUser, Status: authz.StatusEnabled}
)

func actorOf(u User) authz.Actor {
	return authz.Actor{ID: u.ID, Role: u.Role, Status: u.Status}
}

func TestServiceGet(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMockRepository(superUser, adminUser, plainUser))

	got, err := svc.Get(ctx, actorOf(adminUser), plainUser.ID)
	require.NoError(t, err)
	assert.Equal(t, plainUser.Email, got.Email)

	_, err = svc.Get(ctx, actorOf(adminUser), superUser.ID)
	assert.ErrorIs(t, err, shared.ErrUnauthorized)

	_, err = svc.Get(ctx, actorOf(plainUser), plainUser.ID)
	assert.ErrorIs(t, err, shared.ErrUnauthorized, "plain users cannot use the user endpoints at all")

	_, err = svc.Get(ctx, actorOf(adminUser), 999)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestServiceCreate(t *testing.T) {
	ctx := context.Background()
	repo := newMockRepository(superUser, adminUser, plainUser)
	svc := NewService(repo)

	created, err := svc.Create(ctx, actorOf(adminUser), CreateUserRequest{
		Name:     "Carol",
		Email:    "carol@example.com",
		Password: "supersecret",
		Role:     "user",
		Status:   "enabled",
	})
	require.NoError(t, err)
	assert.Equal(t, authz.RoleUser, created.Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.PasswordHash), []byte("supersecret")),
		"password must be stored as a bcrypt hash")
}

func TestServiceCreateAuthorizationBeforeValidation(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMockRepository(superUser, adminUser, plainUser))

	// Admin asking for a peer role fails the policy even though the
	// request body is otherwise valid.
	_, err := svc.Create(ctx, actorOf(adminUser), CreateUserRequest{
		Name: "Eve", Email: "eve@example.com", Password: "supersecret",
		Role: "admin", Status: "enabled",
	})
	assert.ErrorIs(t, err, shared.ErrUnauthorized)

	// Nobody may create a superadmin.
	_, err = svc.Create(ctx, actorOf(superUser), CreateUserRequest{
		Name: "Eve", Email: "eve@example.com", Password: "supersecret",
		Role: "superadmin", Status: "enabled",
	})
	assert.ErrorIs(t, err, shared.ErrUnauthorized)

	// A superadmin sending garbage passes the policy and then fails
	// validation, so the caller sees a 422 rather than a 403.
	_, err = svc.Create(ctx, actorOf(superUser), CreateUserRequest{
		Name: "Eve", Email: "eve@example.com", Password: "supersecret",
		Role: "wizard", Status: "enabled",
	})
	var verr *shared.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "role")

	// The same garbage from an admin is an authorization failure.
	_, err = svc.Create(ctx, actorOf(adminUser), CreateUserRequest{
		Name: "Eve", Email: "eve@example.com", Password: "supersecret",
		Role: "wizard", Status: "enabled",
	})
	assert.ErrorIs(t, err, shared.ErrUnauthorized)
}

func TestServiceCreateValidation(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMockRepository(superUser, adminUser, plainUser))

	_, err := svc.Create(ctx, actorOf(adminUser), CreateUserRequest{
		Name: "X", Email: "not-an-email", Password: "short", Role: "user", Status: "enabled",
	})
	var verr *shared.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "name")
	assert.Contains(t, verr.Fields, "email")
	assert.Contains(t, verr.Fields, "password")
}

func TestServiceUpdate(t *testing.T) {
	ctx := context.Background()
	repo := newMockRepository(superUser, adminUser, plainUser)
	svc := NewService(repo)

	newName := "Robert"
	updated, err := svc.Update(ctx, actorOf(adminUser), plainUser.ID, UpdateUserRequest{Name: &newName})
	require.NoError(t, err)
	assert.Equal(t, "Robert", updated.Name)

	peerRole := "admin"
	_, err = svc.Update(ctx, actorOf(adminUser), plainUser.ID, UpdateUserRequest{Role: &peerRole})
	assert.ErrorIs(t, err, shared.ErrUnauthorized, "promotion to the actor's own rank")

	topRole := "superadmin"
	_, err = svc.Update(ctx, actorOf(superUser), plainUser.ID, UpdateUserRequest{Role: &topRole})
	assert.ErrorIs(t, err, shared.ErrUnauthorized, "promotion to superadmin is refused everywhere")

	_, err = svc.Update(ctx, actorOf(adminUser), superUser.ID, UpdateUserRequest{Name: &newName})
	assert.ErrorIs(t, err, shared.ErrUnauthorized)

	_, err = svc.Update(ctx, actorOf(adminUser), 999, UpdateUserRequest{Name: &newName})
	assert.ErrorIs(t, err, shared.ErrNotFound, "missing target reads as 404 before authorization")
}

func TestServiceUpdateRoleChangeNotifies(t *testing.T) {
	ctx := context.Background()
	repo := newMockRepository(superUser, adminUser, plainUser)
	svc := NewService(repo)

	notified := 0
	svc.NotifyRoleChange(func(context.Context) { notified++ })

	newRole := "admin"
	_, err := svc.Update(ctx, actorOf(superUser), plainUser.ID, UpdateUserRequest{Role: &newRole})
	require.NoError(t, err)
	assert.Equal(t, 1, notified, "a role change must reach the listener")

	newName := "Robert"
	_, err = svc.Update(ctx, actorOf(superUser), adminUser.ID, UpdateUserRequest{Name: &newName})
	require.NoError(t, err)
	assert.Equal(t, 1, notified, "a rename leaves the role snapshots alone")
}

func TestServiceDelete(t *testing.T) {
	ctx := context.Background()
	repo := newMockRepository(superUser, adminUser, plainUser)
	svc := NewService(repo)

	assert.ErrorIs(t, svc.Delete(ctx, actorOf(adminUser), adminUser.ID), shared.ErrUnauthorized,
		"self-deletion is always refused")
	assert.ErrorIs(t, svc.Delete(ctx, actorOf(superUser), superUser.ID), shared.ErrUnauthorized)

	require.NoError(t, svc.Delete(ctx, actorOf(adminUser), plainUser.ID))
	assert.ErrorIs(t, svc.Delete(ctx, actorOf(adminUser), plainUser.ID), shared.ErrNotFound)
}

func TestServiceListDefaultScope(t *testing.T) {
	ctx := context.Background()
	repo := newMockRepository(superUser, adminUser, plainUser)
	repo.listResult = []User{plainUser}
	repo.listTotal = 1
	svc := NewService(repo)

	page, err := svc.List(ctx, actorOf(adminUser), ListUsersRequest{}, "/api/users")
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)
	require.NotNil(t, repo.lastFilters)
	assert.Equal(t, []authz.Role{authz.RoleUser}, repo.lastFilters.Roles,
		"unfiltered admin listing scopes to strictly lower roles")
	assert.Equal(t, shared.PerPage, repo.lastFilters.Limit)
	assert.Equal(t, 0, repo.lastFilters.Offset)

	_, err = svc.List(ctx, actorOf(superUser), ListUsersRequest{Page: 3}, "/api/users")
	require.NoError(t, err)
	assert.Equal(t, []authz.Role{authz.RoleAdmin, authz.RoleUser}, repo.lastFilters.Roles)
	assert.Equal(t, 10, repo.lastFilters.Offset)
}

func TestServiceListRoleFilter(t *testing.T) {
	ctx := context.Background()
	repo := newMockRepository(superUser, adminUser, plainUser)
	svc := NewService(repo)

	_, err := svc.List(ctx, actorOf(superUser), ListUsersRequest{Role: "admin"}, "/api/users")
	require.NoError(t, err)
	assert.Equal(t, []authz.Role{authz.RoleAdmin}, repo.lastFilters.Roles)

	_, err = svc.List(ctx, actorOf(adminUser), ListUsersRequest{Role: "admin"}, "/api/users")
	assert.ErrorIs(t, err, shared.ErrUnauthorized, "admins cannot widen the scope to peers")

	_, err = svc.List(ctx, actorOf(plainUser), ListUsersRequest{}, "/api/users")
	assert.ErrorIs(t, err, shared.ErrUnauthorized)
}
