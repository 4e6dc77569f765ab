package inmemdb

import (
	"context"
	"testing"

	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/codekids/core/user"
)

func newRepo(t *testing.T, ids ...string) user.Repository {
	t.Helper()
	db, err := Open()
	require.NoError(t, err)
	repo := NewUserRepository(db)

	var cs user.ChangeSet
	for _, id := range ids {
		cs.Create = append(cs.Create, user.User{ID: id, FirstName: id, Profile: user.AdminProfile{}})
	}
	require.NoError(t, repo.ApplyChanges(context.Background(), cs))
	return repo
}

func idsOf(users []user.User) []string {
	ids := make([]string, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}
	return ids
}

func Test_userRepository_ApplyChanges(t *testing.T) {
	ctx := context.Background()

	t.Run("order", func(t *testing.T) {
		repo := newRepo(t, "a", "b", "c")
		err := repo.ApplyChanges(ctx, user.ChangeSet{
			Create: []user.User{{ID: "d", Profile: user.AdminProfile{}}},
			Update: []user.User{{ID: "c", FirstName: "C", Profile: user.AdminProfile{}}},
			Delete: []string{"a"},
		})
		require.NoError(t, err)

		all, err := repo.QueryAllUsers(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"b", "c", "d"}, idsOf(all))
		assert.Equal(t, "C", all[1].FirstName)

		// the index follows the rows
		for _, id := range []string{"b", "c", "d"} {
			usr, err := repo.GetUserByID(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, id, usr.ID)
		}
		_, err = repo.GetUserByID(ctx, "a")
		assert.Equal(t, user.ErrNotFound, pkgerrors.Cause(err))
	})

	tests := []struct {
		name    string
		cs      user.ChangeSet
		wantErr error
	}{
		{name: "empty create id", cs: user.ChangeSet{Create: []user.User{{ID: ""}}}},
		{name: "create existing id", cs: user.ChangeSet{Create: []user.User{{ID: "a"}}}},
		{name: "create twice", cs: user.ChangeSet{Create: []user.User{{ID: "x"}, {ID: "x"}}}},
		{
			name: "update unknown",
			cs: user.ChangeSet{
				Create: []user.User{{ID: "x"}},
				Update: []user.User{{ID: "a", FirstName: "A"}, {ID: "nope"}},
			},
			wantErr: user.ErrNotFound,
		},
		{
			name:    "delete unknown",
			cs:      user.ChangeSet{Update: []user.User{{ID: "a", FirstName: "A"}}, Delete: []string{"b", "nope"}},
			wantErr: user.ErrNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newRepo(t, "a", "b")
			err := repo.ApplyChanges(ctx, tt.cs)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.Equal(t, tt.wantErr, pkgerrors.Cause(err))
			}

			// nothing was written
			all, err := repo.QueryAllUsers(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"a", "b"}, idsOf(all))
			assert.Equal(t, "a", all[0].FirstName)
		})
	}
}

func Test_userRepository_clones(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	parent := user.User{ID: "p", Profile: user.ParentProfile{ChildrenIDs: []string{"s1"}}}
	require.NoError(t, repo.ApplyChanges(ctx, user.ChangeSet{Create: []user.User{parent}}))
	parent.Profile.(user.ParentProfile).ChildrenIDs[0] = "changed"

	stored, err := repo.GetUserByID(ctx, "p")
	require.NoError(t, err)
	assert.Equal(t, []string{"s1"}, stored.ChildrenIDs())

	stored.Profile.(user.ParentProfile).ChildrenIDs[0] = "changed"
	all, err := repo.QueryAllUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"s1"}, all[0].ChildrenIDs())
}
