package inmemdb

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/trezcool/codekids/core/user"
)

type userRepository struct {
	db *userTable
}

var _ user.Repository = (*userRepository)(nil)

func NewUserRepository(db *DB) user.Repository {
	return &userRepository{db: db.user}
}

func (repo *userRepository) QueryAllUsers(_ context.Context) ([]user.User, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	users := make([]user.User, 0, len(repo.db.rows))
	for _, u := range repo.db.rows {
		users = append(users, u.Clone())
	}
	return users, nil
}

func (repo *userRepository) GetUserByID(_ context.Context, id string) (user.User, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if idx, ok := repo.db.index[id]; ok {
		return repo.db.rows[idx].Clone(), nil
	}
	return user.User{}, errors.Wrapf(user.ErrNotFound, "user %q", id)
}

// ApplyChanges checks the whole change set before writing any of it.
func (repo *userRepository) ApplyChanges(_ context.Context, cs user.ChangeSet) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	created := make(map[string]bool, len(cs.Create))
	for _, u := range cs.Create {
		if u.ID == "" {
			return errors.New("creating user: empty id")
		}
		if _, ok := repo.db.index[u.ID]; ok || created[u.ID] {
			return fmt.Errorf("creating user: duplicate id %q", u.ID)
		}
		created[u.ID] = true
	}
	for _, u := range cs.Update {
		if _, ok := repo.db.index[u.ID]; !ok {
			return errors.Wrapf(user.ErrNotFound, "updating user %q", u.ID)
		}
	}
	for _, id := range cs.Delete {
		if _, ok := repo.db.index[id]; !ok {
			return errors.Wrapf(user.ErrNotFound, "deleting user %q", id)
		}
	}

	for _, u := range cs.Update {
		usr := u.Clone()
		repo.db.rows[repo.db.index[u.ID]] = &usr
	}
	for _, u := range cs.Create {
		usr := u.Clone()
		repo.db.index[usr.ID] = len(repo.db.rows)
		repo.db.rows = append(repo.db.rows, &usr)
	}
	if len(cs.Delete) > 0 {
		deleted := make(map[string]bool, len(cs.Delete))
		for _, id := range cs.Delete {
			deleted[id] = true
		}
		rows := make([]*user.User, 0, len(repo.db.rows))
		for _, u := range repo.db.rows {
			if !deleted[u.ID] {
				rows = append(rows, u)
			}
		}
		repo.db.rows = rows
		repo.db.reindex()
	}
	return nil
}
