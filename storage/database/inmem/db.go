// Package inmemdb is a process-lifetime user table.
package inmemdb

import (
	"sync"

	"github.com/trezcool/codekids/core/user"
)

type (
	DB struct {
		user *userTable
	}

	// userTable keeps its rows in insertion order.
	userTable struct {
		mutex sync.RWMutex
		rows  []*user.User
		index map[string]int // id -> position in rows
	}
)

func Open() (*DB, error) {
	db := &DB{
		user: &userTable{index: make(map[string]int)},
	}
	return db, nil
}

// reindex must be called with the write lock held.
func (t *userTable) reindex() {
	t.index = make(map[string]int, len(t.rows))
	for i, u := range t.rows {
		t.index[u.ID] = i
	}
}
