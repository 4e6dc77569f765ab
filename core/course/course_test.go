package course

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewCatalog(t *testing.T) {
	cat := NewCatalog(
		Course{ID: "1", Name: "Scratch"},
		Course{ID: "", Name: "no id"},
		Course{ID: "2", Name: "Python"},
		Course{ID: "1", Name: "duplicate"},
	)

	courses := cat.List()
	assert.Equal(t, []Course{{ID: "1", Name: "Scratch"}, {ID: "2", Name: "Python"}}, courses)
	courses[0].Name = "changed"
	assert.Equal(t, "Scratch", cat.List()[0].Name)

	crs, err := cat.Get("2")
	assert.NoError(t, err)
	assert.Equal(t, "Python", crs.Name)

	_, err = cat.Get("3")
	assert.Equal(t, ErrNotFound, err)
}
