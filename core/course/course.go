// Package course holds the read-only course catalog referenced by user relations.
package course

import "errors"

var ErrNotFound = errors.New("course not found")

type Course struct {
	ID   string `json:"id" mapstructure:"id"`
	Name string `json:"name" mapstructure:"name"`
}

// Catalog lists the courses users can be assigned to.
type Catalog interface {
	List() []Course
	Get(id string) (Course, error)
}

type staticCatalog struct {
	courses []Course
	byID    map[string]int
}

var _ Catalog = (*staticCatalog)(nil)

// NewCatalog returns a Catalog over the given courses, in the given order.
// Later duplicates of an id are ignored.
func NewCatalog(courses ...Course) Catalog {
	cat := &staticCatalog{
		courses: make([]Course, 0, len(courses)),
		byID:    make(map[string]int, len(courses)),
	}
	for _, c := range courses {
		if _, ok := cat.byID[c.ID]; ok || c.ID == "" {
			continue
		}
		cat.byID[c.ID] = len(cat.courses)
		cat.courses = append(cat.courses, c)
	}
	return cat
}

func (cat *staticCatalog) List() []Course {
	courses := make([]Course, len(cat.courses))
	copy(courses, cat.courses)
	return courses
}

func (cat *staticCatalog) Get(id string) (Course, error) {
	if idx, ok := cat.byID[id]; ok {
		return cat.courses[idx], nil
	}
	return Course{}, ErrNotFound
}
