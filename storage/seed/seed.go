// Package seed loads the course catalog and the initial users.
package seed

import (
	"bytes"
	"context"
	_ "embed"

	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/trezcool/codekids/core/course"
	"github.com/trezcool/codekids/core/user"
)

//go:embed seed.yaml
var defaultSeed []byte

type (
	Data struct {
		Courses []course.Course `mapstructure:"courses"`
		Users   []User          `mapstructure:"users"`
	}

	// User is a seeded account. Teacher, Parent and Children hold refs of other seeded users.
	User struct {
		Ref             string       `mapstructure:"ref"`
		FirstName       string       `mapstructure:"first_name"`
		LastName        string       `mapstructure:"last_name"`
		Phone           string       `mapstructure:"phone"`
		Email           string       `mapstructure:"email"`
		Password        string       `mapstructure:"password"`
		Role            user.Role    `mapstructure:"role"`
		TeachingCourses []string     `mapstructure:"teaching_courses"`
		Assignments     []Assignment `mapstructure:"assignments"`
		Parent          string       `mapstructure:"parent"`
		Children        []string     `mapstructure:"children"`
	}

	Assignment struct {
		Course    string `mapstructure:"course"`
		Teacher   string `mapstructure:"teacher"`
		StartDate string `mapstructure:"start_date"`
	}
)

// Load reads the seed file at path, or the embedded default seed when path is empty.
func Load(path string) (Data, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	var err error
	if path == "" {
		err = v.ReadConfig(bytes.NewReader(defaultSeed))
	} else {
		v.SetConfigFile(path)
		err = v.ReadInConfig()
	}
	if err != nil {
		return Data{}, errors.Wrap(err, "reading seed")
	}

	var data Data
	if err = v.Unmarshal(&data); err != nil {
		return Data{}, errors.Wrap(err, "decoding seed")
	}
	return data, nil
}

func (d Data) Catalog() course.Catalog {
	return course.NewCatalog(d.Courses...)
}

// Apply creates the seeded users in order, filling the forms the way an admin would.
// It returns the ids of the created users by ref.
func (d Data) Apply(ctx context.Context, svc *user.Service) (map[string]string, error) {
	ids := make(map[string]string, len(d.Users))
	resolve := func(ref string) (string, error) {
		if id, ok := ids[ref]; ok {
			return id, nil
		}
		return "", errors.Errorf("unknown user ref %q", ref)
	}

	for _, su := range d.Users {
		form := user.NewForm(svc.Catalog(), svc)
		form.SetFirstName(su.FirstName)
		form.SetLastName(su.LastName)
		form.SetPhone(su.Phone)
		form.SetEmail(su.Email)
		form.SetPassword(su.Password)
		form.SetRole(su.Role)

		for _, courseID := range su.TeachingCourses {
			form.ToggleTeachingCourse(courseID)
		}
		for i, a := range su.Assignments {
			teacherID, err := resolve(a.Teacher)
			if err != nil {
				return nil, errors.Wrapf(err, "seeding %s", su.Ref)
			}
			form.AddAssignmentRow()
			_ = form.SetAssignmentCourse(i, a.Course)
			_ = form.SetAssignmentTeacher(i, teacherID)
			_ = form.SetAssignmentStartDate(i, a.StartDate)
		}
		if su.Parent != "" {
			parentID, err := resolve(su.Parent)
			if err != nil {
				return nil, errors.Wrapf(err, "seeding %s", su.Ref)
			}
			form.SetParent(parentID)
		}
		for _, ref := range su.Children {
			childID, err := resolve(ref)
			if err != nil {
				return nil, errors.Wrapf(err, "seeding %s", su.Ref)
			}
			form.ToggleChild(childID)
		}

		usr, err := svc.Create(ctx, form.Commit(ctx))
		if err != nil {
			return nil, errors.Wrapf(err, "seeding %s", su.Ref)
		}
		if su.Ref != "" {
			ids[su.Ref] = usr.ID
		}
	}
	return ids, nil
}
