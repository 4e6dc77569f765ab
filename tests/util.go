// Package testutil holds helpers shared by the package tests.
package testutil

import (
	"context"
	"testing"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/trezcool/codekids/core"
	"github.com/trezcool/codekids/core/course"
	"github.com/trezcool/codekids/core/user"
	"github.com/trezcool/codekids/services/logger"
	"github.com/trezcool/codekids/storage/database/inmem"
)

// Courses is the catalog used by tests.
var Courses = []course.Course{
	{ID: "c1", Name: "Scratch"},
	{ID: "c2", Name: "Python"},
	{ID: "c3", Name: "Roblox"},
	{ID: "c4", Name: "Web"},
}

var testConf = core.Config{AppName: "Codekids", Env: "TEST", Build: "test", TestMode: true}

// NewValidator returns a validator with every custom validator registered, along with its translator.
func NewValidator() (*validator.Validate, ut.Translator) {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	return validate, translator
}

func NewLogger() core.Logger {
	return logsvc.NewRollbarLogger(zap.NewNop(), &testConf)
}

// NewService returns a user service over an empty in-memory table and the Courses catalog.
func NewService(t *testing.T) (*user.Service, user.Repository) {
	t.Helper()
	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("NewService() failed: %v", err)
	}
	repo := inmemdb.NewUserRepository(db)
	validate, _ := NewValidator()
	svc := user.NewService(repo, course.NewCatalog(Courses...), validate, NewLogger())
	return svc, repo
}

func CreateUser(t *testing.T, svc *user.Service, firstName string, profile user.Profile) user.User {
	t.Helper()
	usr, err := svc.Create(context.Background(), user.NewUser{
		FirstName: firstName,
		LastName:  "Test",
		Email:     firstName + "@test.cd",
		Profile:   profile,
	})
	if err != nil {
		t.Fatalf("CreateUser(%s) failed: %v", firstName, err)
	}
	return usr
}

func CreateAdmin(t *testing.T, svc *user.Service, firstName string) user.User {
	t.Helper()
	return CreateUser(t, svc, firstName, user.AdminProfile{})
}

func CreateTeacher(t *testing.T, svc *user.Service, firstName string, courseIDs ...string) user.User {
	t.Helper()
	return CreateUser(t, svc, firstName, user.TeacherProfile{TeachingCourseIDs: courseIDs})
}

func CreateStudent(t *testing.T, svc *user.Service, firstName, parentID string, assignments ...user.Assignment) user.User {
	t.Helper()
	return CreateUser(t, svc, firstName, user.StudentProfile{AssignedCourses: assignments, ParentID: parentID})
}

func CreateParent(t *testing.T, svc *user.Service, firstName string, childrenIDs ...string) user.User {
	t.Helper()
	return CreateUser(t, svc, firstName, user.ParentProfile{ChildrenIDs: childrenIDs})
}

// Get reloads the user identified by id.
func Get(t *testing.T, svc *user.Service, id string) user.User {
	t.Helper()
	usr, err := svc.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("Get(%s) failed: %v", id, err)
	}
	return usr
}
