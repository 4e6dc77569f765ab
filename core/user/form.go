package user

import (
	"context"
	"errors"

	pkgerrors "github.com/pkg/errors"

	"github.com/trezcool/codekids/core"
	"github.com/trezcool/codekids/core/course"
)

var ErrRowOutOfRange = errors.New("assignment row out of range")

// Directory is the read side of the user store a Form looks users up in.
type Directory interface {
	GetByID(ctx context.Context, id string) (User, error)
	Query(ctx context.Context, filter QueryFilter, orderings ...core.Ordering) ([]User, error)
	TeachersForCourse(ctx context.Context, courseID string) ([]User, error)
}

var _ Directory = (*Service)(nil)

// AssignmentRow is an in-progress Student assignment.
type AssignmentRow struct {
	CourseID    string
	TeacherID   string
	StartDate   string
	courseName  string
	teacherName string
}

// Form stages the creation or the edition of one user.
// Data entered for every role is kept while the form lives, but only the active role's is committed.
type Form struct {
	catalog course.Catalog
	dir     Directory

	userID    string // empty when creating
	firstName string
	lastName  string
	phone     string
	email     string
	password  string
	role      Role

	// role sub-forms
	rows              []AssignmentRow
	parentID          string
	childrenIDs       []string
	teachingCourseIDs []string
}

// NewForm returns an empty creation form.
func NewForm(catalog course.Catalog, dir Directory) *Form {
	return &Form{catalog: catalog, dir: dir}
}

// EditForm returns a form loaded with the user identified by id.
func EditForm(ctx context.Context, catalog course.Catalog, dir Directory, id string) (*Form, error) {
	usr, err := dir.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	f := NewForm(catalog, dir)
	f.userID = usr.ID
	f.firstName = usr.FirstName
	f.lastName = usr.LastName
	f.phone = usr.Phone
	f.email = usr.Email
	f.role = usr.Role()

	switch p := usr.Profile.(type) {
	case StudentProfile:
		for _, a := range p.AssignedCourses {
			f.rows = append(f.rows, AssignmentRow{
				CourseID:    a.CourseID,
				TeacherID:   a.TeacherID,
				StartDate:   a.StartDate,
				courseName:  a.CourseName,
				teacherName: a.TeacherName,
			})
		}
		f.parentID = p.ParentID
	case TeacherProfile:
		f.teachingCourseIDs = append([]string{}, p.TeachingCourseIDs...)
	case ParentProfile:
		f.childrenIDs = append([]string{}, p.ChildrenIDs...)
	case AdminProfile, nil:
	}
	return f, nil
}

func (f *Form) UserID() string   { return f.userID }
func (f *Form) Role() Role       { return f.role }
func (f *Form) ParentID() string { return f.parentID }

func (f *Form) SetFirstName(name string) { f.firstName = name }
func (f *Form) SetLastName(name string)  { f.lastName = name }
func (f *Form) SetPhone(phone string)    { f.phone = phone }
func (f *Form) SetEmail(email string)    { f.email = email }

// SetPassword sets the password of the user to create. It is ignored on edit.
func (f *Form) SetPassword(pwd string) { f.password = pwd }

// SetRole switches the active sub-form.
func (f *Form) SetRole(role Role) { f.role = role }

// Rows returns a copy of the assignment rows.
func (f *Form) Rows() []AssignmentRow {
	return append([]AssignmentRow{}, f.rows...)
}

func (f *Form) AddAssignmentRow() {
	f.rows = append(f.rows, AssignmentRow{})
}

func (f *Form) RemoveAssignmentRow(i int) error {
	if err := f.checkRow(i); err != nil {
		return err
	}
	f.rows = append(f.rows[:i:i], f.rows[i+1:]...)
	return nil
}

// SetAssignmentCourse sets the course of row i and resets its teacher,
// since the teachers to pick from depend on the course.
func (f *Form) SetAssignmentCourse(i int, courseID string) error {
	if err := f.checkRow(i); err != nil {
		return err
	}
	f.rows[i].CourseID = courseID
	f.rows[i].courseName = ""
	f.rows[i].TeacherID = ""
	f.rows[i].teacherName = ""
	return nil
}

func (f *Form) SetAssignmentTeacher(i int, teacherID string) error {
	if err := f.checkRow(i); err != nil {
		return err
	}
	if f.rows[i].TeacherID != teacherID {
		f.rows[i].TeacherID = teacherID
		f.rows[i].teacherName = ""
	}
	return nil
}

func (f *Form) SetAssignmentStartDate(i int, date string) error {
	if err := f.checkRow(i); err != nil {
		return err
	}
	f.rows[i].StartDate = date
	return nil
}

func (f *Form) checkRow(i int) error {
	if i < 0 || i >= len(f.rows) {
		return pkgerrors.Wrapf(ErrRowOutOfRange, "row %d of %d", i, len(f.rows))
	}
	return nil
}

// TeacherChoices returns the teachers row i may be assigned to: the teachers of its course.
func (f *Form) TeacherChoices(ctx context.Context, i int) ([]User, error) {
	if err := f.checkRow(i); err != nil {
		return nil, err
	}
	if f.rows[i].CourseID == "" {
		return []User{}, nil
	}
	return f.dir.TeachersForCourse(ctx, f.rows[i].CourseID)
}

// CourseChoices returns the catalog courses.
func (f *Form) CourseChoices() []course.Course {
	return f.catalog.List()
}

func (f *Form) SetParent(parentID string) { f.parentID = parentID }

// ParentChoices returns the users a Student may be linked to.
func (f *Form) ParentChoices(ctx context.Context) ([]User, error) {
	return f.dir.Query(ctx, QueryFilter{Roles: []Role{RoleParent}})
}

func (f *Form) ChildrenIDs() []string {
	return append([]string{}, f.childrenIDs...)
}

// ToggleChild selects or unselects a child. A user cannot select themself.
func (f *Form) ToggleChild(studentID string) {
	if studentID == "" || studentID == f.userID {
		return
	}
	f.childrenIDs = toggleID(f.childrenIDs, studentID)
}

// CandidateChildren returns every Student but the form's own user.
func (f *Form) CandidateChildren(ctx context.Context) ([]User, error) {
	students, err := f.dir.Query(ctx, QueryFilter{Roles: []Role{RoleStudent}})
	if err != nil {
		return nil, err
	}
	candidates := make([]User, 0, len(students))
	for _, s := range students {
		if s.ID != f.userID {
			candidates = append(candidates, s)
		}
	}
	return candidates, nil
}

func (f *Form) TeachingCourseIDs() []string {
	return append([]string{}, f.teachingCourseIDs...)
}

func (f *Form) ToggleTeachingCourse(courseID string) {
	if courseID == "" {
		return
	}
	f.teachingCourseIDs = toggleID(f.teachingCourseIDs, courseID)
}

func toggleID(ids []string, id string) []string {
	if containsID(ids, id) {
		return removeID(ids, id)
	}
	return append(append([]string{}, ids...), id)
}

// Commit materializes the form into the input of Service.Create.
func (f *Form) Commit(ctx context.Context) NewUser {
	return NewUser{
		FirstName: f.firstName,
		LastName:  f.lastName,
		Phone:     f.phone,
		Email:     f.email,
		Password:  f.password,
		Profile:   f.profile(ctx),
	}
}

// CommitUpdate materializes the form into the input of Service.Update.
func (f *Form) CommitUpdate(ctx context.Context) UpdateUser {
	return UpdateUser{
		FirstName: f.firstName,
		LastName:  f.lastName,
		Phone:     f.phone,
		Email:     f.email,
		Profile:   f.profile(ctx),
	}
}

// profile builds the active role's Profile. Missing course and teacher names are resolved now
// and kept as they are afterwards. Unknown references are left for the store to reject.
func (f *Form) profile(ctx context.Context) Profile {
	switch f.role {
	case RoleAdmin:
		return AdminProfile{}
	case RoleStudent:
		p := StudentProfile{ParentID: f.parentID}
		for _, row := range f.rows {
			a := Assignment{
				CourseID:    row.CourseID,
				CourseName:  row.courseName,
				TeacherID:   row.TeacherID,
				TeacherName: row.teacherName,
				StartDate:   row.StartDate,
			}
			if a.CourseName == "" {
				if crs, err := f.catalog.Get(a.CourseID); err == nil {
					a.CourseName = crs.Name
				}
			}
			if a.TeacherName == "" && a.TeacherID != "" {
				if teacher, err := f.dir.GetByID(ctx, a.TeacherID); err == nil {
					a.TeacherName = teacher.FullName()
				}
			}
			p.AssignedCourses = append(p.AssignedCourses, a)
		}
		return p
	case RoleTeacher:
		return TeacherProfile{TeachingCourseIDs: f.TeachingCourseIDs()}
	case RoleParent:
		return ParentProfile{ChildrenIDs: f.ChildrenIDs()}
	default:
		return nil
	}
}
