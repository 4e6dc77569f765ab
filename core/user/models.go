package user

import (
	"encoding/json"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/codekids/core"
)

type Role string

// Roles
const (
	RoleAdmin   Role = "admin"
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
	RoleParent  Role = "parent"
)

var (
	AllRoles = []Role{RoleAdmin, RoleStudent, RoleTeacher, RoleParent}

	Roles = []RoleInfo{
		{Name: "Admin", Value: RoleAdmin},
		{Name: "Student", Value: RoleStudent},
		{Name: "Teacher", Value: RoleTeacher},
		{Name: "Parent", Value: RoleParent},
	}
)

type RoleInfo struct {
	Name  string `json:"name"`
	Value Role   `json:"value"`
}

func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleStudent, RoleTeacher, RoleParent:
		return true
	default:
		return false
	}
}

// Assignment binds a Student to a course, a teacher and a start date.
// CourseName and TeacherName are captured when the assignment is made and never re-synced.
type Assignment struct {
	CourseID    string `json:"course_id" mapstructure:"course_id"`
	CourseName  string `json:"course_name" mapstructure:"course_name"`
	TeacherID   string `json:"teacher_id" mapstructure:"teacher_id"`
	TeacherName string `json:"teacher_name" mapstructure:"teacher_name"`
	StartDate   string `json:"start_date" mapstructure:"start_date"` // YYYY-MM-DD
}

// Profile holds the relations belonging to exactly one Role.
// Implementations: AdminProfile, StudentProfile, TeacherProfile and ParentProfile.
type Profile interface {
	Role() Role
	clone() Profile
}

type (
	AdminProfile struct{}

	StudentProfile struct {
		AssignedCourses []Assignment
		ParentID        string
	}

	TeacherProfile struct {
		TeachingCourseIDs []string
	}

	ParentProfile struct {
		ChildrenIDs []string
	}
)

func (AdminProfile) Role() Role   { return RoleAdmin }
func (StudentProfile) Role() Role { return RoleStudent }
func (TeacherProfile) Role() Role { return RoleTeacher }
func (ParentProfile) Role() Role  { return RoleParent }

func (p AdminProfile) clone() Profile { return p }

func (p StudentProfile) clone() Profile {
	if p.AssignedCourses != nil {
		p.AssignedCourses = append([]Assignment{}, p.AssignedCourses...)
	}
	return p
}

func (p TeacherProfile) clone() Profile {
	p.TeachingCourseIDs = uniqueIDs(p.TeachingCourseIDs)
	return p
}

func (p ParentProfile) clone() Profile {
	p.ChildrenIDs = uniqueIDs(p.ChildrenIDs)
	return p
}

// NewProfile returns the empty Profile of role, or nil for an unknown role.
func NewProfile(role Role) Profile {
	switch role {
	case RoleAdmin:
		return AdminProfile{}
	case RoleStudent:
		return StudentProfile{}
	case RoleTeacher:
		return TeacherProfile{}
	case RoleParent:
		return ParentProfile{}
	default:
		return nil
	}
}

type User struct {
	ID           string
	FirstName    string
	LastName     string
	Phone        string
	Email        string
	Profile      Profile
	PasswordHash []byte
	CreatedAt    time.Time // UTC
	UpdatedAt    time.Time // UTC
}

func (u User) Role() Role {
	if u.Profile == nil {
		return ""
	}
	return u.Profile.Role()
}

func (u User) FullName() string {
	return core.CleanString(u.FirstName + " " + u.LastName)
}

func (u User) IsAdmin() bool   { return u.Role() == RoleAdmin }
func (u User) IsStudent() bool { return u.Role() == RoleStudent }
func (u User) IsTeacher() bool { return u.Role() == RoleTeacher }
func (u User) IsParent() bool  { return u.Role() == RoleParent }

// TeachesCourse reports whether u is a Teacher assigned to courseID.
func (u User) TeachesCourse(courseID string) bool {
	p, ok := u.Profile.(TeacherProfile)
	return ok && containsID(p.TeachingCourseIDs, courseID)
}

// ParentID returns the parent of a Student, if any.
func (u User) ParentID() string {
	if p, ok := u.Profile.(StudentProfile); ok {
		return p.ParentID
	}
	return ""
}

// ChildrenIDs returns the children of a Parent.
func (u User) ChildrenIDs() []string {
	if p, ok := u.Profile.(ParentProfile); ok {
		return p.ChildrenIDs
	}
	return nil
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

// Clone returns a deep copy of u.
func (u User) Clone() User {
	if u.Profile != nil {
		u.Profile = u.Profile.clone()
	}
	if u.PasswordHash != nil {
		u.PasswordHash = append([]byte{}, u.PasswordHash...)
	}
	return u
}

type userJSON struct {
	ID                string        `json:"id"`
	FirstName         string        `json:"first_name"`
	LastName          string        `json:"last_name"`
	Phone             string        `json:"phone"`
	Email             string        `json:"email"`
	Role              Role          `json:"role"`
	AssignedCourses   *[]Assignment `json:"assigned_courses,omitempty"`
	ParentID          *string       `json:"parent_id,omitempty"`
	ChildrenIDs       *[]string     `json:"children_ids,omitempty"`
	TeachingCourseIDs *[]string     `json:"teaching_course_ids,omitempty"`
	CreatedAt         time.Time     `json:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at"`
}

// MarshalJSON flattens the Profile: only the fields of the user's role are present.
func (u User) MarshalJSON() ([]byte, error) {
	data := userJSON{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Phone:     u.Phone,
		Email:     u.Email,
		Role:      u.Role(),
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
	switch p := u.Profile.(type) {
	case StudentProfile:
		courses := p.AssignedCourses
		if courses == nil {
			courses = []Assignment{}
		}
		data.AssignedCourses = &courses
		if p.ParentID != "" {
			data.ParentID = &p.ParentID
		}
	case TeacherProfile:
		ids := nonNilIDs(p.TeachingCourseIDs)
		data.TeachingCourseIDs = &ids
	case ParentProfile:
		ids := nonNilIDs(p.ChildrenIDs)
		data.ChildrenIDs = &ids
	case AdminProfile, nil:
	}
	return json.Marshal(data)
}

func cleanIdentity(firstName, lastName, phone, email *string) {
	*firstName = core.CleanString(*firstName)
	*lastName = core.CleanString(*lastName)
	*phone = core.CleanString(*phone)
	*email = core.CleanString(*email, true /* lower */)
}

// NewUser contains information needed to create a new User.
type NewUser struct {
	FirstName string  `json:"first_name" validate:"required,notblank"`
	LastName  string  `json:"last_name" validate:"required,notblank"`
	Phone     string  `json:"phone"`
	Email     string  `json:"email" validate:"required,email"`
	Password  string  `json:"password"`
	Profile   Profile `json:"-"`
}

func (nu *NewUser) Validate(validate *validator.Validate) error {
	cleanIdentity(&nu.FirstName, &nu.LastName, &nu.Phone, &nu.Email)
	return validate.Struct(nu)
}

// UpdateUser defines what information may be provided to modify an existing User.
// Every field replaces the stored one; Profile may carry a different Role.
type UpdateUser struct {
	FirstName string  `json:"first_name" validate:"required,notblank"`
	LastName  string  `json:"last_name" validate:"required,notblank"`
	Phone     string  `json:"phone"`
	Email     string  `json:"email" validate:"required,email"`
	Profile   Profile `json:"-"`
}

func (uu *UpdateUser) Validate(validate *validator.Validate) error {
	cleanIdentity(&uu.FirstName, &uu.LastName, &uu.Phone, &uu.Email)
	return validate.Struct(uu)
}

type QueryFilter struct {
	// Search does a case-insensitive match on one of User.FirstName, User.LastName or User.Email.
	Search string
	Roles  []Role
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && len(qf.Roles) == 0
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}

func (qf QueryFilter) Match(usr User) bool {
	if qf.Search != "" &&
		!core.ContainsFold(usr.FirstName, qf.Search) &&
		!core.ContainsFold(usr.LastName, qf.Search) &&
		!core.ContainsFold(usr.Email, qf.Search) {
		return false
	}
	if len(qf.Roles) > 0 {
		for _, r := range qf.Roles {
			if usr.Role() == r {
				return true
			}
		}
		return false
	}
	return true
}
