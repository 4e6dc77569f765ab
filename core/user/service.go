package user

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"

	"github.com/trezcool/codekids/core"
	"github.com/trezcool/codekids/core/course"
)

var (
	// errors
	ErrNotFound = errors.New("user not found")

	newID   = uuid.NewString // mockable
	nowFunc = time.Now       // mockable
)

type (
	// ChangeSet is applied by a Repository atomically: all of it or nothing.
	ChangeSet struct {
		Create []User
		Update []User
		Delete []string
	}

	Repository interface {
		// QueryAllUsers returns every user in insertion order.
		QueryAllUsers(ctx context.Context) ([]User, error)
		GetUserByID(ctx context.Context, id string) (User, error)
		ApplyChanges(ctx context.Context, cs ChangeSet) error
	}

	Op string

	// Event is sent to listeners after every committed mutation.
	// Listeners run outside the store lock, so concurrent mutations may deliver their events
	// out of order: Seq follows the commit order and a listener keeping the latest snapshot
	// should ignore events older than the last one it saw.
	Event struct {
		Seq   uint64 // 1 for the first commit of the store
		Op    Op
		IDs   []string // users created, updated or deleted by the operation (cascades excluded)
		Users []User   // snapshot of the store right after the commit
	}

	Listener func(Event)
)

const (
	OpCreate Op = "create"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// Service is the user store: it owns the users and keeps their role relations consistent.
// Mutations run one at a time.
type Service struct {
	repo     Repository
	catalog  course.Catalog
	validate *validator.Validate
	logger   core.Logger

	mu  sync.Mutex // one mutation in flight
	seq uint64     // commits so far; guarded by mu

	lmu       sync.RWMutex
	listeners map[int]Listener
	nextLID   int
}

func NewService(repo Repository, catalog course.Catalog, validate *validator.Validate, logger core.Logger) *Service {
	return &Service{
		repo:      repo,
		catalog:   catalog,
		validate:  validate,
		logger:    logger,
		listeners: make(map[int]Listener),
	}
}

func (svc *Service) Catalog() course.Catalog {
	return svc.catalog
}

// Subscribe registers l to be called after each commit. The returned func unregisters it.
func (svc *Service) Subscribe(l Listener) (unsubscribe func()) {
	svc.lmu.Lock()
	defer svc.lmu.Unlock()

	id := svc.nextLID
	svc.nextLID++
	svc.listeners[id] = l
	return func() {
		svc.lmu.Lock()
		defer svc.lmu.Unlock()
		delete(svc.listeners, id)
	}
}

// commit counts a successful mutation and returns its sequence number. Must be called with mu held.
func (svc *Service) commit(err error) uint64 {
	if err != nil {
		return 0
	}
	svc.seq++
	return svc.seq
}

func (svc *Service) notify(evt Event) {
	svc.lmu.RLock()
	ids := make([]int, 0, len(svc.listeners))
	for id := range svc.listeners {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	listeners := make([]Listener, 0, len(ids))
	for _, id := range ids {
		listeners = append(listeners, svc.listeners[id])
	}
	svc.lmu.RUnlock()

	for _, l := range listeners {
		l(evt)
	}
}

func (svc *Service) Create(ctx context.Context, nu NewUser) (User, error) {
	if err := nu.Validate(svc.validate); err != nil {
		return User{}, err
	}

	svc.mu.Lock()
	usr, snapshot, err := svc.create(ctx, nu)
	seq := svc.commit(err)
	svc.mu.Unlock()
	if err != nil {
		return User{}, err
	}

	svc.logger.Info("user created", map[string]interface{}{"id": usr.ID, "role": usr.Role()}, usr)
	svc.notify(Event{Seq: seq, Op: OpCreate, IDs: []string{usr.ID}, Users: snapshot})
	return usr, nil
}

func (svc *Service) create(ctx context.Context, nu NewUser) (User, []User, error) {
	all, err := svc.repo.QueryAllUsers(ctx)
	if err != nil {
		return User{}, nil, pkgerrors.Wrap(err, "querying users")
	}
	ws := newWorkset(all)

	now := nowFunc().UTC()
	usr := User{
		ID:        newID(),
		FirstName: nu.FirstName,
		LastName:  nu.LastName,
		Phone:     nu.Phone,
		Email:     nu.Email,
		Profile:   nu.Profile.clone(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, exists := ws.get(usr.ID); exists {
		return User{}, nil, fmt.Errorf("generated user id %q already in use", usr.ID)
	}
	if err = svc.checkReferences(ws, usr, nil); err != nil {
		return User{}, nil, err
	}
	svc.freezeNames(ws, &usr)
	if nu.Password != "" {
		if err = usr.SetPassword(nu.Password); err != nil {
			return User{}, nil, pkgerrors.Wrap(err, "hashing password")
		}
	}

	ws.create(usr)
	ws.link(usr)

	if err = svc.repo.ApplyChanges(ctx, ws.changeSet()); err != nil {
		return User{}, nil, pkgerrors.Wrap(err, "saving users")
	}
	snapshot, err := svc.repo.QueryAllUsers(ctx)
	if err != nil {
		return User{}, nil, pkgerrors.Wrap(err, "querying users")
	}
	return usr.Clone(), snapshot, nil
}

func (svc *Service) Update(ctx context.Context, id string, uu UpdateUser) (User, error) {
	if _, err := svc.repo.GetUserByID(ctx, id); err != nil {
		return User{}, pkgerrors.Wrapf(err, "updating user %q", id)
	}
	if err := uu.Validate(svc.validate); err != nil {
		return User{}, err
	}

	svc.mu.Lock()
	usr, snapshot, err := svc.update(ctx, id, uu)
	seq := svc.commit(err)
	svc.mu.Unlock()
	if err != nil {
		return User{}, err
	}

	svc.logger.Info("user updated", map[string]interface{}{"id": usr.ID, "role": usr.Role()}, usr)
	svc.notify(Event{Seq: seq, Op: OpUpdate, IDs: []string{usr.ID}, Users: snapshot})
	return usr, nil
}

func (svc *Service) update(ctx context.Context, id string, uu UpdateUser) (User, []User, error) {
	all, err := svc.repo.QueryAllUsers(ctx)
	if err != nil {
		return User{}, nil, pkgerrors.Wrap(err, "querying users")
	}
	ws := newWorkset(all)

	orig, ok := ws.get(id)
	if !ok {
		return User{}, nil, pkgerrors.Wrapf(ErrNotFound, "updating user %q", id)
	}

	usr := orig.Clone()
	usr.FirstName = uu.FirstName
	usr.LastName = uu.LastName
	usr.Phone = uu.Phone
	usr.Email = uu.Email
	usr.Profile = uu.Profile.clone() // the previous role's relations go away with the old profile
	usr.UpdatedAt = nowFunc().UTC()

	if err = svc.checkReferences(ws, usr, &orig); err != nil {
		return User{}, nil, err
	}
	svc.freezeNames(ws, &usr)

	ws.put(usr)
	ws.unlink(orig, usr)
	ws.link(usr)

	if err = svc.repo.ApplyChanges(ctx, ws.changeSet()); err != nil {
		return User{}, nil, pkgerrors.Wrap(err, "saving users")
	}
	snapshot, err := svc.repo.QueryAllUsers(ctx)
	if err != nil {
		return User{}, nil, pkgerrors.Wrap(err, "querying users")
	}
	usr, _ = ws.get(id)
	return usr.Clone(), snapshot, nil
}

// Delete removes the users with the given ids. Parents release their children,
// students leave their parent, teachers' past assignments are left untouched.
// Nothing is deleted if any id is unknown.
func (svc *Service) Delete(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}

	svc.mu.Lock()
	deleted, snapshot, err := svc.delete(ctx, ids)
	seq := svc.commit(err)
	svc.mu.Unlock()
	if err != nil {
		return err
	}

	svc.logger.Info("users deleted", map[string]interface{}{"ids": deleted})
	svc.notify(Event{Seq: seq, Op: OpDelete, IDs: deleted, Users: snapshot})
	return nil
}

func (svc *Service) delete(ctx context.Context, ids []string) ([]string, []User, error) {
	all, err := svc.repo.QueryAllUsers(ctx)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(err, "querying users")
	}
	ws := newWorkset(all)

	for _, id := range ids {
		if _, ok := ws.get(id); !ok { // blank ids are unknown too
			return nil, nil, pkgerrors.Wrapf(ErrNotFound, "deleting user %q", id)
		}
	}
	ids = uniqueIDs(ids)
	for _, id := range ids {
		orig, _ := ws.get(id)
		ws.unlink(orig, User{})
		ws.remove(id)
	}

	if err = svc.repo.ApplyChanges(ctx, ws.changeSet()); err != nil {
		return nil, nil, pkgerrors.Wrap(err, "deleting users")
	}
	snapshot, err := svc.repo.QueryAllUsers(ctx)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(err, "querying users")
	}
	return ids, snapshot, nil
}

func (svc *Service) GetByID(ctx context.Context, id string) (User, error) {
	return svc.repo.GetUserByID(ctx, id)
}

// Query returns the users matching filter, in insertion order unless orderings are given.
// Supported ordering fields: first_name, last_name, email, role, created_at.
func (svc *Service) Query(ctx context.Context, filter QueryFilter, orderings ...core.Ordering) ([]User, error) {
	all, err := svc.repo.QueryAllUsers(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "querying users")
	}
	filter.Clean()

	users := make([]User, 0, len(all))
	for _, u := range all {
		if filter.Match(u) {
			users = append(users, u)
		}
	}
	if len(orderings) > 0 {
		sortUsers(users, orderings)
	}
	return users, nil
}

// TeachersForCourse returns exactly the teachers whose teaching courses contain courseID.
func (svc *Service) TeachersForCourse(ctx context.Context, courseID string) ([]User, error) {
	all, err := svc.repo.QueryAllUsers(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "querying users")
	}
	teachers := make([]User, 0)
	for _, u := range all {
		if u.TeachesCourse(courseID) {
			teachers = append(teachers, u)
		}
	}
	return teachers, nil
}

// checkReferences validates the relations of usr against the staged state.
// orig is the stored version of usr on update; its unchanged assignments are not re-checked.
func (svc *Service) checkReferences(ws *workset, usr User, orig *User) error {
	var fldErrs []core.FieldError
	report := func(field, format string, args ...interface{}) {
		fldErrs = append(fldErrs, core.FieldError{Field: field, Error: fmt.Sprintf(format, args...)})
	}
	// lookup sees usr as it will be after the mutation
	lookup := func(id string) (User, bool) {
		if id == usr.ID {
			return usr, true
		}
		return ws.get(id)
	}

	switch p := usr.Profile.(type) {
	case StudentProfile:
		var prev []Assignment
		if orig != nil {
			if op, ok := orig.Profile.(StudentProfile); ok {
				prev = op.AssignedCourses
			}
		}
		for i, a := range p.AssignedCourses {
			field := fmt.Sprintf("assignments[%d]", i)
			if err := svc.validate.Var(a.StartDate, "omitempty,datetime=2006-01-02"); err != nil {
				report(field+".start_date", "start date must be formatted as YYYY-MM-DD")
			}
			if assignmentStored(prev, a) {
				continue
			}
			if _, err := svc.catalog.Get(a.CourseID); err != nil {
				report(field+".course_id", "unknown course %q", a.CourseID)
				continue
			}
			teacher, ok := lookup(a.TeacherID)
			switch {
			case a.TeacherID == "":
				report(field+".teacher_id", "a teacher is required")
			case !ok || !teacher.IsTeacher():
				report(field+".teacher_id", "unknown teacher %q", a.TeacherID)
			case !teacher.TeachesCourse(a.CourseID):
				report(field+".teacher_id", "teacher %q does not teach course %q", a.TeacherID, a.CourseID)
			}
		}
		if p.ParentID != "" {
			if par, ok := lookup(p.ParentID); !ok || !par.IsParent() {
				report("parent_id", "unknown parent %q", p.ParentID)
			}
		}
	case TeacherProfile:
		for i, courseID := range p.TeachingCourseIDs {
			if _, err := svc.catalog.Get(courseID); err != nil {
				report(fmt.Sprintf("teaching_course_ids[%d]", i), "unknown course %q", courseID)
			}
		}
	case ParentProfile:
		for i, childID := range p.ChildrenIDs {
			field := fmt.Sprintf("children_ids[%d]", i)
			if childID == usr.ID {
				report(field, "a user cannot be their own child")
				continue
			}
			if child, ok := lookup(childID); !ok || !child.IsStudent() {
				report(field, "unknown student %q", childID)
			}
		}
	case AdminProfile:
	}

	if len(fldErrs) > 0 {
		return core.NewValidationError(nil, fldErrs...)
	}
	return nil
}

// freezeNames fills the missing course and teacher names of a Student's assignments.
// Names already set are kept, even if the course or teacher was renamed since.
func (svc *Service) freezeNames(ws *workset, usr *User) {
	p, ok := usr.Profile.(StudentProfile)
	if !ok {
		return
	}
	for i, a := range p.AssignedCourses {
		if a.CourseName == "" {
			if crs, err := svc.catalog.Get(a.CourseID); err == nil {
				p.AssignedCourses[i].CourseName = crs.Name
			}
		}
		if a.TeacherName == "" {
			if teacher, ok := ws.get(a.TeacherID); ok {
				p.AssignedCourses[i].TeacherName = teacher.FullName()
			}
		}
	}
	usr.Profile = p
}

func assignmentStored(stored []Assignment, a Assignment) bool {
	for _, s := range stored {
		if s.CourseID == a.CourseID && s.TeacherID == a.TeacherID {
			return true
		}
	}
	return false
}

func sortUsers(users []User, orderings []core.Ordering) {
	key := func(u User, field string) string {
		switch field {
		case "first_name":
			return strings.ToLower(u.FirstName)
		case "last_name":
			return strings.ToLower(u.LastName)
		case "email":
			return u.Email
		case "role":
			return string(u.Role())
		case "created_at":
			return u.CreatedAt.UTC().Format(time.RFC3339Nano)
		default:
			return ""
		}
	}
	sort.SliceStable(users, func(i, j int) bool {
		for _, ord := range orderings {
			ki, kj := key(users[i], ord.Field), key(users[j], ord.Field)
			if ki == kj {
				continue
			}
			if ord.Ascending {
				return ki < kj
			}
			return ki > kj
		}
		return false
	})
}
