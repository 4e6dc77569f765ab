package echoapi

import (
	"github.com/labstack/echo/v4"

	"github.com/trezcool/codekids/core"
	"github.com/trezcool/codekids/core/user"
)

var orderingParam = "ordering"

type Ordering struct {
	Orderings []core.Ordering
}

func (ord *Ordering) Bind(ctx echo.Context) {
	ord.Orderings = core.ParseOrderings(ctx.QueryParam(orderingParam))
}

type (
	queryRequest struct {
		Search string   `query:"search"`
		Roles  []string `query:"role"`
	}

	destroyMultipleRequest struct {
		IDs []string `query:"id"`
	}

	assignmentInput struct {
		CourseID  string `json:"course_id"`
		TeacherID string `json:"teacher_id"`
		StartDate string `json:"start_date"`
	}

	// userForm is the body of user create and update requests.
	// Only the fields of Role are kept.
	userForm struct {
		FirstName         string            `json:"first_name"`
		LastName          string            `json:"last_name"`
		Phone             string            `json:"phone"`
		Email             string            `json:"email"`
		Password          string            `json:"password"`
		Role              user.Role         `json:"role"`
		Assignments       []assignmentInput `json:"assignments"`
		ParentID          string            `json:"parent_id"`
		ChildrenIDs       []string          `json:"children_ids"`
		TeachingCourseIDs []string          `json:"teaching_course_ids"`
	}
)

func (qr queryRequest) filter() user.QueryFilter {
	filter := user.QueryFilter{Search: qr.Search}
	for _, r := range qr.Roles {
		filter.Roles = append(filter.Roles, user.Role(r))
	}
	return filter
}

// fill replays uf on form the way an admin would fill it in.
// Rows matching the stored assignments keep their recorded names.
func (uf userForm) fill(form *user.Form) {
	form.SetFirstName(uf.FirstName)
	form.SetLastName(uf.LastName)
	form.SetPhone(uf.Phone)
	form.SetEmail(uf.Email)
	form.SetPassword(uf.Password)
	form.SetRole(uf.Role)

	for i, in := range uf.Assignments {
		rows := form.Rows()
		if i >= len(rows) {
			form.AddAssignmentRow()
		}
		if i >= len(rows) || rows[i].CourseID != in.CourseID {
			_ = form.SetAssignmentCourse(i, in.CourseID)
		}
		_ = form.SetAssignmentTeacher(i, in.TeacherID)
		_ = form.SetAssignmentStartDate(i, in.StartDate)
	}
	for n := len(form.Rows()); n > len(uf.Assignments); n-- {
		_ = form.RemoveAssignmentRow(n - 1)
	}

	form.SetParent(uf.ParentID)
	syncToggles(form.ChildrenIDs(), uf.ChildrenIDs, form.ToggleChild)
	syncToggles(form.TeachingCourseIDs(), uf.TeachingCourseIDs, form.ToggleTeachingCourse)
}

// syncToggles toggles ids until the selection equals want.
func syncToggles(current, want []string, toggle func(string)) {
	wanted := make(map[string]bool, len(want))
	for _, id := range want {
		wanted[id] = true
	}
	selected := make(map[string]bool, len(current))
	for _, id := range current {
		selected[id] = true
		if !wanted[id] {
			toggle(id)
		}
	}
	for _, id := range want {
		if !selected[id] {
			selected[id] = true
			toggle(id)
		}
	}
}
