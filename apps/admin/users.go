package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/trezcool/codekids/core"
	"github.com/trezcool/codekids/core/user"
)

func (cli *commandLine) printUsers(users []user.User) error {
	w := tabwriter.NewWriter(cli.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tEMAIL\tROLE\tRELATIONS")
	for _, u := range users {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", u.ID, u.FullName(), u.Email, u.Role(), relations(u))
	}
	return w.Flush()
}

// relations summarizes the role relations of u on one line.
func relations(u user.User) string {
	switch p := u.Profile.(type) {
	case user.StudentProfile:
		parts := make([]string, 0, len(p.AssignedCourses)+1)
		for _, a := range p.AssignedCourses {
			parts = append(parts, fmt.Sprintf("%s with %s", a.CourseName, a.TeacherName))
		}
		if p.ParentID != "" {
			parts = append(parts, "parent "+p.ParentID)
		}
		return strings.Join(parts, "; ")
	case user.TeacherProfile:
		return "teaches " + strings.Join(p.TeachingCourseIDs, ", ")
	case user.ParentProfile:
		return "children " + strings.Join(p.ChildrenIDs, ", ")
	default:
		return ""
	}
}

func (cli *commandLine) listUsers(search string, roles []string, ordering string) error {
	filter := user.QueryFilter{Search: search}
	for _, r := range roles {
		filter.Roles = append(filter.Roles, user.Role(r))
	}
	users, err := cli.svc.Query(context.Background(), filter, core.ParseOrderings(ordering)...)
	if err != nil {
		return err
	}
	return cli.printUsers(users)
}

func (cli *commandLine) listCourses() error {
	w := tabwriter.NewWriter(cli.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME")
	for _, c := range cli.svc.Catalog().List() {
		fmt.Fprintf(w, "%s\t%s\n", c.ID, c.Name)
	}
	return w.Flush()
}

func (cli *commandLine) listTeachers(courseID string) error {
	if _, err := cli.svc.Catalog().Get(courseID); err != nil {
		return err
	}
	teachers, err := cli.svc.TeachersForCourse(context.Background(), courseID)
	if err != nil {
		return err
	}
	return cli.printUsers(teachers)
}

type newUserArgs struct {
	firstName, lastName, email, phone, password string
	role                                         user.Role
	courseIDs, childrenIDs                       []string
}

// addUser creates the user in the store and prints it as JSON.
func (cli *commandLine) addUser(args newUserArgs) error {
	ctx := context.Background()

	form := user.NewForm(cli.svc.Catalog(), cli.svc)
	form.SetFirstName(args.firstName)
	form.SetLastName(args.lastName)
	form.SetEmail(args.email)
	form.SetPhone(args.phone)
	form.SetPassword(args.password)
	form.SetRole(args.role)
	for _, id := range args.courseIDs {
		form.ToggleTeachingCourse(id)
	}
	for _, id := range args.childrenIDs {
		form.ToggleChild(id)
	}

	usr, err := cli.svc.Create(ctx, form.Commit(ctx))
	if err != nil {
		return err
	}
	enc := json.NewEncoder(cli.out)
	enc.SetIndent("", "  ")
	return enc.Encode(usr)
}
