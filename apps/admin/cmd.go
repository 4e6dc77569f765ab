package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/trezcool/codekids/core/user"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	svc *user.Service
	out io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  users [-search TEXT] [-role ROLE,...] [-ordering FIELD,...] - list the seeded users")
	fmt.Fprintln(cli.out, "  courses - list the course catalog")
	fmt.Fprintln(cli.out, "  teachers -course ID - list the teachers of a course")
	fmt.Fprintln(cli.out, "  adduser -first NAME -last NAME -email EMAIL [-phone PHONE] [-role ROLE] [-courses ID,...] [-children ID,...] - check a new user against the seeded users")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	usersCmd := flag.NewFlagSet("users", flag.ContinueOnError)
	usersSearch := usersCmd.String("search", "", "Case-insensitive match on first name, last name or email.")
	usersRoles := usersCmd.String("role", "", "Comma separated roles to keep.")
	usersOrdering := usersCmd.String("ordering", "", "Comma separated fields to order by, prefixed with - for descending order.")

	teachersCmd := flag.NewFlagSet("teachers", flag.ContinueOnError)
	teachersCourse := teachersCmd.String("course", "", "The course ID.")

	addUserCmd := flag.NewFlagSet("adduser", flag.ContinueOnError)
	addUserFirst := addUserCmd.String("first", "", "The user's first name.")
	addUserLast := addUserCmd.String("last", "", "The user's last name.")
	addUserEmail := addUserCmd.String("email", "", "The user's email. The password will be prompted next.")
	addUserPhone := addUserCmd.String("phone", "", "The user's phone number.")
	addUserRole := addUserCmd.String("role", string(user.RoleAdmin), "One of admin, student, teacher or parent.")
	addUserCourses := addUserCmd.String("courses", "", "Comma separated IDs of the courses a teacher teaches.")
	addUserChildren := addUserCmd.String("children", "", "Comma separated IDs of a parent's children.")

	for _, fs := range []*flag.FlagSet{usersCmd, teachersCmd, addUserCmd} {
		fs.SetOutput(cli.out)
	}

	switch args[1] {
	case "users":
		if err := usersCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		return cli.listUsers(*usersSearch, splitList(*usersRoles), *usersOrdering)
	case "courses":
		return cli.listCourses()
	case "teachers":
		if err := teachersCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *teachersCourse == "" {
			teachersCmd.Usage()
			return errHelp
		}
		return cli.listTeachers(*teachersCourse)
	case "adduser":
		if err := addUserCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *addUserFirst == "" || *addUserLast == "" || *addUserEmail == "" {
			addUserCmd.Usage()
			return errHelp
		}
		fmt.Fprint(cli.out, "Enter password:")
		pwd, err := readPasswordFunc(int(syscall.Stdin))
		fmt.Fprintln(cli.out)
		if err != nil {
			return err
		}
		return cli.addUser(newUserArgs{
			firstName:   *addUserFirst,
			lastName:    *addUserLast,
			email:       *addUserEmail,
			phone:       *addUserPhone,
			password:    string(pwd),
			role:        user.Role(*addUserRole),
			courseIDs:   splitList(*addUserCourses),
			childrenIDs: splitList(*addUserChildren),
		})
	default:
		cli.printUsage()
		return errHelp
	}
}

func splitList(s string) []string {
	var items []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
