package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/codekids/core"
	"github.com/trezcool/codekids/core/course"
	"github.com/trezcool/codekids/core/user"
	"github.com/trezcool/codekids/tests"
)

func setup(t *testing.T) (*commandLine, *bytes.Buffer) {
	svc, _ := testutil.NewService(t)
	out := new(bytes.Buffer)
	return &commandLine{svc: svc, out: out}, out
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	extra      interface{}
}

func runCLITests(t *testing.T, cli *commandLine, tests []cliTest) {
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			if err := cli.run(args); err != nil {
				if tt.wantErr != nil {
					if pkgerrors.Cause(err) != tt.wantErr {
						t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
					}
				} else if tt.wantErrStr != "" {
					if err.Error() != tt.wantErrStr {
						t.Errorf("cli.run() error.Error() = %s, wantErrStr %s", err.Error(), tt.wantErrStr)
					}
				} else {
					t.Errorf("cli.run() unexpected error = %v", err)
				}
			} else if tt.wantErr != nil || tt.wantErrStr != "" {
				t.Errorf("cli.run() error = nil, want an error")
			}
		})
	}
}

func Test_commandLine_usage(t *testing.T) {
	cli, out := setup(t)

	runCLITests(t, cli, []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "unknown flag", args: []string{"users", "-lol"}, wantErr: errHelp},
		{name: "teachers: no course", args: []string{"teachers"}, wantErr: errHelp},
		{name: "teachers: unknown course", args: []string{"teachers", "-course", "c9"}, wantErr: course.ErrNotFound},
		{name: "adduser: no args", args: []string{"adduser"}, wantErr: errHelp},
		{name: "adduser: no email", args: []string{"adduser", "-first", "Zoe", "-last", "Brown"}, wantErr: errHelp},
	})
	assert.Contains(t, out.String(), "Usage:")
}

func Test_commandLine_list(t *testing.T) {
	cli, out := setup(t)
	teacher := testutil.CreateTeacher(t, cli.svc, "Maria", "c1", "c3")
	student := testutil.CreateStudent(t, cli.svc, "Alexei", "", user.Assignment{CourseID: "c1", TeacherID: teacher.ID})
	parent := testutil.CreateParent(t, cli.svc, "Elena", student.ID)
	testutil.CreateAdmin(t, cli.svc, "Dmitri")

	t.Run("courses", func(t *testing.T) {
		out.Reset()
		require.NoError(t, cli.run([]string{"admin", "courses"}))
		lines := strings.Split(strings.TrimSpace(out.String()), "\n")
		require.Len(t, lines, 5)
		assert.Equal(t, []string{"ID", "NAME"}, strings.Fields(lines[0]))
		assert.Equal(t, []string{"c1", "Scratch"}, strings.Fields(lines[1]))
	})

	t.Run("users", func(t *testing.T) {
		out.Reset()
		require.NoError(t, cli.run([]string{"admin", "users"}))
		lines := strings.Split(strings.TrimSpace(out.String()), "\n")
		require.Len(t, lines, 5)
		assert.Contains(t, lines[1], "teaches c1, c3")
		assert.Contains(t, lines[2], "Scratch with Maria Test; parent "+parent.ID)
		assert.Contains(t, lines[3], "children "+student.ID)
	})

	t.Run("users filtered & ordered", func(t *testing.T) {
		out.Reset()
		require.NoError(t, cli.run([]string{"admin", "users", "-role", "admin, parent", "-ordering", "-first_name"}))
		lines := strings.Split(strings.TrimSpace(out.String()), "\n")
		require.Len(t, lines, 3)
		assert.Contains(t, lines[1], "Elena Test")
		assert.Contains(t, lines[2], "Dmitri Test")
	})

	t.Run("teachers", func(t *testing.T) {
		out.Reset()
		require.NoError(t, cli.run([]string{"admin", "teachers", "-course", "c3"}))
		lines := strings.Split(strings.TrimSpace(out.String()), "\n")
		require.Len(t, lines, 2)
		assert.True(t, strings.HasPrefix(lines[1], teacher.ID))

		out.Reset()
		require.NoError(t, cli.run([]string{"admin", "teachers", "-course", "c2"}))
		assert.Len(t, strings.Split(strings.TrimSpace(out.String()), "\n"), 1)
	})
}

func Test_commandLine_addUser(t *testing.T) {
	cli, out := setup(t)
	student := testutil.CreateStudent(t, cli.svc, "Alexei", "")

	type extra struct {
		pwd string
	}
	defer func(f func(int) ([]byte, error)) { readPasswordFunc = f }(readPasswordFunc)

	args := func(more ...string) []string {
		return append([]string{"adduser", "-first", "Zoe", "-last", "Brown", "-email", "zoe@b.cd"}, more...)
	}
	tests := []struct {
		cliTest
		check func(t *testing.T, err error)
	}{
		{
			cliTest: cliTest{name: "weak password", args: args(), extra: extra{pwd: "12345678"}},
			check: func(t *testing.T, err error) {
				vErrs, ok := pkgerrors.Cause(err).(validator.ValidationErrors)
				require.True(t, ok, "got %v", err)
				assert.Equal(t, "password", vErrs[0].Field())
			},
		},
		{
			cliTest: cliTest{name: "unknown role", args: args("-role", "principal"), extra: extra{pwd: "Kod!ng2024"}},
			check: func(t *testing.T, err error) {
				vErrs, ok := pkgerrors.Cause(err).(validator.ValidationErrors)
				require.True(t, ok, "got %v", err)
				assert.Equal(t, "role", vErrs[0].Field())
			},
		},
		{
			cliTest: cliTest{name: "unknown course", args: args("-role", "teacher", "-courses", "c1,c9"), extra: extra{pwd: "Kod!ng2024"}},
			check: func(t *testing.T, err error) {
				require.True(t, core.IsValidationError(err), "got %v", err)
				vErr := pkgerrors.Cause(err).(*core.ValidationError)
				assert.Equal(t, []core.FieldError{{Field: "teaching_course_ids[1]", Error: `unknown course "c9"`}}, vErr.Fields)
			},
		},
		{
			cliTest: cliTest{name: "parent", args: args("-role", "parent", "-children", student.ID), extra: extra{pwd: "Kod!ng2024"}},
			check: func(t *testing.T, err error) {
				require.NoError(t, err)
				assert.Contains(t, out.String(), `"role": "parent"`)
				assert.Contains(t, out.String(), `"email": "zoe@b.cd"`)
				assert.NotEmpty(t, testutil.Get(t, cli.svc, student.ID).ParentID())
			},
		},
		{
			cliTest: cliTest{name: "no password", args: args(), extra: extra{}},
			check: func(t *testing.T, err error) {
				require.NoError(t, err)
				users, err := cli.svc.Query(context.Background(), user.QueryFilter{Roles: []user.Role{user.RoleAdmin}})
				require.NoError(t, err)
				require.Len(t, users, 1)
				assert.Empty(t, users[0].PasswordHash)
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		readPasswordFunc = func(fd int) ([]byte, error) {
			if extra, ok := tt.extra.(extra); ok {
				return []byte(extra.pwd), nil
			}
			return nil, nil
		}

		t.Run(tt.name, func(t *testing.T) {
			out.Reset()
			tt.check(t, cli.run(append([]string{"admin"}, tt.args...)))
		})
	}
}
