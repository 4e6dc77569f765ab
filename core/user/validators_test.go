package user

import (
	"testing"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/codekids/core"
)

func newValidator() (*validator.Validate, ut.Translator) {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	InitValidators(validate, translator)
	return validate, translator
}

func TestPasswordPolicy(t *testing.T) {
	validate, _ := newValidator()

	tests := []struct {
		name    string
		pwd     string
		wantTag string
	}{
		{name: "empty (no password)", pwd: ""},
		{name: "too short", pwd: "Ab1!", wantTag: pwdMinLenTag},
		{name: "whitespace", pwd: "Abcd 123!", wantTag: pwdNoSpaceTag},
		{name: "all numeric", pwd: "1234567890", wantTag: pwdNotAllNumTag},
		{name: "no special", pwd: "Abcdefg123", wantTag: pwdComplexityTag},
		{name: "no upper", pwd: "abcdefg12!", wantTag: pwdComplexityTag},
		{name: "similar to first name", pwd: "Alexandr1!", wantTag: pwdAttrSimTag},
		{name: "similar to email", pwd: "Smirnova1!", wantTag: pwdAttrSimTag},
		{name: "common", pwd: "P@ssw0rd", wantTag: pwdNoCommonTag},
		{name: "valid", pwd: "Kod!ng2024"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nu := NewUser{
				FirstName: "Alexandr",
				LastName:  "Ivanov",
				Email:     "smirnova@test.cd",
				Password:  tt.pwd,
				Profile:   AdminProfile{},
			}
			err := nu.Validate(validate)
			if tt.wantTag == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error = %v", err)
				}
				return
			}
			vErrs, ok := err.(validator.ValidationErrors)
			if !ok || len(vErrs) != 1 {
				t.Fatalf("Validate() error = %v, want one %s error", err, tt.wantTag)
			}
			if vErrs[0].Field() != "password" || vErrs[0].Tag() != tt.wantTag {
				t.Errorf("Validate() error = %s/%s, want password/%s", vErrs[0].Field(), vErrs[0].Tag(), tt.wantTag)
			}
		})
	}
}

func TestRoleValidation(t *testing.T) {
	validate, translator := newValidator()

	uu := UpdateUser{FirstName: "A", LastName: "B", Email: "a@b.cd"}
	err := uu.Validate(validate)
	vErrs, ok := err.(validator.ValidationErrors)
	if !ok || len(vErrs) != 1 {
		t.Fatalf("Validate() error = %v, want one role error", err)
	}
	msgs := core.TranslateErrors(vErrs, translator)
	if msgs["role"] != roleText {
		t.Errorf("TranslateErrors() = %v, want role: %q", msgs, roleText)
	}

	for _, role := range []string{"admin", "student", "teacher", "parent"} {
		if err := validate.Var(role, roleTag); err != nil {
			t.Errorf("validate.Var(%q) error = %v", role, err)
		}
	}
	if err := validate.Var("principal", roleTag); err == nil {
		t.Error("validate.Var(principal) expected an error")
	}
}
