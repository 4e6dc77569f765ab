package core

import (
	"reflect"
	"testing"
)

func TestParseOrderings(t *testing.T) {
	tests := []struct {
		in   string
		want []Ordering
	}{
		{in: "", want: nil},
		{in: " , -", want: nil},
		{in: "first_name", want: []Ordering{{Field: "first_name", Ascending: true}}},
		{
			in:   "last_name, -created_at,",
			want: []Ordering{{Field: "last_name", Ascending: true}, {Field: "created_at"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseOrderings(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseOrderings() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOrdering_String(t *testing.T) {
	if got := (Ordering{Field: "email", Ascending: true}).String(); got != "email ASC" {
		t.Errorf("String() = %s, want email ASC", got)
	}
	if got := (Ordering{Field: "email"}).String(); got != "email DESC" {
		t.Errorf("String() = %s, want email DESC", got)
	}
}
