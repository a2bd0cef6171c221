package slug

import (
	"errors"
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		slug    string
		wantErr error
	}{
		{name: "single lowercase letter", slug: "a"},
		{name: "single digit", slug: "5"},
		{name: "simple word", slug: "nature"},
		{name: "with hyphens", slug: "summer-fun"},
		{name: "digits and letters", slug: "go2docs"},

		{name: "empty string", slug: "", wantErr: ErrEmpty},

		{name: "uppercase letters", slug: "Nature", wantErr: ErrFormat},
		{name: "starts with hyphen", slug: "-foo", wantErr: ErrFormat},
		{name: "ends with hyphen", slug: "foo-", wantErr: ErrFormat},
		{name: "contains spaces", slug: "summer fun", wantErr: ErrFormat},
		{name: "contains underscore", slug: "summer_fun", wantErr: ErrFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.slug)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate(%q) = %v, want %v", tt.slug, err, tt.wantErr)
			}
		})
	}
}

func TestDerive(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Nature", "nature"},
		{"Summer Fun", "summer-fun"},
		{"  road_trip  ", "road-trip"},
		{"C++ & Go!", "c-go"},
		{"a -- b", "a-b"},
		{"!!!", ""},
	}
	for _, tt := range tests {
		if got := Derive(tt.input); got != tt.want {
			t.Errorf("Derive(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestValid(t *testing.T) {
	if !Valid("Summer Fun") {
		t.Error(`Valid("Summer Fun") = false`)
	}
	if Valid("???") {
		t.Error(`Valid("???") = true`)
	}
}
