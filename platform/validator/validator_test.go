package validator

import (
	"strings"
	"testing"
)

type amenityRequest struct {
	Amenity string `validate:"amenity"`
	Query   string `validate:"max=5"`
}

func TestRegisterStringSet(t *testing.T) {
	v := New()
	if err := v.RegisterStringSet("amenity", []string{"", "cafe", "school"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	tests := []struct {
		name    string
		req     amenityRequest
		wantErr bool
	}{
		{"known value", amenityRequest{Amenity: "cafe"}, false},
		{"empty value allowed", amenityRequest{Amenity: ""}, false},
		{"unknown value", amenityRequest{Amenity: "casino"}, true},
		{"query too long", amenityRequest{Amenity: "school", Query: "abcdef"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.req)
			if (err != nil) != tt.wantErr {
				t.Fatalf("expected error=%v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestDescribeNamesFieldAndTag(t *testing.T) {
	v := New()
	if err := v.RegisterStringSet("amenity", []string{"cafe"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	msg := Describe(v.Struct(amenityRequest{Amenity: "zoo"}))
	if !strings.Contains(msg, "Amenity") || !strings.Contains(msg, `"amenity"`) {
		t.Fatalf("unexpected message %q", msg)
	}
}
