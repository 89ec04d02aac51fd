package inputval

import "testing"

func TestIsValidEmail(t *testing.T) {
	tests := []struct {
		email string
		want  bool
	}{
		// Valid emails
		{"user@example.com", true},
		{"user.name@example.com", true},
		{"user+tag@example.com", true},
		{"user@subdomain.example.com", true},
		{"a@b.co", true},
		{"user@localhost", true}, // single-label domains allowed for dev

		// Invalid - empty/whitespace
		{"", false},
		{"   ", false},

		// Invalid - missing parts
		{"user", false},
		{"user@", false},
		{"@example.com", false},

		// Invalid - dot placement
		{".user@example.com", false},
		{"user.@example.com", false},
		{"user..name@example.com", false},
		{"user@.example.com", false},
		{"user@example..com", false},

		// Invalid - display name form
		{"User Name <user@example.com>", false},

		// Invalid - spaces
		{"user @example.com", false},
		{"user@exam ple.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			got := IsValidEmail(tt.email)
			if got != tt.want {
				t.Errorf("IsValidEmail(%q) = %v, want %v", tt.email, got, tt.want)
			}
		})
	}
}

func TestLooksLikeEmail(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"user@example.com", true},
		{"  user@example.com  ", true},
		{"deskwarrior", false},
		{"desk warrior", false},
		{"user@localhost", false}, // no dot in domain, not email-shaped
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := LooksLikeEmail(tt.input)
			if got != tt.want {
				t.Errorf("LooksLikeEmail(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestValidate_Required(t *testing.T) {
	type input struct {
		Name string `validate:"required" label:"Team name"`
	}

	res := Validate(input{Name: ""})
	if !res.HasErrors() {
		t.Fatal("expected error for empty required field")
	}
	if res.First() != "Team name is required." {
		t.Errorf("unexpected message: %q", res.First())
	}

	res = Validate(input{Name: "Alpha"})
	if res.HasErrors() {
		t.Errorf("unexpected errors: %v", res.Errors)
	}
}

func TestValidate_WhitespaceOnlyIsEmpty(t *testing.T) {
	type input struct {
		Name string `validate:"required" label:"Team name"`
	}
	if res := Validate(input{Name: "   "}); !res.HasErrors() {
		t.Error("expected whitespace-only value to fail required")
	}
}

func TestValidate_Max(t *testing.T) {
	type input struct {
		Name string `validate:"required,max=5" label:"Name"`
	}

	if res := Validate(input{Name: "abcdef"}); !res.HasErrors() {
		t.Error("expected error for over-length value")
	}
	if res := Validate(input{Name: "abcde"}); res.HasErrors() {
		t.Errorf("unexpected errors: %v", res.Errors)
	}
}

func TestIsValidObjectID(t *testing.T) {
	if !IsValidObjectID("507f1f77bcf86cd799439011") {
		t.Error("expected valid hex ObjectID to pass")
	}
	if IsValidObjectID("nope") {
		t.Error("expected invalid string to fail")
	}
}
