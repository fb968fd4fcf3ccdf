package utils

import "testing"

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		password string
		ok       bool
	}{
		{"corps2026", true},
		{"Drumline1", true},
		{"short1", false},
		{"allletters", false},
		{"1234567890", false},
		{"", false},
	}

	for _, tc := range tests {
		ok, msg := ValidatePassword(tc.password)
		if ok != tc.ok {
			t.Errorf("ValidatePassword(%q) = %v (%q), want %v", tc.password, ok, msg, tc.ok)
		}
		if !ok && msg == "" {
			t.Errorf("ValidatePassword(%q) rejected without a message", tc.password)
		}
	}
}

func TestValidateEmail(t *testing.T) {
	if !ValidateEmail("snare@corps.example.org") {
		t.Error("expected valid email to pass")
	}
	for _, bad := range []string{"", "not-an-email", "a@b", "a@b."} {
		if ValidateEmail(bad) {
			t.Errorf("expected %q to fail", bad)
		}
	}
}
