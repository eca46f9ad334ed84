package links

import (
	"errors"
	"testing"
)

func TestValidateURL(t *testing.T) {
	valid := []string{
		"http://example.com",
		"https://example.com",
		"https://example.com/path",
		"https://example.com/path?q=1&x=2",
		"https://sub.domain.example.com:8080/deep/path",
		"http://localhost:3000/",
		"https://my-site.io",
	}
	for _, u := range valid {
		if err := ValidateURL(u); err != nil {
			t.Errorf("ValidateURL(%q) = %v, want nil", u, err)
		}
	}

	invalid := []string{
		"",
		"   ",
		"example.com",
		"ftp://example.com",
		"javascript:alert(1)",
		"http//example.com",
		"https://exa mple.com",
	}
	for _, u := range invalid {
		err := ValidateURL(u)
		if !errors.Is(err, ErrInvalidURL) {
			t.Errorf("ValidateURL(%q) = %v, want ErrInvalidURL", u, err)
		}
	}
}

func TestValidateURLMessage(t *testing.T) {
	err := ValidateURL("not-a-url")
	if err == nil || err.Error() != "url 'not-a-url' is not valid" {
		t.Fatalf("msg = %v", err)
	}
}

func TestValidateLimit(t *testing.T) {
	if err := validateLimit(nil); err != nil {
		t.Fatalf("nil limit: %v", err)
	}
	one := 1
	if err := validateLimit(&one); err != nil {
		t.Fatalf("limit 1: %v", err)
	}
	for _, n := range []int{0, -1, -100} {
		n := n
		if err := validateLimit(&n); !errors.Is(err, ErrInvalidLimit) {
			t.Errorf("limit %d: err = %v, want ErrInvalidLimit", n, err)
		}
	}
	zero := 0
	if err := validateLimit(&zero); err.Error() != "limit should be more than 0, got 0" {
		t.Fatalf("msg = %v", err)
	}
}
