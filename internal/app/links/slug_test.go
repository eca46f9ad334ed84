package links

import (
	"strings"
	"testing"
)

func TestGenerateSlugDeterministic(t *testing.T) {
	a := GenerateSlug("https://example.com/page", "user-1")
	b := GenerateSlug("https://example.com/page", "user-1")
	if a != b {
		t.Fatalf("同样的输入得到了不同短码: %q vs %q", a, b)
	}
}

func TestGenerateSlugLengthAndAlphabet(t *testing.T) {
	inputs := []struct{ url, salt string }{
		{"https://example.com", "u1"},
		{"http://a.b", ""},
		{"", ""},
		{"https://example.com/very/long/path/with/segments?and=query&params=1", "some-user-uuid"},
	}
	for _, in := range inputs {
		slug := GenerateSlug(in.url, in.salt)
		if len(slug) < slugMinLen {
			t.Errorf("GenerateSlug(%q, %q) = %q, 长度 %d < %d", in.url, in.salt, slug, len(slug), slugMinLen)
		}
		for _, r := range slug {
			if !strings.ContainsRune(slugAlphabet, r) {
				t.Errorf("slug %q 含非 base62 字符 %q", slug, r)
			}
		}
	}
}

func TestGenerateSlugSaltChangesResult(t *testing.T) {
	url := "https://example.com/page"
	a := GenerateSlug(url, "user-1")
	b := GenerateSlug(url, "user-2")
	if a == b {
		t.Fatalf("不同 salt 得到了相同短码 %q", a)
	}
}

func TestShortURL(t *testing.T) {
	got := ShortURL("https", "sho.rt", "abc12345")
	if got != "https://sho.rt/abc12345" {
		t.Fatalf("ShortURL = %q", got)
	}
}
