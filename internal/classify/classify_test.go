package classify

import "testing"

func TestTruncate(t *testing.T) {
	cases := []struct {
		input    string
		n        int
		expected string
	}{
		{"short", 50, "short"},
		{"exactly five", 12, "exactly five"},
		{"0123456789", 5, "01234"},
		{"привет мир", 6, "привет"},
		{"", 10, ""},
	}

	for _, c := range cases {
		if got := truncate(c.input, c.n); got != c.expected {
			t.Errorf("truncate(%q, %d) = %q, expected %q", c.input, c.n, got, c.expected)
		}
	}
}
