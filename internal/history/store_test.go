package history

import "testing"

func TestSanitizeScope(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"alice", "alice"},
		{"Alice.Smith-42", "Alice.Smith-42"},
		{"../../etc/passwd", "_.._etc_passwd"},
		{"..", GlobalScope},
		{"a/b\\c", "a_b_c"},
		{"user@example.com", "user_example.com"},
		{"  spaced out  ", "spaced_out"},
		{"", GlobalScope},
		{"///", "___"},
	}
	for _, tc := range cases {
		if got := SanitizeScope(tc.in); got != tc.want {
			t.Errorf("SanitizeScope(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
