package redact

import "testing"

func TestMessage(t *testing.T) {
	cases := []struct{ in, want string }{
		{"close", "close"},
		{"frame done tics=3", "frame done tics=3"},
		{"login token=abc123 user=bob", "login token=*** user=bob"},
		{`auth Authorization="Bearer x y", ok=1`, `auth Authorization=***, ok=1`},
		{"password=", "password="},
		{"a=b=c", "a=b=c"},
	}
	for _, c := range cases {
		if got := Message(c.in); got != c.want {
			t.Fatalf("Message(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
