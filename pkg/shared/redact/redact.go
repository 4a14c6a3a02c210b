package redact

import (
	"strings"
)

var sensitiveKeys = []string{"authorization", "cookie", "access_token", "id_token", "session", "apikey", "api_key", "password", "secret", "token"}

// Message masks the values of sensitive key=value pairs in a trace message
// best-effort. Quoted values are masked up to the closing quote.
func Message(s string) string {
	if !strings.Contains(s, "=") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		eq := strings.IndexByte(s[i:], '=')
		if eq < 0 {
			b.WriteString(s[i:])
			break
		}
		eq += i
		key := s[keyStart(s, eq):eq]
		b.WriteString(s[i : eq+1])
		end := valueEnd(s, eq+1)
		if isSensitiveKey(key) && end > eq+1 {
			b.WriteString("***")
		} else {
			b.WriteString(s[eq+1 : end])
		}
		i = end
	}
	return b.String()
}

func keyStart(s string, eq int) int {
	j := eq
	for j > 0 && isKeyByte(s[j-1]) {
		j--
	}
	return j
}

func valueEnd(s string, from int) int {
	if from < len(s) && s[from] == '"' {
		if k := strings.IndexByte(s[from+1:], '"'); k >= 0 {
			return from + k + 2
		}
		return len(s)
	}
	j := from
	for j < len(s) && s[j] != ' ' && s[j] != ',' {
		j++
	}
	return j
}

func isKeyByte(c byte) bool {
	return c == '_' || c == '-' || c == '.' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func isSensitiveKey(k string) bool {
	k = strings.ToLower(k)
	for _, s := range sensitiveKeys {
		if k == s {
			return true
		}
	}
	return false
}
