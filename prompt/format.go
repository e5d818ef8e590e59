package prompt

import (
	"fmt"
	"strings"
)

// FormatString substitutes {name} placeholders in s with values from vars.
// "{{" and "}}" produce literal braces. Format specs, conversions and
// positional fields are not supported.
func FormatString(s string, vars map[string]any) (string, error) {
	var sb strings.Builder
	sb.Grow(len(s))

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '{':
			if i+1 < len(s) && s[i+1] == '{' {
				sb.WriteByte('{')
				i++
				continue
			}
			end := strings.IndexByte(s[i+1:], '}')
			if end < 0 {
				return "", fmt.Errorf("unmatched '{' at offset %d", i)
			}
			name := s[i+1 : i+1+end]
			if name == "" || strings.ContainsAny(name, "{:!.[") {
				return "", fmt.Errorf("unsupported replacement field {%s}", name)
			}
			v, ok := vars[name]
			if !ok {
				return "", fmt.Errorf("missing variable %q", name)
			}
			sb.WriteString(fmt.Sprint(v))
			i += end + 1
		case '}':
			if i+1 < len(s) && s[i+1] == '}' {
				sb.WriteByte('}')
				i++
				continue
			}
			return "", fmt.Errorf("single '}' at offset %d", i)
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String(), nil
}
