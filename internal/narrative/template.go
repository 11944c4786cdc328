package narrative

import (
	"fmt"
	"strings"

	"gonarrate/domain/core"
)

// Substitute replaces every {name} in template with values[name]. A doubled
// brace ("{{" or "}}") emits a literal brace. Referencing a name that has no
// value fails with ErrUnknownPlaceholder; nothing is substituted in that case.
func Substitute(template string, values map[string]string) (string, error) {
	var b strings.Builder
	b.Grow(len(template))

	for i := 0; i < len(template); i++ {
		c := template[i]
		switch {
		case c == '{' && i+1 < len(template) && template[i+1] == '{':
			b.WriteByte('{')
			i++
		case c == '}' && i+1 < len(template) && template[i+1] == '}':
			b.WriteByte('}')
			i++
		case c == '{':
			end := strings.IndexByte(template[i+1:], '}')
			if end < 0 {
				return "", fmt.Errorf("unterminated placeholder at offset %d", i)
			}
			name := strings.TrimSpace(template[i+1 : i+1+end])
			v, ok := values[name]
			if !ok {
				return "", fmt.Errorf("%w: {%s}", core.ErrUnknownPlaceholder, name)
			}
			b.WriteString(v)
			i += end + 1
		default:
			b.WriteByte(c)
		}
	}
	return b.String(), nil
}

// Placeholders lists the names referenced by template in order of appearance,
// without duplicates
func Placeholders(template string) []string {
	var names []string
	seen := make(map[string]bool)
	for i := 0; i < len(template); i++ {
		c := template[i]
		if (c == '{' || c == '}') && i+1 < len(template) && template[i+1] == c {
			i++
			continue
		}
		if c != '{' {
			continue
		}
		end := strings.IndexByte(template[i+1:], '}')
		if end < 0 {
			break
		}
		name := strings.TrimSpace(template[i+1 : i+1+end])
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
		i += end + 1
	}
	return names
}
