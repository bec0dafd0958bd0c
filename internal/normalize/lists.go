package normalize

import (
	"fmt"
	"strings"

	json "github.com/goccy/go-json"
)

// ParseList decodes a list-valued cell such as a team roster. It tries a
// structured literal first (JSON array, or a bracketed list of quoted
// tokens as written by Python), then splits on "|" or ",", and finally
// treats the whole cell as a single element. It never fails.
func ParseList(s string) []string {
	s = strings.TrimSpace(s)
	if Label(s) == "" {
		return nil
	}

	if strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]") {
		if items, ok := parseJSONList(s); ok {
			return items
		}
		if items, ok := parseQuotedList(s[1 : len(s)-1]); ok {
			return items
		}
	}

	switch {
	case strings.Contains(s, "|"):
		return splitClean(s, "|")
	case strings.Contains(s, ","):
		return splitClean(s, ",")
	}
	return []string{Label(s)}
}

func parseJSONList(s string) ([]string, bool) {
	var raw []any
	if err := json.Unmarshal([]byte(s), &raw); err != nil {
		return nil, false
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if v == nil {
			continue
		}
		if l := Label(fmt.Sprint(v)); l != "" {
			out = append(out, l)
		}
	}
	return out, true
}

// parseQuotedList accepts the body of a literal like ['Ahri', "Kai'Sa"]. Every
// element must be quoted; an unterminated quote or a bare token fails the
// parse so the caller can fall back to delimiter splitting.
func parseQuotedList(body string) ([]string, bool) {
	var out []string
	i := 0
	for {
		for i < len(body) && (body[i] == ' ' || body[i] == '\t') {
			i++
		}
		if i == len(body) {
			return out, true
		}

		q := body[i]
		if q != '\'' && q != '"' {
			return nil, false
		}
		i++

		var b strings.Builder
		closed := false
		for i < len(body) {
			c := body[i]
			if c == '\\' && i+1 < len(body) {
				b.WriteByte(body[i+1])
				i += 2
				continue
			}
			i++
			if c == q {
				closed = true
				break
			}
			b.WriteByte(c)
		}
		if !closed {
			return nil, false
		}
		if l := Label(b.String()); l != "" {
			out = append(out, l)
		}

		for i < len(body) && (body[i] == ' ' || body[i] == '\t') {
			i++
		}
		if i == len(body) {
			return out, true
		}
		if body[i] != ',' {
			return nil, false
		}
		i++
	}
}

func splitClean(s, sep string) []string {
	parts := strings.Split(s, sep)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if l := Label(p); l != "" {
			out = append(out, l)
		}
	}
	return out
}
