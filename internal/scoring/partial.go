package scoring

import (
	"encoding/json"
	"strings"
)

const maxRepairAttempts = 8

type cutPoint struct {
	pos    int
	suffix string
}

// partialObject parses a truncated JSON object by closing whatever is still
// open. When the tail is not a complete token it backs off to the previous
// element boundary. The result is for display only and is never validated.
func partialObject(s string) (map[string]any, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return nil, false
	}
	s = s[start:]

	cuts := scanCuts(s)
	tries := 0
	for i := len(cuts) - 1; i >= 0 && tries < maxRepairAttempts; i-- {
		tries++
		candidate := s[:cuts[i].pos] + cuts[i].suffix
		var out map[string]any
		if err := json.Unmarshal([]byte(candidate), &out); err == nil && out != nil {
			return out, true
		}
	}
	return nil, false
}

// scanCuts records positions where the input can be truncated and closed.
func scanCuts(s string) []cutPoint {
	var (
		stack    []byte
		cuts     []cutPoint
		inString bool
		escaped  bool
	)
	closers := func() string {
		var b strings.Builder
		for i := len(stack) - 1; i >= 0; i-- {
			if stack[i] == '{' {
				b.WriteByte('}')
			} else {
				b.WriteByte(']')
			}
		}
		return b.String()
	}

	for i := 0; i < len(s); i++ {
		ch := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{', '[':
			stack = append(stack, ch)
			cuts = append(cuts, cutPoint{pos: i + 1, suffix: closers()})
		case '}', ']':
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
			cuts = append(cuts, cutPoint{pos: i + 1, suffix: closers()})
			if len(stack) == 0 {
				return cuts
			}
		case ',':
			cuts = append(cuts, cutPoint{pos: i, suffix: closers()})
		}
	}

	end := len(s)
	tail := ""
	if inString {
		if escaped {
			end--
		}
		tail = `"`
	}
	return append(cuts, cutPoint{pos: end, suffix: tail + closers()})
}
