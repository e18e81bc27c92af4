package disc

import (
	"strconv"
	"strings"
)

// record is one tagged line of robot output, e.g. TINFO:0,9,0,"1:30:00".
type record struct {
	tag    string
	fields []string
}

// splitRecord separates the tag from its payload. Lines without a tag
// separator or with an empty tag are not records.
func splitRecord(line string) (record, bool) {
	tag, payload, ok := strings.Cut(line, ":")
	if !ok {
		return record{}, false
	}
	tag = strings.TrimSpace(tag)
	if tag == "" || strings.ContainsAny(tag, " \t\"") {
		return record{}, false
	}
	return record{tag: tag, fields: splitFields(payload)}, true
}

// splitFields splits a robot payload on commas outside double quotes.
// Quotes are removed; a doubled quote inside a quoted value is a literal quote.
func splitFields(payload string) []string {
	var (
		fields  []string
		current strings.Builder
		quoted  bool
	)
	for i := 0; i < len(payload); i++ {
		ch := payload[i]
		switch {
		case ch == '"' && quoted && i+1 < len(payload) && payload[i+1] == '"':
			current.WriteByte('"')
			i++
		case ch == '"':
			quoted = !quoted
		case ch == ',' && !quoted:
			fields = append(fields, current.String())
			current.Reset()
		default:
			current.WriteByte(ch)
		}
	}
	fields = append(fields, current.String())
	return fields
}

// ints parses the first n fields as integers.
func (r record) ints(n int) ([]int, bool) {
	if len(r.fields) < n {
		return nil, false
	}
	out := make([]int, n)
	for i := 0; i < n; i++ {
		v, err := strconv.Atoi(strings.TrimSpace(r.fields[i]))
		if err != nil || v < 0 {
			return nil, false
		}
		out[i] = v
	}
	return out, true
}

// value returns the last field, which carries the attribute value.
func (r record) value() string {
	if len(r.fields) == 0 {
		return ""
	}
	return strings.TrimSpace(r.fields[len(r.fields)-1])
}

func parseInt(value string) int {
	v, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || v < 0 {
		return 0
	}
	return v
}

func parseInt64(value string) int64 {
	v, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}
