package xges

import (
	"strconv"
	"strings"
)

// structure renders a GstStructure in its serialized text form, e.g.
// "properties, name=(string)uriclip0, mute=(boolean)false;".
type structure struct {
	name   string
	fields []field
}

type field struct {
	key   string
	typ   string
	value string
}

func newStructure(name string) *structure {
	return &structure{name: name}
}

func (s *structure) str(key, value string) *structure {
	s.fields = append(s.fields, field{key: key, typ: "string", value: quoteString(value)})
	return s
}

// nested stores a serialized structure or caps as an escaped string field.
func (s *structure) nested(key, value string) *structure {
	s.fields = append(s.fields, field{key: key, typ: "string", value: escapeNested(value)})
	return s
}

func (s *structure) integer(key string, value int) *structure {
	s.fields = append(s.fields, field{key: key, typ: "int", value: strconv.Itoa(value)})
	return s
}

func (s *structure) unsigned(key string, value uint64) *structure {
	s.fields = append(s.fields, field{key: key, typ: "guint64", value: strconv.FormatUint(value, 10)})
	return s
}

func (s *structure) double(key string, value float64) *structure {
	s.fields = append(s.fields, field{key: key, typ: "double", value: strconv.FormatFloat(value, 'g', -1, 64)})
	return s
}

func (s *structure) boolean(key string, value bool) *structure {
	s.fields = append(s.fields, field{key: key, typ: "boolean", value: strconv.FormatBool(value)})
	return s
}

func (s *structure) fraction(key string, num, den int) *structure {
	s.fields = append(s.fields, field{key: key, typ: "fraction", value: strconv.Itoa(num) + "/" + strconv.Itoa(den)})
	return s
}

// caps renders the structure as caps, which omit the trailing semicolon.
func (s *structure) caps() string {
	return strings.TrimSuffix(s.String(), ";")
}

func (s *structure) String() string {
	var b strings.Builder
	b.WriteString(s.name)
	for _, f := range s.fields {
		b.WriteString(", ")
		b.WriteString(f.key)
		b.WriteString("=(")
		b.WriteString(f.typ)
		b.WriteString(")")
		b.WriteString(f.value)
	}
	b.WriteByte(';')
	return b.String()
}

// quoteString applies GStreamer string serialization: simple tokens are
// written bare, anything else is quoted with reserved bytes backslash-escaped.
func quoteString(value string) string {
	if value != "" && isSimple(value) {
		return value
	}
	var b strings.Builder
	b.Grow(len(value) + 2)
	b.WriteByte('"')
	for i := 0; i < len(value); i++ {
		c := value[i]
		if c == '"' || c == '\\' {
			b.WriteByte('\\')
		}
		b.WriteByte(c)
	}
	b.WriteByte('"')
	return b.String()
}

// escapeNested escapes a serialized caps string so it can be embedded as a
// string field of another structure.
func escapeNested(value string) string {
	var b strings.Builder
	b.Grow(len(value) * 2)
	b.WriteByte('"')
	for i := 0; i < len(value); i++ {
		c := value[i]
		if !isSimpleByte(c) {
			b.WriteByte('\\')
		}
		b.WriteByte(c)
	}
	b.WriteByte('"')
	return b.String()
}

func isSimple(value string) bool {
	for i := 0; i < len(value); i++ {
		if !isSimpleByte(value[i]) {
			return false
		}
	}
	return true
}

func isSimpleByte(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	case c == '_' || c == '-' || c == '+' || c == '/' || c == ':' || c == '.':
		return true
	case c >= 0x80:
		return true
	}
	return false
}
