package lint

import "strings"

// Diagnostic is one rule violation.
type Diagnostic struct {
	Code     string   // rule id
	Severity Severity
	Message  string
	Path     []string // location inside the document, e.g. ["paths", "/pets", "get"]
}

// Location joins Path into a JSON pointer fragment.
func (d Diagnostic) Location() string {
	return pointer(d.Path)
}

var pointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")

func pointer(path []string) string {
	var b strings.Builder
	b.WriteString("#")
	for _, seg := range path {
		b.WriteByte('/')
		b.WriteString(pointerEscaper.Replace(seg))
	}
	return b.String()
}
