package filetype

import (
	"fmt"
	"strings"
)

// DocumentType is the closed set of document kinds the ingestor accepts.
type DocumentType int

const (
	Unknown DocumentType = iota
	PDF
	Text
	Word
)

var typeNames = map[DocumentType]string{
	Unknown: "UNKNOWN",
	PDF:     "PDF",
	Text:    "TEXT",
	Word:    "WORD",
}

func (t DocumentType) String() string {
	if n, ok := typeNames[t]; ok {
		return n
	}
	return fmt.Sprintf("DocumentType(%d)", int(t))
}

// Recognized reports whether t is one of the accepted document kinds.
func (t DocumentType) Recognized() bool {
	return t == PDF || t == Text || t == Word
}

// ParseDocumentType maps a name such as "pdf" or "TEXT" back to its type.
func ParseDocumentType(s string) (DocumentType, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	for t, n := range typeNames {
		if n == name {
			return t, nil
		}
	}
	return Unknown, fmt.Errorf("unknown document type: %q", s)
}

func (t DocumentType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *DocumentType) UnmarshalText(b []byte) error {
	v, err := ParseDocumentType(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}
