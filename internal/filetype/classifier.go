// Package filetype sniffs file content to decide which document type, if
// any, a file holds. File names and extensions are never consulted.
package filetype

import (
	"errors"
	"io"
	"os"

	"github.com/gabriel-vasile/mimetype"
)

// sniffLimit is how much of a file is inspected. It matches mimetype's own
// default read limit.
const sniffLimit = 3072

type signature struct {
	docType DocumentType
	match   func(m *mimetype.MIME, head []byte) bool
}

// signatures is checked in order; the first match wins.
var signatures = []signature{
	{PDF, func(m *mimetype.MIME, _ []byte) bool {
		return m.Is("application/pdf")
	}},
	{Text, func(m *mimetype.MIME, head []byte) bool {
		return m.Is("text/plain") && isASCII(head)
	}},
	{Word, func(m *mimetype.MIME, _ []byte) bool {
		return m.Is("application/msword") ||
			m.Is("application/vnd.openxmlformats-officedocument.wordprocessingml.document")
	}},
}

// Classifier maps content to a DocumentType. The zero value is ready to use.
type Classifier struct{}

// NewClassifier returns a content classifier.
func NewClassifier() *Classifier {
	return &Classifier{}
}

// Classify reads the head of r and returns its document type. Text must be
// ASCII throughout, so a Text candidate is read to the end. Read errors and
// empty content yield Unknown.
func (c *Classifier) Classify(r io.Reader) DocumentType {
	head, err := readHead(r)
	if err != nil || len(head) == 0 {
		return Unknown
	}
	m := mimetype.Detect(head)
	for _, s := range signatures {
		if !s.match(m, head) {
			continue
		}
		if s.docType == Text && len(head) == sniffLimit && !restIsASCII(r) {
			return Unknown
		}
		return s.docType
	}
	return Unknown
}

// ClassifyFile opens path and classifies its content. A file that cannot
// be opened is Unknown.
func (c *Classifier) ClassifyFile(path string) DocumentType {
	f, err := os.Open(path)
	if err != nil {
		return Unknown
	}
	defer f.Close()
	return c.Classify(f)
}

func readHead(r io.Reader) ([]byte, error) {
	buf := make([]byte, sniffLimit)
	n, err := io.ReadFull(r, buf)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, err
	}
	return buf[:n], nil
}

// restIsASCII drains r, reporting false on the first non-ASCII byte or a
// read error.
func restIsASCII(r io.Reader) bool {
	buf := make([]byte, 32*1024)
	for {
		n, err := r.Read(buf)
		if !isASCII(buf[:n]) {
			return false
		}
		if errors.Is(err, io.EOF) {
			return true
		}
		if err != nil {
			return false
		}
	}
}

func isASCII(b []byte) bool {
	for _, c := range b {
		if c > 0x7f {
			return false
		}
	}
	return true
}
