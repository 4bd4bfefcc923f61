package statement

import (
	"errors"
	"fmt"
	"os"

	"github.com/ledongthuc/pdf"
)

var ErrEmptyPage = errors.New("page has no content")

// PageSource yields the text of a paginated document
type PageSource interface {
	NumPage() int
	// PageText returns the text of page i, counting from 1
	PageText(i int) (string, error)
}

// Document is an opened PageSource that must be closed
type Document interface {
	PageSource
	Close() error
}

// Opener opens the document at path
type Opener func(path string) (Document, error)

// PDF is a PDF file opened for text extraction
type PDF struct {
	file   *os.File
	reader *pdf.Reader
}

// OpenPDF opens a PDF file. The file is closed again if it cannot be parsed.
func OpenPDF(path string) (doc Document, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}

	// The reader panics on some malformed cross-reference tables
	defer func() {
		if r := recover(); r != nil {
			doc, err = nil, fmt.Errorf("failed to parse PDF: %v", r)
		}
		if err != nil {
			f.Close()
		}
	}()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat PDF: %w", err)
	}

	r, err := pdf.NewReader(f, info.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	return &PDF{file: f, reader: r}, nil
}

// NumPage returns the page count
func (d *PDF) NumPage() int {
	return d.reader.NumPage()
}

// PageText returns the plain text of page i
func (d *PDF) PageText(i int) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("failed to read page %d: %v", i, r)
		}
	}()

	p := d.reader.Page(i)
	if p.V.IsNull() {
		return "", fmt.Errorf("%w: page %d", ErrEmptyPage, i)
	}
	text, err = p.GetPlainText(nil)
	if err != nil {
		return "", fmt.Errorf("failed to read page %d: %w", i, err)
	}
	return text, nil
}

// Close releases the underlying file
func (d *PDF) Close() error {
	return d.file.Close()
}
