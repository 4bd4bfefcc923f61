package statement

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeDocument serves page text from memory
type fakeDocument struct {
	pages  []string
	errs   map[int]error
	closed bool
}

func (d *fakeDocument) NumPage() int {
	return len(d.pages)
}

func (d *fakeDocument) PageText(i int) (string, error) {
	if err := d.errs[i]; err != nil {
		return "", err
	}
	return d.pages[i-1], nil
}

func (d *fakeDocument) Close() error {
	d.closed = true
	return nil
}

func openerFor(doc *fakeDocument) Opener {
	return func(string) (Document, error) {
		return doc, nil
	}
}

const sampleStatement = `ACME SDN BHD
Statement of Profit or Loss for the year ended 31 December 2024

Total Revenue        1,000.00
Total Cost of sales  (600.00)
Gross Profit         400.00
Total Expenses       (250.00)
Profit Before Tax    150.00
Income Tax Expenses  36.00
Net Profit/(Loss)    114.00
Profit For the Year  114.00
`

// writePDF writes a minimal PDF with one text line per page
func writePDF(t *testing.T, lines ...string) string {
	t.Helper()

	var objects []string
	pageRefs := make([]string, len(lines))
	// 1: catalog, 2: pages, 3: font, then page/content pairs
	for i, line := range lines {
		pageObj := 4 + i*2
		pageRefs[i] = fmt.Sprintf("%d 0 R", pageObj)
		content := fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", line)
		objects = append(objects,
			fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>", pageObj+1),
			fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content),
		)
	}
	objects = append([]string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(pageRefs, " "), len(lines)),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>",
	}, objects...)

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)

	path := filepath.Join(t.TempDir(), "statement.pdf")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))
	return path
}
