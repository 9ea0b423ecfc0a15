package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/pevans/quotescrape/quote"
)

// Header is the first row of every export.
var Header = []string{"text", "author", "tags"}

// WriteError reports a failure to write the export file.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("failed to write %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// Encode writes the header and one row per quote to w. Tags are joined
// into a single field. Rows end with \r\n, and a field is quoted when it
// holds a comma, a double quote, a line break or leading whitespace.
func Encode(w io.Writer, quotes []quote.Quote) error {
	writer := csv.NewWriter(w)
	writer.UseCRLF = true

	if err := writer.Write(Header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, q := range quotes {
		if err := writer.Write([]string{q.Text, q.Author, q.JoinedTags()}); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush: %w", err)
	}

	return nil
}

// WriteFile creates or truncates path and writes quotes to it. The file is
// closed on every path, and any failure is returned as *WriteError.
func WriteFile(path string, quotes []quote.Quote) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return &WriteError{Path: path, Err: err}
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = &WriteError{Path: path, Err: closeErr}
		}
	}()

	if err := Encode(file, quotes); err != nil {
		return &WriteError{Path: path, Err: err}
	}

	return nil
}
