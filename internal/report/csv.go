package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"scanscore/internal/domain"
)

// UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// columns defines the CSV header row (12 columns).
var columns = []string{
	"Evaluation ID",
	"Document ID",
	"Document Type",
	"Status",
	"SER",
	"Refined SER",
	"Perplexity",
	"CER",
	"Strict Field Accuracy",
	"Fuzzy Field Accuracy",
	"Scored Against Reference",
	"Created At",
}

// Writer wraps csv.Writer for exporting evaluation runs as CSV.
type Writer struct {
	csv *csv.Writer
}

// NewWriter creates a Writer that writes CSV to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// WriteHeader writes the 12-column header row.
func (w *Writer) WriteHeader() error {
	return w.csv.Write(columns)
}

// WriteEvaluations converts a batch of evaluation runs to CSV rows and writes them.
func (w *Writer) WriteEvaluations(evals []domain.Evaluation) error {
	for i := range evals {
		row := evaluationToRow(&evals[i])
		if err := w.csv.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *Writer) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *Writer) Error() error {
	return w.csv.Error()
}

// evaluationToRow converts a single evaluation run to a 12-element string slice.
func evaluationToRow(e *domain.Evaluation) []string {
	row := make([]string, len(columns))
	row[0] = e.ID.String()
	row[1] = e.DocumentID
	row[2] = e.DocumentType
	row[3] = string(e.Status)
	row[4] = formatRate(e.SER)
	row[5] = formatRate(e.RefinedSER)
	row[6] = formatPerplexity(e.Perplexity)
	row[7] = formatRate(e.CER)
	row[8] = formatRate(e.StrictFieldAccuracy)
	row[9] = formatRate(e.FuzzyFieldAccuracy)
	row[10] = formatBool(e.ScoredAgainstReference)
	row[11] = e.CreatedAt.Format(time.RFC3339)
	return row
}

func formatRate(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}

// formatPerplexity keeps the unmeasurable sentinel readable in spreadsheets.
func formatPerplexity(v float64) string {
	if v >= domain.PerplexitySentinel {
		return "unmeasurable"
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func formatBool(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename cleans a report name for use in Content-Disposition.
// Replaces non-alphanumeric chars (except - _) with _, collapses consecutive
// underscores, and truncates to 100 chars.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

// BuildFilename returns a sanitized filename for the Content-Disposition header.
// Format: {sanitized_name}_{YYYY-MM-DD}.{ext}
func BuildFilename(name, ext string) string {
	sanitized := SanitizeFilename(name)
	date := time.Now().Format("2006-01-02")
	return fmt.Sprintf("%s_%s.%s", sanitized, date, ext)
}
