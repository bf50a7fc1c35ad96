package report

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"scanscore/internal/domain"
)

const sheetName = "Evaluations"

// WriteXLSX renders evaluation runs into an XLSX workbook and returns its bytes.
// The column layout matches the CSV report; perplexity keeps the same
// "unmeasurable" rendering so the two exports agree. A final Mean row averages
// the six metric columns over completed runs; failed runs are excluded, and
// unmeasurable perplexity values are excluded from the perplexity mean.
func WriteXLSX(evals []domain.Evaluation) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("creating sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("removing default sheet: %w", err)
	}

	for i, h := range columns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, fmt.Errorf("header cell %d: %w", i, err)
		}
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return nil, fmt.Errorf("writing header %q: %w", h, err)
		}
	}

	for rowIdx := range evals {
		e := &evals[rowIdx]
		values := []any{
			e.ID.String(),
			e.DocumentID,
			e.DocumentType,
			string(e.Status),
			e.SER,
			e.RefinedSER,
			xlsxPerplexity(e.Perplexity),
			e.CER,
			e.StrictFieldAccuracy,
			e.FuzzyFieldAccuracy,
			formatBool(e.ScoredAgainstReference),
			e.CreatedAt.Format(time.RFC3339),
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, rowIdx+2)
			if err != nil {
				return nil, fmt.Errorf("cell (%d,%d): %w", col, rowIdx, err)
			}
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return nil, fmt.Errorf("writing cell (%d,%d): %w", col, rowIdx, err)
			}
		}
	}

	if summary, ok := summaryRow(evals); ok {
		for col, v := range summary {
			cell, err := excelize.CoordinatesToCellName(col+1, len(evals)+2)
			if err != nil {
				return nil, fmt.Errorf("summary cell %d: %w", col, err)
			}
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return nil, fmt.Errorf("writing summary cell %d: %w", col, err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("serializing workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// summaryRow computes per-column means over completed runs. Reports false
// when no run contributes.
func summaryRow(evals []domain.Evaluation) ([]any, bool) {
	var n, pplN int
	var ser, refined, pplSum, cer, strict, fuzzy float64
	for i := range evals {
		e := &evals[i]
		if e.Status != domain.EvaluationStatusCompleted {
			continue
		}
		n++
		ser += e.SER
		refined += e.RefinedSER
		cer += e.CER
		strict += e.StrictFieldAccuracy
		fuzzy += e.FuzzyFieldAccuracy
		if e.Perplexity < domain.PerplexitySentinel {
			pplSum += e.Perplexity
			pplN++
		}
	}
	if n == 0 {
		return nil, false
	}

	ppl := any("unmeasurable")
	if pplN > 0 {
		ppl = pplSum / float64(pplN)
	}
	c := float64(n)
	return []any{
		"Mean", "", "", "",
		ser / c, refined / c, ppl, cer / c, strict / c, fuzzy / c,
		"", "",
	}, true
}

func xlsxPerplexity(v float64) any {
	if v >= domain.PerplexitySentinel {
		return "unmeasurable"
	}
	return v
}
