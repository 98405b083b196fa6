package mesh

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/gocarina/gocsv"
)

// Observer receives best-effort diagnostics from the pipeline. The
// reported sums come from a collective reduction, so installing an
// observer on some ranks but not others breaks the collective-call
// contract; install the same observer configuration on every rank or
// on none. Observers never influence control flow or results.
type Observer interface {
	// FieldSum reports the global sum of the real field at a named
	// pipeline stage.
	FieldSum(stage string, sum float64)
}

// LogObserver emits diagnostics as structured log events.
type LogObserver struct {
	Logger *slog.Logger // nil means slog.Default
	Rank   int
}

func (o *LogObserver) FieldSum(stage string, sum float64) {
	l := o.Logger
	if l == nil {
		l = slog.Default()
	}
	l.Info("field sum", "stage", stage, "rank", o.Rank, "sum", sum)
}

// FieldSumRecord is one diagnostics row of a CSVObserver.
type FieldSumRecord struct {
	Stage string  `csv:"stage"`
	Rank  int     `csv:"rank"`
	Sum   float64 `csv:"sum"`
}

// CSVObserver accumulates diagnostics rows in memory and writes them
// out as CSV on Flush.
type CSVObserver struct {
	Rank int
	rows []*FieldSumRecord
}

func (o *CSVObserver) FieldSum(stage string, sum float64) {
	o.rows = append(o.rows, &FieldSumRecord{Stage: stage, Rank: o.Rank, Sum: sum})
}

// Rows returns the accumulated records.
func (o *CSVObserver) Rows() []*FieldSumRecord { return o.rows }

// Flush writes the accumulated rows as CSV.
func (o *CSVObserver) Flush(w io.Writer) error {
	if err := gocsv.Marshal(&o.rows, w); err != nil {
		return fmt.Errorf("writing diagnostics CSV: %w", err)
	}
	return nil
}
