package archive

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/qrcampaign/fulfillment/internal/domain/fulfillment"
)

// WriteSummary writes the reconciliation CSV: the header row followed by
// one record per row, in order.
func WriteSummary(w io.Writer, rows []fulfillment.SummaryRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(fulfillment.SummaryHeader); err != nil {
		return fmt.Errorf("archive: write summary header: %w", err)
	}
	for i, row := range rows {
		if err := cw.Write(row.Record()); err != nil {
			return fmt.Errorf("archive: write summary row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("archive: flush summary: %w", err)
	}
	return nil
}

// AddSummary writes the summary CSV as the SummaryEntry of a bundle
func (b *Bundler) AddSummary(rows []fulfillment.SummaryRow, modified time.Time) error {
	w, err := b.Create(SummaryEntry, modified)
	if err != nil {
		return err
	}
	return WriteSummary(w, rows)
}
