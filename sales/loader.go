// Package sales imports public sales CSV exports.
package sales

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
)

// Sink receives every data row of an import.
type Sink interface {
	SaveSale(ctx context.Context, state string, rowNumber int, row map[string]string) error
}

// Discard counts rows without keeping them.
type Discard struct{}

func (Discard) SaveSale(context.Context, string, int, map[string]string) error { return nil }

// Load reads a CSV stream whose first record is the header and hands each
// data row, in file order, to sink. Blank lines are skipped. It returns the
// number of data rows read before any error.
func Load(ctx context.Context, r io.Reader, state string, sink Sink) (int, error) {
	if sink == nil {
		sink = Discard{}
	}

	reader := csv.NewReader(r)
	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	count := 0
	for {
		if err := ctx.Err(); err != nil {
			return count, err
		}

		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return count, nil
		}
		if err != nil {
			return count, err
		}

		row := make(map[string]string, len(header))
		for i, column := range header {
			row[column] = record[i]
		}
		count++
		if err := sink.SaveSale(ctx, state, count, row); err != nil {
			return count, fmt.Errorf("row %d: %w", count, err)
		}
	}
}

// Summary is the completion line printed after an import.
func Summary(rows int, state string) string {
	return fmt.Sprintf("Imported %d rows for %s", rows, state)
}
