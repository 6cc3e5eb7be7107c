package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/mirotrak/mirotrak/internal/model"
)

// WriteCSV writes a header row of column names followed by every row.
func WriteCSV(w io.Writer, dump *model.TableDump) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(dump.Columns); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	record := make([]string, len(dump.Columns))
	for _, row := range dump.Rows {
		for i := range record {
			record[i] = ""
			if i < len(row) {
				record[i] = FormatValue(row[i])
			}
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}
