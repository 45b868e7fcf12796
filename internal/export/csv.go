// Package export writes normalized job rows to files for bulk loading.
package export

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/jobbank-etl/internal/model"
)

// WriteCSV writes a header row followed by rows in jobbank column order.
// Every field is enclosed in double quotes and records end with "\n", the
// layout a bulk file load with one skipped header line expects.
func WriteCSV(w io.Writer, rows []model.NormalizedJobRecord) error {
	bw := bufio.NewWriter(w)

	if err := writeRecord(bw, model.JobbankColumns); err != nil {
		return eris.Wrap(err, "export: write csv header")
	}
	for i, r := range rows {
		if err := writeRecord(bw, r.Strings()); err != nil {
			return eris.Wrapf(err, "export: write csv row %d", i)
		}
	}
	return eris.Wrap(bw.Flush(), "export: flush csv")
}

// WriteCSVFile creates path and writes rows to it.
func WriteCSVFile(path string, rows []model.NormalizedJobRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrap(err, "export: create csv file")
	}
	if err := WriteCSV(f, rows); err != nil {
		f.Close() //nolint:errcheck
		return err
	}
	return eris.Wrap(f.Close(), "export: close csv file")
}

func writeRecord(w *bufio.Writer, fields []string) error {
	for i, f := range fields {
		if i > 0 {
			if err := w.WriteByte(','); err != nil {
				return err
			}
		}
		if _, err := w.WriteString(`"` + strings.ReplaceAll(f, `"`, `""`) + `"`); err != nil {
			return err
		}
	}
	return w.WriteByte('\n')
}
