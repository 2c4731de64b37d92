// Package writer contains the output sinks of the archive pipeline.
package writer

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/clima-cdmx/archivador/internal/domain/entity"
	"github.com/clima-cdmx/archivador/internal/pipeline"
	"github.com/clima-cdmx/archivador/pkg/util/exception"
	"github.com/clima-cdmx/archivador/pkg/util/logger"
)

const csvWriterModule = "observation_csv_writer"

// summaryTail is how many trailing rows the run summary shows.
const summaryTail = 3

// ObservationCSVWriter writes observations to a UTF-8 CSV file. The rows are
// streamed into a temporary file in the destination directory; Close renames
// it over the final path, so the previous file survives a failed run and a
// successful run replaces it atomically. An empty run still commits a
// header-only file.
type ObservationCSVWriter struct {
	path string

	tmpFile *os.File
	tmpPath string
	csvw    *csv.Writer

	rowCount int
	tail     [][]string
}

// NewObservationCSVWriter creates a CSV writer targeting path.
func NewObservationCSVWriter(path string) *ObservationCSVWriter {
	return &ObservationCSVWriter{path: path}
}

// Open creates the temporary file next to the destination and writes the
// header row.
func (w *ObservationCSVWriter) Open(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	dir := filepath.Dir(w.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return exception.NewUnexpectedError(csvWriterModule, fmt.Sprintf("failed to create directory '%s'", dir), err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(w.path)+".tmp-*")
	if err != nil {
		return exception.NewUnexpectedError(csvWriterModule, "failed to create temporary CSV file", err)
	}
	w.tmpFile = tmp
	w.tmpPath = tmp.Name()
	w.csvw = csv.NewWriter(tmp)
	w.rowCount = 0
	w.tail = nil

	if err := w.csvw.Write(entity.CSVColumns); err != nil {
		w.cleanupTemp()
		return exception.NewUnexpectedError(csvWriterModule, "failed to write CSV header", err)
	}
	return nil
}

// Write appends one chunk of observations.
func (w *ObservationCSVWriter) Write(ctx context.Context, items []entity.Observation) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	if w.csvw == nil {
		return exception.NewUnexpectedError(csvWriterModule, "writer is not open", nil)
	}

	for i := range items {
		record := items[i].CSVRecord()
		if err := w.csvw.Write(record); err != nil {
			return exception.NewUnexpectedError(csvWriterModule, "failed to write CSV record", err)
		}
		w.rowCount++
		w.tail = append(w.tail, record)
		if len(w.tail) > summaryTail {
			w.tail = w.tail[1:]
		}
	}
	return nil
}

// Close flushes the buffered rows, renames the temporary file over the final
// path and prints the run summary.
func (w *ObservationCSVWriter) Close(ctx context.Context) error {
	if w.tmpFile == nil {
		return nil
	}

	w.csvw.Flush()
	if err := w.csvw.Error(); err != nil {
		w.cleanupTemp()
		return exception.NewUnexpectedError(csvWriterModule, "failed to flush CSV data", err)
	}
	if err := w.tmpFile.Close(); err != nil {
		_ = os.Remove(w.tmpPath)
		w.reset()
		return exception.NewUnexpectedError(csvWriterModule, "failed to close temporary CSV file", err)
	}
	if err := os.Rename(w.tmpPath, w.path); err != nil {
		_ = os.Remove(w.tmpPath)
		w.reset()
		return exception.NewUnexpectedError(csvWriterModule, fmt.Sprintf("failed to rename temporary file to '%s'", w.path), err)
	}

	w.printSummary()
	w.reset()
	return nil
}

// Abort removes the temporary file, leaving any previous output untouched.
func (w *ObservationCSVWriter) Abort(ctx context.Context) error {
	w.cleanupTemp()
	return nil
}

// RowCount reports the number of data rows written so far (header excluded).
func (w *ObservationCSVWriter) RowCount() int {
	return w.rowCount
}

func (w *ObservationCSVWriter) printSummary() {
	absPath, err := filepath.Abs(w.path)
	if err != nil {
		absPath = w.path
	}
	logger.Infof("Wrote %d rows to %s", w.rowCount, absPath)
	if len(w.tail) == 0 {
		return
	}
	logger.Infof("Last %d rows:", len(w.tail))
	for _, record := range w.tail {
		logger.Infof("  %s", strings.Join(record, ","))
	}
}

func (w *ObservationCSVWriter) cleanupTemp() {
	if w.tmpFile != nil {
		_ = w.tmpFile.Close()
		_ = os.Remove(w.tmpPath)
	}
	w.reset()
}

func (w *ObservationCSVWriter) reset() {
	w.tmpFile = nil
	w.tmpPath = ""
	w.csvw = nil
}

var _ pipeline.ItemWriter[entity.Observation] = (*ObservationCSVWriter)(nil)
