package writer

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/xitongsys/parquet-go/parquet"
	parquetwriter "github.com/xitongsys/parquet-go/writer"

	"github.com/clima-cdmx/archivador/internal/domain/entity"
	"github.com/clima-cdmx/archivador/internal/domain/model"
	"github.com/clima-cdmx/archivador/internal/pipeline"
	"github.com/clima-cdmx/archivador/internal/storage"
	"github.com/clima-cdmx/archivador/pkg/util/exception"
	"github.com/clima-cdmx/archivador/pkg/util/logger"
)

const parquetWriterModule = "observation_parquet_writer"

// ObservationParquetWriter exports observations as Parquet files through a
// storage connection, partitioned Hive-style by day (dt=YYYY-MM-DD). Items
// are buffered per partition during the run; Close serializes and uploads
// each partition. A run with no data uploads nothing.
type ObservationParquetWriter struct {
	conn          storage.Connection
	outputBaseDir string
	compression   string
	runID         string

	collectedAt time.Time
	buffered    map[string][]model.ObservacionHoraria
	total       int
}

// NewObservationParquetWriter creates a Parquet writer uploading through
// conn. An empty compression defaults to snappy.
func NewObservationParquetWriter(conn storage.Connection, outputBaseDir, compression, runID string) *ObservationParquetWriter {
	if compression == "" {
		compression = "snappy"
	}
	return &ObservationParquetWriter{
		conn:          conn,
		outputBaseDir: outputBaseDir,
		compression:   compression,
		runID:         runID,
	}
}

// Open resets the partition buffers.
func (w *ObservationParquetWriter) Open(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	w.buffered = make(map[string][]model.ObservacionHoraria)
	w.total = 0
	w.collectedAt = time.Now()
	return nil
}

// Write buffers one chunk of observations by day partition.
func (w *ObservationParquetWriter) Write(ctx context.Context, items []entity.Observation) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	for i := range items {
		partition := fmt.Sprintf("dt=%s", items[i].Timestamp.Format("2006-01-02"))
		w.buffered[partition] = append(w.buffered[partition], model.FromObservation(&items[i], w.collectedAt))
		w.total++
	}
	return nil
}

// Close serializes each buffered partition to Parquet and uploads it.
// A partition failure does not stop the remaining partitions; all failures
// are aggregated into the returned error.
func (w *ObservationParquetWriter) Close(ctx context.Context) error {
	if w.total == 0 {
		logger.Infof("ObservationParquetWriter: no records buffered, skipping Parquet export.")
		return nil
	}

	codec, err := compressionCodec(w.compression)
	if err != nil {
		return exception.NewUnexpectedError(parquetWriterModule, "invalid compression type", err)
	}

	var errs *multierror.Error
	for partition, items := range w.buffered {
		buf := new(bytes.Buffer)
		if err := w.writePartition(buf, items, codec); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("partition '%s': %w", partition, err))
			continue
		}

		objectName := filepath.Join(w.outputBaseDir, partition, fmt.Sprintf("observaciones_%s.parquet", w.runID))
		if err := w.conn.Upload(ctx, objectName, buf, "application/octet-stream"); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("failed to upload partition '%s': %w", partition, err))
			continue
		}
		logger.Debugf("ObservationParquetWriter: uploaded %d records to %s.", len(items), objectName)
	}

	if err := errs.ErrorOrNil(); err != nil {
		return exception.NewUnexpectedError(parquetWriterModule, "failed to export Parquet partitions", err)
	}

	logger.Infof("Exported %d observations as Parquet under %s.", w.total, w.outputBaseDir)
	w.buffered = nil
	w.total = 0
	return nil
}

// Abort discards the partition buffers. Nothing reached storage.
func (w *ObservationParquetWriter) Abort(ctx context.Context) error {
	w.buffered = nil
	w.total = 0
	return nil
}

// writePartition serializes one partition into buf. The parquet library can
// panic on malformed schemas, so WriteStop runs under a recover.
func (w *ObservationParquetWriter) writePartition(buf *bytes.Buffer, items []model.ObservacionHoraria, codec parquet.CompressionCodec) (err error) {
	pw, err := parquetwriter.NewParquetWriterFromWriter(buf, new(model.ObservacionHoraria), int64(len(items)))
	if err != nil {
		return fmt.Errorf("failed to create Parquet writer: %w", err)
	}
	pw.CompressionType = codec

	for i := range items {
		if werr := pw.Write(items[i]); werr != nil {
			return fmt.Errorf("failed to write Parquet record: %w", werr)
		}
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("parquet writer panicked during WriteStop: %v", r)
		}
	}()
	if serr := pw.WriteStop(); serr != nil {
		return fmt.Errorf("failed to finalize Parquet file: %w", serr)
	}
	return nil
}

func compressionCodec(compression string) (parquet.CompressionCodec, error) {
	switch strings.ToUpper(compression) {
	case "SNAPPY":
		return parquet.CompressionCodec_SNAPPY, nil
	case "GZIP":
		return parquet.CompressionCodec_GZIP, nil
	case "NONE", "":
		return parquet.CompressionCodec_UNCOMPRESSED, nil
	default:
		return 0, fmt.Errorf("unsupported compression type: %s", compression)
	}
}

var _ pipeline.ItemWriter[entity.Observation] = (*ObservationParquetWriter)(nil)
