// Package parquet exports recorded scan history to Parquet files for
// offline analysis, using struct-tag schema inference the same way the
// reference module's own analysis-export package does.
package parquet

import (
	"fmt"
	"os"

	"github.com/parquet-go/parquet-go"
	"github.com/pkgguard/pkgguard/schema"
)

// ScanRecord is one exported scan-history row.
type ScanRecord struct {
	Package     string `parquet:"package,snappy"`
	Score       int32  `parquet:"score,snappy"`
	Tier        string `parquet:"tier,snappy"`
	SignalCount int32  `parquet:"signal_count,snappy"`
	DurationMs  int64  `parquet:"duration_ms,snappy"`
	Error       *string `parquet:"error,optional,snappy"`
}

// FromScanResults converts ScanResults into the exported record shape.
func FromScanResults(results []schema.ScanResult) []ScanRecord {
	records := make([]ScanRecord, len(results))
	for i, r := range results {
		rec := ScanRecord{
			Package:     r.Package,
			Score:       int32(r.Score),
			Tier:        string(r.Tier),
			SignalCount: int32(len(r.Signals)),
			DurationMs:  r.Duration.Milliseconds(),
		}
		if r.Error != "" {
			errCopy := r.Error
			rec.Error = &errCopy
		}
		records[i] = rec
	}
	return records
}

// WriteScanRecords writes records to a Parquet file at outputPath.
func WriteScanRecords(records []ScanRecord, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("creating parquet output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[ScanRecord](file)
	defer func() { _ = writer.Close() }()

	if _, err := writer.Write(records); err != nil {
		return fmt.Errorf("writing parquet records: %w", err)
	}
	return nil
}
