package pipeline

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"
)

func writeFeatureSet(path, format string, set *FeatureSet) error {
	switch format {
	case "csv":
		return writeFeatureCSV(path, set)
	case "parquet":
		return writeFeatureParquet(path, set)
	}
	return fmt.Errorf("unsupported format %q", format)
}

func writeFeatureCSV(path string, set *FeatureSet) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := append([]string{"subject", "set_id", "rep_id", "rpe"}, set.Columns...)
	if err := w.Write(header); err != nil {
		return err
	}
	rec := make([]string, len(header))
	for _, row := range set.Rows {
		rec[0] = row.Subject
		rec[1] = strconv.Itoa(row.SetID)
		rec[2] = strconv.Itoa(row.RepID)
		rec[3] = strconv.FormatFloat(row.RPE, 'g', -1, 64)
		for i, v := range row.Values {
			rec[4+i] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// writeFeatureParquet uses the CSV-schema writer because the feature columns
// are only known at run time; the struct-tag writer needs them at compile
// time.
func writeFeatureParquet(path string, set *FeatureSet) error {
	md := make([]string, 0, len(set.Columns)+4)
	md = append(md,
		"name=subject, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY",
		"name=set_id, type=INT64",
		"name=rep_id, type=INT64",
		"name=rpe, type=DOUBLE",
	)
	for _, col := range set.Columns {
		md = append(md, fmt.Sprintf("name=%s, type=DOUBLE", col))
	}

	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	pw, err := writer.NewCSVWriter(md, fw, 4)
	if err != nil {
		_ = fw.Close()
		return fmt.Errorf("create parquet writer: %w", err)
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	rec := make([]interface{}, len(md))
	for _, row := range set.Rows {
		rec[0] = row.Subject
		rec[1] = int64(row.SetID)
		rec[2] = int64(row.RepID)
		rec[3] = row.RPE
		for i, v := range row.Values {
			rec[4+i] = v
		}
		if err := pw.Write(rec); err != nil {
			_ = pw.WriteStop()
			_ = fw.Close()
			return fmt.Errorf("write parquet row: %w", err)
		}
	}
	if err := pw.WriteStop(); err != nil {
		_ = fw.Close()
		return fmt.Errorf("finalize parquet: %w", err)
	}
	return fw.Close()
}
