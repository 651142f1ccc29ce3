package weather

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"
)

// ReadCSV decodes a frame from delimited text with a header row.
// An input with no header at all yields an empty frame.
func ReadCSV(r io.Reader) (*Frame, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return &Frame{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	frame := &Frame{Header: header}
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row %d: %w", frame.Len()+1, err)
		}
		frame.Rows = append(frame.Rows, record)
	}
	return frame, nil
}

// WriteCSV encodes the frame as delimited text with a header row.
func WriteCSV(w io.Writer, f *Frame) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(f.Header); err != nil {
		return err
	}
	if err := cw.WriteAll(f.Rows); err != nil {
		return err
	}
	return cw.Error()
}

// ReadCSVFile loads a frame from path.
func ReadCSVFile(path string) (*Frame, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return ReadCSV(file)
}

// WriteCSVFile writes the frame to path, replacing any existing file.
func WriteCSVFile(path string, f *Frame) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteCSV(file, f); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// WriteParquet encodes readings as a snappy-compressed parquet file.
func WriteParquet(w io.Writer, readings []Reading) (err error) {
	buf := new(bytes.Buffer)
	pw, err := writer.NewParquetWriterFromWriter(buf, new(Reading), 1)
	if err != nil {
		return fmt.Errorf("create parquet writer: %w", err)
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	for i := range readings {
		if err := pw.Write(readings[i]); err != nil {
			return fmt.Errorf("write parquet row %d: %w", i, err)
		}
	}

	// The library panics on some malformed schemas during flush.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("parquet writer panicked during WriteStop: %v", r)
		}
	}()
	if err := pw.WriteStop(); err != nil {
		return fmt.Errorf("finalize parquet file: %w", err)
	}

	_, err = io.Copy(w, buf)
	return err
}

// WriteParquetFile writes readings to path, replacing any existing file.
func WriteParquetFile(path string, readings []Reading) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteParquet(file, readings); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
