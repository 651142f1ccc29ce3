// Package warehouse runs bulk-load jobs that append a staged daily file to the
// destination table.
package warehouse

import (
	"context"
	"fmt"
)

// Source formats understood by the loaders.
const (
	FormatCSV     = "csv"
	FormatParquet = "parquet"
)

// LoadRequest identifies the staged object to ingest.
type LoadRequest struct {
	Bucket string
	Object string
	Format string
	// SkipLeadingRows is the number of header rows to skip for CSV sources.
	SkipLeadingRows int
}

// LoadResult reports a finished load job.
type LoadResult struct {
	Table      string
	JobID      string
	RowsLoaded int64
}

// Loader appends a staged object to a fixed destination table. Load blocks until
// the job is done; a failed job is returned as an error and nothing is appended.
type Loader interface {
	Load(ctx context.Context, req LoadRequest) (LoadResult, error)
	Close() error
}

func (r LoadRequest) validate() error {
	if r.Bucket == "" || r.Object == "" {
		return fmt.Errorf("load request requires bucket and object, got %q/%q", r.Bucket, r.Object)
	}
	switch r.Format {
	case FormatCSV, FormatParquet:
		return nil
	default:
		return fmt.Errorf("unsupported source format %q", r.Format)
	}
}
