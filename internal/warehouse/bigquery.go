package warehouse

import (
	"context"
	"fmt"
	"log/slog"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/option"
)

// BigQueryLoader loads objects from Cloud Storage into a BigQuery table.
type BigQueryLoader struct {
	client  *bigquery.Client
	project string
	dataset string
	table   string
	logger  *slog.Logger
}

var _ Loader = (*BigQueryLoader)(nil)

func NewBigQueryLoader(ctx context.Context, project, dataset, table string, logger *slog.Logger, opts ...option.ClientOption) (*BigQueryLoader, error) {
	client, err := bigquery.NewClient(ctx, project, opts...)
	if err != nil {
		return nil, fmt.Errorf("create bigquery client: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &BigQueryLoader{
		client:  client,
		project: project,
		dataset: dataset,
		table:   table,
		logger:  logger.With("warehouse", "bigquery"),
	}, nil
}

// TableRef returns project.dataset.table.
func (l *BigQueryLoader) TableRef() string {
	return fmt.Sprintf("%s.%s.%s", l.project, l.dataset, l.table)
}

// Load runs an append-only load job with schema autodetection and waits for it.
func (l *BigQueryLoader) Load(ctx context.Context, req LoadRequest) (LoadResult, error) {
	if err := req.validate(); err != nil {
		return LoadResult{}, err
	}
	uri := fmt.Sprintf("gs://%s/%s", req.Bucket, req.Object)

	ref := bigquery.NewGCSReference(uri)
	ref.AutoDetect = true
	switch req.Format {
	case FormatCSV:
		ref.SourceFormat = bigquery.CSV
		ref.SkipLeadingRows = int64(req.SkipLeadingRows)
	case FormatParquet:
		ref.SourceFormat = bigquery.Parquet
	}

	loader := l.client.Dataset(l.dataset).Table(l.table).LoaderFrom(ref)
	loader.WriteDisposition = bigquery.WriteAppend
	loader.CreateDisposition = bigquery.CreateIfNeeded

	l.logger.Info("starting load job", "source", uri, "table", l.TableRef())
	job, err := loader.Run(ctx)
	if err != nil {
		return LoadResult{}, fmt.Errorf("start load job for %s: %w", uri, err)
	}
	status, err := job.Wait(ctx)
	if err != nil {
		return LoadResult{}, fmt.Errorf("wait for load job %s: %w", job.ID(), err)
	}
	if err := status.Err(); err != nil {
		return LoadResult{}, fmt.Errorf("load job %s failed: %w", job.ID(), err)
	}

	result := LoadResult{Table: l.TableRef(), JobID: job.ID()}
	if status.Statistics != nil {
		if stats, ok := status.Statistics.Details.(*bigquery.LoadStatistics); ok {
			result.RowsLoaded = stats.OutputRows
		}
	}
	return result, nil
}

func (l *BigQueryLoader) Close() error {
	return l.client.Close()
}
