package pipeline

import (
	"context"
	"fmt"

	"github.com/i474232898/skypulse/internal/warehouse"
)

// load appends the uploaded object to the warehouse table and waits for the job.
func (p *Pipeline) load(ctx context.Context, r *run, object string) error {
	logger := r.logger.With("stage", string(StageLoad))

	req := warehouse.LoadRequest{
		Bucket: p.cfg.Bucket,
		Object: object,
		Format: p.cfg.OutputFormat,
	}
	if req.Format == warehouse.FormatCSV {
		req.SkipLeadingRows = 1
	}

	res, err := p.loader.Load(ctx, req)
	if err != nil {
		return stageErr(StageLoad, fmt.Sprintf("load %s", p.objects.URI(p.cfg.Bucket, object)), err)
	}

	p.metrics.RecordRows(string(StageLoad), int(res.RowsLoaded))
	logger.Info("data loaded", "table", res.Table, "job_id", res.JobID, "rows", res.RowsLoaded)
	return nil
}
