package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"

	"github.com/i474232898/skypulse/internal/config"
)

// ObjectName is the storage key for the cleaned file of date.
func ObjectName(prefix, date, format string) string {
	name := CleanFileName(date, format)
	if prefix == "" {
		return name
	}
	return path.Join(prefix, name)
}

func contentType(format string) string {
	if format == config.FormatParquet {
		return "application/octet-stream"
	}
	return "text/csv"
}

// upload copies the cleaned file to object storage, replacing any object with
// the same key.
func (p *Pipeline) upload(ctx context.Context, r *run, cleanPath string) (string, error) {
	logger := r.logger.With("stage", string(StageUpload))

	info, err := os.Stat(cleanPath)
	if errors.Is(err, fs.ErrNotExist) {
		return "", stageErr(StageUpload, fmt.Sprintf("clean file %s does not exist", cleanPath), ErrFileNotFound)
	}
	if err != nil {
		return "", stageErr(StageUpload, fmt.Sprintf("stat %s", cleanPath), err)
	}

	file, err := os.Open(cleanPath)
	if err != nil {
		return "", stageErr(StageUpload, fmt.Sprintf("open %s", cleanPath), err)
	}
	defer file.Close()

	object := ObjectName(p.cfg.ObjectPrefix, r.date, p.cfg.OutputFormat)
	if err := p.objects.Upload(ctx, p.cfg.Bucket, object, file, contentType(p.cfg.OutputFormat)); err != nil {
		return "", stageErr(StageUpload, fmt.Sprintf("upload %s", object), err)
	}

	logger.Info("file uploaded", "uri", p.objects.URI(p.cfg.Bucket, object), "bytes", info.Size())
	return object, nil
}
