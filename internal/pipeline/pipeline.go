// Package pipeline drives an uploaded file from the request through
// the temporary stage into object storage: validate, stage, upload,
// clean up. The returned reference is folded into the target entity by
// the caller; the staged copy is gone by then either way.
package pipeline

import (
	"context"
	"mime/multipart"
	"os"

	"go.uber.org/zap"

	"github.com/ayurwell/ayurcms/internal/stage"
)

// Uploader is the storage contract the pipeline depends on.
type Uploader interface {
	Upload(ctx context.Context, data []byte, originalName, folder string) (string, error)
}

type Pipeline struct {
	stage *stage.Stage
	blob  Uploader
}

func New(st *stage.Stage, blob Uploader) *Pipeline {
	return &Pipeline{stage: st, blob: blob}
}

func (p *Pipeline) Stage() *stage.Stage {
	return p.stage
}

// Run accepts one multipart file and returns the public URL of the
// stored blob.
//
// A validation failure rejects the file before anything is persisted.
// An upload failure removes the staged copy and returns the error with
// no entity mutation attempted. On success the staged copy is removed
// unconditionally before returning; a later persistence failure leaves
// the blob orphaned in storage, which is accepted and not reconciled.
func (p *Pipeline) Run(ctx context.Context, fh *multipart.FileHeader, folder string) (string, error) {
	zap.L().Info("file upload attempted",
		zap.String("originalname", fh.Filename),
		zap.String("mimetype", fh.Header.Get("Content-Type")),
		zap.Int64("size", fh.Size))

	staged, err := p.stage.Accept(fh)
	if err != nil {
		return "", err
	}

	data, err := os.ReadFile(staged.Path)
	if err != nil {
		p.stage.Remove(staged)
		return "", err
	}

	url, err := p.blob.Upload(ctx, data, staged.OriginalName, folder)
	// The staged copy is never needed once the remote call finished,
	// success or not.
	p.stage.Remove(staged)
	if err != nil {
		zap.L().Error("blob upload failed",
			zap.String("originalname", staged.OriginalName),
			zap.Error(err))
		return "", err
	}

	return url, nil
}
