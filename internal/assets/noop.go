package assets

import (
	"context"
	"fmt"

	"fruitshop-be/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// NoopUploader stands in for the real asset host in development: Upload
// fabricates a URL without storing anything, Delete logs and succeeds.
type NoopUploader struct {
	BaseURL string
}

func (u *NoopUploader) Upload(ctx context.Context, content []byte) (string, error) {
	url := fmt.Sprintf("%s/%s", u.BaseURL, uuid.NewString())
	logger.FromCtx(ctx).Debug("noop asset upload",
		zap.String("url", url),
		zap.Int("bytes", len(content)),
	)
	return url, nil
}

func (u *NoopUploader) Delete(ctx context.Context, publicID string) error {
	logger.FromCtx(ctx).Debug("noop asset delete", zap.String("public_id", publicID))
	return nil
}
