package services

import (
	"context"
	"fmt"

	"campus-portal-backend/internal/models"
	"campus-portal-backend/internal/storage"

	"golang.org/x/sync/errgroup"
)

// ImageResolver turns kept image URLs plus new uploads into a listing's final image list
type ImageResolver struct {
	storage storage.ImageStorage
}

func NewImageResolver(s storage.ImageStorage) *ImageResolver {
	return &ImageResolver{storage: s}
}

// Resolve uploads every file concurrently and returns existing ++ new, new URLs in upload order.
// Any failed upload fails the whole batch.
func (r *ImageResolver) Resolve(ctx context.Context, folder string, existing []string, uploads []storage.File) ([]string, error) {
	out := make([]string, 0, len(existing)+len(uploads))
	out = append(out, existing...)
	if len(uploads) == 0 {
		return out, nil
	}

	urls := make([]string, len(uploads))
	g, gctx := errgroup.WithContext(ctx)
	for i, file := range uploads {
		g.Go(func() error {
			url, err := r.storage.Upload(gctx, folder, file)
			if err != nil {
				return fmt.Errorf("upload %s: %w", file.Name, err)
			}
			urls[i] = url
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrUpstream, err)
	}

	return append(out, urls...), nil
}
