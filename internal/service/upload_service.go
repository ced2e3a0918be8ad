package service

import (
	"context"

	"umuhinzilink/internal/upstream"
)

type UploadResult struct {
	URL string `json:"url"`
}

type UploadService struct {
	client *upstream.Client
}

// DI
func NewUploadService(client *upstream.Client) *UploadService {
	return &UploadService{client: client}
}

// Uploadは画像を1枚送る。progressには0〜100が届く。
func (s *UploadService) Upload(ctx context.Context, name string, contentType string, data []byte, progress upstream.ProgressFunc) upstream.Envelope[UploadResult] {
	return upstream.Upload[UploadResult](ctx, s.client, "/uploads", upstream.FilePart{
		Field:       "file",
		Name:        name,
		ContentType: contentType,
		Data:        data,
	}, nil, progress)
}
