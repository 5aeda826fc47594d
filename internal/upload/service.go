package upload

import (
	"context"
	"fmt"
	"io"

	"backend-trailator/internal/db"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
)

const defaultFolder = "trail_objects"

// ImageUploader pushes image bytes to the hosting provider and returns
// the public URL.
type ImageUploader interface {
	Upload(ctx context.Context, file io.Reader, folder string) (string, error)
}

type cloudinaryUploader struct {
	cld *cloudinary.Cloudinary
}

func NewCloudinaryUploader(cloudName, apiKey, apiSecret string) (ImageUploader, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("init cloudinary: %w", err)
	}
	return &cloudinaryUploader{cld: cld}, nil
}

func (u *cloudinaryUploader) Upload(ctx context.Context, file io.Reader, folder string) (string, error) {
	resp, err := u.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		Folder:       folder,
		ResourceType: "image",
	})
	if err != nil {
		return "", fmt.Errorf("cloudinary upload: %w", err)
	}
	return resp.SecureURL, nil
}

// Image is the stored record of one uploaded photo.
type Image struct {
	ID           string `json:"id"`
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnail_url"`
}

type Service struct {
	db       db.Querier
	uploader ImageUploader
}

func NewService(db db.Querier, uploader ImageUploader) *Service {
	return &Service{db: db, uploader: uploader}
}

// UploadImage uploads the file and records who owns the resulting URL.
func (s *Service) UploadImage(ctx context.Context, userID string, file io.Reader, folder string) (Image, error) {
	if folder == "" {
		folder = defaultFolder
	}

	url, err := s.uploader.Upload(ctx, file, folder)
	if err != nil {
		return Image{}, err
	}

	id := uuid.NewString()
	_, err = s.db.Exec(ctx, `
		INSERT INTO uploaded_images (id, user_id, url, folder)
		VALUES ($1,$2,$3,$4)
	`, id, userID, url, folder)
	if err != nil {
		return Image{}, err
	}

	return Image{ID: id, URL: url, ThumbnailURL: ThumbnailURL(url, 200)}, nil
}
