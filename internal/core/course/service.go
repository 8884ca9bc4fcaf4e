// Copyright (c) 2026 Lurnia. All rights reserved.
// Author: thanhvu.do.dev@gmail.com

package course

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dothanhvu/lurnia/internal/platform/apperr"
	"github.com/dothanhvu/lurnia/internal/platform/media"
	"github.com/dothanhvu/lurnia/internal/platform/validate"
	"github.com/dothanhvu/lurnia/pkg/pointer"
	"github.com/dothanhvu/lurnia/pkg/slug"
	"github.com/dothanhvu/lurnia/pkg/uuid"
)

// ThumbnailFolder is the object-storage folder for course thumbnails.
const ThumbnailFolder = "courses"

type Service struct {
	repo   Repository
	media  media.Store
	logger *slog.Logger
}

func NewService(repo Repository, mediaStore media.Store, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		media:  mediaStore,
		logger: logger,
	}
}

func (service *Service) ListCourses(ctx context.Context, filter Filter, limit, offset int) ([]*Course, int, error) {
	return service.repo.ListCourses(ctx, filter, limit, offset)
}

func (service *Service) GetCourse(ctx context.Context, id string) (*Course, error) {
	return service.repo.GetCourse(ctx, id)
}

// CreateInput is the payload for course creation. Thumbnail carries decoded
// image bytes; an empty slice means no thumbnail.
type CreateInput struct {
	Name           string
	Description    string
	Price          float64
	EstimatedPrice *float64
	Tags           []string
	Level          string
	DemoURL        *string
	Benefits       []string
	Prerequisites  []string
	Thumbnail      []byte
}

// CreateCourse validates the input, uploads the thumbnail, and persists the
// course under a generated slug. Only admins reach this path.
func (service *Service) CreateCourse(ctx context.Context, createdBy string, input CreateInput) (*Course, error) {
	validator := &validate.Validator{}

	validator.Required(FieldName, input.Name).MaxLen(FieldName, input.Name, 200).
		Required(FieldDescription, input.Description).
		Min(FieldPrice, input.Price, 0).
		Required(FieldLevel, input.Level)

	if input.EstimatedPrice != nil {
		validator.Min(FieldEstimatedPrice, *input.EstimatedPrice, 0)
	}
	if input.DemoURL != nil {
		validator.URL(FieldDemoURL, *input.DemoURL)
	}

	if err := validator.Err(); err != nil {
		return nil, err
	}

	course := &Course{
		ID:             uuid.New(),
		Name:           input.Name,
		Slug:           slug.From(input.Name),
		Description:    input.Description,
		Price:          input.Price,
		EstimatedPrice: input.EstimatedPrice,
		Tags:           input.Tags,
		Level:          input.Level,
		DemoURL:        input.DemoURL,
		Benefits:       input.Benefits,
		Prerequisites:  input.Prerequisites,
		CreatedBy:      createdBy,
	}

	if len(input.Thumbnail) > 0 {
		asset, err := service.media.Upload(ctx, input.Thumbnail, ThumbnailFolder)
		if err != nil {
			return nil, apperr.Internal(fmt.Errorf("course_thumbnail_upload_failed: %w", err))
		}
		course.ThumbnailID = pointer.To(asset.PublicID)
		course.ThumbnailURL = pointer.To(asset.URL)
	}

	if err := service.repo.CreateCourse(ctx, course); err != nil {
		// The thumbnail is already in the bucket; drop it rather than leak it.
		if course.ThumbnailID != nil {
			_ = service.media.Destroy(ctx, *course.ThumbnailID)
		}
		return nil, err
	}

	service.logger.Info("course_created",
		slog.String("course_id", course.ID),
		slog.String("slug", course.Slug),
		slog.String("created_by", createdBy),
	)

	return course, nil
}
