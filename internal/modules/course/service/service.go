package course

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"anoa.com/campushub/internal/entity"
	"anoa.com/campushub/internal/modules/course/dto"
	"anoa.com/campushub/internal/modules/course/repository"
	search "anoa.com/campushub/internal/modules/search/service"
	"anoa.com/campushub/pkg/apperror"
	"anoa.com/campushub/pkg/storage"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

const searchLimit = 20

type CourseService interface {
	ListCourses(ctx context.Context, search string) ([]entity.CourseSummary, error)
	GetCourse(ctx context.Context, id uint) (*entity.Course, error)
	ListResources(ctx context.Context, courseID uint) ([]entity.CourseResource, error)
	GetResource(ctx context.Context, id uint) (*entity.CourseResource, error)
	AddResource(ctx context.Context, courseID uint, input dto.AddResourceInput, file *dto.UploadedFile) (*entity.CourseResource, error)
	DeleteResource(ctx context.Context, id uint) (*entity.CourseResource, error)
	FetchBlob(ctx context.Context, id uint) (*dto.Download, error)
	SearchResources(ctx context.Context, query string) ([]entity.CourseResource, error)
	ReindexResources(ctx context.Context) (int, error)
}

type courseService struct {
	repo  repository.CourseRepository
	blobs storage.BlobStore
	index search.ResourceIndex
}

func NewCourseService(repo repository.CourseRepository, blobs storage.BlobStore, index search.ResourceIndex) CourseService {
	return &courseService{
		repo:  repo,
		blobs: blobs,
		index: index,
	}
}

func (s *courseService) ListCourses(ctx context.Context, search string) ([]entity.CourseSummary, error) {
	return s.repo.FindSummaries(ctx, search)
}

func (s *courseService) GetCourse(ctx context.Context, id uint) (*entity.Course, error) {
	course, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("course not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}
	return course, nil
}

func (s *courseService) ListResources(ctx context.Context, courseID uint) ([]entity.CourseResource, error) {
	if _, err := s.GetCourse(ctx, courseID); err != nil {
		return nil, err
	}
	return s.repo.FindResources(ctx, courseID)
}

func (s *courseService) GetResource(ctx context.Context, id uint) (*entity.CourseResource, error) {
	resource, err := s.repo.FindResourceByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("resource not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}
	return resource, nil
}

func (s *courseService) AddResource(ctx context.Context, courseID uint, input dto.AddResourceInput, file *dto.UploadedFile) (*entity.CourseResource, error) {
	course, err := s.GetCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, fmt.Errorf("title is required: %w", apperror.ErrValidation)
	}
	resourceType := strings.TrimSpace(input.ResourceType)
	if !entity.ValidResourceType(resourceType) {
		return nil, fmt.Errorf("resource_type must be one of %s: %w", strings.Join(entity.ResourceTypes, ", "), apperror.ErrValidation)
	}

	resource := &entity.CourseResource{
		Title:        title,
		Description:  optionalText(input.Description),
		ResourceType: resourceType,
		CourseID:     course.ID,
	}

	if resourceType == entity.ResourceTypeDocument {
		if file == nil || file.Reader == nil || file.Size <= 0 || storage.SafeName(file.FileName) == "" {
			return nil, apperror.ErrMissingFile
		}

		name := storage.UniqueName(course.CourseCode, storage.SafeName(file.FileName))
		path, size, err := s.blobs.Save(ctx, name, file.Reader)
		if err != nil {
			return nil, fmt.Errorf("failed to store file: %w", err)
		}
		if size == 0 {
			_ = s.blobs.Delete(ctx, path)
			return nil, apperror.ErrMissingFile
		}
		resource.FilePath = &path
		resource.FileSize = &size
	} else {
		link := strings.TrimSpace(input.ExternalLink)
		if link != "" {
			resource.ExternalLink = &link
		}
	}

	if err := s.repo.CreateResource(ctx, resource); err != nil {
		if resource.HasBlob() {
			if delErr := s.blobs.Delete(ctx, *resource.FilePath); delErr != nil {
				zerolog.Ctx(ctx).Warn().Err(delErr).Str("path", *resource.FilePath).Msg("failed to remove orphaned blob")
			}
		}
		return nil, err
	}
	resource.Course = course

	if err := s.index.IndexResource(ctx, resource, course); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Uint("resource_id", resource.ID).Msg("failed to index resource")
	}

	return resource, nil
}

// DeleteResource removes the record, then its blob. Blob and index cleanup
// failures are logged and never undo the record deletion.
func (s *courseService) DeleteResource(ctx context.Context, id uint) (*entity.CourseResource, error) {
	resource, err := s.GetResource(ctx, id)
	if err != nil {
		return nil, err
	}

	affected, err := s.repo.DeleteResource(ctx, id)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, fmt.Errorf("resource not found: %w", apperror.ErrNotFound)
	}

	logger := zerolog.Ctx(ctx)
	if resource.HasBlob() {
		if err := s.blobs.Delete(ctx, *resource.FilePath); err != nil {
			logger.Warn().Err(err).Str("path", *resource.FilePath).Msg("failed to delete resource blob")
		}
	}

	if err := s.index.RemoveResource(ctx, id); err != nil {
		logger.Warn().Err(err).Uint("resource_id", id).Msg("failed to remove resource from index")
	}

	return resource, nil
}

func (s *courseService) FetchBlob(ctx context.Context, id uint) (*dto.Download, error) {
	resource, err := s.GetResource(ctx, id)
	if err != nil {
		return nil, err
	}
	if !resource.HasBlob() {
		return nil, apperror.ErrFileMissing
	}

	reader, err := s.blobs.Open(ctx, *resource.FilePath)
	if err != nil {
		if errors.Is(err, storage.ErrBlobNotFound) {
			return nil, apperror.ErrFileMissing
		}
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	return &dto.Download{
		Reader:   reader,
		FileName: storage.DownloadName(*resource.FilePath),
		Size:     resource.FileSize,
	}, nil
}

// SearchResources matches resource titles and descriptions, through the
// search index when one is configured.
func (s *courseService) SearchResources(ctx context.Context, query string) ([]entity.CourseResource, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []entity.CourseResource{}, nil
	}

	if s.index.Enabled() {
		ids, err := s.index.SearchResourceIDs(ctx, query, searchLimit)
		if err == nil {
			return s.repo.FindResourcesByIDs(ctx, ids)
		}
		zerolog.Ctx(ctx).Warn().Err(err).Msg("search index unavailable, falling back to database")
	}

	return s.repo.SearchResources(ctx, query, searchLimit)
}

// ReindexResources pushes every stored resource into the search index and
// reports how many were sent. It does nothing when the index is disabled.
func (s *courseService) ReindexResources(ctx context.Context) (int, error) {
	if !s.index.Enabled() {
		return 0, nil
	}

	resources, err := s.repo.FindAllResources(ctx)
	if err != nil {
		return 0, err
	}
	if err := s.index.Reindex(ctx, resources); err != nil {
		return 0, err
	}
	return len(resources), nil
}

// optionalText trims value and maps blank input to nil.
func optionalText(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}
