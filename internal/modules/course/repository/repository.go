package repository

import (
	"context"
	"strings"

	"anoa.com/campushub/internal/entity"
	"gorm.io/gorm"
)

type CourseRepository interface {
	FindSummaries(ctx context.Context, search string) ([]entity.CourseSummary, error)
	FindByID(ctx context.Context, id uint) (*entity.Course, error)
	FindResources(ctx context.Context, courseID uint) ([]entity.CourseResource, error)
	FindResourceByID(ctx context.Context, id uint) (*entity.CourseResource, error)
	FindResourcesByIDs(ctx context.Context, ids []uint) ([]entity.CourseResource, error)
	FindAllResources(ctx context.Context) ([]entity.CourseResource, error)
	SearchResources(ctx context.Context, query string, limit int) ([]entity.CourseResource, error)
	CreateResource(ctx context.Context, resource *entity.CourseResource) error
	DeleteResource(ctx context.Context, id uint) (int64, error)
}

type courseRepository struct {
	db *gorm.DB
}

func NewCourseRepository(db *gorm.DB) CourseRepository {
	return &courseRepository{db: db}
}

const resourceCountColumn = "(SELECT COUNT(*) FROM course_resources WHERE course_resources.course_id = courses.id) AS resource_count"

// FindSummaries lists courses whose code, name or department contains search,
// case-insensitively, ordered by course code.
func (r *courseRepository) FindSummaries(ctx context.Context, search string) ([]entity.CourseSummary, error) {
	var summaries []entity.CourseSummary
	query := r.db.WithContext(ctx).
		Model(&entity.Course{}).
		Select("courses.id, courses.course_code, courses.course_name, courses.description, courses.department, courses.created_at, " + resourceCountColumn)

	if search = strings.TrimSpace(search); search != "" {
		pattern := "%" + escapeLike(search) + "%"
		query = query.Where("courses.course_code ILIKE ? OR courses.course_name ILIKE ? OR courses.department ILIKE ?", pattern, pattern, pattern)
	}

	if err := query.Order("courses.course_code ASC").Scan(&summaries).Error; err != nil {
		return nil, err
	}
	return summaries, nil
}

func (r *courseRepository) FindByID(ctx context.Context, id uint) (*entity.Course, error) {
	var course entity.Course
	if err := r.db.WithContext(ctx).First(&course, id).Error; err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *courseRepository) FindResources(ctx context.Context, courseID uint) ([]entity.CourseResource, error) {
	var resources []entity.CourseResource
	err := r.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("uploaded_at DESC, id DESC").
		Find(&resources).Error
	return resources, err
}

func (r *courseRepository) FindResourceByID(ctx context.Context, id uint) (*entity.CourseResource, error) {
	var resource entity.CourseResource
	if err := r.db.WithContext(ctx).Preload("Course").First(&resource, id).Error; err != nil {
		return nil, err
	}
	return &resource, nil
}

// FindResourcesByIDs returns the resources in the order of ids, skipping
// ids that no longer exist.
func (r *courseRepository) FindResourcesByIDs(ctx context.Context, ids []uint) ([]entity.CourseResource, error) {
	if len(ids) == 0 {
		return []entity.CourseResource{}, nil
	}

	var found []entity.CourseResource
	if err := r.db.WithContext(ctx).Preload("Course").Where("id IN ?", ids).Find(&found).Error; err != nil {
		return nil, err
	}

	byID := make(map[uint]entity.CourseResource, len(found))
	for _, res := range found {
		byID[res.ID] = res
	}
	ordered := make([]entity.CourseResource, 0, len(found))
	for _, id := range ids {
		if res, ok := byID[id]; ok {
			ordered = append(ordered, res)
		}
	}
	return ordered, nil
}

// FindAllResources returns every resource with its course, oldest first.
func (r *courseRepository) FindAllResources(ctx context.Context) ([]entity.CourseResource, error) {
	var resources []entity.CourseResource
	err := r.db.WithContext(ctx).
		Preload("Course").
		Order("id ASC").
		Find(&resources).Error
	return resources, err
}

func (r *courseRepository) SearchResources(ctx context.Context, query string, limit int) ([]entity.CourseResource, error) {
	var resources []entity.CourseResource
	pattern := "%" + escapeLike(strings.TrimSpace(query)) + "%"
	err := r.db.WithContext(ctx).
		Preload("Course").
		Where("title ILIKE ? OR description ILIKE ?", pattern, pattern).
		Order("uploaded_at DESC, id DESC").
		Limit(limit).
		Find(&resources).Error
	return resources, err
}

func (r *courseRepository) CreateResource(ctx context.Context, resource *entity.CourseResource) error {
	return r.db.WithContext(ctx).Omit("Course").Create(resource).Error
}

func (r *courseRepository) DeleteResource(ctx context.Context, id uint) (int64, error) {
	result := r.db.WithContext(ctx).Delete(&entity.CourseResource{}, id)
	return result.RowsAffected, result.Error
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes user input match literally inside an ILIKE pattern.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
