package search

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"strconv"
	"strings"

	"anoa.com/campushub/internal/entity"
	"github.com/meilisearch/meilisearch-go"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
)

const resourcesIndex = "resources"

// ResourceIndex mirrors course resources into Meilisearch. Every method is a
// no-op when no client is configured, and Enabled reports false.
type ResourceIndex interface {
	Enabled() bool
	IndexResource(ctx context.Context, resource *entity.CourseResource, course *entity.Course) error
	RemoveResource(ctx context.Context, id uint) error
	Reindex(ctx context.Context, resources []entity.CourseResource) error
	SearchResourceIDs(ctx context.Context, query string, limit int64) ([]uint, error)
}

type meiliResourceIndex struct {
	client    meilisearch.ServiceManager
	sanitizer *bluemonday.Policy
}

type resourceDoc struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	ResourceType string `json:"resource_type"`
	CourseID     uint   `json:"course_id"`
	CourseCode   string `json:"course_code"`
	CourseName   string `json:"course_name"`
	UploadedAt   int64  `json:"uploaded_at"`
}

// NewResourceIndex wraps client; a nil client yields a disabled index.
func NewResourceIndex(ctx context.Context, client meilisearch.ServiceManager) ResourceIndex {
	s := &meiliResourceIndex{
		client:    client,
		sanitizer: bluemonday.StrictPolicy(),
	}
	if client != nil {
		s.initIndex(ctx)
	}
	return s
}

func (s *meiliResourceIndex) initIndex(ctx context.Context) {
	logger := zerolog.Ctx(ctx)

	filterable := []interface{}{"course_id", "resource_type"}
	if _, err := s.client.Index(resourcesIndex).UpdateFilterableAttributes(&filterable); err != nil {
		logger.Warn().Err(err).Msg("failed to update resources filterable attributes")
	}

	sortable := []string{"uploaded_at"}
	if _, err := s.client.Index(resourcesIndex).UpdateSortableAttributes(&sortable); err != nil {
		logger.Warn().Err(err).Msg("failed to update resources sortable attributes")
	}
}

func (s *meiliResourceIndex) Enabled() bool {
	return s.client != nil
}

func (s *meiliResourceIndex) IndexResource(ctx context.Context, resource *entity.CourseResource, course *entity.Course) error {
	if s.client == nil {
		return nil
	}

	primaryKey := "id"
	task, err := s.client.Index(resourcesIndex).AddDocuments([]resourceDoc{s.document(resource, course)}, &primaryKey)
	if err != nil {
		return fmt.Errorf("failed to index resource %d: %w", resource.ID, err)
	}
	zerolog.Ctx(ctx).Debug().Uint("resource_id", resource.ID).Int64("task_uid", task.TaskUID).Msg("indexed resource")
	return nil
}

// Reindex upserts every resource in one batch. Each resource is expected to
// carry its Course.
func (s *meiliResourceIndex) Reindex(ctx context.Context, resources []entity.CourseResource) error {
	if s.client == nil || len(resources) == 0 {
		return nil
	}

	docs := make([]resourceDoc, 0, len(resources))
	for i := range resources {
		docs = append(docs, s.document(&resources[i], resources[i].Course))
	}

	primaryKey := "id"
	task, err := s.client.Index(resourcesIndex).AddDocuments(docs, &primaryKey)
	if err != nil {
		return fmt.Errorf("failed to reindex %d resources: %w", len(docs), err)
	}
	zerolog.Ctx(ctx).Info().Int("count", len(docs)).Int64("task_uid", task.TaskUID).Msg("reindexed resources")
	return nil
}

func (s *meiliResourceIndex) document(resource *entity.CourseResource, course *entity.Course) resourceDoc {
	doc := resourceDoc{
		ID:           strconv.FormatUint(uint64(resource.ID), 10),
		Title:        s.clean(resource.Title),
		ResourceType: resource.ResourceType,
		CourseID:     resource.CourseID,
		UploadedAt:   resource.UploadedAt.Unix(),
	}
	if resource.Description != nil {
		doc.Description = s.clean(*resource.Description)
	}
	if course != nil {
		doc.CourseCode = course.CourseCode
		doc.CourseName = course.CourseName
	}
	return doc
}

func (s *meiliResourceIndex) RemoveResource(ctx context.Context, id uint) error {
	if s.client == nil {
		return nil
	}
	if _, err := s.client.Index(resourcesIndex).DeleteDocument(strconv.FormatUint(uint64(id), 10)); err != nil {
		return fmt.Errorf("failed to remove resource %d from index: %w", id, err)
	}
	return nil
}

func (s *meiliResourceIndex) SearchResourceIDs(ctx context.Context, query string, limit int64) ([]uint, error) {
	if s.client == nil {
		return nil, nil
	}

	raw, err := s.client.Index(resourcesIndex).SearchRaw(query, &meilisearch.SearchRequest{
		Limit:                limit,
		AttributesToRetrieve: []string{"id"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search resources: %w", err)
	}

	var result struct {
		Hits []struct {
			ID string `json:"id"`
		} `json:"hits"`
	}
	if err := json.Unmarshal(*raw, &result); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	ids := make([]uint, 0, len(result.Hits))
	for _, hit := range result.Hits {
		id, err := strconv.ParseUint(hit.ID, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, uint(id))
	}
	return ids, nil
}

func (s *meiliResourceIndex) clean(content string) string {
	cleaned := html.UnescapeString(s.sanitizer.Sanitize(content))
	return strings.Join(strings.Fields(cleaned), " ")
}
