package course

import (
	"context"
	"errors"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"anoa.com/campushub/internal/entity"
	"anoa.com/campushub/internal/modules/course/dto"
	search "anoa.com/campushub/internal/modules/search/service"
	"anoa.com/campushub/pkg/apperror"
	"anoa.com/campushub/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeCourseRepo struct {
	mu        sync.Mutex
	courses   map[uint]*entity.Course
	resources map[uint]entity.CourseResource
	nextID    uint
	failNext  error
}

func newFakeCourseRepo() *fakeCourseRepo {
	return &fakeCourseRepo{
		courses: map[uint]*entity.Course{
			1: {ID: 1, CourseCode: "CSE110", CourseName: "Programming Language I", Department: "Computer Science and Engineering"},
		},
		resources: map[uint]entity.CourseResource{},
	}
}

func (f *fakeCourseRepo) FindSummaries(_ context.Context, search string) ([]entity.CourseSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []entity.CourseSummary
	for _, c := range f.courses {
		out = append(out, entity.CourseSummary{ID: c.ID, CourseCode: c.CourseCode, CourseName: c.CourseName})
	}
	return out, nil
}

func (f *fakeCourseRepo) FindByID(_ context.Context, id uint) (*entity.Course, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.courses[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

func (f *fakeCourseRepo) FindResources(_ context.Context, courseID uint) ([]entity.CourseResource, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []entity.CourseResource
	for _, r := range f.resources {
		if r.CourseID == courseID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UploadedAt.After(out[j].UploadedAt) })
	return out, nil
}

func (f *fakeCourseRepo) FindResourceByID(_ context.Context, id uint) (*entity.CourseResource, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.resources[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	r.Course = f.courses[r.CourseID]
	return &r, nil
}

func (f *fakeCourseRepo) FindResourcesByIDs(ctx context.Context, ids []uint) ([]entity.CourseResource, error) {
	var out []entity.CourseResource
	for _, id := range ids {
		if r, err := f.FindResourceByID(ctx, id); err == nil {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeCourseRepo) FindAllResources(_ context.Context) ([]entity.CourseResource, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]entity.CourseResource, 0, len(f.resources))
	for _, r := range f.resources {
		r.Course = f.courses[r.CourseID]
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeCourseRepo) SearchResources(_ context.Context, query string, limit int) ([]entity.CourseResource, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []entity.CourseResource
	for _, r := range f.resources {
		if strings.Contains(strings.ToLower(r.Title), strings.ToLower(query)) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeCourseRepo) CreateResource(_ context.Context, r *entity.CourseResource) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failNext != nil {
		err := f.failNext
		f.failNext = nil
		return err
	}
	f.nextID++
	r.ID = f.nextID
	r.UploadedAt = time.Now().Add(time.Duration(f.nextID) * time.Second)
	f.resources[r.ID] = *r
	return nil
}

func (f *fakeCourseRepo) DeleteResource(_ context.Context, id uint) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.resources[id]; !ok {
		return 0, nil
	}
	delete(f.resources, id)
	return 1, nil
}

type recordingIndex struct {
	indexed   []uint
	removed   []uint
	reindexed []entity.CourseResource
	err       error
}

func (r *recordingIndex) Enabled() bool { return true }

func (r *recordingIndex) IndexResource(_ context.Context, res *entity.CourseResource, _ *entity.Course) error {
	r.indexed = append(r.indexed, res.ID)
	return r.err
}

func (r *recordingIndex) RemoveResource(_ context.Context, id uint) error {
	r.removed = append(r.removed, id)
	return r.err
}

func (r *recordingIndex) Reindex(_ context.Context, resources []entity.CourseResource) error {
	r.reindexed = append(r.reindexed, resources...)
	return r.err
}

func (r *recordingIndex) SearchResourceIDs(_ context.Context, _ string, _ int64) ([]uint, error) {
	return r.indexed, r.err
}

func newTestService(t *testing.T) (CourseService, *fakeCourseRepo, storage.BlobStore) {
	t.Helper()
	blobs, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	repo := newFakeCourseRepo()
	return NewCourseService(repo, blobs, search.NewResourceIndex(context.Background(), nil)), repo, blobs
}

func upload(name, content string) *dto.UploadedFile {
	return &dto.UploadedFile{Reader: strings.NewReader(content), FileName: name, Size: int64(len(content))}
}

func TestAddDocumentWithoutFileCreatesNothing(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newTestService(t)

	input := dto.AddResourceInput{Title: "Week 1 Lecture Notes", ResourceType: entity.ResourceTypeDocument}

	_, err := svc.AddResource(ctx, 1, input, nil)
	assert.ErrorIs(t, err, apperror.ErrMissingFile)

	_, err = svc.AddResource(ctx, 1, input, upload("empty.pdf", ""))
	assert.ErrorIs(t, err, apperror.ErrMissingFile)

	assert.Empty(t, repo.resources)
}

func TestAddDocumentStoresBlob(t *testing.T) {
	ctx := context.Background()
	svc, _, blobs := newTestService(t)

	res, err := svc.AddResource(ctx, 1, dto.AddResourceInput{
		Title:        "Week 1 Lecture Notes",
		Description:  "  ",
		ResourceType: entity.ResourceTypeDocument,
		ExternalLink: "https://ignored.example.com",
	}, upload("../notes.pdf", "lecture"))
	require.NoError(t, err)

	require.True(t, res.HasBlob())
	assert.True(t, strings.HasPrefix(storage.BaseName(*res.FilePath), "CSE110_"))
	assert.Equal(t, "CSE110_notes.pdf", storage.DownloadName(*res.FilePath))
	assert.Equal(t, int64(7), *res.FileSize)
	assert.Nil(t, res.Description)
	assert.Nil(t, res.ExternalLink)

	rc, err := blobs.Open(ctx, *res.FilePath)
	require.NoError(t, err)
	body, _ := io.ReadAll(rc)
	rc.Close()
	assert.Equal(t, "lecture", string(body))
}

func TestSameFileNameUploadsKeepSeparateBlobs(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)
	input := dto.AddResourceInput{Title: "Notes", ResourceType: entity.ResourceTypeDocument}

	first, err := svc.AddResource(ctx, 1, input, upload("notes.pdf", "AAAA"))
	require.NoError(t, err)
	second, err := svc.AddResource(ctx, 1, input, upload("notes.pdf", "BBBBBBBB"))
	require.NoError(t, err)
	assert.NotEqual(t, *first.FilePath, *second.FilePath)

	read := func(id uint) (string, *dto.Download) {
		t.Helper()
		download, err := svc.FetchBlob(ctx, id)
		require.NoError(t, err)
		defer download.Reader.Close()
		body, err := io.ReadAll(download.Reader)
		require.NoError(t, err)
		return string(body), download
	}

	body, download := read(first.ID)
	assert.Equal(t, "AAAA", body)
	assert.Equal(t, int64(len(body)), *download.Size)
	assert.Equal(t, "CSE110_notes.pdf", download.FileName)

	_, err = svc.DeleteResource(ctx, second.ID)
	require.NoError(t, err)

	body, _ = read(first.ID)
	assert.Equal(t, "AAAA", body)
}

func TestAddResourceKeepsTextAsGiven(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	res, err := svc.AddResource(ctx, 1, dto.AddResourceInput{
		Title:        "  Vector<int> basics ",
		Description:  "Escaping &lt;br&gt; in HTML",
		ResourceType: entity.ResourceTypeLink,
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Vector<int> basics", res.Title)
	require.NotNil(t, res.Description)
	assert.Equal(t, "Escaping &lt;br&gt; in HTML", *res.Description)
}

func TestAddLinkNeverTouchesBlobStore(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	res, err := svc.AddResource(ctx, 1, dto.AddResourceInput{
		Title:        "Python Installation Guide",
		ResourceType: entity.ResourceTypeLink,
		ExternalLink: " https://www.python.org/downloads/ ",
	}, upload("ignored.txt", "x"))
	require.NoError(t, err)
	assert.False(t, res.HasBlob())
	require.NotNil(t, res.ExternalLink)
	assert.Equal(t, "https://www.python.org/downloads/", *res.ExternalLink)

	blank, err := svc.AddResource(ctx, 1, dto.AddResourceInput{Title: "Assignment 1", ResourceType: entity.ResourceTypeAssignment}, nil)
	require.NoError(t, err)
	assert.Nil(t, blank.ExternalLink)
}

func TestAddResourceValidation(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	_, err := svc.AddResource(ctx, 99, dto.AddResourceInput{Title: "x", ResourceType: entity.ResourceTypeLink}, nil)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = svc.AddResource(ctx, 1, dto.AddResourceInput{Title: " ", ResourceType: entity.ResourceTypeLink}, nil)
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = svc.AddResource(ctx, 1, dto.AddResourceInput{Title: "x", ResourceType: "podcast"}, nil)
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestAddResourceRemovesBlobWhenInsertFails(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	blobs, err := storage.NewLocalStorage(root)
	require.NoError(t, err)
	repo := newFakeCourseRepo()
	repo.failNext = errors.New("insert failed")
	svc := NewCourseService(repo, blobs, search.NewResourceIndex(ctx, nil))

	_, err = svc.AddResource(ctx, 1, dto.AddResourceInput{Title: "Notes", ResourceType: entity.ResourceTypeDocument}, upload("notes.pdf", "data"))
	require.Error(t, err)

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Empty(t, repo.resources)
}

func TestDeleteResourceRemovesRecordAndBlob(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	res, err := svc.AddResource(ctx, 1, dto.AddResourceInput{Title: "Notes", ResourceType: entity.ResourceTypeDocument}, upload("notes.pdf", "data"))
	require.NoError(t, err)
	path := *res.FilePath

	deleted, err := svc.DeleteResource(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, res.ID, deleted.ID)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))

	_, err = svc.FetchBlob(ctx, res.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = svc.DeleteResource(ctx, res.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestDeleteResourceToleratesMissingBlob(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	res, err := svc.AddResource(ctx, 1, dto.AddResourceInput{Title: "Notes", ResourceType: entity.ResourceTypeDocument}, upload("notes.pdf", "data"))
	require.NoError(t, err)
	require.NoError(t, os.Remove(*res.FilePath))

	_, err = svc.DeleteResource(ctx, res.ID)
	assert.NoError(t, err)
}

func TestFetchBlob(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	doc, err := svc.AddResource(ctx, 1, dto.AddResourceInput{Title: "Notes", ResourceType: entity.ResourceTypeDocument}, upload("notes.pdf", "data"))
	require.NoError(t, err)

	download, err := svc.FetchBlob(ctx, doc.ID)
	require.NoError(t, err)
	body, _ := io.ReadAll(download.Reader)
	download.Reader.Close()
	assert.Equal(t, "data", string(body))
	assert.Equal(t, "CSE110_notes.pdf", download.FileName)

	// orphaned record: blob vanished from storage
	require.NoError(t, os.Remove(*doc.FilePath))
	_, err = svc.FetchBlob(ctx, doc.ID)
	assert.ErrorIs(t, err, apperror.ErrFileMissing)

	link, err := svc.AddResource(ctx, 1, dto.AddResourceInput{Title: "Guide", ResourceType: entity.ResourceTypeLink, ExternalLink: "https://example.com"}, nil)
	require.NoError(t, err)
	_, err = svc.FetchBlob(ctx, link.ID)
	assert.ErrorIs(t, err, apperror.ErrFileMissing)

	_, err = svc.FetchBlob(ctx, 404)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestListResourcesUnknownCourse(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.ListResources(context.Background(), 42)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestIndexFailuresDoNotFailCommits(t *testing.T) {
	ctx := context.Background()
	blobs, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	repo := newFakeCourseRepo()
	index := &recordingIndex{err: errors.New("meilisearch down")}
	svc := NewCourseService(repo, blobs, index)

	res, err := svc.AddResource(ctx, 1, dto.AddResourceInput{Title: "Guide", ResourceType: entity.ResourceTypeLink}, nil)
	require.NoError(t, err)
	assert.Equal(t, []uint{res.ID}, index.indexed)

	_, err = svc.DeleteResource(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{res.ID}, index.removed)
}

func TestReindexResourcesSendsExistingRows(t *testing.T) {
	ctx := context.Background()
	blobs, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	repo := newFakeCourseRepo()
	desc := "Loops and arrays"
	repo.resources[7] = entity.CourseResource{ID: 7, Title: "Week 1", Description: &desc, ResourceType: entity.ResourceTypeDocument, CourseID: 1}
	repo.resources[9] = entity.CourseResource{ID: 9, Title: "Syllabus", ResourceType: entity.ResourceTypeSyllabus, CourseID: 1}

	index := &recordingIndex{}
	svc := NewCourseService(repo, blobs, index)

	n, err := svc.ReindexResources(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.Len(t, index.reindexed, 2)
	assert.Equal(t, uint(7), index.reindexed[0].ID)
	assert.Equal(t, uint(9), index.reindexed[1].ID)
	require.NotNil(t, index.reindexed[0].Course)
	assert.Equal(t, "CSE110", index.reindexed[0].Course.CourseCode)

	index.err = errors.New("meilisearch down")
	_, err = svc.ReindexResources(ctx)
	assert.Error(t, err)
}

func TestReindexResourcesSkipsDisabledIndex(t *testing.T) {
	svc, repo, _ := newTestService(t)
	repo.resources[1] = entity.CourseResource{ID: 1, Title: "Week 1", ResourceType: entity.ResourceTypeDocument, CourseID: 1}

	n, err := svc.ReindexResources(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSearchResourcesFallsBackToDatabase(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	_, err := svc.AddResource(ctx, 1, dto.AddResourceInput{Title: "Course Syllabus", ResourceType: entity.ResourceTypeSyllabus}, nil)
	require.NoError(t, err)
	_, err = svc.AddResource(ctx, 1, dto.AddResourceInput{Title: "Assignment 1", ResourceType: entity.ResourceTypeAssignment}, nil)
	require.NoError(t, err)

	found, err := svc.SearchResources(ctx, "syllabus")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Course Syllabus", found[0].Title)

	none, err := svc.SearchResources(ctx, "  ")
	require.NoError(t, err)
	assert.Empty(t, none)
}
