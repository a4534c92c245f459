package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/edulane/sims-api/internal/models"
	appErrors "github.com/edulane/sims-api/pkg/errors"
)

type mockSectionGradeTypeRepo struct {
	rows       map[string]models.SectionGradeType
	created    *models.SectionGradeType
	active     map[string]bool
	deleted    []string
	reordered  []string
	reorderErr error
}

func (m *mockSectionGradeTypeRepo) ListBySection(ctx context.Context, sectionID string) ([]models.SectionGradeTypeDetail, error) {
	var list []models.SectionGradeTypeDetail
	for _, row := range m.rows {
		if row.SectionID == sectionID {
			list = append(list, models.SectionGradeTypeDetail{SectionGradeType: row})
		}
	}
	return list, nil
}

func (m *mockSectionGradeTypeRepo) Find(ctx context.Context, sectionID, gradeTypeID string) (*models.SectionGradeType, error) {
	for _, row := range m.rows {
		if row.SectionID == sectionID && row.GradeTypeID == gradeTypeID {
			r := row
			return &r, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockSectionGradeTypeRepo) MaxSortOrder(ctx context.Context, sectionID string) (int, error) {
	max := -1
	for _, row := range m.rows {
		if row.SectionID == sectionID && row.SortOrder > max {
			max = row.SortOrder
		}
	}
	return max, nil
}

func (m *mockSectionGradeTypeRepo) Create(ctx context.Context, row *models.SectionGradeType) error {
	if m.rows == nil {
		m.rows = make(map[string]models.SectionGradeType)
	}
	if row.ID == "" {
		row.ID = "new-assoc"
	}
	m.rows[row.ID] = *row
	m.created = row
	return nil
}

func (m *mockSectionGradeTypeRepo) SetActive(ctx context.Context, id string, isActive bool) error {
	if m.active == nil {
		m.active = make(map[string]bool)
	}
	m.active[id] = isActive
	if row, ok := m.rows[id]; ok {
		row.IsActive = isActive
		m.rows[id] = row
	}
	return nil
}

func (m *mockSectionGradeTypeRepo) Delete(ctx context.Context, id string) error {
	delete(m.rows, id)
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockSectionGradeTypeRepo) Reorder(ctx context.Context, sectionID string, orderedIDs []string) error {
	if m.reorderErr != nil {
		return m.reorderErr
	}
	m.reordered = orderedIDs
	for i, id := range orderedIDs {
		if row, ok := m.rows[id]; ok {
			row.SortOrder = i
			m.rows[id] = row
		}
	}
	return nil
}

type mockGradeTypeReader struct {
	types map[string]*models.GradeType
}

func (m *mockGradeTypeReader) FindByID(ctx context.Context, id string) (*models.GradeType, error) {
	if gt, ok := m.types[id]; ok {
		return gt, nil
	}
	return nil, sql.ErrNoRows
}

func sectionsWith(id string) *mockSectionReader {
	return &mockSectionReader{sections: map[string]*models.ClassSectionDetail{
		id: {ClassSection: models.ClassSection{ID: id, CourseID: "c1"}},
	}}
}

func gradeTypesWith(id string) *mockGradeTypeReader {
	return &mockGradeTypeReader{types: map[string]*models.GradeType{
		id: {ID: id, Code: "QUIZ", Name: "Quiz", Active: true},
	}}
}

func TestSectionGradeTypeAssociateAppends(t *testing.T) {
	repo := &mockSectionGradeTypeRepo{rows: map[string]models.SectionGradeType{
		"a1": {ID: "a1", SectionID: "sec1", GradeTypeID: "gt-existing", IsActive: true, SortOrder: 3},
	}}
	svc := NewSectionGradeTypeService(repo, sectionsWith("sec1"), gradeTypesWith("gt1"), validator.New(), zap.NewNop())

	row, err := svc.Associate(context.Background(), "sec1", "gt1")
	require.NoError(t, err)
	assert.True(t, row.IsActive)
	assert.Equal(t, 4, row.SortOrder)
	assert.NotNil(t, repo.created)
}

func TestSectionGradeTypeAssociateEmptySectionStartsAtZero(t *testing.T) {
	repo := &mockSectionGradeTypeRepo{}
	svc := NewSectionGradeTypeService(repo, sectionsWith("sec1"), gradeTypesWith("gt1"), validator.New(), zap.NewNop())

	row, err := svc.Associate(context.Background(), "sec1", "gt1")
	require.NoError(t, err)
	assert.Equal(t, 0, row.SortOrder)
}

func TestSectionGradeTypeAssociateReactivatesInPlace(t *testing.T) {
	repo := &mockSectionGradeTypeRepo{rows: map[string]models.SectionGradeType{
		"a1": {ID: "a1", SectionID: "sec1", GradeTypeID: "gt1", IsActive: false, SortOrder: 2},
	}}
	svc := NewSectionGradeTypeService(repo, sectionsWith("sec1"), gradeTypesWith("gt1"), validator.New(), zap.NewNop())

	row, err := svc.Associate(context.Background(), "sec1", "gt1")
	require.NoError(t, err)
	assert.True(t, row.IsActive)
	assert.Equal(t, 2, row.SortOrder)
	assert.Nil(t, repo.created)
	assert.True(t, repo.active["a1"])
}

func TestSectionGradeTypeAssociateUnknownSection(t *testing.T) {
	svc := NewSectionGradeTypeService(&mockSectionGradeTypeRepo{}, &mockSectionReader{}, gradeTypesWith("gt1"), validator.New(), zap.NewNop())

	_, err := svc.Associate(context.Background(), "missing", "gt1")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestSectionGradeTypeDisassociateDeletesRow(t *testing.T) {
	repo := &mockSectionGradeTypeRepo{rows: map[string]models.SectionGradeType{
		"a1": {ID: "a1", SectionID: "sec1", GradeTypeID: "gt1", IsActive: true, SortOrder: 1},
	}}
	svc := NewSectionGradeTypeService(repo, sectionsWith("sec1"), gradeTypesWith("gt1"), validator.New(), zap.NewNop())

	require.NoError(t, svc.Disassociate(context.Background(), "sec1", "gt1"))
	assert.Contains(t, repo.deleted, "a1")

	err := svc.Disassociate(context.Background(), "sec1", "gt1")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestSectionGradeTypeReorderAssignsSequentialOrder(t *testing.T) {
	repo := &mockSectionGradeTypeRepo{rows: map[string]models.SectionGradeType{
		"a1": {ID: "a1", SectionID: "sec1", GradeTypeID: "gt1", SortOrder: 1},
		"a2": {ID: "a2", SectionID: "sec1", GradeTypeID: "gt2", SortOrder: 2},
		"a3": {ID: "a3", SectionID: "sec1", GradeTypeID: "gt3", SortOrder: 3},
	}}
	svc := NewSectionGradeTypeService(repo, sectionsWith("sec1"), gradeTypesWith("gt1"), validator.New(), zap.NewNop())

	_, err := svc.Reorder(context.Background(), "sec1", ReorderSectionGradeTypesRequest{OrderedIDs: []string{"a3", "a1", "a2"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"a3", "a1", "a2"}, repo.reordered)
	assert.Equal(t, 0, repo.rows["a3"].SortOrder)
	assert.Equal(t, 1, repo.rows["a1"].SortOrder)
	assert.Equal(t, 2, repo.rows["a2"].SortOrder)
}

func TestSectionGradeTypeReorderUnknownID(t *testing.T) {
	repo := &mockSectionGradeTypeRepo{reorderErr: sql.ErrNoRows}
	svc := NewSectionGradeTypeService(repo, sectionsWith("sec1"), gradeTypesWith("gt1"), validator.New(), zap.NewNop())

	_, err := svc.Reorder(context.Background(), "sec1", ReorderSectionGradeTypesRequest{OrderedIDs: []string{"ghost"}})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestSectionGradeTypeReorderRejectsEmptyList(t *testing.T) {
	svc := NewSectionGradeTypeService(&mockSectionGradeTypeRepo{}, sectionsWith("sec1"), gradeTypesWith("gt1"), validator.New(), zap.NewNop())

	_, err := svc.Reorder(context.Background(), "sec1", ReorderSectionGradeTypesRequest{})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestSectionGradeTypeTogglePreservesSortOrder(t *testing.T) {
	repo := &mockSectionGradeTypeRepo{rows: map[string]models.SectionGradeType{
		"a1": {ID: "a1", SectionID: "sec1", GradeTypeID: "gt1", IsActive: true, SortOrder: 7},
	}}
	svc := NewSectionGradeTypeService(repo, sectionsWith("sec1"), gradeTypesWith("gt1"), validator.New(), zap.NewNop())

	off := false
	row, err := svc.Toggle(context.Background(), "sec1", "gt1", ToggleSectionGradeTypeRequest{IsActive: &off})
	require.NoError(t, err)
	assert.False(t, row.IsActive)
	assert.Equal(t, 7, row.SortOrder)
	assert.False(t, repo.active["a1"])
}
