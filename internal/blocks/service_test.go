package blocks

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Brokwise/brokwise-developer/internal/models"
	"github.com/Brokwise/brokwise-developer/internal/pkg/apperrors"
)

func setupBlockService(t *testing.T) (*Service, uuid.UUID) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Project{}, &models.Block{}))

	project := models.Project{Name: "Sunrise Enclave"}
	require.NoError(t, db.Create(&project).Error)
	return &Service{DB: db}, project.ProjectID
}

func TestCreateBlock_DefaultsToActive(t *testing.T) {
	s, projectID := setupBlockService(t)

	block, err := s.CreateBlock(context.Background(), CreateBlockInput{ProjectID: projectID, Name: "Phase 1"})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, block.BlockID)
	assert.Equal(t, models.BlockActive, block.Status)
}

func TestCreateBlock_UnknownProject(t *testing.T) {
	s, _ := setupBlockService(t)

	_, err := s.CreateBlock(context.Background(), CreateBlockInput{ProjectID: uuid.New(), Name: "Phase 1"})
	require.Error(t, err)
	nf, ok := apperrors.IsNotFound(err)
	require.True(t, ok)
	assert.Equal(t, "Project", nf.Resource)
}

func TestCreateBlock_Validation(t *testing.T) {
	s, _ := setupBlockService(t)

	_, err := s.CreateBlock(context.Background(), CreateBlockInput{})
	require.Error(t, err)
	ve, ok := apperrors.IsValidation(err)
	require.True(t, ok)
	details := ve.Details()
	assert.Contains(t, details, "project_id")
	assert.Contains(t, details, "name")
}

func TestListBlocksByProject_OrderedByName(t *testing.T) {
	s, projectID := setupBlockService(t)
	ctx := context.Background()

	for _, name := range []string{"Phase C", "Phase A", "Phase B"} {
		_, err := s.CreateBlock(ctx, CreateBlockInput{ProjectID: projectID, Name: name})
		require.NoError(t, err)
	}

	blocks, err := s.ListBlocksByProject(ctx, projectID)
	require.NoError(t, err)
	require.Len(t, blocks, 3)
	assert.Equal(t, "Phase A", blocks[0].Name)
	assert.Equal(t, "Phase C", blocks[2].Name)
}

func TestUpdateBlock(t *testing.T) {
	s, projectID := setupBlockService(t)
	ctx := context.Background()

	block, err := s.CreateBlock(ctx, CreateBlockInput{ProjectID: projectID, Name: "Phase 1"})
	require.NoError(t, err)

	completed := models.BlockCompleted
	newName := "Phase 1 (closed)"
	updated, err := s.UpdateBlock(ctx, block.BlockID, UpdateBlockInput{Name: &newName, Status: &completed})
	require.NoError(t, err)
	assert.Equal(t, newName, updated.Name)
	assert.Equal(t, models.BlockCompleted, updated.Status)
}

func TestUpdateBlock_NotFound(t *testing.T) {
	s, _ := setupBlockService(t)
	name := "Renamed"
	_, err := s.UpdateBlock(context.Background(), uuid.New(), UpdateBlockInput{Name: &name})
	require.Error(t, err)
	_, ok := apperrors.IsNotFound(err)
	assert.True(t, ok)
}

func TestUpdateBlock_NoChanges(t *testing.T) {
	s, _ := setupBlockService(t)
	_, err := s.UpdateBlock(context.Background(), uuid.New(), UpdateBlockInput{})
	require.Error(t, err)
	_, ok := apperrors.IsValidation(err)
	assert.True(t, ok)
}
