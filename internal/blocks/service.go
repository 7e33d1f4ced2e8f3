package blocks

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Brokwise/brokwise-developer/internal/models"
	"github.com/Brokwise/brokwise-developer/internal/pkg/apperrors"
)

type Service struct {
	DB *gorm.DB
}

type CreateBlockInput struct {
	ProjectID   uuid.UUID          `json:"project_id"`
	Name        string             `json:"name"`
	Description *string            `json:"description,omitempty"`
	Status      models.BlockStatus `json:"status"`
}

// CreateBlock persists a new block under an existing project.
func (s *Service) CreateBlock(ctx context.Context, in CreateBlockInput) (*models.Block, error) {
	ve := &apperrors.ValidationError{}
	if in.ProjectID == uuid.Nil {
		ve.Add("project_id", "project_id is required")
	}
	if in.Name == "" {
		ve.Add("name", "name is required")
	}
	if in.Status == "" {
		in.Status = models.BlockActive
	}
	if !in.Status.Valid() {
		ve.Add("status", "status must be one of active, inactive, completed")
	}
	if ve.Has() {
		return nil, ve
	}

	var count int64
	if err := s.DB.WithContext(ctx).Model(&models.Project{}).Where("project_id = ?", in.ProjectID).Count(&count).Error; err != nil {
		return nil, apperrors.NewTransport("check project", err)
	}
	if count == 0 {
		return nil, apperrors.NewNotFound("Project")
	}

	block := models.Block{
		ProjectID:   in.ProjectID,
		Name:        in.Name,
		Description: in.Description,
		Status:      in.Status,
	}
	if err := s.DB.WithContext(ctx).Create(&block).Error; err != nil {
		return nil, apperrors.NewTransport("create block", err)
	}
	return &block, nil
}

// ListBlocksByProject returns a project's blocks ordered by name.
func (s *Service) ListBlocksByProject(ctx context.Context, projectID uuid.UUID) ([]models.Block, error) {
	var blocks []models.Block
	if err := s.DB.WithContext(ctx).Where("project_id = ?", projectID).Order("name ASC").Find(&blocks).Error; err != nil {
		return nil, apperrors.NewTransport("list blocks", err)
	}
	return blocks, nil
}

type UpdateBlockInput struct {
	Name        *string             `json:"name,omitempty"`
	Description *string             `json:"description,omitempty"`
	Status      *models.BlockStatus `json:"status,omitempty"`
}

// UpdateBlock applies name/description/status edits to a block.
func (s *Service) UpdateBlock(ctx context.Context, blockID uuid.UUID, in UpdateBlockInput) (*models.Block, error) {
	ve := &apperrors.ValidationError{}
	if in.Name != nil && *in.Name == "" {
		ve.Add("name", "name cannot be empty")
	}
	if in.Status != nil && !in.Status.Valid() {
		ve.Add("status", "status must be one of active, inactive, completed")
	}
	if ve.Has() {
		return nil, ve
	}

	updates := map[string]interface{}{}
	if in.Name != nil {
		updates["name"] = *in.Name
	}
	if in.Description != nil {
		updates["description"] = *in.Description
	}
	if in.Status != nil {
		updates["status"] = *in.Status
	}
	if len(updates) == 0 {
		return nil, apperrors.NewValidation("body", "no valid changes provided")
	}

	var block models.Block
	if err := s.DB.WithContext(ctx).Where("block_id = ?", blockID).First(&block).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("Block")
		}
		return nil, apperrors.NewTransport("load block", err)
	}
	if err := s.DB.WithContext(ctx).Model(&block).Updates(updates).Error; err != nil {
		return nil, apperrors.NewTransport("update block", err)
	}
	return &block, nil
}
