package projects

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

type CreateProjectInput struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

func (s *Service) CreateProject(ctx context.Context, in CreateProjectInput) (*models.Project, error) {
	if in.Name == "" {
		return nil, apperrors.NewValidation("name", "name is required")
	}
	project := models.Project{
		Name:        in.Name,
		Description: in.Description,
		Status:      models.BlockActive,
	}
	if err := s.DB.WithContext(ctx).Create(&project).Error; err != nil {
		return nil, apperrors.NewTransport("create project", err)
	}
	return &project, nil
}

func (s *Service) ListProjects(ctx context.Context) ([]models.Project, error) {
	var projects []models.Project
	if err := s.DB.WithContext(ctx).Order("created_at DESC").Find(&projects).Error; err != nil {
		return nil, apperrors.NewTransport("list projects", err)
	}
	return projects, nil
}

func (s *Service) GetProject(ctx context.Context, projectID uuid.UUID) (*models.Project, error) {
	var project models.Project
	if err := s.DB.WithContext(ctx).Where("project_id = ?", projectID).First(&project).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("Project")
		}
		return nil, apperrors.NewTransport("load project", err)
	}
	return &project, nil
}
