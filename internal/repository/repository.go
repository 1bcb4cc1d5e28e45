package repository

import (
	"context"
	"errors"
	"time"

	"github.com/mhtran-dev/go-flood-risk/internal/models"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("already exists")
)

// WardFilter narrows ward listings.
type WardFilter struct {
	Province string
	District string
	Limit    int
	Offset   int
}

// AssessmentFilter narrows stored assessment listings.
type AssessmentFilter struct {
	Province string
	Since    *time.Time
	Limit    int
	Offset   int
}

type WardRepository interface {
	Add(ctx context.Context, w *models.Ward) error
	GetByCode(ctx context.Context, code string) (*models.Ward, error)
	ListWards(ctx context.Context, opts WardFilter) ([]models.Ward, error)
	DeleteByCode(ctx context.Context, code string) error
	CountByProvince(ctx context.Context, province string) (int, error)
}

type UserRepository interface {
	AddUser(ctx context.Context, u *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

type AssessmentRepository interface {
	AddAssessment(ctx context.Context, rec *models.AssessmentRecord) error
	ListAssessments(ctx context.Context, opts AssessmentFilter) ([]models.AssessmentRecord, error)
	AssessmentStats(ctx context.Context) (*models.AssessmentStats, error)
}

// Repository is the full persistence surface the HTTP layer depends on.
type Repository interface {
	WardRepository
	UserRepository
	AssessmentRepository
	Close() error
}
