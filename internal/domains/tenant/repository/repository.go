package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"courtpay/infras/otel"
	"courtpay/infras/postgres"
	"courtpay/internal/domains/tenant/model"
	gDto "courtpay/shared/dto"
	gRepo "courtpay/shared/repository"
)

type Tenant interface {
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Tenant, error)
	Exist(ctx context.Context, filter gDto.FilterGroup) (bool, error)
	Update(ctx context.Context, req map[string]any, filter gDto.FilterGroup) error
}

type repositoryImpl struct {
	gRepo.Repository[model.Tenant]
	db   *postgres.Connection
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Tenant {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Tenant](model.EntityName, model.TableName, model.FieldID, db, otel),
		db:         db,
		otel:       otel,
	}
}
