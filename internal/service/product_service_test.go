package service

import (
	"context"
	"testing"

	"recell-store/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func validProductInput() *model.ProductInput {
	return &model.ProductInput{
		Type:      model.ProductTypePhone,
		Brand:     "Apple",
		Model:     "iPhone 13",
		Price:     1000,
		Condition: model.ConditionLikeNew,
		Stock:     3,
	}
}

func TestProductService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a valid product", func(t *testing.T) {
		productRepo := new(MockProductRepository)
		svc := NewProductService(productRepo, zerolog.Nop())

		productRepo.On("Create", ctx, mock.AnythingOfType("*model.Product")).Return(nil)

		product, err := svc.Create(ctx, validProductInput())
		require.NoError(t, err)

		assert.NotEqual(t, uuid.Nil, product.ID)
		assert.Equal(t, "Apple iPhone 13", product.Title())
		assert.Equal(t, 3, product.Stock)
	})

	t.Run("validation failures never reach the repository", func(t *testing.T) {
		tests := []struct {
			name   string
			mutate func(*model.ProductInput)
		}{
			{"unknown type", func(p *model.ProductInput) { p.Type = "Tablet" }},
			{"blank brand", func(p *model.ProductInput) { p.Brand = "  " }},
			{"zero price", func(p *model.ProductInput) { p.Price = 0 }},
			{"negative stock", func(p *model.ProductInput) { p.Stock = -1 }},
			{"unknown condition", func(p *model.ProductInput) { p.Condition = "Mint" }},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				productRepo := new(MockProductRepository)
				svc := NewProductService(productRepo, zerolog.Nop())

				input := validProductInput()
				tt.mutate(input)

				_, err := svc.Create(ctx, input)
				require.Error(t, err)

				var domainErr *model.DomainError
				require.ErrorAs(t, err, &domainErr)
				assert.Equal(t, model.ErrCodeValidation, domainErr.Code)

				productRepo.AssertNotCalled(t, "Create")
			})
		}
	})
}

func TestProductService_GetByID(t *testing.T) {
	ctx := context.Background()

	productRepo := new(MockProductRepository)
	svc := NewProductService(productRepo, zerolog.Nop())

	id := uuid.New()
	productRepo.On("GetByID", ctx, id).Return(nil, nil)

	_, err := svc.GetByID(ctx, id)
	assert.ErrorIs(t, err, model.ErrProductNotFound)
}

func TestProductService_List_ClampsPaging(t *testing.T) {
	ctx := context.Background()

	productRepo := new(MockProductRepository)
	svc := NewProductService(productRepo, zerolog.Nop())

	productRepo.On("List", ctx, mock.MatchedBy(func(f model.ProductFilter) bool {
		return f.Limit == 100 && f.Offset == 0
	})).Return([]model.Product{}, nil)

	_, err := svc.List(ctx, model.ProductFilter{Limit: 100000, Offset: -5})
	require.NoError(t, err)

	productRepo.AssertExpectations(t)
}
