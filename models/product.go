package models

import (
	"context"
	"fmt"
	"strings"

	"bitbucket.org/mmdatafocus/meatshop_console/config"
	"bitbucket.org/mmdatafocus/meatshop_console/utils"
	"github.com/shopspring/decimal"
)

// Product is a stock item; Available is the kilograms on hand as reported by the shop API.
type Product struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Available decimal.Decimal `json:"available"`
}

type NewProduct struct {
	Name      string            `json:"name" validate:"required,max=100"`
	Available utils.FormDecimal `json:"available" validate:"gte=0"`
}

func (input *NewProduct) validate() error {
	input.Name = strings.TrimSpace(input.Name)
	return validateStruct(input)
}

func (p Product) InStock() bool {
	return p.Available.IsPositive()
}

// InStockProducts keeps the products that can still be sold.
func InStockProducts(products []Product) []Product {
	result := make([]Product, 0, len(products))
	for _, p := range products {
		if p.InStock() {
			result = append(result, p)
		}
	}
	return result
}

func ListProducts(ctx context.Context, b Backend) ([]Product, error) {
	cached, ok, err := utils.RetrieveRedisList[Product](ctx, "")
	if err != nil {
		config.LogError(config.GetLogger(), "product.go", "ListProducts", "RetrieveRedisList", nil, err)
	}
	if ok {
		return cached, nil
	}

	products, err := b.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	if err := utils.StoreRedisList(ctx, products, ""); err != nil {
		config.LogError(config.GetLogger(), "product.go", "ListProducts", "StoreRedisList", nil, err)
	}
	return products, nil
}

func GetProduct(ctx context.Context, b Backend, id string) (*Product, error) {
	products, err := ListProducts(ctx, b)
	if err != nil {
		return nil, err
	}
	for i := range products {
		if products[i].ID == id {
			return &products[i], nil
		}
	}
	return nil, utils.ErrorRecordNotFound
}

func CreateProduct(ctx context.Context, b Backend, input *NewProduct) (*Product, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	product, err := b.CreateProduct(ctx, *input)
	if err != nil {
		return nil, err
	}
	if product == nil {
		product = &Product{Name: input.Name, Available: input.Available.Decimal}
	}

	afterMutation(ctx, mutation{
		action:      ActionTypeCreate,
		resource:    "product",
		referenceId: product.ID,
		after:       product,
		description: fmt.Sprintf("Product %s created.", product.Name),
	})
	return product, nil
}

func UpdateProduct(ctx context.Context, b Backend, id string, input *NewProduct) (*Product, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	oldProduct, err := GetProduct(ctx, b, id)
	if err != nil {
		return nil, err
	}
	product, err := b.UpdateProduct(ctx, id, *input)
	if err != nil {
		return nil, err
	}
	if product == nil {
		product = &Product{ID: id, Name: input.Name, Available: input.Available.Decimal}
	}

	afterMutation(ctx, mutation{
		action:      ActionTypeUpdate,
		resource:    "product",
		referenceId: id,
		before:      oldProduct,
		after:       product,
		description: fmt.Sprintf("Product %s updated.", product.Name),
	})
	return product, nil
}

func DeleteProduct(ctx context.Context, b Backend, id string) (*Product, error) {
	result, err := GetProduct(ctx, b, id)
	if err != nil {
		return nil, err
	}
	if err := b.DeleteProduct(ctx, id); err != nil {
		return nil, err
	}

	afterMutation(ctx, mutation{
		action:      ActionTypeDelete,
		resource:    "product",
		referenceId: id,
		before:      result,
		description: fmt.Sprintf("Product %s deleted.", result.Name),
	})
	return result, nil
}
