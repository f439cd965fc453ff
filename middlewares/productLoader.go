package middlewares

import (
	"context"

	"bitbucket.org/mmdatafocus/meatshop_console/models"
	"github.com/graph-gophers/dataloader/v7"
)

type productReader struct {
	backend models.Backend
}

// the external API has no batch endpoint, so one batch is one (cached) catalogue fetch
func (r *productReader) getProducts(ctx context.Context, ids []string) []*dataloader.Result[*models.Product] {
	results, err := models.ListProducts(ctx, r.backend)
	if err != nil {
		return handleError[*models.Product](len(ids), err)
	}
	return generateLoaderResults(results, ids, func(p models.Product) string { return p.ID })
}

func GetProduct(ctx context.Context, id string) (*models.Product, error) {
	loaders := For(ctx)
	return loaders.productLoader.Load(ctx, id)()
}

func GetProducts(ctx context.Context, ids []string) ([]*models.Product, []error) {
	loaders := For(ctx)
	return loaders.productLoader.LoadMany(ctx, ids)()
}

// ProductLookup resolves draft lines through the request's loader.
// Without a loader in the context it falls back to one product list fetch.
func ProductLookup(b models.Backend) models.ProductLookup {
	return func(ctx context.Context, ids []string) ([]*models.Product, []error) {
		if For(ctx) != nil {
			return GetProducts(ctx, ids)
		}
		products, err := models.ListProducts(ctx, b)
		if err != nil {
			errs := make([]error, len(ids))
			for i := range errs {
				errs[i] = err
			}
			return make([]*models.Product, len(ids)), errs
		}
		return models.ProductListLookup(products)(ctx, ids)
	}
}
