package middlewares

import (
	"context"
	"time"

	"bitbucket.org/mmdatafocus/meatshop_console/models"
	"bitbucket.org/mmdatafocus/meatshop_console/utils"
	"github.com/gin-gonic/gin"
	"github.com/graph-gophers/dataloader/v7"
)

type ctxKey string

const (
	loadersKey = ctxKey("dataloaders")
)

// Loaders wrap the per-request data loaders
type Loaders struct {
	productLoader *dataloader.Loader[string, *models.Product]
}

func NewLoaders(b models.Backend) *Loaders {
	productReader := &productReader{backend: b}

	return &Loaders{
		productLoader: dataloader.NewBatchedLoader(productReader.getProducts, dataloader.WithWait[string, *models.Product](time.Millisecond)),
	}
}

func LoaderMiddleware(b models.Backend) gin.HandlerFunc {
	return func(c *gin.Context) {
		loader := NewLoaders(b)
		ctx := WithLoaders(c.Request.Context(), loader)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func WithLoaders(ctx context.Context, loaders *Loaders) context.Context {
	return context.WithValue(ctx, loadersKey, loaders)
}

func For(ctx context.Context) *Loaders {
	loaders, _ := ctx.Value(loadersKey).(*Loaders)
	return loaders
}

func handleError[T any](itemsLength int, err error) []*dataloader.Result[T] {
	result := make([]*dataloader.Result[T], itemsLength)
	for i := 0; i < itemsLength; i++ {
		result[i] = &dataloader.Result[T]{Error: err}
	}
	return result
}

// turns fetched records into dataloader results, in the order of ids
// ids with no record get utils.ErrorRecordNotFound
func generateLoaderResults[T any](results []T, ids []string, idOf func(T) string) []*dataloader.Result[*T] {
	resultMap := make(map[string]T, len(results))
	for _, result := range results {
		resultMap[idOf(result)] = result
	}

	loaderResults := make([]*dataloader.Result[*T], 0, len(ids))
	for _, id := range ids {
		data, ok := resultMap[id]
		if !ok {
			loaderResults = append(loaderResults, &dataloader.Result[*T]{Error: utils.ErrorRecordNotFound})
			continue
		}
		loaderResults = append(loaderResults, &dataloader.Result[*T]{Data: &data})
	}
	return loaderResults
}
