// internal/service/order/bulk.go
package order

import (
	"context"
	"sync"

	"github.com/basharmd94/orderapp-sub000/internal/domain/order"

	"go.uber.org/zap"
)

// Store persists one order atomically per call.
type Store interface {
	CreateOrder(ctx context.Context, zid int64, spec *order.Spec, actor *order.Actor) (*order.Result, error)
	ListByInvoice(ctx context.Context, zid int64, invoiceNo string) ([]*order.Line, error)
	ListByUsername(ctx context.Context, zid int64, username string, limit int) ([]*order.Line, error)
}

type Service struct {
	store          Store
	maxConcurrency int
	logger         *zap.Logger
}

func NewService(store Store, maxConcurrency int, logger *zap.Logger) *Service {
	if maxConcurrency < 1 {
		maxConcurrency = 1
	}
	return &Service{store: store, maxConcurrency: maxConcurrency, logger: logger}
}

// Submit ingests a batch of orders. A single order is stored synchronously;
// larger batches fan out over a bounded worker pool where each worker owns
// its job's transaction. One failed order never aborts the batch: it comes
// back as a failed Result alongside the successes. Result order is not
// guaranteed to match input order.
func (s *Service) Submit(ctx context.Context, zid int64, specs []*order.Spec, actor *order.Actor) []*order.Result {
	switch len(specs) {
	case 0:
		return []*order.Result{}
	case 1:
		return []*order.Result{s.createOne(ctx, zid, specs[0], actor)}
	}

	jobs := make(chan *order.Spec, len(specs))
	for _, spec := range specs {
		jobs <- spec
	}
	close(jobs)

	workers := s.maxConcurrency
	if len(specs) < workers {
		workers = len(specs)
	}

	results := make(chan *order.Result, len(specs))
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for spec := range jobs {
				results <- s.createOne(ctx, zid, spec, actor)
			}
		}()
	}
	wg.Wait()
	close(results)

	out := make([]*order.Result, 0, len(specs))
	for r := range results {
		out = append(out, r)
	}
	return out
}

func (s *Service) createOne(ctx context.Context, zid int64, spec *order.Spec, actor *order.Actor) *order.Result {
	res, err := s.store.CreateOrder(ctx, zid, spec, actor)
	if err != nil {
		s.logger.Error("order ingestion failed",
			zap.Int64("zid", zid),
			zap.String("xcus", spec.Xcus),
			zap.String("username", actor.Username),
			zap.Error(err))
		return &order.Result{
			Xcus:      spec.Xcus,
			Lines:     len(spec.Items),
			Succeeded: false,
			Error:     "failed to store order",
		}
	}
	return res
}

// Invoice returns the lines of one invoice.
func (s *Service) Invoice(ctx context.Context, zid int64, invoiceNo string) ([]*order.Line, error) {
	return s.store.ListByInvoice(ctx, zid, invoiceNo)
}

// Recent returns the actor's recent order lines in the business unit.
func (s *Service) Recent(ctx context.Context, zid int64, username string, limit int) ([]*order.Line, error) {
	return s.store.ListByUsername(ctx, zid, username, limit)
}
