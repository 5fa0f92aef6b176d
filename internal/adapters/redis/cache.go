// Package redis is the read-through cache in front of the read-model
// query (GET /api/v1/payments/{id}).
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/caktopay/capture-engine/internal/adapters/postgres"
	"github.com/caktopay/capture-engine/internal/domain/payment"
)

const cacheTTL = 10 * time.Minute

func cacheKey(id uuid.UUID) string {
	return "payment:" + id.String()
}

// PaymentQuery is the subset of postgres.PaymentQuery the cache falls
// back to on a miss.
type PaymentQuery interface {
	GetByID(ctx context.Context, id uuid.UUID) (payment.Response, error)
}

// CachingPaymentReader implements httpin.PaymentReader: Redis first, then
// Postgres, repopulating the cache on a miss.
type CachingPaymentReader struct {
	client *goredis.Client
	query  PaymentQuery
}

// NewCachingPaymentReader builds a CachingPaymentReader bound to addr and
// query.
func NewCachingPaymentReader(addr string, query PaymentQuery) *CachingPaymentReader {
	client := goredis.NewClient(&goredis.Options{Addr: addr})
	return &CachingPaymentReader{client: client, query: query}
}

// GetPayment serves from cache when present; on a miss it queries
// Postgres, primes the cache, and returns the fresh view.
func (r *CachingPaymentReader) GetPayment(id uuid.UUID) (payment.Response, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if cached, ok := r.getCached(ctx, id); ok {
		return cached, nil
	}

	resp, err := r.query.GetByID(ctx, id)
	if errors.Is(err, postgres.ErrPaymentNotFound) {
		return payment.Response{}, err
	}
	if err != nil {
		return payment.Response{}, err
	}

	r.prime(ctx, id, resp)

	return resp, nil
}

// Prime writes resp into the cache directly. Called from the capture
// coordinator's post-commit hook so a freshly captured payment is warm
// on its first read.
func (r *CachingPaymentReader) Prime(id uuid.UUID, resp payment.Response) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	r.prime(ctx, id, resp)
}

func (r *CachingPaymentReader) getCached(ctx context.Context, id uuid.UUID) (payment.Response, bool) {
	raw, err := r.client.Get(ctx, cacheKey(id)).Bytes()
	if err != nil {
		return payment.Response{}, false
	}

	var resp payment.Response
	if err := json.Unmarshal(raw, &resp); err != nil {
		return payment.Response{}, false
	}

	return resp, true
}

func (r *CachingPaymentReader) prime(ctx context.Context, id uuid.UUID, resp payment.Response) {
	raw, err := json.Marshal(resp)
	if err != nil {
		return
	}

	r.client.Set(ctx, cacheKey(id), raw, cacheTTL)
}
