package services

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/natserract/sfrest/pkg/catalog/schema/postgres"
	sfrest "github.com/natserract/sfrest/pkg/salesforce/rest"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
)

const maxConcurrentDescribes = 10

// SyncMetrics tracks the outcome of one catalog sync
type SyncMetrics struct {
	Succeeded int
	Unchanged int
	Failed    int
	mu        sync.Mutex
}

// AddSuccess increments the stored describes count
func (m *SyncMetrics) AddSuccess() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Succeeded++
}

// AddUnchanged increments the count of objects answered with 304
func (m *SyncMetrics) AddUnchanged() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Unchanged++
}

// AddFailure increments the failed describes count
func (m *SyncMetrics) AddFailure() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Failed++
}

// Total returns the number of objects processed
func (m *SyncMetrics) Total() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Succeeded + m.Unchanged + m.Failed
}

// MetadataClient is the part of the Salesforce session the catalog needs.
type MetadataClient interface {
	GetObjects(ctx context.Context, cond sfrest.ConditionalOptions) (*sfrest.Response, error)
	DescribeObject(ctx context.Context, name string, cond sfrest.ConditionalOptions) (*sfrest.Response, error)
}

// CatalogStore persists describe snapshots and sync jobs.
type CatalogStore interface {
	CreateSyncJob(ctx context.Context, job postgres.SyncJob) error
	UpsertObjectDescribes(ctx context.Context, objects []postgres.ObjectDescribe) error
	CompleteSyncJob(ctx context.Context, job postgres.SyncJob) error
}

var _ CatalogStore = (*postgres.DB)(nil)

// SyncOptions selects what a catalog sync describes.
type SyncOptions struct {
	// Names of the objects to describe. Empty means every object GetObjects lists.
	Names []string
	// ModifiedSince is forwarded as If-Modified-Since; objects answered with
	// 304 are counted as unchanged and not stored.
	ModifiedSince string
}

// CatalogService describes sObjects concurrently and stores the results
type CatalogService struct {
	client     MetadataClient
	store      CatalogStore
	apiVersion string
	logger     *zap.Logger
	now        func() time.Time
}

// NewCatalogService creates a new catalog service
func NewCatalogService(client MetadataClient, store CatalogStore, apiVersion string, logger *zap.Logger) *CatalogService {
	return &CatalogService{
		client:     client,
		store:      store,
		apiVersion: apiVersion,
		logger:     logger,
		now:        time.Now,
	}
}

// Sync describes the selected objects and stores every successful describe
// in one batch once all describes are done. Failures of single objects are
// logged and counted; if the batch cannot be stored every collected object
// counts as failed. Only failing to list the objects aborts the sync.
func (c *CatalogService) Sync(ctx context.Context, opts SyncOptions) (*SyncMetrics, error) {
	startTime := c.now()
	metrics := &SyncMetrics{}

	names := opts.Names
	if len(names) == 0 {
		listed, err := c.listObjects(ctx)
		if err != nil {
			return metrics, err
		}
		names = listed
	}

	c.logger.Info("Starting catalog sync",
		zap.Int("object_count", len(names)),
		zap.String("api_version", c.apiVersion))

	job := postgres.SyncJob{
		ID:         uuid.New(),
		APIVersion: c.apiVersion,
		Status:     postgres.SyncJobRunning,
		TotalItems: int32(len(names)),
		StartedAt:  startTime,
	}
	if err := c.store.CreateSyncJob(ctx, job); err != nil {
		c.logger.Warn("Failed to create sync job", zap.Error(err))
		job.ID = uuid.Nil
	}

	cond := sfrest.ConditionalOptions{ModifiedSince: opts.ModifiedSince}
	batch := &describeBatch{}
	describePool := pool.New().WithMaxGoroutines(maxConcurrentDescribes).WithErrors()
	for _, name := range names {
		describePool.Go(func() error {
			return c.describeObject(ctx, name, cond, metrics, batch)
		})
	}

	if err := describePool.Wait(); err != nil {
		c.logger.Warn("Some objects failed to sync", zap.Error(err))
	}

	if len(batch.objects) > 0 {
		if err := c.store.UpsertObjectDescribes(ctx, batch.objects); err != nil {
			c.logger.Error("Failed to save object describes",
				zap.Int("count", len(batch.objects)),
				zap.Error(err))
			for range batch.objects {
				metrics.AddFailure()
			}
		} else {
			for range batch.objects {
				metrics.AddSuccess()
			}
		}
	}

	if job.ID != uuid.Nil {
		job.Status = postgres.SyncJobCompleted
		if metrics.Failed > 0 && metrics.Succeeded == 0 && metrics.Unchanged == 0 {
			job.Status = postgres.SyncJobFailed
		}
		job.SucceededItems = int32(metrics.Succeeded + metrics.Unchanged)
		job.FailedItems = int32(metrics.Failed)
		job.CompletedAt = pgtype.Timestamptz{Time: c.now(), Valid: true}
		if err := c.store.CompleteSyncJob(ctx, job); err != nil {
			c.logger.Warn("Failed to complete sync job",
				zap.String("job_id", job.ID.String()),
				zap.Error(err))
		}
	}

	c.logger.Info("Completed catalog sync",
		zap.String("job_id", job.ID.String()),
		zap.Duration("duration", time.Since(startTime)),
		zap.Int("succeeded", metrics.Succeeded),
		zap.Int("unchanged", metrics.Unchanged),
		zap.Int("failed", metrics.Failed))

	return metrics, nil
}

func (c *CatalogService) listObjects(ctx context.Context) ([]string, error) {
	resp, err := c.client.GetObjects(ctx, sfrest.ConditionalOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to list objects: %w", err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("list objects failed with status %d: %s", resp.StatusCode, string(resp.Body))
	}

	var names []string
	for _, n := range resp.Get("sobjects.#.name").Array() {
		names = append(names, n.String())
	}
	return names, nil
}

// describeBatch collects the describes of one sync run.
type describeBatch struct {
	mu      sync.Mutex
	objects []postgres.ObjectDescribe
}

func (b *describeBatch) add(o postgres.ObjectDescribe) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects = append(b.objects, o)
}

func (c *CatalogService) describeObject(ctx context.Context, name string, cond sfrest.ConditionalOptions, metrics *SyncMetrics, batch *describeBatch) error {
	resp, err := c.client.DescribeObject(ctx, name, cond)
	if err != nil {
		metrics.AddFailure()
		c.logger.Error("Describe request failed", zap.String("object", name), zap.Error(err))
		return fmt.Errorf("describe %s: %w", name, err)
	}

	if resp.StatusCode == http.StatusNotModified {
		metrics.AddUnchanged()
		c.logger.Debug("Object unchanged", zap.String("object", name))
		return nil
	}
	if !resp.IsSuccess() {
		metrics.AddFailure()
		c.logger.Error("Describe failed",
			zap.String("object", name),
			zap.Int("status_code", resp.StatusCode),
			zap.String("response", string(resp.Body)))
		return fmt.Errorf("describe %s failed with status %d", name, resp.StatusCode)
	}

	obj := postgres.ObjectDescribe{
		Name:       resp.Get("name").String(),
		Label:      resp.Get("label").String(),
		Custom:     resp.Get("custom").Bool(),
		FieldCount: int32(resp.Get("fields.#").Int()),
		APIVersion: c.apiVersion,
		Describe:   resp.Body,
		SyncedAt:   c.now(),
	}
	if obj.Name == "" {
		obj.Name = name
	}

	batch.add(obj)
	c.logger.Debug("Described object",
		zap.String("object", obj.Name),
		zap.Int32("field_count", obj.FieldCount))
	return nil
}
