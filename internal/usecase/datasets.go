package usecase

import (
	"context"
	"strconv"
	"time"

	"OscLens/internal/domain/models"
	domrepo "OscLens/internal/domain/repository"
	domsvc "OscLens/internal/domain/service"
	"OscLens/internal/services/compute"
	"OscLens/pkg/config"
)

// DatasetUsecase serves raw registered series and their display metadata.
type DatasetUsecase struct {
	provider domsvc.SeriesProvider
	cache    *compute.Cache
	cfg      *config.Config
}

func NewDatasetUsecase(provider domsvc.SeriesProvider, cache *compute.Cache, cfg *config.Config) *DatasetUsecase {
	return &DatasetUsecase{provider: provider, cache: cache, cfg: cfg}
}

// Metadata returns display metadata for every registered dataset.
func (u *DatasetUsecase) Metadata() map[string]models.Metadata {
	out := make(map[string]models.Metadata)
	for _, d := range domrepo.Datasets() {
		out[d.Name] = d.Meta
	}
	return out
}

// Data fetches one dataset with its metadata.
func (u *DatasetUsecase) Data(ctx context.Context, req models.DataRequest) (models.DatasetPayload, error) {
	key := compute.Key("data", req.Dataset, strconv.Itoa(req.Days))
	return compute.DoTyped(ctx, u.cache, key, u.cfg.Analytics.CacheTTL.Dataset,
		func(ctx context.Context) (models.DatasetPayload, error) {
			var out models.DatasetPayload
			data, err := u.provider.Fetch(ctx, req.Dataset, req.Days)
			if err != nil {
				return out, err
			}
			meta, err := u.provider.Describe(req.Dataset)
			if err != nil {
				return out, err
			}
			out.Data = data
			out.Metadata = meta
			return out, nil
		})
}

// StatusUsecase reports service health for the status endpoint.
type StatusUsecase struct {
	series    domrepo.SeriesStore
	startedAt time.Time
}

func NewStatusUsecase(series domrepo.SeriesStore) *StatusUsecase {
	return &StatusUsecase{series: series, startedAt: time.Now()}
}

// Status describes the running service and its storage health.
type Status struct {
	Status            string   `json:"status"`
	UptimeSeconds     int64    `json:"uptime_seconds"`
	StorageHealthy    bool     `json:"storage_healthy"`
	AvailableDatasets []string `json:"available_datasets"`
}

func (u *StatusUsecase) Status(ctx context.Context) Status {
	healthy := u.series.Health(ctx) == nil
	names := make([]string, 0)
	for _, d := range domrepo.Datasets() {
		names = append(names, d.Name)
	}
	return Status{
		Status:            "running",
		UptimeSeconds:     int64(time.Since(u.startedAt).Seconds()),
		StorageHealthy:    healthy,
		AvailableDatasets: names,
	}
}
