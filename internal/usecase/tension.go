package usecase

import (
	"context"
	"fmt"
	"strconv"

	"OscLens/internal/domain/models"
	domrepo "OscLens/internal/domain/repository"
	domsvc "OscLens/internal/domain/service"
	"OscLens/internal/services/compute"
	"OscLens/internal/services/normalize"
	"OscLens/internal/services/tension"
	"OscLens/pkg/config"
)

// TensionResponse is the pair-tension endpoint body.
type TensionResponse struct {
	models.TensionResult
	Signals   models.TensionSignals `json:"signals"`
	Threshold float64               `json:"threshold"`
}

// TensionUsecase measures structural divergence between a sentiment-side and
// a mechanics-side oscillator, both normalized against the same asset price.
type TensionUsecase struct {
	provider domsvc.SeriesProvider
	cache    *compute.Cache
	cfg      *config.Config
}

func NewTensionUsecase(provider domsvc.SeriesProvider, cache *compute.Cache, cfg *config.Config) *TensionUsecase {
	return &TensionUsecase{provider: provider, cache: cache, cfg: cfg}
}

func (u *TensionUsecase) Tension(ctx context.Context, req models.TensionRequest) (TensionResponse, error) {
	key := compute.Key("tension", req.Asset, req.Sentiment, req.Mechanics,
		strconv.Itoa(req.Days), strconv.Itoa(req.Window))
	return compute.DoTyped(ctx, u.cache, key, u.cfg.Analytics.CacheTTL.Oscillator,
		func(ctx context.Context) (TensionResponse, error) {
			return u.tension(ctx, req)
		})
}

func (u *TensionUsecase) tension(ctx context.Context, req models.TensionRequest) (TensionResponse, error) {
	var out TensionResponse

	fetchDays := req.Days + req.Window + rangeBufferDays
	price, err := u.fetchPrice(ctx, req.Asset, fetchDays)
	if err != nil {
		return out, err
	}

	norm := normalize.New(req.Window, u.cfg.Analytics.MinPeriods, normalize.ModeLevel)
	legs := make(map[string]models.NormalizedSeries, 2)
	for _, name := range []string{req.Sentiment, req.Mechanics} {
		if _, ok := domrepo.LookupDataset(name); !ok {
			return out, fmt.Errorf("unknown dataset: %s", name)
		}
		raw, err := u.provider.Fetch(ctx, name, fetchDays)
		if err != nil {
			return out, fmt.Errorf("fetch %s: %w", name, err)
		}
		legs[name] = norm.Normalize(raw, price)
	}

	analyzer := tension.New(req.Window, u.cfg.Analytics.Tension.MinPeriods)
	name := fmt.Sprintf("%s-%s", req.Sentiment, req.Mechanics)
	result := analyzer.Analyze(name, legs[req.Sentiment], legs[req.Mechanics])
	result.Tension1 = clipToDays(result.Tension1, req.Days)
	result.Tension2 = clipToDays(result.Tension2, req.Days)

	threshold := u.cfg.Analytics.Tension.Threshold
	out.TensionResult = result
	out.Signals = tension.Signals(result, threshold)
	out.Threshold = threshold
	return out, nil
}

func (u *TensionUsecase) fetchPrice(ctx context.Context, asset string, days int) (models.Series, error) {
	d, ok := domrepo.PriceDataset(asset)
	if !ok {
		return nil, fmt.Errorf("no price dataset for asset %s", asset)
	}
	price, err := u.provider.Fetch(ctx, d.Name, days)
	if err != nil {
		return nil, fmt.Errorf("price for %s: %w", asset, err)
	}
	return price, nil
}
