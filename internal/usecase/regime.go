package usecase

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"OscLens/internal/domain/models"
	domrepo "OscLens/internal/domain/repository"
	domsvc "OscLens/internal/domain/service"
	"OscLens/internal/services/compute"
	"OscLens/internal/services/regime"
	"OscLens/pkg/config"
)

// RegimeUsecase classifies volatility regimes straight from stored candles,
// independent of any composite request.
type RegimeUsecase struct {
	candles    domrepo.CandleStore
	vol        domsvc.VolatilityEstimator
	classifier domsvc.RegimeClassifier
	cache      *compute.Cache
	cfg        *config.Config
}

func NewRegimeUsecase(
	candles domrepo.CandleStore,
	vol domsvc.VolatilityEstimator,
	classifier domsvc.RegimeClassifier,
	cache *compute.Cache,
	cfg *config.Config,
) *RegimeUsecase {
	return &RegimeUsecase{candles: candles, vol: vol, classifier: classifier, cache: cache, cfg: cfg}
}

// Regime fits the 2-state model over the full requested range plus warmup
// and returns labels clipped to the display range.
func (u *RegimeUsecase) Regime(ctx context.Context, req models.RegimeRequest) (models.RegimeResult, error) {
	key := compute.Key("regime", req.Asset, strconv.Itoa(req.Days))
	return compute.DoTyped(ctx, u.cache, key, u.cfg.Analytics.CacheTTL.Regime,
		func(ctx context.Context) (models.RegimeResult, error) {
			return u.regime(ctx, req)
		})
}

func (u *RegimeUsecase) regime(ctx context.Context, req models.RegimeRequest) (models.RegimeResult, error) {
	var out models.RegimeResult

	to := time.Now().UTC()
	from := to.AddDate(0, 0, -(req.Days + rangeBufferDays))
	candles, err := u.candles.GetCandles(ctx, req.Asset, from, to, domrepo.TF1d)
	if err != nil {
		return out, fmt.Errorf("candles for %s: %w", req.Asset, err)
	}

	vol := u.vol.Estimate(candles)
	labels, err := u.classifier.Classify(vol)
	if err != nil {
		return out, err
	}
	out.Data = clipLabelsToDays(labels, req.Days)
	out.Metadata = regime.Metadata()
	return out, nil
}
