package risk

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mhtran-dev/go-flood-risk/internal/cache"
	"github.com/mhtran-dev/go-flood-risk/internal/models"
	"github.com/mhtran-dev/go-flood-risk/internal/observability"
)

var testLocation = models.Location{
	Latitude:  10.7769,
	Longitude: 106.7009,
	Province:  "Ho Chi Minh City",
}

type fakeForecastProvider struct {
	mu    sync.Mutex
	calls int
	fc    *models.Forecast
	err   error
}

func (f *fakeForecastProvider) Forecast(ctx context.Context, q string, days int) (*models.Forecast, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.fc, nil
}

func (f *fakeForecastProvider) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestWeatherScorerHeavyRainHighHumidity(t *testing.T) {
	provider := &fakeForecastProvider{fc: &models.Forecast{
		Current: models.WeatherSnapshot{PrecipMM: 55, Humidity: 92},
	}}
	scorer := NewWeatherScorer(provider,
		cache.New[*models.Forecast](10*time.Minute, 16, clockwork.NewFakeClock()),
		observability.NewMetricsForTesting())

	res := scorer.Score(context.Background(), testLocation)

	assert.False(t, res.Degraded)
	assert.Equal(t, SourceWeather, res.Source)
	assert.Equal(t, 70, res.Assessment.Score)
	assert.Equal(t, models.SourceLevelHigh, res.Assessment.Level)
	assert.Contains(t, res.Assessment.Factors[0], "heavy rainfall")
}

func TestWeatherScorerForecastDays(t *testing.T) {
	day := models.ForecastDay{Date: "2026-08-26", PrecipMM: 35, ChanceOfRain: 85}
	provider := &fakeForecastProvider{fc: &models.Forecast{
		Days: []models.ForecastDay{day, day, day,
			{Date: "2026-08-29", PrecipMM: 200, ChanceOfRain: 100}},
	}}
	scorer := NewWeatherScorer(provider,
		cache.New[*models.Forecast](10*time.Minute, 16, clockwork.NewFakeClock()),
		observability.NewMetricsForTesting())

	res := scorer.Score(context.Background(), testLocation)

	// Three scored days at +10 precip and +5 chance each; the fourth day
	// is beyond the outlook window and ignored.
	assert.Equal(t, 45, res.Assessment.Score)
	assert.Equal(t, models.SourceLevelMedium, res.Assessment.Level)
}

func TestWeatherScorerCapsAtHundred(t *testing.T) {
	day := models.ForecastDay{Date: "2026-08-26", PrecipMM: 40, ChanceOfRain: 90}
	provider := &fakeForecastProvider{fc: &models.Forecast{
		Current: models.WeatherSnapshot{PrecipMM: 60, Humidity: 95, WindKPH: 70},
		Days:    []models.ForecastDay{day, day, day},
	}}
	scorer := NewWeatherScorer(provider,
		cache.New[*models.Forecast](10*time.Minute, 16, clockwork.NewFakeClock()),
		observability.NewMetricsForTesting())

	res := scorer.Score(context.Background(), testLocation)
	assert.Equal(t, 100, res.Assessment.Score)
}

func TestWeatherScorerDegradedOnProviderError(t *testing.T) {
	provider := &fakeForecastProvider{err: errors.New("connection refused")}
	scorer := NewWeatherScorer(provider,
		cache.New[*models.Forecast](10*time.Minute, 16, clockwork.NewFakeClock()),
		observability.NewMetricsForTesting())

	res := scorer.Score(context.Background(), testLocation)

	assert.True(t, res.Degraded)
	assert.Equal(t, 50, res.Assessment.Score)
	assert.Equal(t, models.SourceLevelMedium, res.Assessment.Level)
	assert.Equal(t, []string{"no weather data available"}, res.Assessment.Factors)
	assert.Contains(t, res.Reason, "connection refused")
}

func TestWeatherScorerCachesUntilTTL(t *testing.T) {
	clock := clockwork.NewFakeClock()
	provider := &fakeForecastProvider{fc: &models.Forecast{
		Current: models.WeatherSnapshot{PrecipMM: 25},
	}}
	scorer := NewWeatherScorer(provider,
		cache.New[*models.Forecast](10*time.Minute, 16, clock),
		observability.NewMetricsForTesting())

	first := scorer.Score(context.Background(), testLocation)
	second := scorer.Score(context.Background(), testLocation)
	assert.Equal(t, first.Assessment.Score, second.Assessment.Score)
	assert.Equal(t, 1, provider.callCount())

	clock.Advance(10 * time.Minute)
	scorer.Score(context.Background(), testLocation)
	assert.Equal(t, 2, provider.callCount())
}

func TestWeatherScorerFailureDoesNotPoisonCache(t *testing.T) {
	provider := &fakeForecastProvider{err: errors.New("boom")}
	scorer := NewWeatherScorer(provider,
		cache.New[*models.Forecast](10*time.Minute, 16, clockwork.NewFakeClock()),
		observability.NewMetricsForTesting())

	scorer.Score(context.Background(), testLocation)
	provider.mu.Lock()
	provider.err = nil
	provider.fc = &models.Forecast{Current: models.WeatherSnapshot{PrecipMM: 55, Humidity: 92}}
	provider.mu.Unlock()

	res := scorer.Score(context.Background(), testLocation)
	assert.False(t, res.Degraded)
	assert.Equal(t, 70, res.Assessment.Score)
	assert.Equal(t, 2, provider.callCount())
}

type fakeElevationProvider struct {
	gotPoints []models.Coordinates
	pts       []models.ElevationPoint
	err       error
}

func (f *fakeElevationProvider) Elevations(ctx context.Context, points []models.Coordinates) ([]models.ElevationPoint, error) {
	f.gotPoints = points
	if f.err != nil {
		return nil, f.err
	}
	return f.pts, nil
}

func flatElevations(center float64, n int) []models.ElevationPoint {
	pts := make([]models.ElevationPoint, n)
	for i := range pts {
		pts[i] = models.ElevationPoint{Elevation: center}
	}
	return pts
}

func TestTerrainScorerLowFlatGround(t *testing.T) {
	provider := &fakeElevationProvider{pts: flatElevations(3, 5)}
	scorer := NewTerrainScorer(provider,
		cache.New[[]models.ElevationPoint](24*time.Hour, 16, clockwork.NewFakeClock()),
		observability.NewMetricsForTesting())

	res := scorer.Score(context.Background(), testLocation)

	require.False(t, res.Degraded)
	// +40 very low elevation, +20 water proximity, no slope increment.
	assert.Equal(t, 60, res.Assessment.Score)
	assert.Equal(t, models.SourceLevelMedium, res.Assessment.Level)
	assert.Contains(t, res.Assessment.Factors[0], "very low elevation")
}

func TestTerrainScorerSlope(t *testing.T) {
	pts := []models.ElevationPoint{
		{Elevation: 15},
		{Elevation: 20.55},
		{Elevation: 20.55},
		{Elevation: 20.55},
		{Elevation: 20.55},
	}
	provider := &fakeElevationProvider{pts: pts}
	scorer := NewTerrainScorer(provider,
		cache.New[[]models.ElevationPoint](24*time.Hour, 16, clockwork.NewFakeClock()),
		observability.NewMetricsForTesting())

	res := scorer.Score(context.Background(), testLocation)

	// +10 moderate elevation, +15 steep slope (5%), +12 proximity 0.6.
	assert.Equal(t, 37, res.Assessment.Score)
	assert.Equal(t, models.SourceLevelLow, res.Assessment.Level)
}

func TestTerrainScorerSamplesFivePoints(t *testing.T) {
	provider := &fakeElevationProvider{pts: flatElevations(5, 5)}
	scorer := NewTerrainScorer(provider,
		cache.New[[]models.ElevationPoint](24*time.Hour, 16, clockwork.NewFakeClock()),
		observability.NewMetricsForTesting())

	scorer.Score(context.Background(), testLocation)

	require.Len(t, provider.gotPoints, 5)
	assert.Equal(t, testLocation.Latitude, provider.gotPoints[0].Latitude)
	assert.Equal(t, testLocation.Latitude+slopeOffsetDeg, provider.gotPoints[1].Latitude)
	assert.Equal(t, testLocation.Longitude-slopeOffsetDeg, provider.gotPoints[4].Longitude)
}

func TestTerrainScorerDegraded(t *testing.T) {
	t.Run("provider error", func(t *testing.T) {
		provider := &fakeElevationProvider{err: errors.New("timeout")}
		scorer := NewTerrainScorer(provider,
			cache.New[[]models.ElevationPoint](24*time.Hour, 16, clockwork.NewFakeClock()),
			observability.NewMetricsForTesting())

		res := scorer.Score(context.Background(), testLocation)
		assert.True(t, res.Degraded)
		assert.Equal(t, 50, res.Assessment.Score)
		assert.Equal(t, []string{"no elevation data available"}, res.Assessment.Factors)
	})
	t.Run("empty response", func(t *testing.T) {
		provider := &fakeElevationProvider{}
		scorer := NewTerrainScorer(provider,
			cache.New[[]models.ElevationPoint](24*time.Hour, 16, clockwork.NewFakeClock()),
			observability.NewMetricsForTesting())

		res := scorer.Score(context.Background(), testLocation)
		assert.True(t, res.Degraded)
		assert.Contains(t, res.Reason, "empty elevation response")
	})
}

type fakeMapProvider struct {
	gotMinLat, gotMinLng, gotMaxLat, gotMaxLng float64

	bundle *models.InfrastructureBundle
	err    error
}

func (f *fakeMapProvider) Infrastructure(ctx context.Context, minLat, minLng, maxLat, maxLng float64) (*models.InfrastructureBundle, error) {
	f.gotMinLat, f.gotMinLng, f.gotMaxLat, f.gotMaxLng = minLat, minLng, maxLat, maxLng
	if f.err != nil {
		return nil, f.err
	}
	return f.bundle, nil
}

func TestInfrastructureScorerDenseRiverside(t *testing.T) {
	provider := &fakeMapProvider{bundle: &models.InfrastructureBundle{
		Rivers:      4,
		WaterBodies: 3,
		Buildings:   600,
		Roads:       250,
	}}
	scorer := NewInfrastructureScorer(provider,
		cache.New[*models.InfrastructureBundle](time.Hour, 16, clockwork.NewFakeClock()),
		observability.NewMetricsForTesting())

	res := scorer.Score(context.Background(), testLocation)

	// +30 water features, +15 no drainage, +10 no defenses,
	// +15 buildings, +10 roads.
	assert.Equal(t, 80, res.Assessment.Score)
	assert.Equal(t, models.SourceLevelHigh, res.Assessment.Level)
}

func TestInfrastructureScorerWellDefended(t *testing.T) {
	provider := &fakeMapProvider{bundle: &models.InfrastructureBundle{
		Rivers:           1,
		DrainageChannels: 8,
		FloodDefenses:    4,
		Buildings:        50,
		Roads:            60,
	}}
	scorer := NewInfrastructureScorer(provider,
		cache.New[*models.InfrastructureBundle](time.Hour, 16, clockwork.NewFakeClock()),
		observability.NewMetricsForTesting())

	res := scorer.Score(context.Background(), testLocation)

	// +10 water features, +5 buildings, +5 roads; drainage and defenses
	// plentiful enough to add nothing.
	assert.Equal(t, 20, res.Assessment.Score)
	assert.Equal(t, models.SourceLevelLow, res.Assessment.Level)
}

func TestInfrastructureScorerBoundingBox(t *testing.T) {
	provider := &fakeMapProvider{bundle: &models.InfrastructureBundle{}}
	scorer := NewInfrastructureScorer(provider,
		cache.New[*models.InfrastructureBundle](time.Hour, 16, clockwork.NewFakeClock()),
		observability.NewMetricsForTesting())

	scorer.Score(context.Background(), models.Location{Latitude: 10.0, Longitude: 106.0})

	assert.InDelta(t, 9.955, provider.gotMinLat, 1e-9)
	assert.InDelta(t, 105.955, provider.gotMinLng, 1e-9)
	assert.InDelta(t, 10.045, provider.gotMaxLat, 1e-9)
	assert.InDelta(t, 106.045, provider.gotMaxLng, 1e-9)
}

func TestInfrastructureScorerDegraded(t *testing.T) {
	provider := &fakeMapProvider{err: errors.New("overpass busy")}
	scorer := NewInfrastructureScorer(provider,
		cache.New[*models.InfrastructureBundle](time.Hour, 16, clockwork.NewFakeClock()),
		observability.NewMetricsForTesting())

	res := scorer.Score(context.Background(), testLocation)

	assert.True(t, res.Degraded)
	assert.Equal(t, 50, res.Assessment.Score)
	assert.Equal(t, []string{"unable to assess infrastructure"}, res.Assessment.Factors)
}

type fakeHistoryProvider struct {
	mu      sync.Mutex
	calls   int
	gotFrom int
	gotTo   int
	records []models.DisasterRecord
	err     error
}

func (f *fakeHistoryProvider) DisasterHistory(ctx context.Context, province string, fromYear, toYear int) ([]models.DisasterRecord, error) {
	f.mu.Lock()
	f.calls++
	f.gotFrom, f.gotTo = fromYear, toYear
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.records, nil
}

func floodRecords(damage float64, years ...int) []models.DisasterRecord {
	records := make([]models.DisasterRecord, 0, len(years))
	for _, y := range years {
		records = append(records, models.DisasterRecord{Type: "flood", Year: y, DamageUSD: damage})
	}
	return records
}

func historicalTestClock() clockwork.Clock {
	return clockwork.NewFakeClockAt(time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC))
}

func TestHistoricalScorerFrequentDamagingIncreasing(t *testing.T) {
	years := []int{1998, 2000, 2003, 2005, 2013, 2015, 2017, 2019, 2021, 2022, 2023, 2024}
	provider := &fakeHistoryProvider{records: floodRecords(12_000_000, years...)}
	scorer := NewHistoricalScorer(provider,
		cache.New[[]models.DisasterRecord](24*time.Hour, 16, clockwork.NewFakeClock()),
		historicalTestClock(),
		observability.NewMetricsForTesting())

	res := scorer.Score(context.Background(), testLocation)

	// +40 for 12 events, +20 for $12M average, +20 increasing trend
	// (8 events since 2011 against 4 before).
	require.False(t, res.Degraded)
	assert.Equal(t, 80, res.Assessment.Score)
	assert.Equal(t, models.SourceLevelHigh, res.Assessment.Level)
	assert.Contains(t, res.Assessment.Factors, "flood frequency increasing")
}

func TestHistoricalScorerStableTrend(t *testing.T) {
	provider := &fakeHistoryProvider{records: floodRecords(500_000, 2000, 2015)}
	scorer := NewHistoricalScorer(provider,
		cache.New[[]models.DisasterRecord](24*time.Hour, 16, clockwork.NewFakeClock()),
		historicalTestClock(),
		observability.NewMetricsForTesting())

	res := scorer.Score(context.Background(), testLocation)

	// +20 for 2 events, +10 stable trend, damage below $1M adds nothing.
	assert.Equal(t, 30, res.Assessment.Score)
	assert.Contains(t, res.Assessment.Factors, "flood frequency stable")
}

func TestHistoricalScorerNoEventsIsGenuineZero(t *testing.T) {
	provider := &fakeHistoryProvider{}
	scorer := NewHistoricalScorer(provider,
		cache.New[[]models.DisasterRecord](24*time.Hour, 16, clockwork.NewFakeClock()),
		historicalTestClock(),
		observability.NewMetricsForTesting())

	res := scorer.Score(context.Background(), testLocation)

	assert.False(t, res.Degraded)
	assert.Equal(t, 0, res.Assessment.Score)
	assert.Equal(t, models.SourceLevelLow, res.Assessment.Level)
	assert.Contains(t, res.Assessment.Factors, "no flood events on record")
}

func TestHistoricalScorerLookbackWindow(t *testing.T) {
	provider := &fakeHistoryProvider{}
	scorer := NewHistoricalScorer(provider,
		cache.New[[]models.DisasterRecord](24*time.Hour, 16, clockwork.NewFakeClock()),
		historicalTestClock(),
		observability.NewMetricsForTesting())

	scorer.Score(context.Background(), testLocation)

	assert.Equal(t, 1996, provider.gotFrom)
	assert.Equal(t, 2026, provider.gotTo)
}

func TestHistoricalScorerDegraded(t *testing.T) {
	t.Run("provider error", func(t *testing.T) {
		provider := &fakeHistoryProvider{err: errors.New("portal down")}
		scorer := NewHistoricalScorer(provider,
			cache.New[[]models.DisasterRecord](24*time.Hour, 16, clockwork.NewFakeClock()),
			historicalTestClock(),
			observability.NewMetricsForTesting())

		res := scorer.Score(context.Background(), testLocation)
		assert.True(t, res.Degraded)
		assert.Equal(t, 30, res.Assessment.Score)
		assert.Equal(t, models.SourceLevelLow, res.Assessment.Level)
		assert.Equal(t, []string{"no historical flood data available"}, res.Assessment.Factors)
	})
	t.Run("missing province", func(t *testing.T) {
		provider := &fakeHistoryProvider{records: floodRecords(1, 2020)}
		scorer := NewHistoricalScorer(provider,
			cache.New[[]models.DisasterRecord](24*time.Hour, 16, clockwork.NewFakeClock()),
			historicalTestClock(),
			observability.NewMetricsForTesting())

		res := scorer.Score(context.Background(), models.Location{Latitude: 10, Longitude: 106})
		assert.True(t, res.Degraded)
		assert.Equal(t, 0, provider.calls)
	})
}

func TestHistoricalScorerCachesByProvince(t *testing.T) {
	provider := &fakeHistoryProvider{records: floodRecords(2_000_000, 2018, 2020, 2022)}
	scorer := NewHistoricalScorer(provider,
		cache.New[[]models.DisasterRecord](24*time.Hour, 16, clockwork.NewFakeClock()),
		historicalTestClock(),
		observability.NewMetricsForTesting())

	scorer.Score(context.Background(), testLocation)
	scorer.Score(context.Background(), testLocation)
	assert.Equal(t, 1, provider.calls)

	other := testLocation
	other.Province = "An Giang"
	scorer.Score(context.Background(), other)
	assert.Equal(t, 2, provider.calls)
}

type fakeCensusProvider struct {
	rec *models.DensityRecord
	err error
}

func (f *fakeCensusProvider) PopulationDensity(ctx context.Context, province string) (*models.DensityRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.rec, nil
}

func TestPopulationScorerDenseUrban(t *testing.T) {
	provider := &fakeCensusProvider{rec: &models.DensityRecord{DensityPerKM2: 4300, UrbanizationPct: 79}}
	scorer := NewPopulationScorer(provider,
		cache.New[*models.DensityRecord](24*time.Hour, 16, clockwork.NewFakeClock()),
		observability.NewMetricsForTesting())

	res := scorer.Score(context.Background(), testLocation)

	assert.Equal(t, 60, res.Assessment.Score)
	assert.Equal(t, models.SourceLevelMedium, res.Assessment.Level)
}

func TestPopulationScorerRural(t *testing.T) {
	provider := &fakeCensusProvider{rec: &models.DensityRecord{DensityPerKM2: 150, UrbanizationPct: 20}}
	scorer := NewPopulationScorer(provider,
		cache.New[*models.DensityRecord](24*time.Hour, 16, clockwork.NewFakeClock()),
		observability.NewMetricsForTesting())

	res := scorer.Score(context.Background(), testLocation)

	assert.Equal(t, 0, res.Assessment.Score)
	assert.Equal(t, models.SourceLevelLow, res.Assessment.Level)
}

func TestPopulationScorerDegraded(t *testing.T) {
	provider := &fakeCensusProvider{err: errors.New("census api down")}
	scorer := NewPopulationScorer(provider,
		cache.New[*models.DensityRecord](24*time.Hour, 16, clockwork.NewFakeClock()),
		observability.NewMetricsForTesting())

	res := scorer.Score(context.Background(), testLocation)

	assert.True(t, res.Degraded)
	assert.Equal(t, 30, res.Assessment.Score)
	assert.Equal(t, []string{"no population data available"}, res.Assessment.Factors)
}
