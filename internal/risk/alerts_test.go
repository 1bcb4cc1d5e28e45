package risk

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mhtran-dev/go-flood-risk/internal/models"
	"github.com/mhtran-dev/go-flood-risk/internal/observability"
)

type fakeAlertWeather struct {
	snap    *models.WeatherSnapshot
	fc      *models.Forecast
	bundle  *models.AlertBundle
	snapErr error
	fcErr   error
	feedErr error
}

func (f *fakeAlertWeather) CurrentWeather(ctx context.Context, q string) (*models.WeatherSnapshot, error) {
	return f.snap, f.snapErr
}

func (f *fakeAlertWeather) Forecast(ctx context.Context, q string, days int) (*models.Forecast, error) {
	return f.fc, f.fcErr
}

func (f *fakeAlertWeather) Alerts(ctx context.Context, q string) (*models.AlertBundle, error) {
	return f.bundle, f.feedErr
}

type fakeHydro struct {
	stations []models.HydroStation
	err      error
}

func (f *fakeHydro) HydroStations(ctx context.Context, province string) ([]models.HydroStation, error) {
	return f.stations, f.err
}

func station(name string, level, warning, alert, danger float64) models.HydroStation {
	return models.HydroStation{
		Name:          name,
		River:         "Mekong",
		Province:      "An Giang",
		WaterLevelM:   level,
		WarningLevelM: warning,
		AlertLevelM:   alert,
		DangerLevelM:  danger,
	}
}

var alertTestTime = time.Date(2026, 8, 25, 6, 0, 0, 0, time.UTC)

func newTestCompiler(weather *fakeAlertWeather, hydro *fakeHydro) *AlertCompiler {
	if weather.fc == nil && weather.fcErr == nil {
		weather.fc = &models.Forecast{}
	}
	if weather.bundle == nil && weather.feedErr == nil {
		weather.bundle = &models.AlertBundle{}
	}
	return NewAlertCompiler(weather, hydro,
		clockwork.NewFakeClockAt(alertTestTime),
		observability.NewMetricsForTesting())
}

func TestCompileHydroDangerBreach(t *testing.T) {
	compiler := newTestCompiler(&fakeAlertWeather{}, &fakeHydro{stations: []models.HydroStation{
		station("Tan Chau", 8.2, 7.0, 7.5, 8.0),
	}})

	report, err := compiler.Compile(context.Background(), "An Giang")
	require.NoError(t, err)

	require.Len(t, report.Alerts, 1)
	a := report.Alerts[0]
	assert.Equal(t, models.AlertTypeHydroDanger, a.Type)
	assert.Equal(t, models.AlertSeverityHigh, a.Severity)
	assert.Equal(t, "An Giang", a.Location)
	assert.Contains(t, a.Message, "Tan Chau")
	assert.Contains(t, a.Message, "0.20m above danger level")
	assert.NotEmpty(t, a.ID)
	assert.NotEmpty(t, a.RecommendedActions)
	assert.Equal(t, alertTestTime, a.Timestamp)

	assert.Equal(t, 1, report.Summary.Total)
	assert.Equal(t, 1, report.Summary.HighSeverity)
	assert.Equal(t, alertTestTime, report.Summary.GeneratedAt)
}

func TestCompileHydroAlertLevel(t *testing.T) {
	compiler := newTestCompiler(&fakeAlertWeather{}, &fakeHydro{stations: []models.HydroStation{
		station("Chau Doc", 7.6, 7.0, 7.5, 8.0),
	}})

	report, err := compiler.Compile(context.Background(), "An Giang")
	require.NoError(t, err)

	require.Len(t, report.Alerts, 1)
	assert.Equal(t, models.AlertTypeHydroAlert, report.Alerts[0].Type)
	assert.Equal(t, models.AlertSeverityMedium, report.Alerts[0].Severity)
	assert.Equal(t, 0, report.Summary.HighSeverity)
}

func TestCompileQuietStationsEmitNothing(t *testing.T) {
	compiler := newTestCompiler(&fakeAlertWeather{}, &fakeHydro{stations: []models.HydroStation{
		station("Can Tho", 5.0, 7.0, 7.5, 8.0),
	}})

	report, err := compiler.Compile(context.Background(), "An Giang")
	require.NoError(t, err)
	assert.Empty(t, report.Alerts)
	assert.Equal(t, 0, report.Summary.Total)
}

func TestCompileDeduplicatesByTypeKeepingWorst(t *testing.T) {
	compiler := newTestCompiler(&fakeAlertWeather{}, &fakeHydro{stations: []models.HydroStation{
		station("Minor Breach", 8.2, 7.0, 7.5, 8.0),
		station("Major Breach", 8.7, 7.0, 7.5, 8.0),
	}})

	report, err := compiler.Compile(context.Background(), "An Giang")
	require.NoError(t, err)

	require.Len(t, report.Alerts, 1)
	assert.Contains(t, report.Alerts[0].Message, "Major Breach")
}

func TestCompileHeavyRainFromForecast(t *testing.T) {
	weather := &fakeAlertWeather{fc: &models.Forecast{Days: []models.ForecastDay{
		{Date: "2026-08-26", PrecipMM: 85},
	}}}
	compiler := newTestCompiler(weather, &fakeHydro{})

	report, err := compiler.Compile(context.Background(), "An Giang")
	require.NoError(t, err)

	require.Len(t, report.Alerts, 1)
	assert.Equal(t, models.AlertTypeHeavyRain, report.Alerts[0].Type)
	assert.Equal(t, models.AlertSeverityHigh, report.Alerts[0].Severity)
}

func TestCompileHeavyRainModerate(t *testing.T) {
	weather := &fakeAlertWeather{fc: &models.Forecast{Days: []models.ForecastDay{
		{Date: "2026-08-26", PrecipMM: 55},
	}}}
	compiler := newTestCompiler(weather, &fakeHydro{})

	report, err := compiler.Compile(context.Background(), "An Giang")
	require.NoError(t, err)

	require.Len(t, report.Alerts, 1)
	assert.Equal(t, models.AlertSeverityMedium, report.Alerts[0].Severity)
}

func TestCompileProlongedRain(t *testing.T) {
	weather := &fakeAlertWeather{fc: &models.Forecast{Days: []models.ForecastDay{
		{Date: "2026-08-26", ChanceOfRain: 85},
		{Date: "2026-08-27", ChanceOfRain: 90},
		{Date: "2026-08-28", ChanceOfRain: 40},
	}}}
	compiler := newTestCompiler(weather, &fakeHydro{})

	report, err := compiler.Compile(context.Background(), "An Giang")
	require.NoError(t, err)

	require.Len(t, report.Alerts, 1)
	assert.Equal(t, models.AlertTypeProlongedRain, report.Alerts[0].Type)
	assert.Contains(t, report.Alerts[0].Message, "2 of the next 3 days")
}

func TestCompileProviderWarningSeverity(t *testing.T) {
	weather := &fakeAlertWeather{bundle: &models.AlertBundle{Warnings: []models.WeatherWarning{
		{Event: "Flood Warning", Headline: "River flooding expected", Severity: "Severe"},
	}}}
	compiler := newTestCompiler(weather, &fakeHydro{})

	report, err := compiler.Compile(context.Background(), "An Giang")
	require.NoError(t, err)

	require.Len(t, report.Alerts, 1)
	assert.Equal(t, models.AlertTypeWeatherWarning, report.Alerts[0].Type)
	assert.Equal(t, models.AlertSeverityHigh, report.Alerts[0].Severity)
	assert.Equal(t, "River flooding expected", report.Alerts[0].Message)
}

func TestCompileRanksHighSeverityFirst(t *testing.T) {
	weather := &fakeAlertWeather{fc: &models.Forecast{Days: []models.ForecastDay{
		{Date: "2026-08-26", PrecipMM: 55},
	}}}
	compiler := newTestCompiler(weather, &fakeHydro{stations: []models.HydroStation{
		station("Tan Chau", 8.5, 7.0, 7.5, 8.0),
	}})

	report, err := compiler.Compile(context.Background(), "An Giang")
	require.NoError(t, err)

	require.Len(t, report.Alerts, 2)
	assert.Equal(t, models.AlertTypeHydroDanger, report.Alerts[0].Type)
	assert.Equal(t, models.AlertTypeHeavyRain, report.Alerts[1].Type)
	assert.Equal(t, 1, report.Summary.HighSeverity)
}

func TestCompileSkipsFailedWeatherSide(t *testing.T) {
	weather := &fakeAlertWeather{fcErr: errors.New("api down"), feedErr: errors.New("api down")}
	compiler := newTestCompiler(weather, &fakeHydro{stations: []models.HydroStation{
		station("Tan Chau", 8.2, 7.0, 7.5, 8.0),
	}})

	report, err := compiler.Compile(context.Background(), "An Giang")
	require.NoError(t, err)

	require.Len(t, report.Alerts, 1)
	assert.Equal(t, models.AlertTypeHydroDanger, report.Alerts[0].Type)
}

func TestCompileRequiresProvince(t *testing.T) {
	compiler := newTestCompiler(&fakeAlertWeather{}, &fakeHydro{})

	_, err := compiler.Compile(context.Background(), "")
	require.Error(t, err)
}

func TestRegionalSummary(t *testing.T) {
	weather := &fakeAlertWeather{snap: &models.WeatherSnapshot{TempC: 29, PrecipMM: 12, Condition: "Rain"}}
	compiler := newTestCompiler(weather, &fakeHydro{stations: []models.HydroStation{
		station("Tan Chau", 8.3, 7.0, 7.5, 8.0),
		station("Chau Doc", 7.6, 7.0, 7.5, 8.0),
		station("Can Tho", 5.0, 7.0, 7.5, 8.0),
	}})

	sum, err := compiler.RegionalSummary(context.Background(), "An Giang")
	require.NoError(t, err)

	assert.Equal(t, "An Giang", sum.Province)
	assert.Equal(t, 3, sum.StationCount)
	assert.Equal(t, 1, sum.StationsAtDanger)
	assert.Equal(t, 1, sum.StationsAtAlert)
	require.NotNil(t, sum.WorstStation)
	assert.Equal(t, "Tan Chau", sum.WorstStation.Name)
	assert.Equal(t, "danger", sum.WorstStation.Status)
	require.NotNil(t, sum.CurrentWeather)
	assert.Equal(t, "Rain", sum.CurrentWeather.Condition)
	assert.Equal(t, 2, sum.ActiveAlerts)
	assert.Equal(t, 1, sum.HighSeverityAlerts)
	assert.Equal(t, alertTestTime, sum.GeneratedAt)
}

func TestRegionalSummaryToleratesWeatherFailure(t *testing.T) {
	weather := &fakeAlertWeather{snapErr: errors.New("api down")}
	compiler := newTestCompiler(weather, &fakeHydro{stations: []models.HydroStation{
		station("Can Tho", 5.0, 7.0, 7.5, 8.0),
	}})

	sum, err := compiler.RegionalSummary(context.Background(), "An Giang")
	require.NoError(t, err)
	assert.Nil(t, sum.CurrentWeather)
	assert.Equal(t, 1, sum.StationCount)
}

func TestRegionalSummaryFailsWithoutStations(t *testing.T) {
	compiler := newTestCompiler(&fakeAlertWeather{}, &fakeHydro{err: errors.New("gone")})

	_, err := compiler.RegionalSummary(context.Background(), "An Giang")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetching hydro stations")
}
