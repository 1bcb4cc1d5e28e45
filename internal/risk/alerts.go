package risk

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/mhtran-dev/go-flood-risk/internal/models"
	"github.com/mhtran-dev/go-flood-risk/internal/observability"
)

// AlertWeatherProvider is the slice of the weather collaborator the alert
// compiler needs.
type AlertWeatherProvider interface {
	CurrentWeather(ctx context.Context, q string) (*models.WeatherSnapshot, error)
	Forecast(ctx context.Context, q string, days int) (*models.Forecast, error)
	Alerts(ctx context.Context, q string) (*models.AlertBundle, error)
}

// HydroProvider reports hydrological station readings for a province.
type HydroProvider interface {
	HydroStations(ctx context.Context, province string) ([]models.HydroStation, error)
}

// AlertCompiler derives active alerts for a province from the forecast,
// the provider's warning feed, and river station readings. Each side that
// fails is skipped with a warning; the compiler reports whatever the
// remaining sides produce.
type AlertCompiler struct {
	weather AlertWeatherProvider
	hydro   HydroProvider
	clock   clockwork.Clock
	metrics *observability.Metrics
}

func NewAlertCompiler(weather AlertWeatherProvider, hydro HydroProvider, clock clockwork.Clock, metrics *observability.Metrics) *AlertCompiler {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &AlertCompiler{weather: weather, hydro: hydro, clock: clock, metrics: metrics}
}

// rankedAlert pairs an alert with how far past its triggering threshold
// the observation was, for ordering within a severity band.
type rankedAlert struct {
	alert  models.Alert
	margin float64
}

// Compile builds the ranked, type-deduplicated alert list for a province.
func (c *AlertCompiler) Compile(ctx context.Context, province string) (*models.AlertReport, error) {
	if province == "" {
		return nil, errors.New("province is required")
	}

	var candidates []rankedAlert

	fc, err := c.weather.Forecast(ctx, province, forecastDays)
	if err != nil {
		slog.Warn("alert forecast fetch failed", "province", province, "error", err)
	} else {
		candidates = append(candidates, c.forecastAlerts(province, fc)...)
	}

	bundle, err := c.weather.Alerts(ctx, province)
	if err != nil {
		slog.Warn("alert feed fetch failed", "province", province, "error", err)
	} else {
		candidates = append(candidates, c.providerWarnings(province, bundle)...)
	}

	stations, err := c.hydro.HydroStations(ctx, province)
	if err != nil {
		slog.Warn("hydro station fetch failed", "province", province, "error", err)
	} else {
		candidates = append(candidates, c.hydroAlerts(province, stations)...)
	}

	alerts := rank(candidates)

	high := 0
	for _, a := range alerts {
		c.metrics.AlertsEmitted.WithLabelValues(string(a.Severity)).Inc()
		if a.Severity == models.AlertSeverityHigh {
			high++
		}
	}

	return &models.AlertReport{
		Province: province,
		Alerts:   alerts,
		Summary: models.AlertSummary{
			Total:        len(alerts),
			HighSeverity: high,
			GeneratedAt:  c.clock.Now().UTC(),
		},
	}, nil
}

// RegionalSummary builds the province monitoring rollup: station threshold
// standing, current weather, and active alert counts. Station data is
// required; the weather side is optional.
func (c *AlertCompiler) RegionalSummary(ctx context.Context, province string) (*models.RegionalSummary, error) {
	if province == "" {
		return nil, errors.New("province is required")
	}

	stations, err := c.hydro.HydroStations(ctx, province)
	if err != nil {
		return nil, fmt.Errorf("fetching hydro stations: %w", err)
	}

	sum := &models.RegionalSummary{
		Province:     province,
		StationCount: len(stations),
		GeneratedAt:  c.clock.Now().UTC(),
	}

	var worstMargin float64
	for _, st := range stations {
		switch {
		case st.WaterLevelM >= st.DangerLevelM:
			sum.StationsAtDanger++
		case st.WaterLevelM >= st.AlertLevelM:
			sum.StationsAtAlert++
		}
		margin := st.WaterLevelM - st.DangerLevelM
		if sum.WorstStation == nil || margin > worstMargin {
			worstMargin = margin
			sum.WorstStation = &models.StationStatus{
				Name:        st.Name,
				River:       st.River,
				WaterLevelM: st.WaterLevelM,
				Status:      stationStatus(st),
			}
		}
	}

	if snap, err := c.weather.CurrentWeather(ctx, province); err != nil {
		slog.Warn("current weather fetch failed", "province", province, "error", err)
	} else {
		sum.CurrentWeather = snap
	}

	if report, err := c.Compile(ctx, province); err == nil {
		sum.ActiveAlerts = report.Summary.Total
		sum.HighSeverityAlerts = report.Summary.HighSeverity
	}

	return sum, nil
}

func (c *AlertCompiler) forecastAlerts(province string, fc *models.Forecast) []rankedAlert {
	var out []rankedAlert

	days := fc.Days
	if len(days) > forecastDays {
		days = days[:forecastDays]
	}

	for _, d := range days {
		if d.PrecipMM < 50 {
			continue
		}
		severity := models.AlertSeverityMedium
		if d.PrecipMM >= 80 {
			severity = models.AlertSeverityHigh
		}
		out = append(out, rankedAlert{
			alert: c.newAlert(models.AlertTypeHeavyRain, severity, province,
				fmt.Sprintf("heavy rainfall of %.0fmm expected on %s", d.PrecipMM, d.Date),
				[]string{
					"avoid low-lying roads and underpasses",
					"move vehicles and valuables to higher ground",
				}),
			margin: d.PrecipMM - 50,
		})
	}

	rainy := 0
	for _, d := range days {
		if d.ChanceOfRain >= 80 {
			rainy++
		}
	}
	if rainy >= 2 {
		out = append(out, rankedAlert{
			alert: c.newAlert(models.AlertTypeProlongedRain, models.AlertSeverityMedium, province,
				fmt.Sprintf("sustained rain likely on %d of the next %d days", rainy, len(days)),
				[]string{
					"check drainage around the property",
					"expect saturated ground and rising water",
				}),
			margin: float64(rainy),
		})
	}

	return out
}

func (c *AlertCompiler) providerWarnings(province string, bundle *models.AlertBundle) []rankedAlert {
	var out []rankedAlert
	for _, w := range bundle.Warnings {
		severity := models.AlertSeverityMedium
		switch strings.ToLower(w.Severity) {
		case "severe", "extreme":
			severity = models.AlertSeverityHigh
		}
		msg := w.Headline
		if msg == "" {
			msg = w.Event
		}
		out = append(out, rankedAlert{
			alert: c.newAlert(models.AlertTypeWeatherWarning, severity, province, msg,
				[]string{"follow official weather service guidance"}),
		})
	}
	return out
}

func (c *AlertCompiler) hydroAlerts(province string, stations []models.HydroStation) []rankedAlert {
	var out []rankedAlert
	for _, st := range stations {
		switch {
		case st.WaterLevelM >= st.DangerLevelM:
			out = append(out, rankedAlert{
				alert: c.newAlert(models.AlertTypeHydroDanger, models.AlertSeverityHigh, province,
					fmt.Sprintf("water level at %s (%s) is %.2fm, %.2fm above danger level",
						st.Name, st.River, st.WaterLevelM, st.WaterLevelM-st.DangerLevelM),
					[]string{
						"prepare for flooding near the river",
						"follow evacuation guidance for riverside areas",
					}),
				margin: st.WaterLevelM - st.DangerLevelM,
			})
		case st.WaterLevelM >= st.AlertLevelM:
			out = append(out, rankedAlert{
				alert: c.newAlert(models.AlertTypeHydroAlert, models.AlertSeverityMedium, province,
					fmt.Sprintf("water level at %s (%s) is %.2fm, above alert level",
						st.Name, st.River, st.WaterLevelM),
					[]string{"monitor river levels near the station"}),
				margin: st.WaterLevelM - st.AlertLevelM,
			})
		}
	}
	return out
}

func (c *AlertCompiler) newAlert(alertType string, severity models.AlertSeverity, province, message string, actions []string) models.Alert {
	return models.Alert{
		ID:                 uuid.NewString(),
		Type:               alertType,
		Severity:           severity,
		Location:           province,
		Message:            message,
		Timestamp:          c.clock.Now().UTC(),
		RecommendedActions: actions,
	}
}

// rank orders candidates by severity then threshold margin, both
// descending, and keeps only the first alert of each type.
func rank(candidates []rankedAlert) []models.Alert {
	sort.SliceStable(candidates, func(i, j int) bool {
		si, sj := severityRank(candidates[i].alert.Severity), severityRank(candidates[j].alert.Severity)
		if si != sj {
			return si > sj
		}
		return candidates[i].margin > candidates[j].margin
	})

	seen := make(map[string]bool, len(candidates))
	out := make([]models.Alert, 0, len(candidates))
	for _, ra := range candidates {
		if seen[ra.alert.Type] {
			continue
		}
		seen[ra.alert.Type] = true
		out = append(out, ra.alert)
	}
	return out
}

func severityRank(s models.AlertSeverity) int {
	switch s {
	case models.AlertSeverityHigh:
		return 2
	case models.AlertSeverityMedium:
		return 1
	default:
		return 0
	}
}

func stationStatus(st models.HydroStation) string {
	switch {
	case st.WaterLevelM >= st.DangerLevelM:
		return "danger"
	case st.WaterLevelM >= st.AlertLevelM:
		return "alert"
	case st.WaterLevelM >= st.WarningLevelM:
		return "warning"
	default:
		return "normal"
	}
}
