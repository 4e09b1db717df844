package fx

import (
	"fight-timeline/internal/api"
	"fight-timeline/internal/chart"
	"fight-timeline/internal/config"
	"fight-timeline/internal/database"
	"fight-timeline/internal/label"
	"fight-timeline/internal/logger"
	"fight-timeline/internal/metrics"
	"fight-timeline/internal/repository"
	"fight-timeline/internal/selection"
	"fight-timeline/internal/server"
	"fight-timeline/internal/service"
	"fight-timeline/internal/session"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

func ProvideRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func ProvideMetrics(reg *prometheus.Registry) (*metrics.Metrics, error) {
	return metrics.New(reg)
}

// ProvideDataSource picks the remote data server when DATA_API_URL is set
// and the local database otherwise.
func ProvideDataSource(cfg *config.Config, local *service.DataAccess, logger zerolog.Logger) selection.DataSource {
	if cfg.DataAPIURL != "" {
		logger.Info().Str("data_api_url", cfg.DataAPIURL).Msg("using remote data server")
		return api.NewClient(cfg, logger)
	}
	return local
}

func ProvideMeasurer(cfg *config.Config) (label.Measurer, error) {
	return label.NewFontMeasurer(cfg.LabelFontSize)
}

func ProvideSessionManager(
	cfg *config.Config,
	ds selection.DataSource,
	measurer label.Measurer,
	logger zerolog.Logger,
	m *metrics.Metrics,
) *session.Manager {
	dims := chart.DefaultDimensions()
	dims.Width = cfg.ChartWidth
	dims.Height = cfg.ChartHeight
	return session.NewManager(ds, measurer, session.Options{Dimensions: dims, TTL: cfg.SessionTTL}, logger, m)
}

var Module = fx.Options(
	fx.Provide(config.Load),
	fx.Provide(logger.New),
	fx.Provide(database.New),
	fx.Provide(ProvideRegistry),
	fx.Provide(ProvideMetrics),
	// repos
	fx.Provide(repository.NewFighterRepository),
	fx.Provide(repository.NewFightRepository),
	fx.Provide(repository.NewEventRepository),
	fx.Provide(repository.NewPromotionRepository),
	// svc
	fx.Provide(service.NewBoundsService),
	fx.Provide(service.NewFighterService),
	fx.Provide(service.NewFightService),
	fx.Provide(service.NewCatalogService),
	fx.Provide(service.NewDataAccess),
	fx.Provide(ProvideDataSource),
	// chart sessions
	fx.Provide(ProvideMeasurer),
	fx.Provide(ProvideSessionManager),
	// server
	fx.Provide(server.NewTimelineServer),
	fx.Provide(server.NewSessionServer),
)
