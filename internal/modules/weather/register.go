package weather

import (
	"log/slog"
	"net/http"

	"weatherdash/internal/config"
	"weatherdash/internal/modules/weather/aggregate"
	"weatherdash/internal/modules/weather/alerts"
	"weatherdash/internal/modules/weather/controller"
	"weatherdash/internal/modules/weather/locale"
	"weatherdash/internal/modules/weather/location"
	"weatherdash/internal/modules/weather/providers"
	"weatherdash/internal/modules/weather/repository"
	"weatherdash/internal/modules/weather/service"
	"weatherdash/internal/modules/weather/session"
)

// RegisterFeature builds the weather module from cfg and registers its routes.
// The returned session store is owned by the caller, which sweeps and closes it.
func RegisterFeature(mux *http.ServeMux, cfg config.Config, prefs repository.PreferencesRepository, sinks []alerts.Sink, logger *slog.Logger) (*session.Store, error) {
	catalog, err := locale.Load()
	if err != nil {
		return nil, err
	}

	up := cfg.Upstream
	client := providers.NewHTTPClient(providers.Options{
		Timeout: up.Timeout,
		RPS:     up.RPS,
		Burst:   up.Burst,
		Logger:  logger,
	})

	geocoder := providers.NewGeocoder(client, up.GeocodingURL)
	pipeline := aggregate.NewPipeline(
		providers.NewForecastClient(client, up.ForecastURL),
		providers.NewAirQualityClient(client, up.AirQualityURL),
		logger,
	)
	chain := location.NewChain(logger,
		location.NewDefaultCityStrategy(geocoder, cfg.Weather.DefaultCity),
		location.NewDeviceStrategy(geocoder, cfg.Weather.GeolocationTimeout),
		location.NewIPStrategy(providers.NewGeoJS(client, up.IPPrimaryURL)),
		location.NewIPStrategy(providers.NewIPAPI(client, up.IPSecondaryURL)),
	)

	var news service.NewsSource = providers.NewProxyNews(client, up.NewsProxyURL)
	if up.NewsMode == "direct" {
		news = providers.NewDirectNews(client)
	}

	sessions := session.NewStore(cfg.Weather.SuggestDebounce, cfg.Weather.SessionIdleTTL, logger)
	svc := service.NewService(service.Deps{
		Resolver:    chain,
		Geocoder:    geocoder,
		Weather:     pipeline,
		News:        news,
		Catalog:     catalog,
		Preferences: prefs,
		Sessions:    sessions,
		Sinks:       sinks,
		Logger:      logger,
	})

	weatherController := controller.NewWeatherController(svc, cfg.Weather.GeolocationTimeout)
	weatherController.RegisterRoutes(mux)
	return sessions, nil
}
