package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/soochnamitra/dash-core/pkg/metrics"
	"github.com/soochnamitra/dash-core/pkg/models/domain"
	"github.com/soochnamitra/dash-core/pkg/server"
	"github.com/soochnamitra/dash-core/pkg/services/catalog"
	"github.com/soochnamitra/dash-core/pkg/services/config"
	"github.com/soochnamitra/dash-core/pkg/services/dashboard"
	"github.com/soochnamitra/dash-core/pkg/services/locate"
	"github.com/soochnamitra/dash-core/pkg/store/geocode"
	"github.com/soochnamitra/dash-core/pkg/store/upstream"
)

var cfgPath string

func main() {
	var rootCmd = &cobra.Command{
		Use:   "web",
		Short: "Start the web server for the expenditure dashboard",
		RunE:  runServer,
	}

	rootCmd.Flags().StringVarP(&cfgPath, "config", "c", "config.yaml",
		"Path to the configuration file")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// noDevice is the web deployment's geolocation source: coordinates come
// from clients over /api/v1/locate, never from the server host.
type noDevice struct{}

func (noDevice) Current(context.Context) (domain.Coordinates, error) {
	return domain.Coordinates{}, &domain.GeolocationError{Kind: domain.GeoUnavailable}
}

func runServer(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Error loading .env file: %v\n", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if addr := os.Getenv("LISTEN_ADDR"); addr != "" {
		cfg.ListenAddr = addr
	}

	m := metrics.New(prometheus.DefaultRegisterer)
	clock := clockwork.NewRealClock()

	upstreamClient := upstream.NewClient(cfg.UpstreamURL, cfg.UpstreamTimeout, m)
	geocoder := geocode.NewCachedReverser(
		geocode.NewClient(cfg.GeocoderURL, cfg.GeocoderUserAgent, cfg.GeocoderTimeout, m),
		cfg.GeocodeCacheSize,
		m,
	)

	cat := catalog.New(upstreamClient)
	orchestrator := dashboard.NewOrchestrator(upstreamClient, cat, clock, m, cfg.DefaultMonths)
	resolver := locate.NewResolver(noDevice{}, geocoder, cat, orchestrator, clock, m)
	service := dashboard.NewService(orchestrator, resolver, upstreamClient)

	// Warm the region catalog so the first states or locate request does
	// not pay the upstream round trip.
	go func() {
		warmCtx := logger.WithContext(context.Background())
		if err := orchestrator.LoadStates(warmCtx); err != nil {
			logger.Warn().Err(err).Msg("initial state list load failed")
		}
	}()

	logger.Info().Str("upstream", cfg.UpstreamURL).Str("geocoder", cfg.GeocoderURL).
		Msgf("Configuration found at `%s` successfully loaded.", cfgPath)

	webAPI := server.NewWebAPI(logger, server.Config{
		Addr: cfg.ListenAddr,
		Dependencies: server.Dependencies{
			Dashboard: service,
		},
	})

	return webAPI.Start()
}
