package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/soochnamitra/dash-core/pkg/metrics"
	"github.com/soochnamitra/dash-core/pkg/runtime/terminal"
	"github.com/soochnamitra/dash-core/pkg/services/catalog"
	"github.com/soochnamitra/dash-core/pkg/services/config"
	"github.com/soochnamitra/dash-core/pkg/services/dashboard"
	"github.com/soochnamitra/dash-core/pkg/services/locate"
	"github.com/soochnamitra/dash-core/pkg/store/geocode"
	"github.com/soochnamitra/dash-core/pkg/store/upstream"
)

func main() {
	_ = godotenv.Load()

	logger := zerolog.New(os.Stderr).With().Timestamp().Logger().Level(zerolog.WarnLevel)

	cfgPath := os.Getenv("DASH_CONFIG")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}
	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	m := metrics.New(prometheus.NewRegistry())
	clock := clockwork.NewRealClock()

	upstreamClient := upstream.NewClient(cfg.UpstreamURL, cfg.UpstreamTimeout, m)
	geocoder := geocode.NewCachedReverser(
		geocode.NewClient(cfg.GeocoderURL, cfg.GeocoderUserAgent, cfg.GeocoderTimeout, m),
		cfg.GeocodeCacheSize,
		m,
	)

	cat := catalog.New(upstreamClient)
	orchestrator := dashboard.NewOrchestrator(upstreamClient, cat, clock, m, cfg.DefaultMonths)
	geo := terminal.NewCoordinateSource()
	resolver := locate.NewResolver(geo, geocoder, cat, orchestrator, clock, m)
	service := dashboard.NewService(orchestrator, resolver, upstreamClient)

	cli := terminal.NewCLI(terminal.Options{
		Service:  service,
		Resolver: resolver,
		Geo:      geo,
		Logger:   logger,
		Input:    os.Stdin,
		Output:   os.Stdout,
	})

	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
