package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/getsentry/sentry-go"
	log "github.com/sirupsen/logrus"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"

	"github.com/geodata-ops/firepipe/config"
	"github.com/geodata-ops/firepipe/external/firms"
	"github.com/geodata-ops/firepipe/external/portal"
	"github.com/geodata-ops/firepipe/external/worldbounds"
	"github.com/geodata-ops/firepipe/geo"
	"github.com/geodata-ops/firepipe/pipeline"
)

func initLog(level string) {
	logLevel, err := log.ParseLevel(level)
	if err != nil {
		log.SetLevel(log.DebugLevel)
	} else {
		log.SetLevel(logLevel)
	}

	log.SetOutput(os.Stdout)

	log.SetFormatter(&prefixed.TextFormatter{
		ForceFormatting: true,
		FullTimestamp:   true,
	})
}

func main() {
	var configFile string

	flag.StringVar(&configFile, "c", "", "[optional] path of configuration file")
	flag.Parse()

	cfg := config.Load(configFile)

	initLog(cfg.LogLevel)

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			AttachStacktrace: true,
		}); err != nil {
			log.Error(err)
		}
		log.WithField("prefix", "init").Info("Initialized sentry")
	}

	p := pipeline.New(
		firms.New(cfg.FireURL),
		worldbounds.New(cfg.CountriesURL),
		portal.New(cfg.Portal.URL, cfg.Portal.Username, cfg.Portal.Password),
		geo.Filter,
		cfg.Countries,
		cfg.Portal.ItemTitle,
	)

	if err := p.Run(context.Background()); err != nil {
		log.WithField("prefix", "main").Error("pipeline run failed: ", err)
		sentry.CaptureException(err)
		sentry.Flush(2 * time.Second)
		os.Exit(pipeline.ExitCode(err))
	}

	log.WithField("prefix", "main").Info("process completed successfully")
	sentry.Flush(2 * time.Second)
}
