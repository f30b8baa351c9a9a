package main

import (
	"context"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/common/promlog"
	promlogflag "github.com/prometheus/common/promlog/flag"
	"github.com/prometheus/common/version"
	"github.com/prometheus/exporter-toolkit/web"
	webflag "github.com/prometheus/exporter-toolkit/web/kingpinflag"

	"github.com/brinkflair/brink_flair_exporter/collector"
	"github.com/brinkflair/brink_flair_exporter/config"
	"github.com/brinkflair/brink_flair_exporter/modbus"
)

const exporterName = "brink_flair_exporter"

// overrides holds the flags that take precedence over the config file.
// Zero values leave the loaded configuration untouched.
type overrides struct {
	port       string
	slaveID    uint8
	timeout    time.Duration
	deviceName string
}

func (o overrides) apply(c *config.Config) {
	if o.port != "" {
		c.Device.Port = o.port
	}
	if o.slaveID != 0 {
		c.Device.SlaveID = o.slaveID
	}
	if o.timeout != 0 {
		c.Device.Timeout = int(o.timeout / time.Millisecond)
	}
	if o.deviceName != "" {
		c.Device.Name = o.deviceName
	}
}

func main() {
	var (
		o          overrides
		configFile = kingpin.Flag(
			"config.file",
			"Optional YAML file overriding the built-in device settings and register map.",
		).Default("").String()
		pollInterval = kingpin.Flag(
			"poll.interval",
			"Read the unit on this interval and serve the cached readings. 0 reads the unit on every scrape.",
		).Default("0s").Duration()
		consoleReadings = kingpin.Flag(
			"console.readings",
			"Print every reading to stdout.",
		).Default("true").Bool()
		metricsPath = kingpin.Flag(
			"web.metrics-path",
			"Path under which to expose the ventilation unit metrics.",
		).Default("/metrics").String()
		telemetryPath = kingpin.Flag(
			"web.telemetry-path",
			"Path under which to expose metrics about the exporter itself.",
		).Default("/telemetry").String()
	)
	kingpin.Flag("modbus.port", "Serial device or host:port of the ventilation unit.").StringVar(&o.port)
	kingpin.Flag("modbus.slave-id", "Modbus slave address of the ventilation unit.").Uint8Var(&o.slaveID)
	kingpin.Flag("modbus.timeout", "Timeout of a single Modbus request.").DurationVar(&o.timeout)
	kingpin.Flag("device.name", "Value of the name label on every gauge.").StringVar(&o.deviceName)

	promlogConfig := &promlog.Config{}
	promlogflag.AddFlags(kingpin.CommandLine, promlogConfig)
	webConfig := webflag.AddFlags(kingpin.CommandLine, ":9000")

	kingpin.Version(version.Print(exporterName))
	kingpin.HelpFlag.Short('h')
	kingpin.Parse()

	logger := promlog.New(promlogConfig)
	level.Info(logger).Log("msg", "Starting "+exporterName, "version", version.Info())
	level.Info(logger).Log("build_context", version.BuildContext())

	if *configFile != "" {
		level.Info(logger).Log("msg", "Loading configuration file", "file", *configFile)
	}
	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		level.Error(logger).Log("msg", "Error loading configuration", "err", err)
		os.Exit(1)
	}
	o.apply(&cfg)
	if err := cfg.Validate(); err != nil {
		level.Error(logger).Log("msg", "Invalid configuration", "err", err)
		os.Exit(1)
	}

	reader, err := modbus.NewReader(cfg.Device, logger)
	if err != nil {
		level.Error(logger).Log("msg", "Error opening device", "err", err)
		os.Exit(1)
	}
	defer reader.Close()
	level.Info(logger).Log("msg", "Connected to device", "name", cfg.Device.Name, "port", cfg.Device.Port, "slave_id", cfg.Device.SlaveID)

	telemetryRegistry := prometheus.NewRegistry()
	telemetryRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		version.NewCollector(exporterName),
	)

	var sinks []collector.Sink
	if *consoleReadings {
		sinks = append(sinks, collector.NewPrinter(os.Stdout))
	}
	device := collector.NewDeviceSource(reader, cfg.Registers, collector.NewScrapeMetrics(telemetryRegistry), logger, sinks...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var source collector.Source = device
	if *pollInterval > 0 {
		poller := collector.NewPoller(device, *pollInterval)
		telemetryRegistry.MustRegister(poller.LastPollGauge())
		go poller.Run(ctx)
		source = poller
		level.Info(logger).Log("msg", "Polling device", "interval", *pollInterval)
	}

	deviceRegistry := prometheus.NewRegistry()
	deviceRegistry.MustRegister(collector.NewCollector(cfg.Registers, cfg.Device.Name, source))

	router, err := newRouter(deviceRegistry, telemetryRegistry, *metricsPath, *telemetryPath, logger)
	if err != nil {
		level.Error(logger).Log("msg", "Error creating router", "err", err)
		os.Exit(1)
	}
	srv := &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		errc <- web.ListenAndServe(srv, webConfig, logger)
	}()

	select {
	case err := <-errc:
		level.Error(logger).Log("msg", "Error running HTTP server", "err", err)
		reader.Close()
		os.Exit(1)
	case <-ctx.Done():
	}

	level.Info(logger).Log("msg", "Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		level.Error(logger).Log("msg", "Error shutting down HTTP server", "err", err)
	}
}

func newRouter(device, telemetry prometheus.Gatherer, metricsPath, telemetryPath string, logger log.Logger) (*http.ServeMux, error) {
	errorLog := stdlog.New(log.NewStdlibAdapter(level.Error(logger)), "", 0)

	landingPage, err := web.NewLandingPage(web.LandingConfig{
		Name:        "Brink Flair Exporter",
		Description: "Prometheus exporter for Brink Flair ventilation units",
		Version:     version.Info(),
		Links: []web.LandingLinks{
			{
				Address: metricsPath,
				Text:    "Metrics",
			},
			{
				Address: telemetryPath,
				Text:    "Telemetry",
			},
		},
	})
	if err != nil {
		return nil, err
	}

	router := http.NewServeMux()
	router.Handle(metricsPath, promhttp.HandlerFor(device, promhttp.HandlerOpts{ErrorLog: errorLog}))
	router.Handle(telemetryPath, promhttp.HandlerFor(telemetry, promhttp.HandlerOpts{ErrorLog: errorLog}))
	router.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		landingPage.ServeHTTP(w, r)
	})
	return router, nil
}
