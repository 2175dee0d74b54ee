package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"

	"github.com/inference-sim/cpusched/internal/telemetry"
	"github.com/inference-sim/cpusched/internal/tracing"
	"github.com/inference-sim/cpusched/sim"
	"github.com/inference-sim/cpusched/sim/workload"
)

var serveAddr string

// simulateBody is the JSON body of POST /api/v1/simulate. Processes are
// decoded leniently, like workload files.
type simulateBody struct {
	Algorithm         string          `json:"algorithm"`
	Processes         json.RawMessage `json:"processes"`
	Preset            string          `json:"preset"`
	TimeQuantum       float64         `json:"timeQuantum"`
	ContextSwitchCost float64         `json:"contextSwitchCost"`
	DisableAutoSwitch bool            `json:"disableAutoSwitch"`
	Seed              int64           `json:"seed"`
	MLFQLevels        int             `json:"mlfqLevels"`
	CustomExpr        string          `json:"customExpr"`
	Explain           bool            `json:"explain"`
}

// compareBody is the JSON body of POST /api/v1/compare.
type compareBody struct {
	simulateBody
	Algorithms []string `json:"algorithms"`
}

type server struct {
	engine    *sim.Engine
	collector *telemetry.Collector
	presets   []workload.Preset
}

// newServer builds the HTTP application. Metrics are registered on registry
// and served from it.
func newServer(cfg Config, registry *prometheus.Registry) *fiber.App {
	s := &server{
		engine:    sim.NewEngine(cfg.Selector),
		collector: telemetry.NewCollectorWithRegistry(registry),
		presets:   cfg.Presets,
	}
	app := fiber.New(fiber.Config{
		BodyLimit:             cfg.Server.BodyLimit,
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})
	app.Use(s.observe)

	api := app.Group("/api")
	v1 := api.Group("/v1")
	{
		v1.Post("/simulate", s.simulate)
		v1.Post("/compare", s.compare)
		v1.Get("/presets", s.listPresets)
	}
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	return app
}

// observe wraps every request in a span and records its latency.
func (s *server) observe(c *fiber.Ctx) error {
	start := time.Now()
	ctx, span := tracing.StartSpan(c.UserContext(), c.Method()+" "+c.Path(), "SERVER")
	c.SetUserContext(ctx)

	err := c.Next()
	if err != nil {
		// Let the error handler write the response so the status is final.
		if herr := errorHandler(c, err); herr != nil {
			logrus.Errorf("error handler: %v", herr)
		}
	}
	status := c.Response().StatusCode()
	route := c.Route().Path
	span.SetAttributes(attribute.Int("http.status_code", status), attribute.String("http.route", route))
	tracing.StatusFromHTTPCode(span, status)
	span.End()
	s.collector.ObserveRequest(c.Method(), route, status, time.Since(start))
	return nil
}

// errorHandler renders every error as {"error": ...}. Engine input errors
// and malformed bodies are the client's fault (400).
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var ferr *fiber.Error
	var inErr *sim.InputError
	switch {
	case errors.As(err, &ferr):
		code = ferr.Code
	case errors.As(err, &inErr):
		code = fiber.StatusBadRequest
	}
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}

func badRequest(err error) error {
	return fiber.NewError(fiber.StatusBadRequest, err.Error())
}

// request converts a body into an engine request.
func (s *server) request(b simulateBody) (sim.Request, error) {
	var procs []sim.Process
	switch {
	case len(b.Processes) > 0 && b.Preset != "":
		return sim.Request{}, fmt.Errorf("give either processes or preset, not both")
	case b.Preset != "":
		p, ok := workload.FindPreset(s.presets, b.Preset)
		if !ok {
			return sim.Request{}, fmt.Errorf("unknown preset %q", b.Preset)
		}
		procs = p.Processes
	case len(b.Processes) > 0:
		scenario, err := workload.Parse(b.Processes, ".json")
		if err != nil {
			return sim.Request{}, fmt.Errorf("processes: %w", err)
		}
		procs = scenario.Processes
	}
	return runOptions{
		Policy:       b.Algorithm,
		Quantum:      b.TimeQuantum,
		SwitchCost:   b.ContextSwitchCost,
		NoAutoSwitch: b.DisableAutoSwitch,
		Seed:         b.Seed,
		MLFQLevels:   b.MLFQLevels,
		CustomExpr:   b.CustomExpr,
		Explain:      b.Explain,
	}.request(procs)
}

func (s *server) simulate(c *fiber.Ctx) error {
	var body simulateBody
	if err := c.BodyParser(&body); err != nil {
		return badRequest(fmt.Errorf("invalid request format: %w", err))
	}
	req, err := s.request(body)
	if err != nil {
		return badRequest(err)
	}
	res, err := s.engine.SimulateContext(c.UserContext(), req)
	if err != nil {
		return err
	}
	s.collector.Observe(res)
	return c.JSON(res)
}

func (s *server) compare(c *fiber.Ctx) error {
	var body compareBody
	if err := c.BodyParser(&body); err != nil {
		return badRequest(fmt.Errorf("invalid request format: %w", err))
	}
	if len(body.Algorithms) == 0 {
		body.Algorithms = defaultComparePolicies()
	}
	body.Algorithm = ""
	req, err := s.request(body.simulateBody)
	if err != nil {
		return badRequest(err)
	}
	results, err := s.engine.Compare(c.UserContext(), req, body.Algorithms)
	if err != nil {
		return err
	}
	for _, res := range results {
		s.collector.Observe(res)
	}
	return c.JSON(fiber.Map{"results": results})
}

func (s *server) listPresets(c *fiber.Ctx) error {
	return c.JSON(s.presets)
}

// serveCmd exposes the engine over HTTP
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the simulation API over HTTP",
	Run: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		cfg, err := loadDefaultsConfig(defaultsFilePath, cmd.Flags().Changed("defaults-filepath"))
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		if cmd.Flags().Changed("addr") {
			cfg.Server.Addr = serveAddr
		}
		if traceFile != "" {
			if err := tracing.Init("cpusched", version, traceFile); err != nil {
				logrus.Fatalf("Failed to initialise tracing: %v", err)
			}
		}

		registry := prometheus.NewRegistry()
		registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		app := newServer(cfg, registry)
		logrus.Infof("Listening on %s", cfg.Server.Addr)
		logrus.Fatal(app.Listen(cfg.Server.Addr))
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "Listen address (overrides server.addr in defaults.yaml)")
	serveCmd.Flags().StringVar(&logLevel, "log", "error", "Log level (trace, debug, info, warn, error, fatal, panic)")
	serveCmd.Flags().StringVar(&defaultsFilePath, "defaults-filepath", "defaults.yaml", "Path to default constants")
	serveCmd.Flags().StringVar(&traceFile, "trace-file", "", "Write OpenTelemetry spans to this file")
	rootCmd.AddCommand(serveCmd)
}
