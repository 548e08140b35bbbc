// Command weather shows the current weather or a multi-day forecast for a city.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/Sternrassler/weather-cli/internal/app"
	"github.com/Sternrassler/weather-cli/internal/render"
	"github.com/Sternrassler/weather-cli/pkg/client"
	"github.com/Sternrassler/weather-cli/pkg/config"
	"github.com/Sternrassler/weather-cli/pkg/display"
	"github.com/Sternrassler/weather-cli/pkg/logging"
	"github.com/Sternrassler/weather-cli/pkg/metrics"
	"github.com/Sternrassler/weather-cli/pkg/weather"
)

const version = "1.0.0"

// Exit codes.
const (
	exitOK        = 0
	exitError     = 1
	exitUsage     = 2
	exitInterrupt = 130
)

const usageText = `Usage: weather [flags] [city]

Get current weather or forecast for any city with colorful, formatted output.

Examples:
  weather "New York"              # Current weather for New York
  weather London --units imperial # Weather in Fahrenheit
  weather Paris --forecast 3      # 3-day forecast for Paris
  weather --clear-cache           # Clear cached data

Flags:
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	c := &cli{
		in:     os.Stdin,
		out:    os.Stdout,
		errOut: os.Stderr,
		r:      render.NewStdout(),
		now:    time.Now,
	}
	code := c.run(ctx, os.Args[1:])

	stop()
	os.Exit(code)
}

// cli carries the process streams so run can be driven from tests.
type cli struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer
	r      *render.Renderer
	now    func() time.Time

	logger zerolog.Logger
}

type options struct {
	units       string
	forecast    int
	forecastSet bool
	clearCache  bool
	version     bool
	configPath  string
	logLevel    string
	metricsFile string
	city        string
}

// parseArgs accepts flags before and after the positional city words.
func parseArgs(args []string, errOut io.Writer) (*options, error) {
	opts := &options{}

	fs := flag.NewFlagSet("weather", flag.ContinueOnError)
	fs.SetOutput(errOut)
	fs.Usage = func() {
		fmt.Fprint(errOut, usageText)
		fs.PrintDefaults()
	}

	fs.StringVar(&opts.units, "units", "metric", "temperature units: metric (Celsius) or imperial (Fahrenheit)")
	fs.StringVar(&opts.units, "u", "metric", "shorthand for -units")
	fs.IntVar(&opts.forecast, "forecast", 0, "show forecast for `DAYS` days (1-5)")
	fs.IntVar(&opts.forecast, "f", 0, "shorthand for -forecast")
	fs.BoolVar(&opts.clearCache, "clear-cache", false, "clear cached weather data")
	fs.BoolVar(&opts.version, "version", false, "show the version and exit")
	fs.StringVar(&opts.configPath, "config", "", "optional YAML config `file`")
	fs.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")
	fs.StringVar(&opts.metricsFile, "metrics-file", "", "write Prometheus metrics to `file` on exit")

	var words []string
	rest := args
	for {
		if err := fs.Parse(rest); err != nil {
			return nil, err
		}
		rest = fs.Args()
		if len(rest) == 0 {
			break
		}
		words = append(words, rest[0])
		rest = rest[1:]
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "forecast" || f.Name == "f" {
			opts.forecastSet = true
		}
	})
	opts.city = strings.TrimSpace(strings.Join(words, " "))
	return opts, nil
}

func (c *cli) run(ctx context.Context, args []string) int {
	opts, err := parseArgs(args, c.errOut)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}

	if opts.version {
		fmt.Fprintf(c.out, "Weather CLI, version %s\n", version)
		return exitOK
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		c.r.Error(err.Error())
		return exitError
	}

	level := cfg.LogLevel
	if opts.logLevel != "" {
		level = opts.logLevel
	}
	logging.Setup(logging.Config{Level: logging.LogLevel(level), Pretty: true, Output: c.errOut})
	c.logger = logging.NewLogger("cli")

	if opts.metricsFile != "" {
		defer func() {
			if err := metrics.WriteTextfile(opts.metricsFile); err != nil {
				c.logger.Warn().Err(err).Msg("Failed to write metrics file")
			}
		}()
	}

	if opts.clearCache {
		return c.clearCache(ctx, cfg)
	}

	units, err := weather.ParseUnits(opts.units)
	if err != nil {
		c.r.Error(err.Error())
		return exitError
	}

	if opts.forecastSet && (opts.forecast < weather.MinForecastDays || opts.forecast > weather.MaxForecastDays) {
		c.r.Error(fmt.Sprintf("Forecast days must be between %d and %d", weather.MinForecastDays, weather.MaxForecastDays))
		return exitError
	}

	city := opts.city
	if city == "" {
		city, err = c.prompt(ctx, "Enter city name: ")
		if ctx.Err() != nil {
			c.r.Goodbye()
			return exitInterrupt
		}
		if err != nil || city == "" {
			c.r.Error("City name cannot be empty")
			return exitError
		}
	}

	a, err := app.New(ctx, cfg)
	if err != nil {
		var cfgErr *config.ConfigError
		if errors.As(err, &cfgErr) {
			c.r.Error(cfgErr.Message)
		} else {
			c.r.Error(err.Error())
		}
		return exitError
	}
	defer a.Close()

	if opts.forecastSet {
		return c.forecast(ctx, a.Client, city, opts.forecast, units)
	}
	return c.current(ctx, a.Client, city, units)
}

func (c *cli) current(ctx context.Context, wc *client.Client, city string, units weather.Units) int {
	c.r.Loading(fmt.Sprintf("Getting current weather for %s...", city))

	payload, err := wc.GetCurrent(ctx, city, units)
	if err != nil {
		return c.fail(ctx, err)
	}

	view, err := display.Current(payload, units, c.now())
	if err != nil {
		return c.fail(ctx, err)
	}

	c.r.Current(view)
	return exitOK
}

func (c *cli) forecast(ctx context.Context, wc *client.Client, city string, days int, units weather.Units) int {
	c.r.Loading(fmt.Sprintf("Getting %d-day forecast for %s...", days, city))

	payload, err := wc.GetForecast(ctx, city, days, units)
	if err != nil {
		return c.fail(ctx, err)
	}

	view, err := display.Forecast(payload, days, units, c.now())
	if err != nil {
		return c.fail(ctx, err)
	}

	c.r.Forecast(view)
	return exitOK
}

// fail reports err and returns the exit code. An interrupted lookup says
// goodbye instead of reporting the cancellation.
func (c *cli) fail(ctx context.Context, err error) int {
	if ctx.Err() != nil {
		c.r.Goodbye()
		return exitInterrupt
	}

	var clientErr *client.Error
	if errors.As(err, &clientErr) {
		c.r.Error(clientErr.UserMessage())
		return exitError
	}

	c.r.Error(err.Error())
	return exitError
}

func (c *cli) clearCache(ctx context.Context, cfg *config.Config) int {
	store, rc := app.OpenStore(ctx, cfg)
	if rc != nil {
		defer rc.Close()
	}

	if err := store.Clear(ctx); err != nil {
		c.r.Error(fmt.Sprintf("Failed to clear cache: %v", err))
		return exitError
	}

	c.r.Success("Weather cache cleared successfully!")
	return exitOK
}

// prompt reads one line from stdin. It gives up when ctx is cancelled.
func (c *cli) prompt(ctx context.Context, label string) (string, error) {
	fmt.Fprint(c.out, label)

	type result struct {
		line string
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		line, err := bufio.NewReader(c.in).ReadString('\n')
		ch <- result{line, err}
	}()

	select {
	case <-ctx.Done():
		fmt.Fprintln(c.out)
		return "", ctx.Err()
	case res := <-ch:
		if res.err != nil && !(errors.Is(res.err, io.EOF) && res.line != "") {
			return "", res.err
		}
		return strings.TrimSpace(res.line), nil
	}
}
