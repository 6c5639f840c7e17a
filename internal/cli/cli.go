package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/specialistvlad/unitgrid/internal/app"
	"github.com/specialistvlad/unitgrid/internal/runner"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("unitgrid", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
unitgrid - A concurrent test runner for declarative HCL suites.

Usage:
  unitgrid [options] [SUITE_PATH]

Arguments:
  SUITE_PATH
    Path to a single .hcl file or a directory containing .hcl files.

Options:
`)
		flagSet.PrintDefaults()
	}

	var kindNames []string
	for _, k := range runner.Kinds() {
		kindNames = append(kindNames, k.String())
	}

	suiteFlag := flagSet.String("suite", "", "Path to the suite file or directory.")
	sFlag := flagSet.String("s", "", "Path to the suite file or directory (shorthand).")
	nameFlag := flagSet.String("name", "", "Name of the run, shown at the root of the report.")
	strategyFlag := flagSet.String("strategy", runner.ReadyQueue.String(), "Execution strategy. Options: "+strings.Join(kindNames, ", ")+".")
	workersFlag := flagSet.Int("workers", 0, "Number of concurrent workers. 0 uses GOMAXPROCS.")
	forkFlag := flagSet.Int("fork-threshold", 0, "Tasks per worker above which the forkjoin strategy splits work. 0 uses the default; negative always forks.")
	outputFlag := flagSet.String("output", "text", "Report format. Options: 'text' or 'json'.")
	healthPortFlag := flagSet.Int("healthcheck-port", 0, "Port for the HTTP health check server. 0 is disabled.")
	metricsFlag := flagSet.Bool("metrics", false, "Serve Prometheus metrics at /metrics on the health check server.")
	reportURLFlag := flagSet.String("report-url", "", "socket.io server that receives live events and the final summary.")
	reportTimeoutFlag := flagSet.Duration("report-timeout", 15*time.Second, "Connection timeout for --report-url.")
	logFormatFlag := flagSet.String("log-format", "json", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	path := ""
	if *suiteFlag != "" {
		path = *suiteFlag
	} else if *sFlag != "" {
		path = *sFlag
	} else if flagSet.NArg() > 0 {
		path = flagSet.Arg(0)
	}
	slog.Debug("Suite path determined.", "path", path)

	if path == "" {
		slog.Debug("No suite path provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	strategy, err := runner.ParseKind(*strategyFlag)
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: fmt.Sprintf("invalid strategy: %v", err)}
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(app.Config{
		SuitePath:       path,
		RunName:         *nameFlag,
		Strategy:        strategy,
		WorkerCount:     *workersFlag,
		ForkThreshold:   *forkFlag,
		LogFormat:       logFormat,
		LogLevel:        logLevel,
		OutputFormat:    strings.ToLower(*outputFlag),
		HealthcheckPort: *healthPortFlag,
		MetricsEnabled:  *metricsFlag,
		ReportURL:       *reportURLFlag,
		ReportTimeout:   *reportTimeoutFlag,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}
