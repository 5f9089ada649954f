package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/systemstart/mkrelease/pkg/api"
	"github.com/systemstart/mkrelease/pkg/logging"
	"github.com/systemstart/mkrelease/pkg/plan"
	"github.com/systemstart/mkrelease/pkg/processing"
	"github.com/systemstart/mkrelease/pkg/steps"
)

var version = "dev"

const (
	_ = iota
	exitLoggingSetupFailed
	exitDotenvError
	exitLoadConfigurationFileFailed
	exitLoadContextFailed
	exitInvalidOverride
	exitPlanFailed
	exitToolNotFound
	exitStepFailed
	exitDirectoryChangeFailed
	exitInterrupted
	exitWriteReportFailed
	exitPrintFailed
)

// listFlag collects a repeatable string flag.
type listFlag []string

func (l *listFlag) String() string { return strings.Join(*l, ",") }

func (l *listFlag) Set(v string) error {
	*l = append(*l, v)
	return nil
}

var (
	configFile   string
	rootDir      string
	contextFile  string
	overrides    listFlag
	enableSteps  listFlag
	disableSteps listFlag
	dryRun       bool
	reportFile   string
	printDefault bool
	loggingType  string
	logLevel     string
	showVersion  bool
)

func init() {
	flag.StringVar(
		&configFile,
		"config",
		"",
		"release configuration YAML (empty = built-in reference sequence)")
	flag.StringVar(
		&rootDir,
		"root",
		"",
		"project root (default: directory of -config, or the current directory)")
	flag.StringVar(
		&contextFile,
		"context-file",
		"",
		"YAML file with context values overriding the configuration")
	flag.Var(
		&overrides,
		"set",
		"context override key=value (repeatable)")
	flag.Var(
		&enableSteps,
		"enable",
		"enable a step by name (repeatable)")
	flag.Var(
		&disableSteps,
		"disable",
		"disable a step by name (repeatable)")
	flag.BoolVar(
		&dryRun,
		"dry-run",
		false,
		"print the resolved steps and exit without running them")
	flag.StringVar(
		&reportFile,
		"report",
		"",
		"write a YAML run report to this file")
	flag.BoolVar(
		&printDefault,
		"print-default",
		false,
		"print the built-in release configuration as YAML and exit")
	flag.StringVar(
		&loggingType,
		"logging-type",
		"tint",
		"logging type: json, text or tint")
	flag.StringVar(
		&logLevel,
		"log-level",
		"info",
		"logging level: debug, info, warn, error")
	flag.BoolVar(
		&showVersion,
		"version",
		false,
		"print version and exit")
}

func main() {
	flag.Parse()

	if showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	if printDefault {
		printDefaultRelease()
		os.Exit(0)
	}

	if err := logging.Initialize(os.Stderr, loggingType, logLevel); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitLoggingSetupFailed)
	}

	includeEnv()

	release := loadRelease()
	p := buildPlan(release)

	if dryRun {
		if err := plan.Print(os.Stdout, p); err != nil {
			slog.Error("failed to print plan", "error", err)
			os.Exit(exitPrintFailed)
		}
		os.Exit(0)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, runErr := processing.Run(ctx, p, processing.Options{
		Runner: &steps.ExecRunner{},
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	})

	reportErr := writeReport(report)

	if runErr != nil {
		stop()
		slog.Error("release failed", "failed", report.Failed, "error", runErr)
		os.Exit(exitCodeFor(runErr))
	}
	if reportErr != nil {
		os.Exit(exitWriteReportFailed)
	}

	slog.Info("done")
}

func exitCodeFor(err error) int {
	switch {
	case errors.Is(err, context.Canceled):
		return exitInterrupted
	case errors.Is(err, steps.ErrToolNotFound):
		return exitToolNotFound
	case errors.Is(err, steps.ErrDirectoryChange):
		return exitDirectoryChangeFailed
	default:
		return exitStepFailed
	}
}

func printDefaultRelease() {
	data, err := api.MarshalRelease(api.Default())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitPrintFailed)
	}
	if _, err := os.Stdout.Write(data); err != nil {
		os.Exit(exitPrintFailed)
	}
}

func includeEnv() {
	err := godotenv.Load()
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Error("failed to load .env", "error", err)
			os.Exit(exitDotenvError)
		}
		slog.Debug("no .env file found")
	} else {
		slog.Info("using .env file")
	}
}

func loadRelease() *api.Release {
	if configFile == "" {
		slog.Info("using built-in release sequence")
		return api.Default()
	}

	r, err := api.LoadRelease(configFile)
	if err != nil {
		slog.Error("failed to load release configuration", "filename", configFile, "error", err)
		os.Exit(exitLoadConfigurationFileFailed)
	}
	return r
}

func buildPlan(r *api.Release) *plan.Plan {
	var layers []map[string]any

	if contextFile != "" {
		ctx, err := plan.LoadContextFile(contextFile)
		if err != nil {
			slog.Error("failed to load context file", "filename", contextFile, "error", err)
			os.Exit(exitLoadContextFailed)
		}
		layers = append(layers, ctx)
	}

	set, err := plan.ParseOverrides(overrides)
	if err != nil {
		slog.Error("invalid -set value", "error", err)
		os.Exit(exitInvalidOverride)
	}
	layers = append(layers, set)

	p, err := plan.Build(r, plan.Options{
		Root:    rootDir,
		Context: layers,
		Enable:  enableSteps,
		Disable: disableSteps,
	})
	if err != nil {
		slog.Error("failed to resolve release", "error", err)
		os.Exit(exitPlanFailed)
	}
	return p
}

func writeReport(report *processing.Report) error {
	if reportFile == "" || report == nil {
		return nil
	}
	if err := processing.WriteReport(reportFile, report); err != nil {
		slog.Error("failed to write report", "filename", reportFile, "error", err)
		return err
	}
	slog.Info("report written", "filename", reportFile)
	return nil
}
