package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/fgrehm/dockman/internal/config"
	"github.com/fgrehm/dockman/internal/driver"
	"github.com/fgrehm/dockman/internal/driver/oci"
	"github.com/fgrehm/dockman/internal/engine"
	"github.com/fgrehm/dockman/internal/project"
	"github.com/fgrehm/dockman/internal/ui"
	"github.com/fgrehm/dockman/internal/workspace"
)

var (
	debugFlag   bool
	fileFlag    string
	dirFlag     string
	runtimeFlag string
	logger      *slog.Logger
)

// Version variables injected at build time.
var (
	Version = "dev"
	Commit  = "unknown"
	Built   = "unknown"
)

var rootCmd = &cobra.Command{
	Use:     "dockman",
	Short:   "Run the containers of a project in dependency order",
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := slog.LevelWarn
		if debugFlag {
			level = slog.LevelDebug
		}
		logger = newLogger(level)

		// Apply .dockmanrc defaults for flags not explicitly set by the user.
		rc, err := loadDockmanRC()
		if err != nil {
			logger.Debug("could not load .dockmanrc", "error", err)
			return nil
		}
		if rc == nil {
			return nil
		}
		for _, key := range rc.Unknown {
			logger.Warn("ignoring unknown .dockmanrc key", "key", key)
		}
		flags := cmd.Root().PersistentFlags()
		if rc.File != "" && !flags.Changed("file") && !flags.Changed("dir") {
			fileFlag = rc.File
			logger.Debug("loaded config file from .dockmanrc", "file", rc.File)
		}
		if rc.Runtime != "" && !flags.Changed("runtime") && os.Getenv("DOCKMAN_RUNTIME") == "" {
			runtimeFlag = rc.Runtime
			logger.Debug("loaded runtime from .dockmanrc", "runtime", rc.Runtime)
		}
		return nil
	},
	SilenceErrors: true,
	SilenceUsage:  true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&fileFlag, "file", "f", "", "configuration file (skips the lookup for dockman.yaml)")
	rootCmd.PersistentFlags().StringVarP(&dirFlag, "dir", "d", "", "directory to start the configuration lookup from (defaults to current directory)")
	rootCmd.PersistentFlags().StringVar(&runtimeFlag, "runtime", "", "container runtime to use: docker or podman (defaults to $DOCKMAN_RUNTIME, then auto-detection)")
	rootCmd.MarkFlagsMutuallyExclusive("file", "dir")
	rootCmd.SetVersionTemplate(fmt.Sprintf("dockman version %s\n", Version))
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(upCmd)
	rootCmd.AddCommand(downCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(removeCmd)
	rootCmd.AddCommand(composeCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command with signal handling.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger = newLogger(slog.LevelWarn)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		u := newUI()
		u.Error(err.Error())
		stop()
		os.Exit(1)
	}
}

func newLogger(level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				if t, ok := a.Value.Any().(time.Time); ok {
					a.Value = slog.TimeValue(t.UTC())
				}
			}
			return a
		},
	}))
}

// newUI creates a UI that writes to stdout and stderr.
func newUI() *ui.UI {
	return ui.New(os.Stdout, os.Stderr)
}

// currentProject finds and loads the project configuration, from the
// --file path, the --dir directory or the current directory, in that order.
func currentProject() (*project.Project, error) {
	var (
		rr  *workspace.ResolveResult
		err error
	)

	switch {
	case fileFlag != "":
		rr, err = workspace.ResolveFile(fileFlag)
	case dirFlag != "":
		rr, err = workspace.Resolve(dirFlag)
	default:
		var cwd string
		cwd, err = os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting working directory: %w", err)
		}
		rr, err = workspace.Resolve(cwd)
	}
	if err != nil {
		return nil, err
	}
	logger.Debug("resolved project", "name", rr.ProjectName, "config", rr.ConfigPath)

	cfg, err := config.Parse(rr.ConfigPath)
	if err != nil {
		return nil, err
	}
	p, err := project.New(cfg, project.Options{Name: rr.ProjectName, Dir: rr.ProjectRoot})
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", rr.ConfigPath, err)
	}
	return p, nil
}

// newEngine loads the project and wires the runtime driver, the project lock
// and progress rendering into an engine. The runtime is detected on the
// first runtime call. The returned func clears the progress output and must
// be called once the operation returns.
func newEngine(u *ui.UI) (*engine.Engine, func(), error) {
	p, err := currentProject()
	if err != nil {
		return nil, nil, err
	}

	d := &lazyDriver{detect: func(ctx context.Context) (driver.Driver, error) {
		return oci.NewOCIDriver(ctx, runtimeFlag, logger)
	}}

	lock, err := workspace.NewLock(p.Dir)
	if err != nil {
		return nil, nil, fmt.Errorf("initializing project lock: %w", err)
	}

	pr := newProgress(u)
	eng := engine.New(d, p, logger)
	eng.SetLocker(lock)
	eng.SetProgress(pr.handle)
	return eng, pr.close, nil
}

// versionString returns a formatted version string for display.
// For dev builds, includes commit and build timestamp.
func versionString() string {
	v := "dockman " + Version
	if strings.Contains(Version, "-dev") && Commit != "unknown" {
		v += " (" + Commit
		if Built != "unknown" {
			v += ", " + Built
		}
		v += ")"
	}
	return v
}
