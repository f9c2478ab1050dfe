package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/harrisonrobin/taskmenu/pkg/app"
	"github.com/harrisonrobin/taskmenu/pkg/config"
	"github.com/harrisonrobin/taskmenu/pkg/google"
	"github.com/harrisonrobin/taskmenu/pkg/logging"
	"github.com/harrisonrobin/taskmenu/pkg/menu"
	"github.com/harrisonrobin/taskmenu/pkg/process"
	"github.com/harrisonrobin/taskmenu/pkg/taskwarrior"
)

var version = "dev"

type flags struct {
	configPath string
	backend    string
	taskBin    string
	calendar   string
	verbose    bool
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	f := &flags{}
	root := &cobra.Command{
		Use:   "taskmenu",
		Short: "Manage Taskwarrior tasks from a popup menu",
		Long: `taskmenu lists Taskwarrior actions in a menu (rofi, dmenu or a terminal
picker), then the tasks of your default report, and applies the chosen
action: add, done, start, stop, delete, annotate, wait, mod, or open a
link found in the task's annotations.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), f)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&f.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/taskmenu/config.yaml)")
	root.Flags().StringVar(&f.backend, "backend", "", "menu backend: rofi, dmenu or terminal (overrides config)")
	root.Flags().StringVar(&f.taskBin, "task-bin", "", "Taskwarrior binary (overrides config)")
	root.Flags().StringVar(&f.calendar, "calendar", "", "Google Calendar name for the Schedule action (overrides config)")
	root.PersistentFlags().BoolVarP(&f.verbose, "verbose", "v", false, "log debug output")

	root.AddCommand(newVersionCmd(), newConfigCmd(f))
	return root
}

// loadConfig applies flag overrides on top of the config file.
// Priority: Flag > Config > Default.
func loadConfig(f *flags) (*config.Config, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return nil, err
	}
	if f.backend != "" {
		cfg.Menu.Backend = f.backend
	}
	if f.taskBin != "" {
		cfg.TaskBin = f.taskBin
	}
	if f.calendar != "" {
		cfg.Calendar = f.calendar
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func run(ctx context.Context, f *flags) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(f)
	if err != nil {
		return err
	}

	logger, closer, err := logging.New(cfg.Log.File, cfg.Log.Level, f.verbose, logFallback(cfg))
	if err != nil {
		return err
	}
	defer closer.Close()

	runner := process.NewExecRunner(logger)
	picker, err := newPicker(cfg, runner)
	if err != nil {
		return err
	}

	opts := app.Options{
		Store:            taskwarrior.NewClient(cfg.TaskBin, runner),
		Picker:           picker,
		Logger:           logger,
		DescriptionWidth: cfg.DescriptionWidth,
		WaitSuggestions:  cfg.WaitSuggestions,
	}
	if cfg.Calendar != "" {
		cal, err := google.NewClient(ctx, cfg.Calendar, logger)
		if err != nil {
			// Schedule is optional; everything else still works.
			logger.Warn("calendar unavailable, Schedule disabled", "calendar", cfg.Calendar, "err", err)
		} else {
			opts.Scheduler = cal
		}
	}

	runErr := app.New(opts).Run(ctx)
	return app.Report(ctx, picker, logger, runErr)
}

// logFallback is where logs go without a log file. The terminal picker
// draws on stderr, so its logs are dropped unless log.file is set.
func logFallback(cfg *config.Config) io.Writer {
	if cfg.Menu.Backend == menu.BackendTerminal {
		return io.Discard
	}
	return os.Stderr
}

func newPicker(cfg *config.Config, runner process.Runner) (menu.Picker, error) {
	args := cfg.Menu.RofiArgs
	if cfg.Menu.Backend == menu.BackendDmenu {
		args = cfg.Menu.DmenuArgs
	}
	return menu.New(menu.Options{Backend: cfg.Menu.Backend, Args: args, Runner: runner})
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "taskmenu %s\n", version)
		},
	}
}

func newConfigCmd(f *flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create the configuration file",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(f)
			if err != nil {
				return err
			}
			b, err := config.Marshal(cfg, "config.yaml")
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(b)
			return err
		},
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := f.configPath
			if path == "" {
				p, err := config.GetConfigPath()
				if err != nil {
					return err
				}
				path = p
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			if err := config.Save(config.Default(), path); err != nil {
				return err
			}
			log.Info("wrote default config", "path", path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	cmd.AddCommand(show, initCmd)
	return cmd
}
