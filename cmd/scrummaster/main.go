package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"scrummaster/internal/config"
	"scrummaster/internal/debug"
	"scrummaster/internal/ui"
	"scrummaster/internal/ui/theme"
)

func main() {
	err := newRootCmd(defaultDeps()).Execute()
	if err != nil {
		debug.Log("command failed: ", err)
	}
	debug.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type programRunner interface {
	Run() (tea.Model, error)
}

type programFactory func(*ui.App) programRunner

// deps are the seams the commands are tested through.
type deps struct {
	open        servicesOpener
	newProgram  programFactory
	interactive func() bool
	confirm     confirmPrompt
	now         func() time.Time
}

func defaultDeps() deps {
	return deps{
		open: openServices,
		newProgram: func(app *ui.App) programRunner {
			return tea.NewProgram(app, tea.WithAltScreen())
		},
		interactive: func() bool { return term.IsTerminal(int(os.Stdin.Fd())) },
		confirm:     huhConfirm,
		now:         time.Now,
	}
}

// flagKeys maps persistent flags onto config keys. Only flags set on the
// command line are applied as overrides.
var flagKeys = map[string]string{
	"server":               config.KeyServerURL,
	"timeout":              config.KeyHTTPTimeout,
	"overlay-backend":      config.KeyOverlayBackend,
	"overlay-path":         config.KeyOverlayPath,
	"auto-refresh-seconds": config.KeyAutoRefreshSeconds,
	"groom-concurrency":    config.KeyGroomConcurrency,
	"output-format":        config.KeyOutputFormat,
	"theme":                config.KeyTheme,
	"debug":                config.KeyDebug,
}

func newRootCmd(d deps) *cobra.Command {
	var initialTab string
	root := &cobra.Command{
		Use:           "scrummaster",
		Short:         "Terminal scrum dashboard: sprint board, backlog grooming, standups and reports",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return loadConfig(cmd.Flags())
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			tab, err := parseTab(initialTab)
			if err != nil {
				return err
			}
			return runTUI(cmd.Context(), cmd.OutOrStdout(), d, tab)
		},
	}
	root.SetVersionTemplate("{{.Name}} version {{.Version}}\n")

	pf := root.PersistentFlags()
	pf.String("server", config.DefaultServerURL, "Backend base URL")
	pf.Duration("timeout", config.DefaultHTTPTimeout, "Per-request timeout")
	pf.String("overlay-backend", config.OverlayBackendSQLite, "Local overlay storage (sqlite, file)")
	pf.String("overlay-path", "", "Overlay database file or directory (defaults under ~/.scrummaster)")
	pf.Int("auto-refresh-seconds", 0, "Reload the visible view every N seconds (0 disables)")
	pf.Int("groom-concurrency", config.DefaultGroomConcurrency, "Parallel suggestion requests during auto-groom")
	pf.String("output-format", "rich", "Markdown style for details (rich, light, dark, plain)")
	pf.String("theme", theme.Default, "Color theme ("+strings.Join(theme.Available(), ", ")+")")
	pf.Bool("debug", false, "Write a debug log to ~/.scrummaster/debug.log")
	root.Flags().StringVar(&initialTab, "tab", "board", "Initial view (board, backlog, standup, reports)")

	root.AddCommand(
		newExportCmd(d),
		newArchiveCmd(d),
		newGroomCmd(d),
		newStandupCmd(d),
		newVersionCmd(),
	)
	return root
}

func loadConfig(flags *pflag.FlagSet) error {
	if err := config.Initialize(); err != nil {
		return fmt.Errorf("initialize config: %w", err)
	}
	overrides := map[string]any{}
	flags.Visit(func(f *pflag.Flag) {
		key, ok := flagKeys[f.Name]
		if !ok {
			return
		}
		switch f.Value.Type() {
		case "int":
			v, _ := flags.GetInt(f.Name)
			overrides[key] = v
		case "bool":
			v, _ := flags.GetBool(f.Name)
			overrides[key] = v
		case "duration":
			v, _ := flags.GetDuration(f.Name)
			overrides[key] = v
		default:
			overrides[key] = f.Value.String()
		}
	})
	if err := config.ApplyOverrides(overrides); err != nil {
		return fmt.Errorf("apply flags: %w", err)
	}
	if err := debug.Init(config.GetBool(config.KeyDebug)); err != nil {
		return fmt.Errorf("initialize debug log: %w", err)
	}
	if name := config.GetString(config.KeyTheme); !theme.SetTheme(name) {
		debug.Logger().Warn("unknown theme, using default", "theme", name)
	}
	return nil
}

func parseTab(raw string) (ui.Tab, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "board":
		return ui.TabBoard, nil
	case "backlog":
		return ui.TabBacklog, nil
	case "standup":
		return ui.TabStandup, nil
	case "reports":
		return ui.TabReports, nil
	}
	return 0, fmt.Errorf("unknown tab %q (must be board, backlog, standup or reports)", raw)
}

func runTUI(ctx context.Context, out io.Writer, d deps, tab ui.Tab) error {
	if ctx == nil {
		ctx = context.Background()
	}
	svc, err := d.open(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := svc.Close(); cerr != nil {
			debug.Logger().Warn("close overlay store", "error", cerr)
		}
	}()

	seconds := config.GetInt(config.KeyAutoRefreshSeconds)
	if seconds < 0 {
		seconds = 0
	}
	cfg := ui.Config{
		Board:        svc.board,
		Backlog:      svc.backlog,
		Suggest:      svc.suggest,
		Groomer:      svc.groomer,
		Standup:      svc.standup,
		Reports:      svc.reports,
		AutoRefresh:  time.Duration(seconds) * time.Second,
		OutputFormat: config.GetString(config.KeyOutputFormat),
		Version:      Version,
		InitialTab:   tab,
		SaveTheme:    config.SaveTheme,
	}

	started := d.now()
	if err := runProgram(cfg, ui.NewApp, d.newProgram); err != nil {
		return err
	}
	printExitSummary(out, ExitSummary{
		Version:  Version,
		Duration: d.now().Sub(started),
		Board:    svc.board.Snapshot(),
	})
	return nil
}

func runProgram(cfg ui.Config, builder func(ui.Config) (*ui.App, error), factory programFactory) error {
	app, err := builder(cfg)
	if err != nil {
		if errors.Is(err, ui.ErrMissingCollections) {
			return err
		}
		return fmt.Errorf("initialize UI: %w", err)
	}
	if factory == nil {
		return fmt.Errorf("program factory is nil")
	}
	prog := factory(app)
	if prog == nil {
		return fmt.Errorf("program is nil")
	}
	if _, err := prog.Run(); err != nil {
		return fmt.Errorf("run UI: %w", err)
	}
	return nil
}
