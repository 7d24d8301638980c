package cli

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/convoy-sh/convoy/internal/config"
	"github.com/convoy-sh/convoy/internal/doctor"
	"github.com/convoy-sh/convoy/internal/engine"
	"github.com/convoy-sh/convoy/internal/errors"
	"github.com/convoy-sh/convoy/internal/host"
	"github.com/convoy-sh/convoy/internal/logger"
	"github.com/convoy-sh/convoy/internal/runner"
	"github.com/convoy-sh/convoy/internal/task"
	"github.com/convoy-sh/convoy/internal/telemetry"
	"github.com/convoy-sh/convoy/internal/ui"
	"github.com/spf13/cobra"
)

var (
	runHostsFlag    []string
	runTagsFlag     []string
	runOverrideFlag []string
	runLimitFlag    int
	runNoHooksFlag  bool
	runPlanFlag     bool
	runStartFrom    string
	runNoLiveFlag   bool
)

// newRunner builds the transport for a run; swapped for a fake in tests.
var newRunner = func(log logger.Logger) runner.Runner {
	return runner.NewSSHRunner(log)
}

var runCmd = &cobra.Command{
	Use:   "run <command>",
	Short: "Run a command's task pipeline across the selected hosts",
	Long: `Run executes a command from .convoy.yaml: its tasks run strictly in
order, each task finishing on every applicable host before the next one
starts. Hosts within a task run in parallel, bounded by --limit.

A bare task name works too and runs just that task (with its hooks).`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCommand(cmd, args[0])
	},
}

func runCommand(cmd *cobra.Command, command string) error {
	log := logger.Default()
	out := cmd.OutOrStdout()

	cfg, path, err := loadConfig()
	if err != nil {
		return err
	}

	hosts, err := selectHosts(cfg)
	if err != nil {
		return err
	}
	if err := host.ApplyOverrides(hosts, runOverrideFlag); err != nil {
		return err
	}

	registry, err := task.NewRegistry(cfg)
	if err != nil {
		return err
	}
	tasks, err := registry.Resolve(command, hosts, task.ResolveOptions{
		StartFrom: runStartFrom,
		Hooks:     !runNoHooksFlag,
	})
	if err != nil {
		return err
	}

	// Near-duplicate settings keys are worth a warning, never a refusal:
	// the scan is heuristic and a distance-1 pair can be legitimate.
	warnKeyTypos(cmd, cfg, hosts)

	limit := cfg.Limit
	if cmd.Flags().Changed("limit") {
		limit = runLimitFlag
	}

	if runPlanFlag {
		fmt.Fprint(out, ui.RenderPlan(engine.BuildPlan(tasks, hosts)))
		return nil
	}

	// First signal cancels the context for a graceful shutdown; a second
	// one falls through to the default handler and kills the process.
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var listener engine.Listener
	if ui.IsTTY() && !runNoLiveFlag {
		listener = ui.NewLiveProgress()
	} else {
		listener = ui.NewLineProgress(out)
	}

	orch := engine.NewOrchestrator(newRunner(log), limit, log, listener)
	start := time.Now()
	outcome := orch.Run(ctx, tasks, hosts)
	fmt.Fprint(out, ui.RenderOutcome(outcome))

	reportRun(command, path, hosts, tasks, outcome, time.Since(start))

	if outcome.Status == engine.StatusFailed {
		runRecovery(cmd, cfg, registry, command, hosts, limit, !runNoHooksFlag, log)
	}

	if code := outcome.ExitStatus(); code != 0 {
		return &exitCodeError{code: code}
	}
	return nil
}

// loadConfig locates, loads, and validates the config file.
func loadConfig() (*config.Config, string, error) {
	path, err := config.Find(configFlag)
	if err != nil {
		return nil, "", err
	}
	if path == "" {
		return nil, "", errors.New(errors.ErrConfig,
			"No config file found",
			"Run 'convoy init' to create "+config.ConfigFileName)
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

// selectHosts applies the --hosts/--tag criteria. A config with no hosts
// at all is tolerated when no criteria were given, so local-only pipelines
// still run.
func selectHosts(cfg *config.Config) ([]*host.Host, error) {
	hosts, err := host.Select(cfg, runHostsFlag, runTagsFlag)
	if err != nil {
		if errors.IsCode(err, errors.ErrSelect) &&
			len(cfg.Hosts) == 0 && len(runHostsFlag) == 0 && len(runTagsFlag) == 0 {
			return nil, nil
		}
		return nil, err
	}
	return hosts, nil
}

// warnKeyTypos prints near-duplicate settings key warnings to stderr.
func warnKeyTypos(cmd *cobra.Command, cfg *config.Config, hosts []*host.Host) {
	check := &doctor.KeyTypoCheck{Config: cfg, Hosts: hosts}
	for _, res := range check.Run() {
		if res.Status != doctor.StatusWarn {
			continue
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "! %s\n", res.Message)
		if res.Suggestion != "" {
			fmt.Fprintf(cmd.ErrOrStderr(), "  %s\n", res.Suggestion)
		}
	}
}

// runRecovery runs the command's registered recovery task after a hard
// failure. The recovery run reports its own summary but never changes the
// original run's exit status, and is itself never subject to recovery.
func runRecovery(cmd *cobra.Command, cfg *config.Config, registry *task.Registry,
	command string, hosts []*host.Host, limit int, hooks bool, log logger.Logger) {

	recovery := task.NewRecoveryRegistry(cfg)
	name, ok := recovery.Get(command)
	if !ok {
		return
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\nRunning recovery task %q\n", name)

	// Fresh resolution under the run's hook policy; --start-from never
	// carries over.
	tasks, err := registry.Resolve(name, hosts, task.ResolveOptions{Hooks: hooks})
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "! recovery task %q did not resolve: %v\n", name, err)
		return
	}

	// A fresh context: the failed run's context is still live after an
	// ordinary failure, but recovery should also run when the operator
	// already pressed Ctrl-C once during the original run's teardown.
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	orch := engine.NewOrchestrator(newRunner(log), limit, log, ui.NewLineProgress(out))
	outcome := orch.Run(ctx, tasks, hosts)
	fmt.Fprint(out, ui.RenderOutcome(outcome))
	if outcome.Failed() {
		fmt.Fprintf(cmd.ErrOrStderr(), "! recovery task %q failed; no further recovery is attempted\n", name)
	}
}

// reportRun emits the per-invocation telemetry summary.
func reportRun(command, configPath string, hosts []*host.Host, tasks []*task.Task,
	outcome *engine.Outcome, elapsed time.Duration) {

	names := make([]string, 0, len(tasks))
	for _, t := range tasks {
		names = append(names, t.Name)
	}
	telemetry.NewLogReporter(logger.Default()).Report(telemetry.Summary{
		Command:   command,
		Project:   telemetry.AnonymizeProject(filepath.Dir(configPath)),
		HostCount: len(hosts),
		Tasks:     names,
		Status:    outcome.Status.String(),
		Duration:  elapsed,
	})
}

func init() {
	runCmd.Flags().StringSliceVar(&runHostsFlag, "hosts", nil, "run only on these hosts (comma-separated names)")
	runCmd.Flags().StringSliceVarP(&runTagsFlag, "tag", "t", nil, "run only on hosts with any of these tags")
	runCmd.Flags().StringArrayVarP(&runOverrideFlag, "option", "o", nil, "override a settings key (key=value, repeatable)")
	runCmd.Flags().IntVarP(&runLimitFlag, "limit", "l", 0, "max hosts per task in parallel (0 = unbounded)")
	runCmd.Flags().BoolVar(&runNoHooksFlag, "no-hooks", false, "skip before/after hook tasks")
	runCmd.Flags().BoolVar(&runPlanFlag, "plan", false, "print what would run, without connecting")
	runCmd.Flags().StringVar(&runStartFrom, "start-from", "", "start the pipeline at this task")
	runCmd.Flags().BoolVar(&runNoLiveFlag, "no-live", false, "disable the live progress view")

	rootCmd.AddCommand(runCmd)
}
