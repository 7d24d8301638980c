// Package cli wires the cobra command surface to the engine.
package cli

import (
	stderrors "errors"
	"fmt"
	"os"
	"runtime/pprof"

	"github.com/convoy-sh/convoy/internal/logger"
	"github.com/spf13/cobra"
)

// Global flags
var (
	configFlag  string
	logFlag     string
	profileFlag string
)

var (
	fileLog     *logger.FileLogger
	profileFile *os.File
)

var rootCmd = &cobra.Command{
	Use:   "convoy",
	Short: "Deployment orchestration across SSH fleets",
	Long: `Convoy runs ordered deployment tasks across a fleet of hosts:
each task finishes everywhere before the next one starts, hosts within a
task run in parallel, and a failed command stops the run at the next task
boundary.

Hosts, tasks, and commands are defined in .convoy.yaml.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if logFlag != "" {
			fl, err := logger.NewFileLogger(logFlag)
			if err != nil {
				return err
			}
			fileLog = fl
			logger.SetDefault(fl)
		}
		if profileFlag != "" {
			f, err := os.Create(profileFlag)
			if err != nil {
				return err
			}
			if err := pprof.StartCPUProfile(f); err != nil {
				f.Close()
				return err
			}
			profileFile = f
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if profileFile != nil {
			pprof.StopCPUProfile()
			profileFile.Close()
		}
		if fileLog != nil {
			fileLog.Close()
		}
	},
}

// exitCodeError carries a process exit code through cobra without
// printing anything; the message was already rendered by the command.
type exitCodeError struct {
	code int
}

func (e *exitCodeError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

// Execute runs the CLI and exits the process with the appropriate code.
func Execute() {
	err := rootCmd.Execute()
	if err == nil {
		return
	}

	var ec *exitCodeError
	if stderrors.As(err, &ec) {
		os.Exit(ec.code)
	}

	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "config file (default: .convoy.yaml, searched upward)")
	rootCmd.PersistentFlags().StringVar(&logFlag, "log", "", "write a full debug log to this file")
	rootCmd.PersistentFlags().StringVar(&profileFlag, "profile", "", "write profiling data to this file")
}
