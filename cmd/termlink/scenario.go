package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/bft-labs/termlink/internal/scenario"
	"github.com/bft-labs/termlink/pkg/log"
)

func newScenarioCommand(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "scenario <file>",
		Short: "Run a scripted session from a TOML file and check its expectations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := scenario.LoadFile(args[0])
			if err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			runner := scenario.NewRunner(log.NewZerologAdapterWithLogger(c.log))
			report, runErr := runner.Run(ctx, sc)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "scenario %s\n", report.Name)
			for _, res := range report.Results {
				status := "ok  "
				if res.Err != nil {
					status = "FAIL"
				}
				fmt.Fprintf(out, "  %s %2d %s (%s)\n", status, res.Index, res.Step, res.Duration.Round(time.Millisecond))
				if res.Err != nil {
					fmt.Fprintf(out, "       %v\n", res.Err)
				}
			}
			if skipped := len(sc.Steps) - len(report.Results); skipped > 0 {
				fmt.Fprintf(out, "  %d step(s) not run\n", skipped)
			}
			fmt.Fprintf(out, "%d events\n", report.Events)

			if runErr != nil {
				return runErr
			}
			fmt.Fprintln(out, "PASS")
			return nil
		},
	}
}
