package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

func newDemoCommand(c *cli) *cobra.Command {
	var (
		count    int
		interval time.Duration
		buffers  bool
	)

	cmd := &cobra.Command{
		Use:   "demo [message...]",
		Short: "Exchange messages with a listening server that answers each one",
		Long: "Run the server in listen mode and let the client send messages, reading\n" +
			"the server's reply to each. Messages default to \"message 1\", \"message 2\", ...",
		RunE: func(cmd *cobra.Command, args []string) error {
			c.cfg.ServerMode = "listen"

			s, err := c.newSession(newPrinter(cmd.OutOrStdout(), buffers), false)
			if err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			if err := s.Start(ctx); err != nil {
				return fmt.Errorf("start session: %w", err)
			}
			defer func() {
				if err := s.Stop(); err != nil {
					c.log.Error().Err(err).Msg("stop session")
				}
			}()

			messages := args
			if len(messages) == 0 {
				for i := 1; i <= count; i++ {
					messages = append(messages, fmt.Sprintf("message %d", i))
				}
			}

			client := s.Client()
			for i, msg := range messages {
				if i > 0 {
					select {
					case <-ctx.Done():
						c.log.Info().Msg("received signal, stopping...")
						return nil
					case <-time.After(interval):
					}
				}
				if err := client.Write(ctx, msg); err != nil {
					return err
				}
				if err := client.Read(ctx); err != nil {
					return err
				}
			}

			// Give the last read its full timeout.
			select {
			case <-ctx.Done():
			case <-time.After(c.cfg.ClientTimeout):
			}
			return s.Flush(context.Background())
		},
	}

	cmd.Flags().IntVar(&count, "count", 3, "number of generated messages when none are given")
	cmd.Flags().DurationVar(&interval, "interval", time.Second, "pause between messages")
	cmd.Flags().BoolVar(&buffers, "buffers", false, "print buffer contents after every change")
	return cmd
}
