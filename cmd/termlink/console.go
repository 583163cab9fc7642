package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/bft-labs/termlink/internal/cliconfig"
	"github.com/bft-labs/termlink/pkg/framebuf"
	"github.com/bft-labs/termlink/pkg/termlink"
)

const consoleHelp = `commands:
  <endpoint> write <text>          send text followed by the write delimiter
  <endpoint> read                  read one frame, waiting up to the timeout
  <endpoint> cancel                end a pending read
  <endpoint> clear                 empty the buffer
  <endpoint> set read-delim <d>    change the read delimiter (escapes allowed, "" for none)
  <endpoint> set write-delim <d>   change the write delimiter
  <endpoint> set timeout <dur>     change the read timeout, e.g. 2s
  <endpoint> set capacity <n>      change the buffer capacity (0 is unbounded)
  <endpoint> show                  print configuration and buffer
  help | quit
endpoints: client (c), server (s)`

var errQuit = errors.New("quit")

// command is one parsed console line.
type command struct {
	endpoint string
	verb     string
	key      string
	arg      string
}

// parseCommand parses a console line. Write text is taken verbatim after a
// single separating space.
func parseCommand(line string) (command, error) {
	line = strings.TrimLeft(line, " \t")
	if line == "" {
		return command{}, nil
	}

	head, rest, _ := strings.Cut(line, " ")
	switch head {
	case "help", "?":
		return command{verb: "help"}, nil
	case "quit", "exit":
		return command{verb: "quit"}, nil
	}

	var cmd command
	switch head {
	case "client", "c":
		cmd.endpoint = termlink.ClientName
	case "server", "s":
		cmd.endpoint = termlink.ServerName
	default:
		return command{}, fmt.Errorf("unknown endpoint %q", head)
	}

	verb, arg, _ := strings.Cut(strings.TrimLeft(rest, " "), " ")
	cmd.verb = verb
	switch verb {
	case "write":
		cmd.arg = arg
	case "read", "cancel", "clear", "show":
	case "set":
		key, value, _ := strings.Cut(strings.TrimSpace(arg), " ")
		switch key {
		case "read-delim", "write-delim":
			// No value means the empty delimiter.
		case "timeout", "capacity":
			if strings.TrimSpace(value) == "" {
				return command{}, fmt.Errorf("set %s needs a value", key)
			}
		case "":
			return command{}, fmt.Errorf("set needs a setting and a value")
		default:
			return command{}, fmt.Errorf("unknown setting %q", key)
		}
		cmd.key = key
		cmd.arg = strings.TrimSpace(value)
	case "":
		return command{}, fmt.Errorf("missing command for %s", cmd.endpoint)
	default:
		return command{}, fmt.Errorf("unknown command %q", verb)
	}
	return cmd, nil
}

// execute runs cmd against s, writing any direct output to out.
func execute(ctx context.Context, s *termlink.Session, cmd command, out io.Writer) error {
	switch cmd.verb {
	case "":
		return nil
	case "help":
		fmt.Fprintln(out, consoleHelp)
		return nil
	case "quit":
		return errQuit
	}

	ep, err := s.Endpoint(cmd.endpoint)
	if err != nil {
		return err
	}

	switch cmd.verb {
	case "write":
		return ep.Write(ctx, cmd.arg)
	case "read":
		return ep.Read(ctx)
	case "cancel":
		return ep.CancelRead(ctx)
	case "clear":
		return ep.Clear(ctx)
	case "show":
		snap, err := ep.Snapshot(ctx)
		if err != nil {
			return err
		}
		printSnapshot(out, snap)
		return nil
	}

	switch cmd.key {
	case "read-delim":
		d, err := decodeDelim(cmd.arg)
		if err != nil {
			return err
		}
		return ep.SetReadDelimiter(ctx, d)
	case "write-delim":
		d, err := decodeDelim(cmd.arg)
		if err != nil {
			return err
		}
		return ep.SetWriteDelimiter(ctx, d)
	case "timeout":
		d, err := time.ParseDuration(cmd.arg)
		if err != nil {
			return fmt.Errorf("timeout: %w", err)
		}
		return ep.SetTimeout(ctx, d)
	case "capacity":
		n, err := strconv.Atoi(cmd.arg)
		if err != nil {
			return fmt.Errorf("capacity: %w", err)
		}
		return ep.SetCapacity(ctx, n)
	}
	return fmt.Errorf("unknown command %q", cmd.verb)
}

// decodeDelim decodes a typed delimiter. An empty argument or a pair of
// quotes ("" or '') is the empty delimiter.
func decodeDelim(arg string) (string, error) {
	if arg == `""` || arg == "''" {
		return "", nil
	}
	return cliconfig.DecodeEscapes(arg)
}

func printSnapshot(out io.Writer, snap termlink.Snapshot) {
	fmt.Fprintf(out, "%s: %s, %s mode\n", snap.Name, snap.State, snap.Mode)
	fmt.Fprintf(out, "  read delimiter  %s\n", quoteDelim(snap.ReadDelimiter))
	fmt.Fprintf(out, "  write delimiter %s\n", quoteDelim(snap.WriteDelimiter))
	fmt.Fprintf(out, "  timeout         %s\n", snap.Timeout)
	fmt.Fprintf(out, "  buffer          [%s] %s\n", snap.Preview, fill(snap.Len, snap.Capacity))

	var disabled []string
	c := snap.Controls
	for _, ctl := range []struct {
		name    string
		enabled bool
	}{
		{"write", c.Write},
		{"read", c.Read},
		{"read-delim", c.ReadDelimiter},
		{"write-delim", c.WriteDelimiter},
		{"timeout", c.Timeout},
		{"clear", c.Clear},
	} {
		if !ctl.enabled {
			disabled = append(disabled, ctl.name)
		}
	}
	if len(disabled) > 0 {
		fmt.Fprintf(out, "  locked          %s\n", strings.Join(disabled, ", "))
	}
}

func quoteDelim(d string) string {
	if d == "" {
		return "(none)"
	}
	return `"` + framebuf.Preview(d, 0) + `"`
}

func newRunCommand(c *cli) *cobra.Command {
	var buffers bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start an interactive console driving both endpoints",
		Long:  "Start an interactive console driving both endpoints.\n\n" + consoleHelp,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			s, err := c.newSession(newPrinter(out, buffers), true)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(sigCh)

			if err := s.Start(ctx); err != nil {
				return fmt.Errorf("start session: %w", err)
			}
			c.log.Info().Str("session", s.ID()).Msg("session started, type help for commands")

			lines := make(chan string)
			go func() {
				defer close(lines)
				scanner := bufio.NewScanner(cmd.InOrStdin())
				for scanner.Scan() {
					select {
					case lines <- scanner.Text():
					case <-ctx.Done():
						return
					}
				}
			}()

		loop:
			for {
				select {
				case <-sigCh:
					c.log.Info().Msg("received signal, stopping...")
					break loop
				case line, ok := <-lines:
					if !ok {
						break loop
					}
					parsed, err := parseCommand(line)
					if err != nil {
						fmt.Fprintln(out, "error:", err)
						continue
					}
					err = execute(ctx, s, parsed, out)
					if errors.Is(err, errQuit) {
						break loop
					}
					if err != nil {
						fmt.Fprintln(out, "error:", err)
						continue
					}
					// Let routed data and events print before the next prompt.
					_ = s.Flush(ctx)
				}
			}

			if err := s.Stop(); err != nil {
				return fmt.Errorf("stop session: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&buffers, "buffers", false, "print buffer contents after every change")
	return cmd
}
