// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Command respctl sends commands over one pipelined connection and prints
// the replies.
//
//	respctl -addr localhost:6379 SET greeting hello
//	printf 'INCR hits\nGET hits\n' | respctl -config resp.toml -
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"code.hybscloud.com/resp"
	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

func main() {
	var (
		configPath = flag.String("config", "", "TOML config file")
		addr       = flag.String("addr", "", "server address (host:port)")
		password   = flag.String("password", "", "AUTH credential")
		db         = flag.Int("db", -1, "database index")
		timeout    = flag.Duration("timeout", 10*time.Second, "overall deadline")
		verbose    = flag.Bool("v", false, "log connection lifecycle")
	)
	flag.Parse()

	logger := newLogger(*verbose)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	ctx, cancelTimeout := context.WithTimeout(ctx, *timeout)
	defer cancelTimeout()

	cfg := resp.DefaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = resp.LoadConfig(*configPath); err != nil {
			logger.Fatal().Err(err).Msg("load config")
		}
	}
	opts := append(cfg.Options(), resp.WithLogger(logger))
	if *addr != "" {
		opts = append(opts, resp.WithAddr(*addr))
	}
	if *password != "" {
		opts = append(opts, resp.WithPassword(*password))
	}
	if *db >= 0 {
		opts = append(opts, resp.WithDB(*db))
	}

	cmds, err := commands(flag.Args(), os.Stdin)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse commands")
	}

	if err := run(ctx, opts, cmds, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "respctl: %v\n", err)
		os.Exit(1)
	}
}

func newLogger(verbose bool) zerolog.Logger {
	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(output).Level(level).With().Timestamp().Str("app", "respctl").Logger()
}

// commands builds the command list from argv, or from one command per
// line of in when argv is "-".
func commands(argv []string, in io.Reader) ([]resp.Command, error) {
	if len(argv) == 0 {
		return nil, errors.New("no command given")
	}
	if len(argv) == 1 && argv[0] == "-" {
		var cmds []resp.Command
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			fields := strings.Fields(sc.Text())
			if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
				continue
			}
			cmds = append(cmds, toCommand(fields))
		}
		if err := sc.Err(); err != nil {
			return nil, errors.Wrap(err, "read stdin")
		}
		return cmds, nil
	}
	return []resp.Command{toCommand(argv)}, nil
}

func toCommand(fields []string) resp.Command {
	cmd := resp.Command{Name: strings.ToUpper(fields[0])}
	for _, f := range fields[1:] {
		cmd.Args = append(cmd.Args, []byte(f))
	}
	return cmd
}

func run(ctx context.Context, opts []resp.Option, cmds []resp.Command, out io.Writer) error {
	c, err := resp.Dial(ctx, opts...)
	if err != nil && c == nil {
		return err
	}
	defer c.Close()
	if err != nil {
		fmt.Fprintf(out, "(warning) %v\n", err)
	}

	hs, err := c.SendBatch(ctx, cmds...)
	if err != nil {
		return err
	}
	for i, h := range hs {
		r, err := c.Wait(ctx, h)
		if err != nil {
			return errors.Wrapf(err, "wait for %s", cmds[i].Name)
		}
		if e := r.Err(); e != nil && !resp.IsServerError(e) {
			_ = c.Release(h)
			return e
		}
		fmt.Fprintln(out, r.String())
		_ = c.Release(h)
	}
	return nil
}
