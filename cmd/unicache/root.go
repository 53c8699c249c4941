package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/xhit/go-str2duration/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/unkn0wn-root/unicache"
	"github.com/unkn0wn-root/unicache/backend"
	"github.com/unkn0wn-root/unicache/config"
	uzap "github.com/unkn0wn-root/unicache/log/zap"
)

var errMiss = errors.New("key not found")

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "unicache",
		Short:         "Read and write a configured cache",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("config", "cache.yaml", "path to config file")
	root.PersistentFlags().String("log-level", "warn", "log level (debug, info, warn, error)")

	root.AddCommand(
		getCmd(),
		setCmd(),
		delCmd(),
		flushCmd(),
		counterCmd("incr", "Increment a counter", unicache.Cache[any].Increment),
		counterCmd("decr", "Decrement a counter", unicache.Cache[any].Decrement),
	)
	return root
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, errors.Wrapf(err, "log level %q", level)
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}

// withCache loads the config, opens the cache and closes it after fn.
func withCache(cmd *cobra.Command, fn func(ctx context.Context, cc unicache.Cache[any]) error) error {
	path, _ := cmd.Flags().GetString("config")
	level, _ := cmd.Flags().GetString("log-level")

	log, err := newLogger(level)
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cc, err := backend.NewCache[any](ctx, *cfg, func(o *unicache.Options[any]) {
		o.Logger = uzap.New(log)
	})
	if err != nil {
		return err
	}
	defer cc.Close(ctx)

	log.Debug("cache opened",
		zap.String("driver", cfg.Driver),
		zap.String("prefix", cc.Prefix()),
		zap.String("serializer", cc.Serializer().String()))
	return fn(ctx, cc)
}

func getCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get KEY",
		Short: "Print the value stored under KEY as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCache(cmd, func(ctx context.Context, cc unicache.Cache[any]) error {
				v, ok, err := cc.Get(ctx, args[0])
				if err != nil {
					return err
				}
				if !ok {
					return errors.Wrapf(errMiss, "%q", args[0])
				}
				out, err := json.Marshal(v)
				if err != nil {
					return errors.Wrap(err, "render value")
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(out))
				return nil
			})
		},
	}
}

// parseTTL accepts str2duration forms plus "never". Empty means the default.
func parseTTL(s string) (time.Duration, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "0":
		return 0, nil
	case "never":
		return unicache.NoExpiration, nil
	}
	d, err := str2duration.ParseDuration(s)
	if err != nil {
		return 0, errors.Wrapf(err, "ttl %q", s)
	}
	if d <= 0 {
		return 0, errors.Newf("ttl %q must be positive", s)
	}
	return d, nil
}

func setCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Store VALUE (a string) under KEY",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, _ := cmd.Flags().GetString("ttl")
			ttl, err := parseTTL(raw)
			if err != nil {
				return err
			}
			return withCache(cmd, func(ctx context.Context, cc unicache.Cache[any]) error {
				ok, err := cc.Set(ctx, args[0], args[1], ttl)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), ok)
				return nil
			})
		},
	}
	cmd.Flags().String("ttl", "", `time to live, e.g. 90s, 5m, 1d or "never" (default: config default_ttl)`)
	return cmd
}

func delCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "del KEY...",
		Short: "Delete one or more keys",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCache(cmd, func(ctx context.Context, cc unicache.Cache[any]) error {
				res, err := cc.DeleteMulti(ctx, args)
				for _, k := range args {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%t\n", k, res[k])
				}
				return err
			})
		},
	}
}

func flushCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "flush",
		Short: "Remove every entry from the backend (all prefixes)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withCache(cmd, func(ctx context.Context, cc unicache.Cache[any]) error {
				ok, err := cc.Flush(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), ok)
				return nil
			})
		},
	}
}

type counterFn func(unicache.Cache[any], context.Context, string, int64, time.Duration) (int64, error)

func counterCmd(use, short string, op counterFn) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use + " KEY [N]",
		Short: short + " by N (default 1)",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			n := int64(1)
			if len(args) == 2 {
				v, err := strconv.ParseInt(args[1], 10, 64)
				if err != nil {
					return errors.Wrapf(err, "offset %q", args[1])
				}
				n = v
			}
			raw, _ := cmd.Flags().GetString("ttl")
			ttl, err := parseTTL(raw)
			if err != nil {
				return err
			}
			return withCache(cmd, func(ctx context.Context, cc unicache.Cache[any]) error {
				v, err := op(cc, ctx, args[0], n, ttl)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), v)
				return nil
			})
		},
	}
	cmd.Flags().String("ttl", "", "time to live for the stored counter")
	return cmd
}
