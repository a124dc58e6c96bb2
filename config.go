/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	allowedDomain string
	bind          string
	logJSON       bool
	pingPeriod    time.Duration
	port          int
	prefix        string
	profile       bool
	readLimit     int64
	sendBuffer    int
	strictVotes   bool
	tlsCert       string
	tlsKey        string
	verbose       bool
	version       bool
}

func (c *Config) validate() error {
	if (c.tlsCert == "") != (c.tlsKey == "") {
		return errors.New("both --tls-cert and --tls-key must be provided together")
	}
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	if c.pingPeriod <= 0 {
		return fmt.Errorf("invalid ping period (must be positive): %s", c.pingPeriod)
	}
	if c.readLimit <= 0 {
		return fmt.Errorf("invalid read limit (must be positive): %d", c.readLimit)
	}
	if c.sendBuffer <= 0 {
		return fmt.Errorf("invalid send buffer (must be positive): %d", c.sendBuffer)
	}
	if strings.Contains(c.allowedDomain, "@") {
		return fmt.Errorf("invalid allowed domain (omit the @): %q", c.allowedDomain)
	}
	return nil
}

func (c *Config) scheme() string {
	if c.tlsCert != "" && c.tlsKey != "" {
		return "https"
	}
	return "http"
}

func newCmd(cfg *Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("POKERBOX")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "pokerbox",
		Short:         "A single-room planning poker server.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		Version:       releaseVersion,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(cfg)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			return ServePage(cmd.Context(), cfg)
		},
	}

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVar(&cfg.allowedDomain, "allowed-domain", "", "only accept emails ending in @<domain> (env: POKERBOX_ALLOWED_DOMAIN)")
	fs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address to bind to (env: POKERBOX_BIND)")
	fs.BoolVar(&cfg.logJSON, "log-json", false, "write logs as JSON lines instead of console output (env: POKERBOX_LOG_JSON)")
	fs.DurationVar(&cfg.pingPeriod, "ping-period", 54*time.Second, "interval between websocket keepalive pings (env: POKERBOX_PING_PERIOD)")
	fs.IntVarP(&cfg.port, "port", "p", 8080, "port to listen on (env: POKERBOX_PORT)")
	fs.StringVar(&cfg.prefix, "prefix", "", "path to prepend to all URLs, for use behind reverse proxy (env: POKERBOX_PREFIX)")
	fs.BoolVar(&cfg.profile, "profile", false, "register net/http/pprof handlers (env: POKERBOX_PROFILE)")
	fs.Int64Var(&cfg.readLimit, "read-limit", 32768, "maximum size in bytes of an inbound websocket message (env: POKERBOX_READ_LIMIT)")
	fs.IntVar(&cfg.sendBuffer, "send-buffer", 64, "outbound messages queued per connection before it is dropped (env: POKERBOX_SEND_BUFFER)")
	fs.BoolVar(&cfg.strictVotes, "strict-votes", false, "ignore votes that are not on the card deck (env: POKERBOX_STRICT_VOTES)")
	fs.StringVar(&cfg.tlsCert, "tls-cert", "", "path to tls certificate (env: POKERBOX_TLS_CERT)")
	fs.StringVar(&cfg.tlsKey, "tls-key", "", "path to tls keyfile (env: POKERBOX_TLS_KEY)")
	fs.BoolVarP(&cfg.verbose, "verbose", "v", false, "display additional output (env: POKERBOX_VERBOSE)")
	fs.BoolVarP(&cfg.version, "version", "V", false, "display version and exit (env: POKERBOX_VERSION)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("pokerbox v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}
