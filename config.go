package main

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	legacy      bool
	logFile     string
	maxAttempts int
	maxBackoff  time.Duration
	player      string
	profile     bool
	qr          bool
	reconnect   bool
	server      string
	statusBind  string
	statusPort  int
	verbose     bool
	version     bool
}

func (c *Config) validate() error {
	u, err := url.Parse(c.server)
	if err != nil {
		return fmt.Errorf("invalid server url %q: %w", c.server, err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return fmt.Errorf("invalid server url (scheme must be ws or wss): %s", c.server)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid server url (missing host): %s", c.server)
	}
	if strings.ContainsAny(c.player, " \t\n") {
		return errors.New("player id must not contain whitespace")
	}
	if c.statusPort < 0 || c.statusPort > 65535 {
		return fmt.Errorf("invalid status port (must be between 0-65535 inclusive): %d", c.statusPort)
	}
	if c.maxAttempts < 0 {
		return fmt.Errorf("invalid max attempts (must be 0 or more): %d", c.maxAttempts)
	}
	if c.maxBackoff <= 0 {
		return fmt.Errorf("invalid max backoff (must be positive): %s", c.maxBackoff)
	}
	return nil
}

// shareURL is the address a second player can point their own client at.
func (c *Config) shareURL() string {
	return c.server
}

func newCmd(cfg *Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("KNOCKBOX")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "knockbox",
		Short:         "A terminal client for two-player Gin Rummy.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		Version:       releaseVersion,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			return RunClient(cmd.Context(), cfg)
		},
	}

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.BoolVar(&cfg.legacy, "legacy-events", false, "send join_game/new_hand instead of join/reorder_hand (env: KNOCKBOX_LEGACY_EVENTS)")
	fs.StringVar(&cfg.logFile, "log-file", "", "write log output to this file; --verbose alone logs to knockbox.log in the temp dir (env: KNOCKBOX_LOG_FILE)")
	fs.IntVar(&cfg.maxAttempts, "max-attempts", 0, "reconnect attempts before giving up, 0 for unlimited (env: KNOCKBOX_MAX_ATTEMPTS)")
	fs.DurationVar(&cfg.maxBackoff, "max-backoff", 30*time.Second, "longest wait between reconnect attempts (env: KNOCKBOX_MAX_BACKOFF)")
	fs.StringVarP(&cfg.player, "player", "u", "", "player id to join as; prompts when empty (env: KNOCKBOX_PLAYER)")
	fs.BoolVar(&cfg.profile, "profile", false, "register net/http/pprof handlers on the status server (env: KNOCKBOX_PROFILE)")
	fs.BoolVar(&cfg.qr, "qr", false, "print a QR code of the server url before joining (env: KNOCKBOX_QR)")
	fs.BoolVar(&cfg.reconnect, "reconnect", true, "reconnect and rejoin when the connection drops (env: KNOCKBOX_RECONNECT)")
	fs.StringVarP(&cfg.server, "server", "s", "ws://localhost:5000/ws", "game server websocket url (env: KNOCKBOX_SERVER)")
	fs.StringVar(&cfg.statusBind, "status-bind", "127.0.0.1", "address for the local status server (env: KNOCKBOX_STATUS_BIND)")
	fs.IntVar(&cfg.statusPort, "status-port", 0, "port for the local status server, 0 to disable (env: KNOCKBOX_STATUS_PORT)")
	fs.BoolVarP(&cfg.verbose, "verbose", "v", false, "log connection and protocol activity (env: KNOCKBOX_VERBOSE)")
	fs.BoolVarP(&cfg.version, "version", "V", false, "display version and exit (env: KNOCKBOX_VERSION)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("knockbox v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}
