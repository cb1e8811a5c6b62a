// Package cli implements the folio command line on top of the application
// services.
package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/google/subcommands"
	"github.com/rs/zerolog/log"

	"folio/internal/application/container"
	"folio/internal/application/port"
	"folio/internal/infrastructure/config"
	infracontainer "folio/internal/infrastructure/container"
	"folio/internal/infrastructure/logger"
	"folio/internal/interfaces/console"
)

// App carries the global flags shared by every subcommand.
type App struct {
	ConfigPath string
	JSON       bool
	Verbose    bool

	Stdout io.Writer
	Stderr io.Writer
}

func NewApp() *App {
	return &App{Stdout: os.Stdout, Stderr: os.Stderr}
}

// SetFlags registers the global flags on f.
func (a *App) SetFlags(f *flag.FlagSet) {
	f.StringVar(&a.ConfigPath, "config", config.DefaultPath, "Path to the TOML config file (optional)")
	f.BoolVar(&a.JSON, "json", false, "Print results as JSON")
	f.BoolVar(&a.Verbose, "v", false, "Enable debug logging")
}

// Register the subcommands.
func (a *App) Register(c *subcommands.Commander) {
	c.Register(&initCmd{app: a}, "storage")
	c.Register(&syncCmd{app: a}, "storage")

	c.Register(&assetCmd{app: a}, "ledger")
	c.Register(&txnCmd{app: a}, "ledger")
	c.Register(&priceCmd{app: a}, "ledger")

	c.Register(&positionsCmd{app: a}, "reports")
	c.Register(&summaryCmd{app: a}, "reports")
}

// session is one command's view of the opened store.
type session struct {
	cfg      *config.Config
	infra    *infracontainer.Container
	services *container.Container
	sink     port.Sink
}

func (s *session) Close() {
	if err := s.infra.Close(); err != nil {
		log.Warn().Err(err).Msg("close storage")
	}
}

// user falls back to the configured default user.
func (s *session) user(flagValue string) string {
	if u := strings.TrimSpace(flagValue); u != "" {
		return u
	}
	return s.cfg.App.DefaultUser
}

func (a *App) open(structured bool) (*session, error) {
	cfg, err := config.Load(a.ConfigPath)
	if err != nil {
		return nil, err
	}
	level := cfg.App.LogLevel
	if a.Verbose {
		level = "debug"
	}
	logger.Setup(level)

	infra, err := infracontainer.New(cfg)
	if err != nil {
		return nil, err
	}
	return &session{
		cfg:      cfg,
		infra:    infra,
		services: container.New(infra.Repository(), infra.PriceRepository()),
		sink:     console.NewSink(a.Stdout, a.JSON || structured),
	}, nil
}

// fail prints err verbatim on stderr.
func (a *App) fail(err error) subcommands.ExitStatus {
	log.Debug().Err(err).Msg("command failed")
	fmt.Fprintln(a.Stderr, err.Error())
	return subcommands.ExitFailure
}

// usage reports a command line mistake.
func (a *App) usage(err error) subcommands.ExitStatus {
	fmt.Fprintf(a.Stderr, "usage error: %v\n", err)
	return subcommands.ExitUsageError
}

// required reports the named flags that were not set on the command line.
func required(f *flag.FlagSet, names ...string) error {
	seen := make(map[string]bool)
	f.Visit(func(fl *flag.Flag) { seen[fl.Name] = true })

	var missing []string
	for _, n := range names {
		if !seen[n] {
			missing = append(missing, "-"+n)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	return errors.New("missing required flag(s): " + strings.Join(missing, ", "))
}

func optional(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}
