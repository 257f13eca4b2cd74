package terminal

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/soochnamitra/dash-core/pkg/runtime/terminal/export"
	"github.com/soochnamitra/dash-core/pkg/services/dashboard"
	"github.com/soochnamitra/dash-core/pkg/services/locate"
)

// CLI represents the command-line interface
type CLI struct {
	service  *dashboard.Service
	resolver *locate.Resolver
	geo      *CoordinateSource
	reporter *export.Reporter
	outcomes *Reporter
	logger   zerolog.Logger
	input    io.Reader
	output   io.Writer
	rootCmd  *cobra.Command
}

// Options contain configuration for the CLI
type Options struct {
	Service  *dashboard.Service
	Resolver *locate.Resolver
	Geo      *CoordinateSource
	Logger   zerolog.Logger
	Input    io.Reader
	Output   io.Writer
}

// NewCLI creates a new CLI instance
func NewCLI(opts Options) *CLI {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Input == nil {
		opts.Input = os.Stdin
	}

	cli := &CLI{
		service:  opts.Service,
		resolver: opts.Resolver,
		geo:      opts.Geo,
		reporter: export.NewReporter(opts.Output),
		outcomes: NewReporter(opts.Output),
		logger:   opts.Logger,
		input:    opts.Input,
		output:   opts.Output,
	}

	cli.rootCmd = cli.newRootCmd()
	return cli
}

func (cli *CLI) Execute() error {
	return cli.rootCmd.Execute()
}

func (cli *CLI) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dash",
		Short: "Regional expenditure dashboard",
	}

	cmd.AddCommand(newStatesCmd(cli))
	cmd.AddCommand(newDistrictsCmd(cli))
	cmd.AddCommand(newQueryCmd(cli))
	cmd.AddCommand(newLocateCmd(cli))
	cmd.AddCommand(newRefreshCmd(cli))

	return cmd
}
