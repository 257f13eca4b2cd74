package terminal

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/soochnamitra/dash-core/pkg/services/locate"
)

func newStatesCmd(cli *CLI) *cobra.Command {
	return &cobra.Command{
		Use:   "states",
		Short: "List the states available in the catalog",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cli.logger.WithContext(cmd.Context())

			states, err := cli.service.States(ctx)
			if err != nil {
				return err
			}
			for _, s := range states {
				fmt.Fprintln(cli.output, s)
			}
			return nil
		},
	}
}

func newDistrictsCmd(cli *CLI) *cobra.Command {
	return &cobra.Command{
		Use:   "districts <state>",
		Short: "List the districts of a state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cli.logger.WithContext(cmd.Context())

			districts, err := cli.service.Districts(ctx, args[0])
			if err != nil {
				return err
			}
			for _, d := range districts {
				fmt.Fprintln(cli.output, d)
			}
			return nil
		},
	}
}

func newQueryCmd(cli *CLI) *cobra.Command {
	var state, district string
	var months int

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Query the expenditure dashboard for a district",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cli.logger.WithContext(cmd.Context())

			if months == 0 {
				months = cli.service.DefaultMonths()
			}
			view, err := cli.service.Dashboard(ctx, state, district, months)
			if err != nil {
				return err
			}
			return cli.reporter.Handle(view)
		},
	}

	cmd.Flags().StringVarP(&state, "state", "s", "", "State name as listed by `states`")
	cmd.Flags().StringVarP(&district, "district", "d", "", "District name as listed by `districts`")
	cmd.Flags().IntVarP(&months, "months", "m", 0, "Reporting window in months (1, 3, 6 or 12)")
	_ = cmd.MarkFlagRequired("state")
	_ = cmd.MarkFlagRequired("district")

	return cmd
}

func newLocateCmd(cli *CLI) *cobra.Command {
	var lat, lon float64

	cmd := &cobra.Command{
		Use:   "locate",
		Short: "Resolve coordinates to a catalog region and query it",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cli.logger.WithContext(cmd.Context())

			// Reconciliation waits on the state list; load it up front
			// so confirmation cannot stall on a cold catalog.
			if _, err := cli.service.States(ctx); err != nil {
				return err
			}

			cli.geo.Set(lat, lon)

			detection, outcome, err := cli.resolver.Detect(ctx)
			if errors.Is(err, locate.ErrDetectionInFlight) {
				fmt.Fprintln(cli.output, "A location detection is already in progress.")
				return nil
			}
			if err != nil {
				return err
			}
			if outcome != nil {
				return cli.outcomes.Handle(nil, outcome)
			}

			fmt.Fprintf(cli.output, "Use %s, %s? [y/N]: ",
				detection.CandidateDistrict, detection.CandidateState)
			answer := ""
			scanner := bufio.NewScanner(cli.input)
			if scanner.Scan() {
				answer = strings.TrimSpace(scanner.Text())
			}
			accept := strings.EqualFold(answer, "y") || strings.EqualFold(answer, "yes")

			outcome, err = cli.resolver.Confirm(ctx, accept)
			if err != nil {
				return err
			}
			if outcome.Phase == locate.Declined {
				fmt.Fprintln(cli.output, "Keeping your current selection.")
				return nil
			}
			return cli.outcomes.Handle(detection, outcome)
		},
	}

	cmd.Flags().Float64Var(&lat, "lat", 0, "Latitude in decimal degrees")
	cmd.Flags().Float64Var(&lon, "lon", 0, "Longitude in decimal degrees")
	_ = cmd.MarkFlagRequired("lat")
	_ = cmd.MarkFlagRequired("lon")

	return cmd
}

func newRefreshCmd(cli *CLI) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Ask the upstream service to recompute its snapshots",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cli.logger.WithContext(cmd.Context())

			if err := cli.service.Refresh(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cli.output, "Refresh requested.")
			return nil
		},
	}
}
