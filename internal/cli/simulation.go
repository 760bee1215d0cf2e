package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/prashant-rs/iot-monitoring/internal/client"
)

func newSimulationCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "simulation",
		Aliases: []string{"sim"},
		Short:   "Control the sensor reading simulation",
	}

	var startInterval int
	startCmd := &cobra.Command{
		Use:   "start",
		Short: "Start the simulation (interval defaults to the stored config)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := opts.newClient()
			if err != nil {
				return err
			}
			res, err := c.StartSimulation(cmd.Context(), startInterval)
			if err != nil {
				return err
			}
			printControl(cmd, res)
			return nil
		},
	}
	startCmd.Flags().IntVarP(&startInterval, "interval", "i", 0, "Interval in milliseconds (1000-3600000)")

	stopCmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop the simulation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := opts.newClient()
			if err != nil {
				return err
			}
			res, err := c.StopSimulation(cmd.Context())
			if err != nil {
				return err
			}
			printControl(cmd, res)
			return nil
		},
	}

	var restartInterval int
	restartCmd := &cobra.Command{
		Use:   "restart",
		Short: "Restart the simulation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := opts.newClient()
			if err != nil {
				return err
			}
			res, err := c.RestartSimulation(cmd.Context(), restartInterval)
			if err != nil {
				return err
			}
			printControl(cmd, res)
			return nil
		},
	}
	restartCmd.Flags().IntVarP(&restartInterval, "interval", "i", 0, "Interval in milliseconds (1000-3600000)")

	intervalCmd := &cobra.Command{
		Use:   "interval <ms>",
		Short: "Change the simulation interval",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var ms int
			if _, err := fmt.Sscanf(args[0], "%d", &ms); err != nil {
				return fmt.Errorf("invalid interval %q: %w", args[0], err)
			}
			c, err := opts.newClient()
			if err != nil {
				return err
			}
			res, err := c.UpdateInterval(cmd.Context(), ms)
			if err != nil {
				return err
			}
			printControl(cmd, res)
			return nil
		},
	}

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show simulation status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := opts.newClient()
			if err != nil {
				return err
			}
			st, err := c.SimulationStatus(cmd.Context())
			if err != nil {
				return err
			}
			state := "stopped"
			if st.IsRunning {
				state = "running"
			}
			cmd.Printf("Simulation is %s (interval %dms, %.1fs)\n", state, st.IntervalMs, st.IntervalSeconds)
			return nil
		},
	}

	cmd.AddCommand(startCmd, stopCmd, restartCmd, intervalCmd, statusCmd)
	return cmd
}

func printControl(cmd *cobra.Command, res client.ControlResult) {
	cmd.Println(res.Message)
	if res.IntervalMs > 0 {
		cmd.Printf("Interval: %dms\n", res.IntervalMs)
	}
	if res.IsRunning != nil {
		cmd.Printf("Running: %t\n", *res.IsRunning)
	}
}
