package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newBedroomCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "bedroom",
		Aliases: []string{"bedrooms"},
		Short:   "List bedrooms",
	}
	cmd.AddCommand(&cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List bedrooms with sensor counts",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := opts.newClient()
			if err != nil {
				return err
			}
			bedrooms, err := c.ListBedrooms(cmd.Context())
			if err != nil {
				return err
			}
			if len(bedrooms) == 0 {
				cmd.Println("No bedrooms found.")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			defer w.Flush()
			fmt.Fprintln(w, "ID\tNAME\tSENSORS\tACTIVE")
			for _, b := range bedrooms {
				fmt.Fprintf(w, "%d\t%s\t%d\t%d\n", b.ID, b.Name, b.SensorCount, b.ActiveSensors)
			}
			return nil
		},
	})
	return cmd
}

func newSensorCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "sensor",
		Aliases: []string{"sensors"},
		Short:   "List sensors",
	}
	cmd.AddCommand(&cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List all sensors",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := opts.newClient()
			if err != nil {
				return err
			}
			sensors, err := c.ListSensors(cmd.Context())
			if err != nil {
				return err
			}
			if len(sensors) == 0 {
				cmd.Println("No sensors found.")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			defer w.Flush()
			fmt.Fprintln(w, "ID\tBEDROOM\tNAME\tTYPE\tRANGE\tACTIVE")
			for _, s := range sensors {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%.2f-%.2f %s\t%t\n",
					s.ID, s.BedroomName, s.Name, s.Type, s.MinValue, s.MaxValue, s.Unit, s.IsActive)
			}
			return nil
		},
	})
	return cmd
}

func newReadingsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:     "latest",
		Aliases: []string{"readings"},
		Short:   "Show the latest reading of every sensor",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := opts.newClient()
			if err != nil {
				return err
			}
			readings, err := c.LatestReadings(cmd.Context())
			if err != nil {
				return err
			}
			if len(readings) == 0 {
				cmd.Println("No readings found.")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			defer w.Flush()
			fmt.Fprintln(w, "ROOM\tSENSOR\tVALUE\tTIME")
			for _, r := range readings {
				fmt.Fprintf(w, "%s\t%s\t%.2f %s\t%s\n",
					r.RoomName, r.SensorName, r.Value, r.Unit, r.Timestamp.Format("2006-01-02T15:04:05Z07:00"))
			}
			return nil
		},
	}
}
