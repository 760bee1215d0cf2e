package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	logpkg "github.com/prashant-rs/iot-monitoring/common/logger"
	"github.com/prashant-rs/iot-monitoring/internal/client"
)

type options struct {
	serverURL string
	timeout   time.Duration
	verbose   bool
}

// NewRootCmd iot-monitoring-ctl 根命令；out 为命令输出
func NewRootCmd(out io.Writer) *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "iot-monitoring-ctl",
		Short: "Control client for the IoT monitoring service",
		Long: `Command line client for the IoT monitoring HTTP API.

Controls the sensor simulation and lists bedrooms, sensors and the
latest readings of a running iot-monitoring server.`,
		SilenceUsage: true,
	}
	rootCmd.SetOut(out)
	rootCmd.SetErr(out)

	rootCmd.PersistentFlags().StringVarP(&opts.serverURL, "server", "s", "http://localhost:3000", "Base URL of the iot-monitoring API")
	rootCmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "Request timeout")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable verbose (debug) logging")

	rootCmd.AddCommand(
		newSimulationCmd(opts),
		newBedroomCmd(opts),
		newSensorCmd(opts),
		newReadingsCmd(opts),
	)
	return rootCmd
}

// newClient 根据全局参数创建 API 客户端
func (o *options) newClient() (*client.Client, error) {
	level := "warn"
	if o.verbose {
		level = "debug"
	}
	logger, err := logpkg.NewLogger(level, "console", "iot-monitoring-ctl")
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return client.New(o.serverURL, o.timeout, logger.With(zap.String("server", o.serverURL))), nil
}
