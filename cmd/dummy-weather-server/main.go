// Command dummy-weather-server serves simulated county forecasts over a
// websocket for the weather dashboard.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/atomicstack/weather-dashboard/internal/logging"
	"github.com/atomicstack/weather-dashboard/internal/server"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var flags struct {
	Addr         string
	Workers      int
	Queue        int
	Delay        time.Duration
	Rate         float64
	Burst        int
	LogFile      string
	Trace        bool
	ListCounties bool
}

func newRootCmd() *cobra.Command {
	defaults := server.DefaultConfig()
	cmd := &cobra.Command{
		Use:   "dummy-weather-server",
		Short: "Serve simulated county forecasts over a websocket",
		Long: `dummy-weather-server answers forecast requests from weather-dashboard.

Readings are derived from the county name, so a county always gets the same
forecast. Every request takes --delay to answer, which makes out-of-order
responses easy to observe.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if flags.ListCounties {
				return listCounties(cmd.OutOrStdout())
			}
			return serve(cmd.OutOrStdout())
		},
	}
	f := cmd.Flags()
	f.StringVar(&flags.Addr, "addr", defaults.Addr, "listen address")
	f.IntVar(&flags.Workers, "workers", defaults.Workers, "number of worker goroutines")
	f.IntVar(&flags.Queue, "queue", defaults.QueueSize, "pending request queue size")
	f.DurationVar(&flags.Delay, "delay", time.Second, "simulated processing time per request")
	f.Float64Var(&flags.Rate, "rate", 0, "max requests per second (0 disables rate limiting)")
	f.IntVar(&flags.Burst, "burst", 10, "rate limiter burst size")
	f.StringVar(&flags.LogFile, "log-file", "dummy-weather-server.log", "log file path")
	f.BoolVar(&flags.Trace, "trace", false, "write JSON trace entries to the log")
	f.BoolVar(&flags.ListCounties, "list-counties", false, "print the known counties and exit")
	return cmd
}

func serve(out io.Writer) error {
	if err := logging.Configure(flags.LogFile, flags.Trace); err != nil {
		return err
	}
	var p server.Processor = server.NewCountyProvider(flags.Delay)
	if flags.Rate > 0 {
		p = server.RateLimited(p, flags.Rate, flags.Burst)
	}
	srv, err := server.New(server.Config{
		Addr:      flags.Addr,
		Workers:   flags.Workers,
		QueueSize: flags.Queue,
	}, p)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	go func() {
		<-ctx.Done()
		fmt.Fprintln(out, "Server shutting down ...")
	}()
	fmt.Fprintf(out, "Serving forecasts on ws://%s/forecast\n", flags.Addr)
	return srv.ListenAndServe(ctx)
}

func listCounties(w io.Writer) error {
	tw := tablewriter.NewWriter(w)
	tw.SetHeader([]string{"COUNTY", "WIND", "RAIN", "SUN"})
	tw.SetBorder(true)
	tw.SetRowLine(false)
	tw.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	tw.SetColumnAlignment([]int{
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_RIGHT,
	})
	tw.SetAutoWrapText(false)
	for _, c := range server.Counties {
		f := server.ReadingsFor(c)
		tw.Append([]string{c.Name(), formatReading(f.Wind), formatReading(f.Rain), formatReading(f.Sun)})
	}
	tw.Render()
	return nil
}

func formatReading(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
