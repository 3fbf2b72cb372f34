package probe

import (
	"context"
	"fmt"
	"github.com/ValentinKolb/oneshot/cmd/util"
	"github.com/ValentinKolb/oneshot/rpc/client"
	gometrics "github.com/rcrowley/go-metrics"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
	"time"
)

var (
	perfTestCmd = &cobra.Command{
		Use:     "perf",
		Short:   "Performance testing tool for oneshot servers",
		Long:    "Opens --requests connections (at most --threads at a time), each sending one payload, and prints latency statistics.",
		RunE:    runPerf,
		PreRunE: processPerfConfig,
	}
	perfRequests   = 100
	perfNumThreads = 10
	perfPayload    = "hello server"
)

func init() {
	// add flags
	key := "requests"
	perfTestCmd.Flags().Int(key, 100, util.WrapString("Number of requests (connections) to send"))
	key = "threads"
	perfTestCmd.Flags().Int(key, 10, util.WrapString("Number of requests in flight at the same time"))
	key = "payload"
	perfTestCmd.Flags().String(key, "hello server", util.WrapString("The payload sent with every request"))
}

func processPerfConfig(cmd *cobra.Command, _ []string) error {
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	// Read the configuration from the command line flags and environment variables
	perfRequests = viper.GetInt("requests")
	perfNumThreads = viper.GetInt("threads")
	perfPayload = viper.GetString("payload")

	if perfRequests < 1 {
		return fmt.Errorf("requests must be positive, got %d", perfRequests)
	}
	if perfNumThreads < 1 {
		return fmt.Errorf("threads must be positive, got %d", perfNumThreads)
	}
	return nil
}

// perfResult holds the statistics of one perf run
type perfResult struct {
	Timer    gometrics.Timer
	Errors   gometrics.Counter
	Total    time.Duration
	Requests int
}

func runPerf(_ *cobra.Command, _ []string) error {
	fmt.Println("Performance testing tool for oneshot servers")

	// Print configuration
	fmt.Println()
	fmt.Println("Configuration:")
	fmt.Println(util.GetClientConfig().String())
	fmt.Printf("Requests: %d\n", perfRequests)
	fmt.Printf("Threads: %d\n", perfNumThreads)
	fmt.Println()

	fmt.Println("starting tests...")

	result := measure(context.Background(), runner, client.TestCase{Label: "perf", Payload: perfPayload}, perfRequests, perfNumThreads)
	defer result.Timer.Stop()

	printResult(result)
	return nil
}

// measure sends requests probes of tc with at most threads in flight.
// Failed probes are counted, their latency is still recorded.
func measure(ctx context.Context, r *client.Runner, tc client.TestCase, requests, threads int) perfResult {
	result := perfResult{
		// uniform sample over all requests, so percentiles are exact
		Timer:    gometrics.NewCustomTimer(gometrics.NewHistogram(gometrics.NewUniformSample(requests)), gometrics.NewMeter()),
		Errors:   gometrics.NewCounter(),
		Requests: requests,
	}

	var g errgroup.Group
	g.SetLimit(threads)

	start := time.Now()
	for i := 0; i < requests; i++ {
		g.Go(func() error {
			begin := time.Now()
			res := r.RunCase(ctx, tc)
			result.Timer.UpdateSince(begin)
			if !res.Outcome.Ok() {
				result.Errors.Inc(1)
			}
			return nil
		})
	}
	_ = g.Wait()
	result.Total = time.Since(start)

	return result
}

// printResult prints the latency statistics of a perf run
func printResult(result perfResult) {
	snapshot := result.Timer.Snapshot()
	ms := func(ns float64) float64 { return ns / float64(time.Millisecond) }

	throughput := float64(result.Requests) / max(result.Total.Seconds(), 1e-9)

	fmt.Printf("%-20s%.2f ms\n", "Average Time:", ms(snapshot.Mean()))
	fmt.Printf("%-20s%.2f ms\n", "Minimum Time:", ms(float64(snapshot.Min())))
	fmt.Printf("%-20s%.2f ms\n", "Maximum Time:", ms(float64(snapshot.Max())))
	fmt.Printf("%-20s%.2f ms\n", "Std Deviation:", ms(snapshot.StdDev()))
	fmt.Printf("%-20s%.2f ms\n", "99th Percentile:", ms(snapshot.Percentile(0.99)))
	fmt.Printf("%-20s%.2f s\n", "Total Time:", result.Total.Seconds())
	fmt.Printf("%-20s%.2f req/s\n", "Throughput:", throughput)
	fmt.Printf("%-20s%d of %d\n", "Errors:", result.Errors.Count(), result.Requests)
}
