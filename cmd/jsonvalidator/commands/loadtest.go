package commands

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dataquality/jsonvalidator/internal/loadtest"
)

type loadTestOptions struct {
	serverAddr  string
	requests    int
	concurrency int
	body        string
}

// NewLoadTestCommand creates the loadtest command: the port of the
// original load-test binary's concurrent /validate driver.
func NewLoadTestCommand() *cobra.Command {
	opts := &loadTestOptions{}

	cmd := &cobra.Command{
		Use:   "loadtest [flags]",
		Short: "Fire concurrent /validate requests at a running server and report throughput",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoadTest(opts)
		},
	}

	cmd.Flags().StringVar(&opts.serverAddr, "server-addr", "127.0.0.1:8080", "Address of the running jsonvalidator server")
	cmd.Flags().IntVar(&opts.requests, "requests", 1000, "Total number of requests to send")
	cmd.Flags().IntVar(&opts.concurrency, "concurrency", 50, "Number of requests in flight at once")
	cmd.Flags().StringVar(&opts.body, "body", `{"json":{"probe":true},"json_escaped":false}`, "Request body to send to /validate")

	return cmd
}

func runLoadTest(opts *loadTestOptions) error {
	if !json.Valid([]byte(opts.body)) {
		return fmt.Errorf("--body is not valid JSON")
	}

	result, err := loadtest.Run(context.Background(), loadtest.Config{
		ServerAddr:  opts.serverAddr,
		Requests:    opts.requests,
		Concurrency: opts.concurrency,
		Body:        json.RawMessage(opts.body),
	})
	if err != nil {
		return err
	}

	fmt.Printf("Total:        %d\n", result.Total)
	fmt.Printf("Succeeded:    %d\n", result.Succeeded)
	fmt.Printf("Failed:       %d\n", result.Failed)
	fmt.Printf("Elapsed:      %s\n", result.Elapsed)
	fmt.Printf("Requests/sec: %.2f\n", result.RequestsPerS)
	fmt.Printf("p50 latency:  %s\n", result.P50())
	fmt.Printf("p99 latency:  %s\n", result.P99())

	return nil
}
