// Command tracerctl plays the tracer side of the protocol against a running
// scenelinkd: it fetches categories, prints the node tree and sends patches.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"scenelink/internal/tracer"
)

var (
	hostURL  string
	timeout  time.Duration
	clientID uint8
)

var rootCmd = &cobra.Command{
	Use:           "tracerctl",
	Short:         "Inspect and patch a scene served by scenelinkd",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&hostURL, "host", "ws://127.0.0.1:5555", "scenelinkd base url")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "per command timeout")
	rootCmd.PersistentFlags().Uint8Var(&clientID, "client-id", 1, "client id stamped on update messages")

	rootCmd.AddCommand(fetchCmd, treeCmd, patchCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func endpoint(path string) string {
	return strings.TrimSuffix(hostURL, "/") + path
}

func withClient(cmd *cobra.Command, fn func(ctx context.Context, c *tracer.Client) error) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()
	c, err := tracer.Dial(ctx, endpoint("/scene"))
	if err != nil {
		return err
	}
	defer c.Close()
	return fn(ctx, c)
}
