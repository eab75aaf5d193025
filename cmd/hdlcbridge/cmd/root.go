// Package cmd implements the hdlcbridge operator CLI: a small program
// that terminates one end of an HDLC link over a TCP socket, printing
// delivered payloads to stdout and framing stdin lines as outgoing
// writes. It exists to exercise the hdlc library over a real
// transport, not as part of the library's public surface.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gopherlink/hdlc/cmd/hdlcbridge/internal/config"
)

var (
	cfgFile string
	cfg     *config.Config

	flagReadBuffer  int
	flagWriteBuffer int
	flagWriteRetry  int
	flagAddress     uint8
	flagTimeoutMS   int
)

var rootCmd = &cobra.Command{
	Use:           "hdlcbridge",
	Short:         "Bridge a terminal to an HDLC-framed Stop-and-Wait link over TCP",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path := cfgFile
		if path == "" {
			path = config.DefaultPath()
		}
		loaded, err := config.Load(path)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = loaded

		if cmd.Flags().Changed("read-buffer") {
			cfg.ReadBufferSize = flagReadBuffer
		}
		if cmd.Flags().Changed("write-buffer") {
			cfg.WriteBufferSize = flagWriteBuffer
		}
		if cmd.Flags().Changed("write-retries") {
			cfg.WriteRetries = flagWriteRetry
		}
		if cmd.Flags().Changed("write-timeout-ms") {
			cfg.WriteTimeoutMS = flagTimeoutMS
		}
		if cmd.Flags().Changed("address") {
			cfg.DefaultAddress = flagAddress
		}
		return nil
	},
}

// Execute runs the hdlcbridge root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "hdlcbridge:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.hdlcbridge/config.yaml)")
	rootCmd.PersistentFlags().IntVar(&flagReadBuffer, "read-buffer", 0, "reassembly window size in bytes")
	rootCmd.PersistentFlags().IntVar(&flagWriteBuffer, "write-buffer", 0, "scratch encode buffer size in bytes")
	rootCmd.PersistentFlags().IntVar(&flagWriteRetry, "write-retries", 0, "additional write attempts after the first")
	rootCmd.PersistentFlags().Uint8Var(&flagAddress, "address", 0, "default/broadcast station address")
	rootCmd.PersistentFlags().IntVar(&flagTimeoutMS, "write-timeout-ms", 0, "per-attempt ack wait, in milliseconds")
}
