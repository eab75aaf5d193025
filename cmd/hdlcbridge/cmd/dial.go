package cmd

import (
	"fmt"
	"net"

	"github.com/golang/glog"
	"github.com/spf13/cobra"
)

var dialCmd = &cobra.Command{
	Use:   "dial <addr>",
	Short: "Connect out over TCP and bridge it as an HDLC session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		conn, err := net.Dial("tcp", args[0])
		if err != nil {
			return fmt.Errorf("dial: %w", err)
		}
		glog.Infof("connected to %s", conn.RemoteAddr())
		return runBridge(conn, cfg)
	},
}

func init() {
	rootCmd.AddCommand(dialCmd)
}
