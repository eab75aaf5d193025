package cmd

import (
	"fmt"
	"net"

	"github.com/golang/glog"
	"github.com/spf13/cobra"
)

var listenCmd = &cobra.Command{
	Use:   "listen <addr>",
	Short: "Accept one TCP connection and bridge it as an HDLC session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ln, err := net.Listen("tcp", args[0])
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		defer ln.Close()
		glog.Infof("listening on %s", ln.Addr())

		conn, err := ln.Accept()
		if err != nil {
			return fmt.Errorf("accept: %w", err)
		}
		return runBridge(conn, cfg)
	},
}

func init() {
	rootCmd.AddCommand(listenCmd)
}
