package cmd

import (
	"bufio"
	"net"
	"os"

	"github.com/golang/glog"

	"github.com/gopherlink/hdlc"
	"github.com/gopherlink/hdlc/cmd/hdlcbridge/internal/config"
	"github.com/gopherlink/hdlc/transport"
)

// runBridge terminates conn as an hdlc.Session and pumps it against the
// controlling terminal: every delivered frame is printed to stdout,
// and every stdin line is sent as a Data frame addressed to c's
// configured default address.
func runBridge(conn net.Conn, c *config.Config) error {
	defer conn.Close()

	opts := []hdlc.Option{
		hdlc.WithReadBufferSize(c.ReadBufferSize),
		hdlc.WithWriteBufferSize(c.WriteBufferSize),
		hdlc.WithWriteTimeout(c.WriteTimeout()),
		hdlc.WithWriteRetries(c.WriteRetries),
		hdlc.WithDefaultAddress(c.DefaultAddress),
	}
	sess := hdlc.NewSession(transport.NewNetConn(conn), opts...)
	defer sess.Close()

	glog.Infof("session up: local=%s remote=%s", conn.LocalAddr(), conn.RemoteAddr())

	readErrs := make(chan error, 1)
	go func() {
		buf := make([]byte, c.ReadBufferSize)
		for {
			n, addr, err := sess.Read(buf)
			if err != nil {
				readErrs <- err
				return
			}
			if glog.V(2) {
				glog.Infof("RCV addr=0x%02x len=%d", addr, n)
			}
			os.Stdout.Write(buf[:n])
			os.Stdout.Write([]byte("\n"))
		}
	}()

	stdinDone := make(chan struct{})
	go func() {
		defer close(stdinDone)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			line := scanner.Bytes()
			if len(line) == 0 {
				continue
			}
			if _, err := sess.Broadcast(line); err != nil {
				glog.Warningf("write failed: %v", err)
				continue
			}
			if glog.V(2) {
				glog.Infof("SENT len=%d", len(line))
			}
		}
	}()

	select {
	case err := <-readErrs:
		return err
	case <-stdinDone:
		return nil
	}
}
