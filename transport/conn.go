package transport

import "net"

// NetConn adapts a net.Conn to Transport. The reference corpus carries
// no serial-port library, so net.Conn — satisfied by both real TCP
// sockets and net.Pipe() in tests — stands in for "UART and similar",
// the same substitution the engine and session tests make.
type NetConn struct {
	Conn net.Conn
}

// NewNetConn wraps conn as a Transport.
func NewNetConn(conn net.Conn) *NetConn {
	return &NetConn{Conn: conn}
}

// ReadInto implements Transport.
func (n *NetConn) ReadInto(p []byte) (int, error) {
	return n.Conn.Read(p)
}

// WriteFrom implements Transport.
func (n *NetConn) WriteFrom(p []byte) (int, error) {
	return n.Conn.Write(p)
}

// Close closes the underlying connection.
func (n *NetConn) Close() error {
	return n.Conn.Close()
}
