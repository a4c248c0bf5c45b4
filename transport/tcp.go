package transport

import (
	"context"
	"net"
	"strconv"
	"time"

	"github.com/thinkgos/go-dlms-cosem/dlms"
)

// TCPTransport is a Transport over a persistent net.Conn, used for DLMS
// wrapper-mode association over TCP (IEC 62056-47).
type TCPTransport struct {
	conn   net.Conn
	config TCPConfig
}

// DialTCP connects to addr (host:port, or host alone to use
// DefaultDLMSTCPPort) and returns a ready TCPTransport.
func DialTCP(ctx context.Context, addr string, config TCPConfig) (*TCPTransport, error) {
	if err := config.Valid(); err != nil {
		return nil, err
	}
	if _, _, err := net.SplitHostPort(addr); err != nil {
		addr = net.JoinHostPort(addr, strconv.Itoa(DefaultDLMSTCPPort))
	}

	dialer := net.Dialer{Timeout: config.ConnectTimeout}
	dialCtx := ctx
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		dialCtx, cancel = context.WithTimeout(ctx, config.ConnectTimeout)
		defer cancel()
	}

	conn, err := dialer.DialContext(dialCtx, "tcp", addr)
	if err != nil {
		return nil, dlms.Wrap(dlms.KindTransport, "transport: dial failed", err)
	}
	if tcpConn, ok := conn.(*net.TCPConn); ok {
		if err := tcpConn.SetNoDelay(config.NoDelay); err != nil {
			conn.Close()
			return nil, dlms.Wrap(dlms.KindTransport, "transport: set nodelay failed", err)
		}
	}

	return &TCPTransport{conn: conn, config: config}, nil
}

// Close shuts down the underlying connection.
func (t *TCPTransport) Close() error {
	return t.conn.Close()
}

// LocalAddr returns the local endpoint of the connection.
func (t *TCPTransport) LocalAddr() net.Addr { return t.conn.LocalAddr() }

// RemoteAddr returns the remote endpoint of the connection.
func (t *TCPTransport) RemoteAddr() net.Addr { return t.conn.RemoteAddr() }

func (t *TCPTransport) Send(ctx context.Context, data []byte) error {
	if err := t.applyDeadline(ctx, t.config.WriteTimeout, false); err != nil {
		return err
	}
	if _, err := t.conn.Write(data); err != nil {
		return dlms.Wrap(dlms.KindTransport, "transport: write failed", err)
	}
	return nil
}

func (t *TCPTransport) Recv(ctx context.Context, buffer []byte) (int, error) {
	return t.RecvTimeout(ctx, buffer, t.config.ReadTimeout)
}

func (t *TCPTransport) RecvTimeout(ctx context.Context, buffer []byte, timeout time.Duration) (int, error) {
	if err := t.applyTimeout(ctx, timeout, true); err != nil {
		return 0, err
	}
	n, err := t.conn.Read(buffer)
	if err != nil {
		if n > 0 {
			return n, nil
		}
		return 0, dlms.Wrap(dlms.KindTransport, "transport: read failed", err)
	}
	return n, nil
}

// applyDeadline sets the connection's write deadline to the earlier of
// timeout-from-now and ctx's deadline (if any).
func (t *TCPTransport) applyDeadline(ctx context.Context, timeout time.Duration, read bool) error {
	return t.applyTimeout(ctx, timeout, read)
}

func (t *TCPTransport) applyTimeout(ctx context.Context, timeout time.Duration, read bool) error {
	if err := ctx.Err(); err != nil {
		return dlms.Wrap(dlms.KindTransport, "transport: context done", err)
	}

	deadline := time.Now().Add(timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}
	var err error
	if read {
		err = t.conn.SetReadDeadline(deadline)
	} else {
		err = t.conn.SetWriteDeadline(deadline)
	}
	if err != nil {
		return dlms.Wrap(dlms.KindTransport, "transport: set deadline failed", err)
	}
	return nil
}
