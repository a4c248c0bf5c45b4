// Package transport defines the byte-stream abstraction the client
// orchestrator sends and receives APDUs over, plus a TCP implementation of
// it (the "wrapper" mode transport per IEC 62056-47).
package transport

import (
	"context"
	"time"
)

// Transport is the byte-stream contract the client consumes. Send writes
// data in full or fails; Recv reads at least one byte into buffer or
// fails; a zero-byte, nil-error Recv means the peer closed the
// connection. RecvTimeout behaves like Recv but bounds the wait.
//
// Connection lifecycle (dial, close) is the caller's responsibility, not
// this interface's.
type Transport interface {
	Send(ctx context.Context, data []byte) error
	Recv(ctx context.Context, buffer []byte) (int, error)
	RecvTimeout(ctx context.Context, buffer []byte, timeout time.Duration) (int, error)
}
