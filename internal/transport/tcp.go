package transport

import (
	"context"
	"encoding/json"
	"net"
	"time"

	"device-core/internal/host"
	"device-core/pkg/errno"
)

// Conn adapts one accepted host connection to the host.Link contract.
// Queries and results travel as framed JSON.
type Conn struct {
	conn net.Conn
}

func NewConn(conn net.Conn) *Conn {
	return &Conn{conn: conn}
}

func (c *Conn) NextQuery(ctx context.Context) (*host.Query, error) {
	if deadline, ok := ctx.Deadline(); ok {
		_ = c.conn.SetReadDeadline(deadline)
	} else {
		_ = c.conn.SetReadDeadline(time.Time{})
	}
	// unblock the read if the session is cancelled mid-round
	stop := context.AfterFunc(ctx, func() {
		_ = c.conn.SetReadDeadline(time.Now())
	})
	defer stop()

	payload, err := ReadFrame(c.conn)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}

	var q host.Query
	if err := json.Unmarshal(payload, &q); err != nil {
		return nil, err
	}
	return &q, nil
}

func (c *Conn) SendResult(res *host.Result) error {
	payload, err := json.Marshal(res)
	if err != nil {
		return err
	}
	return WriteFrame(c.conn, payload)
}

func (c *Conn) SendError(e errno.Errno) error {
	return c.SendResult(host.NewErrorResult(e))
}

func (c *Conn) Close() error {
	return c.conn.Close()
}
