// Package engine owns the device's session loop: it awaits the first
// query of a flow, routes it to the registered application and hands that
// application the link until the flow finishes. Exactly one flow runs at
// a time.
package engine

import (
	"context"
	"errors"
	"io"
	"net"
	"sync/atomic"

	"go.uber.org/zap"

	"device-core/internal/app"
	"device-core/internal/host"
	"device-core/internal/status"
	"device-core/internal/transport"
	"device-core/pkg/errno"
	"device-core/pkg/logger"
)

var ErrBusy = errors.New("a signing session is already in progress")

type Engine struct {
	apps map[host.AppID]app.SigningApp
	busy atomic.Bool
}

func New(apps ...app.SigningApp) *Engine {
	e := &Engine{apps: make(map[host.AppID]app.SigningApp, len(apps))}
	for _, a := range apps {
		e.apps[a.ID()] = a
	}
	return e
}

// ServeLink processes flows from one host link until the link breaks or
// the context is cancelled.
func (e *Engine) ServeLink(ctx context.Context, link host.Link) error {
	for {
		q, err := link.NextQuery(ctx)
		if err != nil {
			return err
		}
		if err := e.dispatch(ctx, q, link); err != nil && ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

// dispatch runs one complete flow for the initiating query.
func (e *Engine) dispatch(ctx context.Context, q *host.Query, link host.Link) error {
	a, ok := e.apps[q.App]
	if !ok {
		_ = link.SendError(errno.ErrInvalidRequest)
		return errno.ErrInvalidRequest
	}

	if !e.busy.CompareAndSwap(false, true) {
		_ = link.SendError(errno.Internal)
		return ErrBusy
	}
	defer func() {
		status.Set(string(q.App), status.Idle)
		e.busy.Store(false)
	}()

	logger.Info("flow started", zap.String("app", string(q.App)))
	return a.Handle(ctx, q, link)
}

// ListenAndServe accepts host connections on addr, one at a time; the
// device talks to a single companion app.
func (e *Engine) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	go func() {
		<-ctx.Done()
		_ = ln.Close()
	}()
	logger.Info("host link listening", zap.String("addr", addr))

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}

		link := transport.NewConn(conn)
		if err := e.ServeLink(ctx, link); err != nil && !errors.Is(err, io.EOF) {
			logger.Warn("host link closed", zap.Error(err))
		}
		_ = link.Close()
	}
}
