package engine

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"device-core/internal/host"
	"device-core/pkg/errno"
)

type stubApp struct {
	id      host.AppID
	handled int
	block   chan struct{} // when set, Handle waits until closed
}

func (a *stubApp) ID() host.AppID { return a.id }

func (a *stubApp) Handle(_ context.Context, _ *host.Query, _ host.Link) error {
	a.handled++
	if a.block != nil {
		<-a.block
	}
	return nil
}

type scriptedLink struct {
	queries []*host.Query
	results []*host.Result
	errors  []errno.Errno
}

func (l *scriptedLink) NextQuery(_ context.Context) (*host.Query, error) {
	if len(l.queries) == 0 {
		return nil, io.EOF
	}
	q := l.queries[0]
	l.queries = l.queries[1:]
	return q, nil
}

func (l *scriptedLink) SendResult(res *host.Result) error {
	l.results = append(l.results, res)
	return nil
}

func (l *scriptedLink) SendError(e errno.Errno) error {
	l.errors = append(l.errors, e)
	return nil
}

func TestServeLinkRoutesToApp(t *testing.T) {
	btc := &stubApp{id: host.AppBTC}
	evm := &stubApp{id: host.AppEVM}
	eng := New(btc, evm)

	link := &scriptedLink{queries: []*host.Query{
		{App: host.AppBTC},
		{App: host.AppEVM},
		{App: host.AppBTC},
	}}

	err := eng.ServeLink(context.Background(), link)
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, 2, btc.handled)
	assert.Equal(t, 1, evm.handled)
	assert.Empty(t, link.errors)
}

func TestDispatchUnknownApp(t *testing.T) {
	eng := New(&stubApp{id: host.AppBTC})

	link := &scriptedLink{}
	err := eng.dispatch(context.Background(), &host.Query{App: "xmr"}, link)
	require.ErrorIs(t, err, errno.ErrInvalidRequest)
	require.Len(t, link.errors, 1)
	assert.Equal(t, errno.ErrInvalidRequest, link.errors[0])
}

func TestDispatchRejectsConcurrentFlow(t *testing.T) {
	blocker := &stubApp{id: host.AppBTC, block: make(chan struct{})}
	eng := New(blocker)

	started := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		close(started)
		done <- eng.dispatch(context.Background(), &host.Query{App: host.AppBTC}, &scriptedLink{})
	}()
	<-started
	require.Eventually(t, eng.busy.Load, time.Second, time.Millisecond)

	link := &scriptedLink{}
	err := eng.dispatch(context.Background(), &host.Query{App: host.AppBTC}, link)
	assert.ErrorIs(t, err, ErrBusy)
	require.Len(t, link.errors, 1)

	close(blocker.block)
	assert.NoError(t, <-done)
	assert.False(t, eng.busy.Load())
}
