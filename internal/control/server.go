// Package control lets a second invocation of the binary drive the running
// instance over the single-instance listener.
package control

import (
	"context"
	"errors"
	"io"
	"net"
	"sync"

	"github.com/sirupsen/logrus"

	"overtimer/internal/core/syncproto"
)

// Serve accepts control connections until ctx is cancelled or the listener
// is closed. Each connection is served on its own goroutine; requests on one
// connection are answered in order.
func Serve(ctx context.Context, listener net.Listener, handler syncproto.Handler) error {
	go func() {
		<-ctx.Done()
		_ = listener.Close()
	}()

	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			serveConn(ctx, conn, handler)
		}()
	}
}

func serveConn(ctx context.Context, stream net.Conn, handler syncproto.Handler) {
	conn := syncproto.NewConn(stream)
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	logger := logrus.WithField("remote", stream.RemoteAddr().String())
	logger.Debug("control client connected")

	for {
		frame, err := conn.ReadFrame()
		if err != nil {
			if !errors.Is(err, io.EOF) && ctx.Err() == nil {
				logger.WithError(err).Warn("control connection dropped")
			}
			return
		}
		if frame.Request == nil {
			logger.Warn("control client sent a response frame, ignoring")
			continue
		}

		logger.WithFields(logrus.Fields{"request": frame.Request.Kind, "id": frame.Request.ID}).Debug("control request")
		response := handler.HandleRequest(ctx, *frame.Request)
		if err := conn.WriteFrame(syncproto.Frame{Response: &response}); err != nil {
			logger.WithError(err).Warn("control response not delivered")
			return
		}
	}
}
