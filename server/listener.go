package server

import (
	"net"
	"time"

	"github.com/prebid/tcstring/metrics"
)

type monitorableConnection struct {
	net.Conn
	metrics metrics.MetricsEngine
}

type monitorableListener struct {
	net.Listener
	metrics metrics.MetricsEngine
}

func (l *monitorableConnection) Close() error {
	err := l.Conn.Close()
	l.metrics.RecordConnectionClose(err == nil)
	return err
}

func (ln *monitorableListener) Accept() (net.Conn, error) {
	conn, err := ln.Listener.Accept()
	if err != nil {
		ln.metrics.RecordConnectionAccept(false)
		return nil, err
	}

	if tc, ok := conn.(*net.TCPConn); ok {
		tc.SetKeepAlive(true)
		tc.SetKeepAlivePeriod(3 * time.Minute)
	}
	ln.metrics.RecordConnectionAccept(true)
	return &monitorableConnection{
		conn,
		ln.metrics,
	}, nil
}
