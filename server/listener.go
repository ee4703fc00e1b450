package server

import (
	"net"
	"sync"
	"time"

	"github.com/prebid/prebid-mobileads/metrics"
)

type monitorableConnection struct {
	net.Conn
	metrics   metrics.MetricsEngine
	closeOnce sync.Once
}

type monitorableListener struct {
	*net.TCPListener
	metrics metrics.MetricsEngine
}

func (l *monitorableConnection) Close() error {
	l.closeOnce.Do(l.metrics.RecordClosedConnection)
	return l.Conn.Close()
}

func (ln *monitorableListener) Accept() (c net.Conn, err error) {
	tc, err := ln.AcceptTCP()
	if err != nil {
		return
	}

	tc.SetKeepAlive(true)
	tc.SetKeepAlivePeriod(3 * time.Minute)
	ln.metrics.RecordNewConnection()
	return &monitorableConnection{
		Conn:    tc,
		metrics: ln.metrics,
	}, nil
}
