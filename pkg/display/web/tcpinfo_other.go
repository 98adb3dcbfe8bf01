//go:build !linux

package web

import (
	"net"
	"time"
)

func roundTrip(net.Conn) (time.Duration, error) {
	return 0, errNoTCPInfo
}
