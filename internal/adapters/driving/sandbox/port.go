package sandbox

import (
	"fmt"
	"net"
	"strconv"
)

// Port range searched by FreeAddr.
const (
	FirstPort = 8080
	LastPort  = 8099
)

// FreeAddr returns the first loopback address in [first, last] that accepts a listener.
func FreeAddr(first, last int) (string, error) {
	for port := first; port <= last; port++ {
		addr := net.JoinHostPort("127.0.0.1", strconv.Itoa(port))
		l, err := net.Listen("tcp", addr)
		if err == nil {
			l.Close()
			return addr, nil
		}
	}
	return "", fmt.Errorf("no free port in range %d-%d", first, last)
}
