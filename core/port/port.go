package port

import (
	"fmt"
	"net"
)

// Free asks the OS for an unused TCP port on host. The port is released
// before returning, so another process may still claim it first.
func Free(host string) (int, error) {
	if host == "" {
		host = "127.0.0.1"
	}

	listener, err := net.Listen("tcp", net.JoinHostPort(host, "0"))
	if err != nil {
		return 0, fmt.Errorf("failed to find free port on %s: %w", host, err)
	}
	defer listener.Close()

	addr, ok := listener.Addr().(*net.TCPAddr)
	if !ok {
		return 0, fmt.Errorf("unexpected listener address %s", listener.Addr())
	}
	return addr.Port, nil
}
