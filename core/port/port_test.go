package port

import (
	"net"
	"strconv"
	"testing"
)

func TestFree(t *testing.T) {
	t.Parallel()

	p, err := Free("127.0.0.1")
	if err != nil {
		t.Fatalf("Free() error: %v", err)
	}
	if p <= 0 || p > 65535 {
		t.Fatalf("Free() = %d", p)
	}

	l, err := net.Listen("tcp", net.JoinHostPort("127.0.0.1", strconv.Itoa(p)))
	if err != nil {
		t.Fatalf("returned port %d is not usable: %v", p, err)
	}
	l.Close()
}

func TestFreeDefaultHost(t *testing.T) {
	t.Parallel()

	if _, err := Free(""); err != nil {
		t.Fatalf("Free(\"\") error: %v", err)
	}
}

func TestFreeBadHost(t *testing.T) {
	t.Parallel()

	if _, err := Free("203.0.113.1"); err == nil {
		t.Error("expected error for invalid host")
	}
}
