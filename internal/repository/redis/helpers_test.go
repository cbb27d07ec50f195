package redis

import (
	"net"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

func splitAddr(t *testing.T, addr string) (string, int) {
	t.Helper()

	host, rawPort, err := net.SplitHostPort(addr)
	require.NoError(t, err)

	port, err := strconv.Atoi(rawPort)
	require.NoError(t, err)

	return host, port
}
