package sandbox

import (
	"net"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFreeAddr_SkipsBusyPort(t *testing.T) {
	busy, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer busy.Close()
	port := busy.Addr().(*net.TCPAddr).Port

	addr, err := FreeAddr(port, port+1)
	if err != nil {
		t.Skipf("neighbouring port unavailable: %v", err)
	}
	assert.Equal(t, net.JoinHostPort("127.0.0.1", strconv.Itoa(port+1)), addr)
}

func TestFreeAddr_NoneFree(t *testing.T) {
	busy, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer busy.Close()
	port := busy.Addr().(*net.TCPAddr).Port

	_, err = FreeAddr(port, port)
	assert.EqualError(t, err, "no free port in range "+strconv.Itoa(port)+"-"+strconv.Itoa(port))
}
