//go:build !linux

package tcp

import (
	"fmt"
	"net"
)

// Listen falls back to net.Listen: the backlog is left to the system.
func Listen(port, _ int) (net.Listener, error) {
	return net.Listen("tcp4", fmt.Sprintf(":%d", port))
}
