package connection

import (
	"context"
	"fmt"
	"io"
	"net"
	"strings"
)

// SendLocal sends one command to the local console of a node on socket
// and returns its reply.
func SendLocal(ctx context.Context, socket string, command ...string) (string, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "unix", socket)
	if err != nil {
		return "", fmt.Errorf("connect %s: %w", socket, err)
	}
	defer conn.Close()
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	if _, err := io.WriteString(conn, strings.Join(command, " ")+"\n"); err != nil {
		return "", fmt.Errorf("send command: %w", err)
	}
	reply, err := io.ReadAll(conn)
	if err != nil {
		return "", fmt.Errorf("read reply: %w", err)
	}
	return string(reply), nil
}
