// Package tuiclient is a minimal RSP client: it dials a kyev-server and
// exchanges one request/reply pair at a time, the same framing the server's
// own connection dispatcher expects on the wire.
package tuiclient

import (
	"bufio"
	"fmt"
	"net"
	"time"

	"github.com/jffjs/kyev/internal/resp"
)

// Client holds one open connection to a kyev-server.
type Client struct {
	conn net.Conn
	r    *bufio.Reader
	buf  []byte
}

// Dial connects to addr with a bounded handshake timeout.
func Dial(addr string) (*Client, error) {
	conn, err := net.DialTimeout("tcp", addr, 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	return &Client{
		conn: conn,
		r:    bufio.NewReader(conn),
		buf:  make([]byte, 0, 4096),
	}, nil
}

// Close releases the underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// Do sends args as one RSP array command and returns the decoded reply.
func (c *Client) Do(args []string) (resp.Value, error) {
	elems := make([]resp.Value, len(args))
	for i, a := range args {
		elems[i] = resp.NewBulkStringFromString(a)
	}
	out := resp.EncodeBytes(resp.NewArray(elems))
	if _, err := c.conn.Write(out); err != nil {
		return resp.Value{}, fmt.Errorf("write: %w", err)
	}
	return c.readReply()
}

// readReply decodes one frame, pulling more bytes off the wire as needed.
func (c *Client) readReply() (resp.Value, error) {
	for {
		v, n, err := resp.Decode(c.buf)
		if err == nil {
			c.buf = c.buf[n:]
			return v, nil
		}
		if !resp.IsIncomplete(err) {
			return resp.Value{}, fmt.Errorf("malformed reply: %w", err)
		}

		chunk := make([]byte, 4096)
		n, readErr := c.r.Read(chunk)
		if n > 0 {
			c.buf = append(c.buf, chunk[:n]...)
		}
		if readErr != nil {
			return resp.Value{}, fmt.Errorf("read: %w", readErr)
		}
	}
}
