package room

// Client is the room-side handle for one attached socket. The socket
// handler owns the read side; the room actor is the only writer to (and
// the only closer of) the outbox, so a close can never race a send.
type Client struct {
	cid    string // empty for the renderer
	ip     string
	outbox chan []byte
}

// NewClient builds a handle for a freshly attached socket. cid is empty
// for renderers.
func NewClient(cid, ip string) *Client {
	return &Client{
		cid:    cid,
		ip:     ip,
		outbox: make(chan []byte, 32),
	}
}

func (c *Client) CID() string { return c.cid }
func (c *Client) IP() string  { return c.ip }

// Outbox is drained by the socket writer goroutine. The channel closing
// means the room has evicted this client (takeover or shutdown) and the
// socket should be closed.
func (c *Client) Outbox() <-chan []byte { return c.outbox }

// send is best-effort: a full outbox drops the message, never the client,
// and never blocks the room loop.
func (c *Client) send(payload []byte) {
	if c == nil {
		return
	}
	select {
	case c.outbox <- payload:
	default:
	}
}
