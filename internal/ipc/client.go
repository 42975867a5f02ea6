package ipc

import (
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"time"
)

// Client provides RPC access to the daemon.
type Client struct {
	conn   net.Conn
	client *rpc.Client
}

// Dial connects to the IPC server at the given socket path.
func Dial(path string) (*Client, error) {
	conn, err := net.DialTimeout("unix", path, 2*time.Second)
	if err != nil {
		return nil, err
	}
	rpcClient := rpc.NewClientWithCodec(jsonrpc.NewClientCodec(conn))
	return &Client{conn: conn, client: rpcClient}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	if c.client != nil {
		_ = c.client.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

func call[Resp any](c *Client, method string, req any) (*Resp, error) {
	var resp Resp
	if err := c.client.Call(ServiceName+"."+method, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Start requests the daemon to start the display.
func (c *Client) Start() (*StartResponse, error) {
	return call[StartResponse](c, "Start", StartRequest{})
}

// Stop requests the daemon to stop the display.
func (c *Client) Stop() (*StopResponse, error) {
	return call[StopResponse](c, "Stop", StopRequest{})
}

// Status retrieves the daemon status.
func (c *Client) Status() (*StatusResponse, error) {
	return call[StatusResponse](c, "Status", StatusRequest{})
}

// Board retrieves the current board.
func (c *Client) Board() (*BoardResponse, error) {
	return call[BoardResponse](c, "Board", BoardRequest{})
}

// Configure changes rooms, queue type, or mode.
func (c *Client) Configure(req ConfigureRequest) (*DisplayResponse, error) {
	return call[DisplayResponse](c, "Configure", req)
}

// EnableAudio grants audio permission.
func (c *Client) EnableAudio() (*DisplayResponse, error) {
	return call[DisplayResponse](c, "EnableAudio", AudioRequest{})
}

// DismissAudio hides the audio overlay without enabling audio.
func (c *Client) DismissAudio() (*DisplayResponse, error) {
	return call[DisplayResponse](c, "DismissAudio", AudioRequest{})
}

// ToggleFullscreen flips fullscreen on the kiosk pages.
func (c *Client) ToggleFullscreen() (*DisplayResponse, error) {
	return call[DisplayResponse](c, "ToggleFullscreen", FullscreenRequest{})
}

// TestAnnounce speaks a sample call through the configured sink.
func (c *Client) TestAnnounce(ticketCode, roomName string) (*TestAnnounceResponse, error) {
	return call[TestAnnounceResponse](c, "TestAnnounce", TestAnnounceRequest{TicketCode: ticketCode, RoomName: roomName})
}

// LogTail returns log lines from the daemon.
func (c *Client) LogTail(req LogTailRequest) (*LogTailResponse, error) {
	return call[LogTailResponse](c, "LogTail", req)
}

// TestNotification triggers a notification test via the daemon.
func (c *Client) TestNotification() (*TestNotificationResponse, error) {
	return call[TestNotificationResponse](c, "TestNotification", TestNotificationRequest{})
}
