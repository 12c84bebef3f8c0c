// Package ftputil wraps the FTP connections used to fetch store
// inventory and shelf label files.
package ftputil

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/jlaffaye/ftp"

	apperrors "github.com/pasuper/supercron/pkg/errors"
)

// Config holds FTP connection parameters.
type Config struct {
	Hostname string
	Username string
	Password string
	Port     int
	Timeout  time.Duration
}

// Client is a single FTP connection. It is not safe for concurrent use.
type Client struct {
	cfg  Config
	conn *ftp.ServerConn
}

// NewClient creates a client; Connect must be called before use.
func NewClient(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Client{cfg: cfg}
}

// Connect dials and logs in to the FTP server.
func (c *Client) Connect() error {
	addr := fmt.Sprintf("%s:%d", c.cfg.Hostname, c.cfg.Port)
	conn, err := ftp.Dial(addr, ftp.DialWithTimeout(c.cfg.Timeout))
	if err != nil {
		return fmt.Errorf("%w: connecting to %s: %v", apperrors.ErrTransferFailed, addr, err)
	}
	if err := conn.Login(c.cfg.Username, c.cfg.Password); err != nil {
		conn.Quit()
		return fmt.Errorf("%w: login to %s: %v", apperrors.ErrTransferFailed, addr, err)
	}
	c.conn = conn
	return nil
}

// Download copies a remote file to a local path.
func (c *Client) Download(remotePath, localPath string) error {
	resp, err := c.conn.Retr(remotePath)
	if err != nil {
		return classify(fmt.Errorf("retrieving %s: %w", remotePath, err))
	}
	defer resp.Close()

	f, err := os.Create(localPath)
	if err != nil {
		return fmt.Errorf("creating %s: %w", localPath, err)
	}
	defer f.Close()

	if _, err := io.Copy(f, resp); err != nil {
		return fmt.Errorf("downloading %s: %w", remotePath, err)
	}
	return nil
}

// Fetch streams a remote file into the writer.
func (c *Client) Fetch(remotePath string, w io.Writer) error {
	resp, err := c.conn.Retr(remotePath)
	if err != nil {
		return classify(fmt.Errorf("retrieving %s: %w", remotePath, err))
	}
	defer resp.Close()

	if _, err := io.Copy(w, resp); err != nil {
		return fmt.Errorf("downloading %s: %w", remotePath, err)
	}
	return nil
}

// Upload stores the reader's contents at the remote path.
func (c *Client) Upload(remotePath string, r io.Reader) error {
	if err := c.conn.Stor(remotePath, r); err != nil {
		return classify(fmt.Errorf("storing %s: %w", remotePath, err))
	}
	return nil
}

// List returns the names in a remote directory.
func (c *Client) List(remotePath string) ([]string, error) {
	names, err := c.conn.NameList(remotePath)
	if err != nil {
		return nil, classify(fmt.Errorf("listing %s: %w", remotePath, err))
	}
	return names, nil
}

// Close quits the FTP session.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	err := c.conn.Quit()
	c.conn = nil
	return err
}

// classify maps a busy-server response to the retryable sentinel.
func classify(err error) error {
	if strings.Contains(strings.ToLower(err.Error()), "busy") {
		return fmt.Errorf("%w: %v", apperrors.ErrServerBusy, err)
	}
	return fmt.Errorf("%w: %v", apperrors.ErrTransferFailed, err)
}
