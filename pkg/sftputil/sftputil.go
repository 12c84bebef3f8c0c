// Package sftputil wraps the SFTP connection used to push inventory
// backups to the NAS.
package sftputil

import (
	"fmt"
	"io"
	"os"
	"path"
	"time"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"

	apperrors "github.com/pasuper/supercron/pkg/errors"
)

// Config holds SFTP connection parameters.
type Config struct {
	Hostname string
	Username string
	Password string
	Port     int
	Timeout  time.Duration
}

// Client is a single SFTP session. It is not safe for concurrent use.
type Client struct {
	cfg    Config
	ssh    *ssh.Client
	client *sftp.Client
}

// NewClient creates a client; Connect must be called before use.
func NewClient(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Client{cfg: cfg}
}

// Connect dials the SSH transport and opens an SFTP session.
func (c *Client) Connect() error {
	addr := fmt.Sprintf("%s:%d", c.cfg.Hostname, c.cfg.Port)
	sshCfg := &ssh.ClientConfig{
		User:            c.cfg.Username,
		Auth:            []ssh.AuthMethod{ssh.Password(c.cfg.Password)},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         c.cfg.Timeout,
	}

	sshClient, err := ssh.Dial("tcp", addr, sshCfg)
	if err != nil {
		return fmt.Errorf("%w: connecting to %s: %v", apperrors.ErrTransferFailed, addr, err)
	}
	client, err := sftp.NewClient(sshClient)
	if err != nil {
		sshClient.Close()
		return fmt.Errorf("%w: opening sftp session on %s: %v", apperrors.ErrTransferFailed, addr, err)
	}

	c.ssh = sshClient
	c.client = client
	return nil
}

// Upload copies a local file to the remote path, creating parent
// directories as needed. Remote paths always use forward slashes.
func (c *Client) Upload(localPath, remotePath string) error {
	if dir := path.Dir(remotePath); dir != "." && dir != "/" {
		if err := c.client.MkdirAll(dir); err != nil {
			return fmt.Errorf("%w: creating %s: %v", apperrors.ErrTransferFailed, dir, err)
		}
	}

	src, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("opening %s: %w", localPath, err)
	}
	defer src.Close()

	dst, err := c.client.Create(remotePath)
	if err != nil {
		return fmt.Errorf("%w: creating %s: %v", apperrors.ErrTransferFailed, remotePath, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("%w: uploading %s: %v", apperrors.ErrTransferFailed, remotePath, err)
	}
	return nil
}

// Download copies a remote file to a local path.
func (c *Client) Download(remotePath, localPath string) error {
	src, err := c.client.Open(remotePath)
	if err != nil {
		return fmt.Errorf("%w: opening %s: %v", apperrors.ErrTransferFailed, remotePath, err)
	}
	defer src.Close()

	dst, err := os.Create(localPath)
	if err != nil {
		return fmt.Errorf("creating %s: %w", localPath, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("%w: downloading %s: %v", apperrors.ErrTransferFailed, remotePath, err)
	}
	return nil
}

// List returns the names in a remote directory.
func (c *Client) List(remotePath string) ([]string, error) {
	infos, err := c.client.ReadDir(remotePath)
	if err != nil {
		return nil, fmt.Errorf("%w: listing %s: %v", apperrors.ErrTransferFailed, remotePath, err)
	}
	names := make([]string, 0, len(infos))
	for _, info := range infos {
		names = append(names, info.Name())
	}
	return names, nil
}

// Close shuts down the SFTP session and SSH transport.
func (c *Client) Close() error {
	var err error
	if c.client != nil {
		err = c.client.Close()
		c.client = nil
	}
	if c.ssh != nil {
		if cerr := c.ssh.Close(); err == nil {
			err = cerr
		}
		c.ssh = nil
	}
	return err
}
