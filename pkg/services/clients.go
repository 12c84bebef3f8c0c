package services

import (
	"context"
	"io"

	"github.com/pasuper/supercron/pkg/esl"
)

// FTPClient is the FTP session surface the jobs need. Satisfied by
// *ftputil.Client.
type FTPClient interface {
	Connect() error
	Download(remotePath, localPath string) error
	Fetch(remotePath string, w io.Writer) error
	Close() error
}

// SFTPClient is the SFTP session surface the jobs need. Satisfied by
// *sftputil.Client.
type SFTPClient interface {
	Connect() error
	Upload(localPath, remotePath string) error
	Close() error
}

// ESLClient is the label vendor surface. Satisfied by *esl.Client.
type ESLClient interface {
	FetchPrices(ctx context.Context, params []esl.PriceParam) (map[string]float64, error)
	PushLabels(ctx context.Context, storeCode string, products []esl.Product) error
}

// FTPDialer returns a fresh FTP client; each job run owns its connection.
type FTPDialer func() FTPClient

// SFTPDialer returns a fresh SFTP client.
type SFTPDialer func() SFTPClient
