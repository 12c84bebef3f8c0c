package services

import (
	"bytes"
	"context"
	"io"
	"os"
	"sync"

	"github.com/pasuper/supercron/pkg/esl"
	"github.com/pasuper/supercron/pkg/mailer"
	"github.com/pasuper/supercron/pkg/models"
)

// fakeRepo implements repository.Repository in memory.
type fakeRepo struct {
	locations map[int][]*models.Location
	counts    map[int]map[string]int
	unknown   []string
	inventory map[string]string
	groups    []models.UnknownGroup

	renamed map[string]string
	err     error
}

func (f *fakeRepo) ActiveLocationsByStore(_ context.Context, storeID int) ([]*models.Location, error) {
	return f.locations[storeID], f.err
}

func (f *fakeRepo) LocationCountsByStore(_ context.Context, storeID int) (map[string]int, error) {
	return f.counts[storeID], f.err
}

func (f *fakeRepo) UnknownUPCs(context.Context) ([]string, error) {
	return f.unknown, f.err
}

func (f *fakeRepo) InventoryItemsByUPC(context.Context, []string) (map[string]string, error) {
	return f.inventory, f.err
}

func (f *fakeRepo) RenameUnknownLocations(_ context.Context, upc, name string) (int64, error) {
	if f.renamed == nil {
		f.renamed = make(map[string]string)
	}
	f.renamed[upc] = name
	return 1, f.err
}

func (f *fakeRepo) UnknownLocationGroups(context.Context) ([]models.UnknownGroup, error) {
	return f.groups, f.err
}

func (f *fakeRepo) Close() error { return nil }

// fakeMailer records sent messages and snapshots attachment contents
// before the caller deletes the temp file.
type fakeMailer struct {
	mu          sync.Mutex
	messages    []mailer.Message
	attachments [][]byte
	err         error
}

func (f *fakeMailer) Send(msg mailer.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.messages = append(f.messages, msg)
	if msg.AttachmentPath != "" {
		data, _ := os.ReadFile(msg.AttachmentPath)
		f.attachments = append(f.attachments, data)
	}
	return nil
}

// fakeFTP serves files from a map.
type fakeFTP struct {
	files      map[string][]byte
	connectErr error
	fetchErrs  map[string][]error // consumed per call before success
	connected  bool
	closed     bool
}

func (f *fakeFTP) Connect() error {
	if f.connectErr != nil {
		return f.connectErr
	}
	f.connected = true
	return nil
}

func (f *fakeFTP) Fetch(remotePath string, w io.Writer) error {
	if errs := f.fetchErrs[remotePath]; len(errs) > 0 {
		err := errs[0]
		f.fetchErrs[remotePath] = errs[1:]
		return err
	}
	data, ok := f.files[remotePath]
	if !ok {
		return os.ErrNotExist
	}
	_, err := io.Copy(w, bytes.NewReader(data))
	return err
}

func (f *fakeFTP) Download(remotePath, localPath string) error {
	var buf bytes.Buffer
	if err := f.Fetch(remotePath, &buf); err != nil {
		return err
	}
	return os.WriteFile(localPath, buf.Bytes(), 0o644)
}

func (f *fakeFTP) Close() error {
	f.closed = true
	return nil
}

// fakeSFTP records uploads.
type fakeSFTP struct {
	mu         sync.Mutex
	uploads    map[string][]byte
	connectErr error
	uploadErr  error
}

func (f *fakeSFTP) Connect() error { return f.connectErr }

func (f *fakeSFTP) Upload(localPath, remotePath string) error {
	if f.uploadErr != nil {
		return f.uploadErr
	}
	data, err := os.ReadFile(localPath)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.uploads == nil {
		f.uploads = make(map[string][]byte)
	}
	f.uploads[remotePath] = data
	return nil
}

func (f *fakeSFTP) Close() error { return nil }

// fakeESL records pushes and serves canned prices.
type fakeESL struct {
	prices    map[string]float64
	pricesErr error
	pushErr   error

	pushes []fakePush
}

type fakePush struct {
	storeCode string
	products  []esl.Product
}

func (f *fakeESL) FetchPrices(context.Context, []esl.PriceParam) (map[string]float64, error) {
	return f.prices, f.pricesErr
}

func (f *fakeESL) PushLabels(_ context.Context, storeCode string, products []esl.Product) error {
	if f.pushErr != nil {
		return f.pushErr
	}
	f.pushes = append(f.pushes, fakePush{storeCode: storeCode, products: products})
	return nil
}
