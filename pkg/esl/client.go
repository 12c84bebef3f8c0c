// Package esl talks to the electronic shelf label vendor: price lookups
// through the internal pricing API and batched label pushes to the
// vendor endpoint.
package esl

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"

	apperrors "github.com/pasuper/supercron/pkg/errors"
)

// deviceMAC identifies the pushing station to the vendor endpoint.
const deviceMAC = "40:d6:3c:5e:11:63"

// Client calls the pricing API and the vendor label endpoint.
type Client struct {
	httpClient *http.Client
	apiURL     string
	pushURL    string
	sign       string
	maxRetries uint64
}

// NewClient creates a Client. apiURL is the pricing API base URL,
// pushURL the vendor's create_multiple endpoint and sign the shared
// payload signature.
func NewClient(apiURL, pushURL, sign string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		apiURL:     apiURL,
		pushURL:    pushURL,
		sign:       sign,
		maxRetries: 3,
	}
}

// PriceParam identifies one part for a price lookup.
type PriceParam struct {
	Code    string `json:"Code"`
	PartNum string `json:"PartNum"`
}

type priceRequest struct {
	PriceParams []PriceParam `json:"priceParams"`
}

type priceResponse struct {
	Result map[string][]struct {
		MfgCode string `json:"MfgCode"`
		PartNum string `json:"PartNum"`
		Price   struct {
			UnitCost float64 `json:"UnitCost"`
		} `json:"Price"`
	} `json:"result"`
}

// FetchPrices queries unit costs for the given parts. The returned map
// is keyed by "<mfg code> <part number>", matching the label CSV format.
func (c *Client) FetchPrices(ctx context.Context, params []PriceParam) (map[string]float64, error) {
	body, err := json.Marshal(priceRequest{PriceParams: params})
	if err != nil {
		return nil, fmt.Errorf("encoding price request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+"/getPrices", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building price request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: price lookup: %v", apperrors.ErrExternalService, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: price lookup returned status %d", apperrors.ErrExternalService, resp.StatusCode)
	}

	var decoded priceResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("%w: decoding price response: %v", apperrors.ErrExternalService, err)
	}

	prices := make(map[string]float64)
	for _, group := range decoded.Result {
		for _, info := range group {
			key := fmt.Sprintf("%s %s", info.MfgCode, info.PartNum)
			prices[key] = info.Price.UnitCost
		}
	}
	return prices, nil
}

// Product is one label in the vendor key schema:
// pi = part number, pn = description, kc = quantity, pc = UPC, pp = price.
type Product map[string]string

type pushRequest struct {
	StoreCode string    `json:"store_code"`
	F1        []Product `json:"f1"`
	IsBase64  string    `json:"is_base64"`
	F2        string    `json:"f2"`
	Sign      string    `json:"sign"`
}

type pushResponse struct {
	ErrorCode int    `json:"error_code"`
	Message   string `json:"message"`
}

// PushLabels sends one batch of products to the vendor endpoint,
// retrying transient failures with exponential backoff.
func (c *Client) PushLabels(ctx context.Context, storeCode string, products []Product) error {
	body, err := json.Marshal(pushRequest{
		StoreCode: storeCode,
		F1:        products,
		IsBase64:  "0",
		F2:        deviceMAC,
		Sign:      c.sign,
	})
	if err != nil {
		return fmt.Errorf("encoding label batch: %w", err)
	}

	operation := func() error {
		return c.pushOnce(ctx, body)
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), c.maxRetries), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return fmt.Errorf("pushing %d labels to store %s: %w", len(products), storeCode, err)
	}
	return nil
}

func (c *Client) pushOnce(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.pushURL, bytes.NewReader(body))
	if err != nil {
		return backoff.Permanent(fmt.Errorf("building push request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: label push: %v", apperrors.ErrExternalService, err)
	}
	defer resp.Body.Close()

	var decoded pushResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return fmt.Errorf("%w: decoding push response: %v", apperrors.ErrExternalService, err)
	}
	if resp.StatusCode != http.StatusOK || decoded.ErrorCode != 0 {
		return fmt.Errorf("%w: push rejected: status %d, error_code %d, message %q",
			apperrors.ErrExternalService, resp.StatusCode, decoded.ErrorCode, decoded.Message)
	}
	return nil
}
