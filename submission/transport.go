package submission

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/bytedance/sonic"
)

// Receipt is what the backend returns for an accepted record.
type Receipt struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type Transport interface {
	Submit(ctx context.Context, record *Record) (*Receipt, error)
}

type TransportFunc func(ctx context.Context, record *Record) (*Receipt, error)

func (f TransportFunc) Submit(ctx context.Context, record *Record) (*Receipt, error) {
	return f(ctx, record)
}

var ErrRejected = errors.New("submission rejected by server")

// HTTPTransport posts the record as JSON. Retry and token refresh belong to
// the http.Client handed in.
type HTTPTransport struct {
	Endpoint string
	Client   *http.Client
	Header   http.Header
}

func NewHTTPTransport(endpoint string, client *http.Client) *HTTPTransport {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPTransport{Endpoint: endpoint, Client: client, Header: http.Header{}}
}

func (t *HTTPTransport) Submit(ctx context.Context, record *Record) (*Receipt, error) {
	body, err := sonic.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("failed to encode record: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	for k, values := range t.Header {
		for _, v := range values {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", record.ID())

	resp, err := t.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send record: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %d: %s", ErrRejected, resp.StatusCode, bytes.TrimSpace(data))
	}

	var receipt Receipt
	if len(bytes.TrimSpace(data)) > 0 {
		if err := sonic.Unmarshal(data, &receipt); err != nil {
			return nil, fmt.Errorf("failed to decode receipt: %w", err)
		}
	}
	if receipt.ID == "" {
		receipt.ID = record.ID()
	}
	if receipt.Status == "" {
		receipt.Status = "accepted"
	}
	return &receipt, nil
}

// LogTransport accepts every record and only logs it.
type LogTransport struct{}

func (LogTransport) Submit(ctx context.Context, record *Record) (*Receipt, error) {
	payload, err := sonic.MarshalString(record)
	if err != nil {
		return nil, fmt.Errorf("failed to encode record: %w", err)
	}
	slog.Info("report submitted", "id", record.ID(), "payload", payload)
	return &Receipt{ID: record.ID(), Status: "logged"}, nil
}
