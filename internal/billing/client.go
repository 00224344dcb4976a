package billing

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"
)

// HTTPClient talks to the billing endpoints over their JSON API.
type HTTPClient struct {
	baseURL string
	client  *http.Client
}

func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) ConsultDebt(ctx context.Context, req DebtRequest) (*DebtResult, error) {
	var env struct {
		Data DebtResult `json:"data"`
	}
	if err := c.post(ctx, "/api/consult-debt", req, &env); err != nil {
		return nil, err
	}
	return &env.Data, nil
}

func (c *HTTPClient) GenerateBoleto(ctx context.Context, req BoletoRequest) (*BoletoResult, error) {
	var env struct {
		Data BoletoResult `json:"data"`
	}
	if err := c.post(ctx, "/api/generate-boleto", req, &env); err != nil {
		return nil, err
	}
	return &env.Data, nil
}

func (c *HTTPClient) post(ctx context.Context, path string, body any, out any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.baseURL+path,
		bytes.NewReader(b),
	)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return errors.New(
			"billing api error: " +
				resp.Status +
				" body=" + strings.TrimSpace(string(respBody)),
		)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
