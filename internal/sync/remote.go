package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/phuchgg/neon-rpg/internal/storage"
)

const maxErrorBody = 256

// HTTPRemote talks to a mirror server:
//
//	GET /players/{id}/document
//	PUT /players/{id}/document
type HTTPRemote struct {
	baseURL string
	timeout time.Duration
	client  *fasthttp.Client
}

func NewHTTPRemote(baseURL string, timeout time.Duration) *HTTPRemote {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPRemote{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		client: &fasthttp.Client{
			Name:                "nrpg",
			MaxConnsPerHost:     4,
			ReadTimeout:         timeout,
			WriteTimeout:        timeout,
			MaxIdleConnDuration: time.Minute,
		},
	}
}

func (r *HTTPRemote) documentURL(playerID string) string {
	return fmt.Sprintf("%s/players/%s/document", r.baseURL, url.PathEscape(playerID))
}

func (r *HTTPRemote) Fetch(ctx context.Context, playerID string) (*storage.Document, error) {
	status, body, err := r.do(ctx, fasthttp.MethodGet, r.documentURL(playerID), nil)
	if err != nil {
		return nil, err
	}
	switch status {
	case fasthttp.StatusOK:
	case fasthttp.StatusNotFound:
		return nil, nil
	default:
		return nil, statusError(fasthttp.MethodGet, r.documentURL(playerID), status, body)
	}

	var doc storage.Document
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return &doc, nil
}

func (r *HTTPRemote) Merge(ctx context.Context, playerID string, values map[string]json.RawMessage) error {
	payload, err := json.Marshal(storage.Document{PlayerID: playerID, Values: values})
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	status, body, err := r.do(ctx, fasthttp.MethodPut, r.documentURL(playerID), payload)
	if err != nil {
		return err
	}
	if status != fasthttp.StatusOK && status != fasthttp.StatusNoContent {
		return statusError(fasthttp.MethodPut, r.documentURL(playerID), status, body)
	}
	return nil
}

// do sends one request. The deadline comes from ctx when it has one,
// otherwise from the remote's timeout.
func (r *HTTPRemote) do(ctx context.Context, method, uri string, payload []byte) (int, []byte, error) {
	if err := ctx.Err(); err != nil {
		return 0, nil, err
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(uri)
	req.Header.SetMethod(method)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.SetContentType("application/json")
		req.SetBody(payload)
	}

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(r.timeout)
	}
	if err := r.client.DoDeadline(req, resp, deadline); err != nil {
		return 0, nil, fmt.Errorf("%s %s: %w", method, uri, err)
	}

	// resp is released on return; copy the body out.
	body := append([]byte(nil), resp.Body()...)
	return resp.StatusCode(), body, nil
}

func statusError(method, uri string, code int, body []byte) *StatusError {
	msg := strings.TrimSpace(string(body))
	if len(msg) > maxErrorBody {
		msg = msg[:maxErrorBody]
	}
	return &StatusError{Method: method, URL: uri, Code: code, Body: msg}
}
