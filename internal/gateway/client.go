package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/rilesCL/Projet-Leandrose-sub000/internal/logging"
	"github.com/rilesCL/Projet-Leandrose-sub000/internal/models"
	"github.com/rilesCL/Projet-Leandrose-sub000/internal/session"
)

// maxResponseBytes bounds how much of a backend response is read into memory.
// Larger responses are refused rather than truncated.
var maxResponseBytes int64 = 32 << 20

// Client performs one HTTP call per backend endpoint. It never retries,
// caches or de-duplicates requests.
type Client struct {
	baseURL    string
	httpClient *http.Client
	validate   *validator.Validate
}

// NewClient constructs a Client targeting baseURL.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpClient: httpClient,
		validate:   newValidator(),
	}
}

// Blob is an opaque file returned by a download endpoint.
type Blob struct {
	ContentType string
	Filename    string
	Data        []byte
}

type call struct {
	method      string
	path        string
	session     *session.Session
	body        io.Reader
	contentType string
	accept      string
}

type response struct {
	header http.Header
	body   []byte
}

func (c *Client) do(ctx context.Context, req call) (response, error) {
	ctx, span := logging.StartSpan(ctx, "gateway "+req.method+" "+req.path)
	logger := logging.FromContext(ctx)

	httpReq, err := http.NewRequestWithContext(ctx, req.method, c.baseURL+req.path, req.body)
	if err != nil {
		span.EndErr(err)
		return response{}, fmt.Errorf("create %s %s request: %w", req.method, req.path, err)
	}
	if req.contentType != "" {
		httpReq.Header.Set("Content-Type", req.contentType)
	}
	if req.accept != "" {
		httpReq.Header.Set("Accept", req.accept)
	}
	if req.session != nil {
		if header, ok := req.session.AuthHeader(); ok {
			httpReq.Header.Set("Authorization", header)
		}
	}
	if requestID := logging.RequestIDFromContext(ctx); requestID != "" {
		httpReq.Header.Set("X-Request-ID", requestID)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		span.EndErr(err)
		return response{}, networkError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		span.EndErr(err)
		return response{}, networkError(fmt.Errorf("read %s response: %w", req.path, err))
	}
	if int64(len(body)) > maxResponseBytes {
		gwErr := tooLarge(req.path)
		logger.Error("backend response exceeds limit", slog.Int64("limit", maxResponseBytes), slog.Int("status", resp.StatusCode))
		span.EndErr(gwErr)
		return response{}, gwErr
	}

	if resp.StatusCode >= http.StatusBadRequest {
		gwErr := httpError(resp.StatusCode, body)
		logger.Warn("backend call failed", slog.Int("status", resp.StatusCode), slog.String("message", gwErr.Message))
		span.EndErr(gwErr)
		return response{}, gwErr
	}

	span.End()
	return response{header: resp.Header, body: body}, nil
}

func (c *Client) getJSON(ctx context.Context, s *session.Session, path string, out any) error {
	resp, err := c.do(ctx, call{method: http.MethodGet, path: path, session: s, accept: "application/json"})
	if err != nil {
		return err
	}
	return decode(path, resp.body, out)
}

func (c *Client) sendJSON(ctx context.Context, s *session.Session, method, path string, in, out any) error {
	var body io.Reader
	contentType := ""
	if in != nil {
		encoded, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s payload: %w", path, err)
		}
		body = bytes.NewReader(encoded)
		contentType = "application/json"
	}

	resp, err := c.do(ctx, call{method: method, path: path, session: s, body: body, contentType: contentType, accept: "application/json"})
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return decode(path, resp.body, out)
}

func (c *Client) getBlob(ctx context.Context, s *session.Session, path string) (Blob, error) {
	resp, err := c.do(ctx, call{method: http.MethodGet, path: path, session: s, accept: "application/pdf"})
	if err != nil {
		return Blob{}, err
	}

	blob := Blob{
		ContentType: resp.header.Get("Content-Type"),
		Data:        resp.body,
	}
	if blob.ContentType == "" {
		blob.ContentType = "application/pdf"
	}
	if disposition := resp.header.Get("Content-Disposition"); disposition != "" {
		if _, params, err := mime.ParseMediaType(disposition); err == nil {
			blob.Filename = params["filename"]
		}
	}
	return blob, nil
}

func decode(path string, body []byte, out any) error {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

// rolePrefix returns the backend prefix for the session's role or a validation error.
func rolePrefix(s session.Session, allowed ...models.Role) (string, error) {
	for _, role := range allowed {
		if s.Role == role {
			return "/" + role.PathSegment(), nil
		}
	}
	return "", invalid("role", "oneof", fmt.Sprintf("role %s cannot perform this action", s.Role))
}
