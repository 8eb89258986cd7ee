package testkit

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// Envelope mirrors the API response body with data left raw for the
// caller to decode.
type Envelope struct {
	Status  int               `json:"status"`
	Message string            `json:"message"`
	Data    json.RawMessage   `json:"data"`
	Errors  map[string]string `json:"errors"`
}

// Decode unmarshals Data into dest, failing the test on error.
func (e Envelope) Decode(t *testing.T, dest interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(e.Data, dest), string(e.Data))
}

// Client fires in-process requests at a handler.
type Client struct {
	t *testing.T
	h http.Handler
}

func NewClient(t *testing.T, h http.Handler) *Client {
	return &Client{t: t, h: h}
}

// Do sends body with the given content type and bearer token (either may
// be empty) and decodes a JSON envelope when the response carries one.
func (c *Client) Do(method, path, token string, body []byte, contentType string) (int, Envelope) {
	c.t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	c.h.ServeHTTP(rec, req)

	var env Envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(c.t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec.Code, env
}

// JSON marshals body (nil sends no body) and calls Do.
func (c *Client) JSON(method, path, token string, body any) (int, Envelope) {
	c.t.Helper()
	var raw []byte
	if body != nil {
		var err error
		raw, err = json.Marshal(body)
		require.NoError(c.t, err)
	}
	return c.Do(method, path, token, raw, "application/json")
}

// Upload is one file part of a multipart form.
type Upload struct {
	Field    string
	Filename string
	Data     []byte
}

// Form encodes fields and files as multipart/form-data and returns the
// body with its content type.
func Form(t *testing.T, fields map[string][]string, files ...Upload) ([]byte, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, vs := range fields {
		for _, v := range vs {
			require.NoError(t, mw.WriteField(k, v))
		}
	}
	for _, f := range files {
		fw, err := mw.CreateFormFile(f.Field, f.Filename)
		require.NoError(t, err)
		_, err = fw.Write(f.Data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return buf.Bytes(), mw.FormDataContentType()
}

// Handler returns the handler requests are sent to.
func (c *Client) Handler() http.Handler { return c.h }
