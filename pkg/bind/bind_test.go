package bind

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type productForm struct {
	Name    string           `json:"name"  validate:"required,max=255"`
	Price   *decimal.Decimal `json:"price" validate:"required,gte=0"`
	Stock   *int             `json:"stock" validate:"nullable,gte=0"`
	Tags    []string         `json:"tags"`
	Deletes []int            `json:"delete_image_ids"`
}

func TestJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Lamp","price":19.99,"stock":3,"tags":["home"]}`))

	var in productForm
	errs, err := JSON(req, &in)
	require.NoError(t, err)
	assert.Empty(t, errs)
	assert.Equal(t, "Lamp", in.Name)
	assert.True(t, in.Price.Equal(decimal.RequireFromString("19.99")))
	assert.Equal(t, 3, *in.Stock)
	assert.Equal(t, []string{"home"}, in.Tags)
}

func TestJSONTypeMismatchIsFieldError(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Lamp","price":1,"stock":"ten"}`))

	var in productForm
	errs, err := JSON(req, &in)
	require.NoError(t, err)
	assert.Contains(t, errs, "stock")
}

func TestJSONMalformed(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":`))
	var in productForm
	_, err := JSON(req, &in)
	assert.Error(t, err)
}

func TestMultipart(t *testing.T) {
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	require.NoError(t, mw.WriteField("name", "Lamp"))
	require.NoError(t, mw.WriteField("price", "12.50"))
	require.NoError(t, mw.WriteField("tags[]", "home"))
	require.NoError(t, mw.WriteField("tags[]", "light"))
	require.NoError(t, mw.WriteField("delete_image_ids[]", "4"))
	for _, name := range []string{"a.png", "b.png"} {
		fw, err := mw.CreateFormFile("images[]", name)
		require.NoError(t, err)
		_, _ = fw.Write([]byte(name))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/", body)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var in productForm
	errs, files, err := Request(req, &in)
	require.NoError(t, err)
	assert.Empty(t, errs)
	assert.Equal(t, "Lamp", in.Name)
	assert.Equal(t, "12.5", in.Price.String())
	assert.Nil(t, in.Stock)
	assert.Equal(t, []string{"home", "light"}, in.Tags)
	assert.Equal(t, []int{4}, in.Deletes)

	require.Len(t, files, 2)
	assert.Equal(t, "a.png", files[0].Filename)
	assert.Equal(t, []byte("b.png"), files[1].Data)
}

func TestMultipartConversionError(t *testing.T) {
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	require.NoError(t, mw.WriteField("name", "Lamp"))
	require.NoError(t, mw.WriteField("price", "cheap"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/", body)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var in productForm
	errs, _, err := Request(req, &in)
	require.NoError(t, err)
	assert.Equal(t, "The price field is invalid.", errs["price"])
}
