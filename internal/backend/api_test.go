package backend

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

func TestAddProduct_SendsMultipart(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/Product/AddProduct", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))

		var p domain.NewProduct
		require.NoError(t, json.Unmarshal([]byte(r.FormValue("product")), &p))
		assert.Equal(t, "Tea", p.ProductName)
		assert.Equal(t, 12, p.Stock)

		f, hdr, err := r.FormFile("imageFile")
		require.NoError(t, err)
		defer f.Close()
		data, _ := io.ReadAll(f)
		assert.Equal(t, "tea.png", hdr.Filename)
		assert.Equal(t, "PNGDATA", string(data))

		writeJSON(w, http.StatusOK, `{"message":"created","status":200,"data":{"productId":"p7","productName":"Tea","stock":12}}`)
	}, Options{})

	got, err := c.AddProduct(context.Background(),
		domain.NewProduct{ProductName: "Tea", Stock: 12, Price: 3, Cost: 1, CategoryID: "c1"},
		&ProductImage{Filename: "tea.png", Content: strings.NewReader("PNGDATA")})
	require.NoError(t, err)
	assert.Equal(t, "p7", got.ProductID)
}

func TestAddProduct_WithoutImage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		_, _, err := r.FormFile("imageFile")
		assert.ErrorIs(t, err, http.ErrMissingFile)
		writeJSON(w, http.StatusOK, `{"data":{"productId":"p8"}}`)
	}, Options{})

	got, err := c.AddProduct(context.Background(), domain.NewProduct{ProductName: "Cup"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "p8", got.ProductID)
}

func TestAckEndpoints(t *testing.T) {
	var paths []string
	var bodies []map[string]string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		bodies = append(bodies, body)
		writeJSON(w, http.StatusOK, `{"message":"done","status":200}`)
	}, Options{})
	ctx := context.Background()

	ack, err := c.VerifyEmail(ctx, "a@b.c", "123456")
	require.NoError(t, err)
	assert.Equal(t, Ack{Message: "done", Status: "200"}, ack)
	_, err = c.ResendOTP(ctx, "a@b.c")
	require.NoError(t, err)

	assert.Equal(t, []string{"/api/v1/User/verify-email", "/api/v1/User/ResentOTP"}, paths)
	assert.Equal(t, map[string]string{"email": "a@b.c", "otp": "123456"}, bodies[0])
	assert.Equal(t, map[string]string{"email": "a@b.c"}, bodies[1])
}

func TestFlexString(t *testing.T) {
	for in, want := range map[string]string{`"200"`: "200", `200`: "200", `null`: ""} {
		var f flexString
		require.NoError(t, json.Unmarshal([]byte(in), &f))
		assert.Equal(t, want, string(f))
	}
	var f flexString
	assert.Error(t, json.Unmarshal([]byte(`true`), &f))
}
