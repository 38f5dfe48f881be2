// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/ocms-catalog/internal/access"
	"github.com/olegiv/ocms-catalog/internal/middleware"
	"github.com/olegiv/ocms-catalog/internal/model"
	"github.com/olegiv/ocms-catalog/internal/store"
	"github.com/olegiv/ocms-catalog/internal/testutil"
)

const (
	testAdminToken = "test-admin-token-0123456789abcdef"
	testPhone      = "+989120001111"
)

type testServer struct {
	t       *testing.T
	store   *store.Store
	gate    *access.SQLGate
	handler http.Handler
}

// newTestServer gates services unless other kinds are given.
func newTestServer(t *testing.T, gated ...model.Kind) *testServer {
	t.Helper()
	if len(gated) == 0 {
		gated = []model.Kind{model.KindService}
	}

	s := testutil.TestStore(t, store.Options{})
	gate := access.NewSQLGate(s.DB(), s.Schema, gated)
	h := NewHandler(Config{
		Store:      s,
		Gate:       gate,
		Registry:   gate,
		UploadsDir: t.TempDir(),
		Version:    "test",
		Logger:     testutil.TestLoggerSilent(),
	})

	r := chi.NewRouter()
	h.Mount(r, RouteConfig{
		AdminToken: testAdminToken,
		// httptest requests come from 192.0.2.1.
		TrustedProxies: []netip.Prefix{netip.MustParsePrefix("192.0.2.0/24")},
		CommentLimiter: middleware.NewIPRateLimiter(0.001, 3),
	})
	return &testServer{t: t, store: s, gate: gate, handler: r}
}

type requestOption func(*http.Request)

func asAdmin(r *http.Request) { r.Header.Set("Authorization", "Bearer "+testAdminToken) }

func asCaller(phone string) requestOption {
	return func(r *http.Request) { r.Header.Set(middleware.DefaultCallerHeader, phone) }
}

func (ts *testServer) do(method, target string, body any, opts ...requestOption) *httptest.ResponseRecorder {
	ts.t.Helper()

	var rdr io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rdr = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(ts.t, err)
		rdr = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, target, rdr)
	if rdr != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, opt := range opts {
		opt(req)
	}
	w := httptest.NewRecorder()
	ts.handler.ServeHTTP(w, req)
	return w
}

// decodeData unmarshals the data field of a success response.
func decodeData[T any](t *testing.T, w *httptest.ResponseRecorder) (T, *Meta) {
	t.Helper()
	var resp struct {
		Data T     `json:"data"`
		Meta *Meta `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), "body: %s", w.Body.String())
	return resp.Data, resp.Meta
}

func swingRequest() ProductRequest {
	return ProductRequest{
		Images: []string{"/a.jpg"},
		Translations: map[model.Locale]model.ProductTranslation{
			model.LocaleFa: {Name: "تاب", Features: []string{"ضد آب"}},
			model.LocaleEn: {Name: "Swing", Features: []string{"Waterproof"}},
		},
	}
}

func TestStatus(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodGet, "/api/v1/status", nil)
	assertStatusCode(t, w, http.StatusOK)

	status, _ := decodeData[StatusResponse](t, w)
	assert.Equal(t, "ok", status.Status)
	assert.Equal(t, "test", status.Version)
	assert.Equal(t, []string{"fa", "en", "ar"}, status.Locales)
}

func TestProductLifecycle(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodPost, "/api/v1/products", swingRequest())
	assertStatusCode(t, w, http.StatusUnauthorized)

	w = ts.do(http.MethodPost, "/api/v1/products", swingRequest(), asAdmin)
	assertStatusCode(t, w, http.StatusCreated)
	created, _ := decodeData[model.Product](t, w)
	require.NotEmpty(t, created.ID)

	w = ts.do(http.MethodGet, "/api/v1/products/"+created.ID, nil)
	assertStatusCode(t, w, http.StatusOK)
	got, _ := decodeData[model.Product](t, w)
	assert.Equal(t, []string{"/a.jpg"}, got.Images)
	assert.Len(t, got.Translations, 2)
	assert.Equal(t, "تاب", got.Translations[model.LocaleFa].Name)
	assert.Equal(t, "Swing", got.Translations[model.LocaleEn].Name)
	_, hasAr := got.Translations[model.LocaleAr]
	assert.False(t, hasAr)

	// Partial-locale update leaves fa untouched
	update := ProductRequest{
		Images: []string{"/a.jpg", "/b.jpg"},
		Translations: map[model.Locale]model.ProductTranslation{
			model.LocaleEn: {Name: "Garden Swing"},
		},
	}
	w = ts.do(http.MethodPut, "/api/v1/products/"+created.ID, update, asAdmin)
	assertStatusCode(t, w, http.StatusOK)
	updated, _ := decodeData[model.Product](t, w)
	assert.Equal(t, "Garden Swing", updated.Translations[model.LocaleEn].Name)
	assert.Equal(t, "تاب", updated.Translations[model.LocaleFa].Name)
	assert.Equal(t, []string{"/a.jpg", "/b.jpg"}, updated.Images)

	w = ts.do(http.MethodGet, "/api/v1/products", nil)
	assertStatusCode(t, w, http.StatusOK)
	list, meta := decodeData[[]model.Product](t, w)
	assert.Len(t, list, 1)
	require.NotNil(t, meta)
	assert.Equal(t, int64(1), meta.Total)

	w = ts.do(http.MethodDelete, "/api/v1/products/"+created.ID, nil, asAdmin)
	assertStatusCode(t, w, http.StatusNoContent)

	w = ts.do(http.MethodGet, "/api/v1/products/"+created.ID, nil)
	assertStatusCode(t, w, http.StatusNotFound)
	assertErrorResponse(t, w, "not_found")

	w = ts.do(http.MethodDelete, "/api/v1/products/"+created.ID, nil, asAdmin)
	assertStatusCode(t, w, http.StatusNotFound)
}

func TestProductValidation(t *testing.T) {
	ts := newTestServer(t)

	req := ProductRequest{
		Translations: map[model.Locale]model.ProductTranslation{
			model.LocaleEn: {Name: "  "},
		},
	}
	w := ts.do(http.MethodPost, "/api/v1/products", req, asAdmin)
	assertStatusCode(t, w, http.StatusUnprocessableEntity)
	resp := assertErrorResponse(t, w, "validation_error")
	assert.Contains(t, resp.Error.Details, "translations.en.name")

	req = ProductRequest{
		Translations: map[model.Locale]model.ProductTranslation{
			"xx": {Name: "Unknown"},
		},
	}
	w = ts.do(http.MethodPost, "/api/v1/products", req, asAdmin)
	assertStatusCode(t, w, http.StatusUnprocessableEntity)

	w = ts.do(http.MethodPost, "/api/v1/products", `{"images": [`, asAdmin)
	assertStatusCode(t, w, http.StatusBadRequest)

	w = ts.do(http.MethodPost, "/api/v1/products", `{"views": 10}`, asAdmin)
	assertStatusCode(t, w, http.StatusBadRequest)

	w = ts.do(http.MethodPut, "/api/v1/products/missing", swingRequest(), asAdmin)
	assertStatusCode(t, w, http.StatusNotFound)
}

func TestProductRichTextIsSanitized(t *testing.T) {
	ts := newTestServer(t)

	req := swingRequest()
	en := req.Translations[model.LocaleEn]
	en.FullDescription = `<p>Solid <b>oak</b></p><script>alert(1)</script>`
	req.Translations[model.LocaleEn] = en

	w := ts.do(http.MethodPost, "/api/v1/products", req, asAdmin)
	assertStatusCode(t, w, http.StatusCreated)
	created, _ := decodeData[model.Product](t, w)

	desc := created.Translations[model.LocaleEn].FullDescription
	assert.Contains(t, desc, "<b>oak</b>")
	assert.NotContains(t, desc, "<script>")
}

func TestListLocaleFilter(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do(http.MethodPost, "/api/v1/products", swingRequest(), asAdmin)
	assertStatusCode(t, w, http.StatusCreated)

	w = ts.do(http.MethodGet, "/api/v1/products?lang=de", nil)
	assertStatusCode(t, w, http.StatusUnprocessableEntity)
	resp := assertErrorResponse(t, w, "validation_error")
	assert.Contains(t, resp.Error.Details, "lang")

	w = ts.do(http.MethodGet, "/api/v1/products?lang=en", nil)
	assertStatusCode(t, w, http.StatusOK)
	list, meta := decodeData[[]model.Product](t, w)
	require.Len(t, list, 1)
	assert.Equal(t, "en", meta.Locale)
	// Translation maps are returned in full
	assert.Len(t, list[0].Translations, 2)
}

func TestServiceAccess(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodPost, "/api/v1/services", ServiceRequest{
		Translations: map[model.Locale]model.ServiceTranslation{
			model.LocaleEn: {Name: "Installation"},
		},
	}, asAdmin)
	assertStatusCode(t, w, http.StatusCreated)
	svc, _ := decodeData[model.Service](t, w)

	w = ts.do(http.MethodPost, "/api/v1/services", ServiceRequest{
		Translations: map[model.Locale]model.ServiceTranslation{
			model.LocaleEn: {Name: "Maintenance"},
		},
	}, asAdmin)
	assertStatusCode(t, w, http.StatusCreated)

	// Anonymous callers are rejected
	w = ts.do(http.MethodGet, "/api/v1/services/"+svc.ID, nil)
	assertStatusCode(t, w, http.StatusUnauthorized)
	w = ts.do(http.MethodGet, "/api/v1/services", nil)
	assertStatusCode(t, w, http.StatusUnauthorized)

	// Known caller without a grant
	w = ts.do(http.MethodGet, "/api/v1/services/"+svc.ID, nil, asCaller(testPhone))
	assertStatusCode(t, w, http.StatusForbidden)
	w = ts.do(http.MethodGet, "/api/v1/services", nil, asCaller(testPhone))
	assertStatusCode(t, w, http.StatusOK)
	list, _ := decodeData[[]model.Service](t, w)
	assert.Empty(t, list)

	// Grant one service through the admin API
	w = ts.do(http.MethodPost, "/api/v1/access/phones", PhoneRequest{Phone: "+98 912 000 1111"}, asAdmin)
	assertStatusCode(t, w, http.StatusCreated)
	w = ts.do(http.MethodPost, "/api/v1/access/phones/"+testPhone+"/grants", GrantRequest{EntityID: svc.ID}, asAdmin)
	assertStatusCode(t, w, http.StatusCreated)

	w = ts.do(http.MethodGet, "/api/v1/services/"+svc.ID, nil, asCaller(testPhone))
	assertStatusCode(t, w, http.StatusOK)
	w = ts.do(http.MethodGet, "/api/v1/services", nil, asCaller(testPhone))
	assertStatusCode(t, w, http.StatusOK)
	list, _ = decodeData[[]model.Service](t, w)
	require.Len(t, list, 1)
	assert.Equal(t, svc.ID, list[0].ID)

	// Revoke again
	w = ts.do(http.MethodDelete, "/api/v1/access/phones/"+testPhone+"/grants/"+svc.ID, nil, asAdmin)
	assertStatusCode(t, w, http.StatusNoContent)
	w = ts.do(http.MethodGet, "/api/v1/services/"+svc.ID, nil, asCaller(testPhone))
	assertStatusCode(t, w, http.StatusForbidden)
}

func TestAccessAdminErrors(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodPost, "/api/v1/access/phones", PhoneRequest{Phone: "n/a"}, asAdmin)
	assertStatusCode(t, w, http.StatusUnprocessableEntity)

	w = ts.do(http.MethodPost, "/api/v1/access/phones/09120000000/grants", GrantRequest{EntityID: "svc"}, asAdmin)
	assertStatusCode(t, w, http.StatusNotFound)

	w = ts.do(http.MethodPost, "/api/v1/access/phones", PhoneRequest{Phone: testPhone})
	assertStatusCode(t, w, http.StatusUnauthorized)

	w = ts.do(http.MethodPost, "/api/v1/access/phones", PhoneRequest{Phone: testPhone}, asAdmin)
	assertStatusCode(t, w, http.StatusCreated)
	w = ts.do(http.MethodPost, "/api/v1/access/phones/"+testPhone+"/grants", GrantRequest{EntityID: "users:*"}, asAdmin)
	assertStatusCode(t, w, http.StatusUnprocessableEntity)
}

func TestGatedProductsAndNews(t *testing.T) {
	ts := newTestServer(t, model.KindProduct, model.KindNews)

	w := ts.do(http.MethodPost, "/api/v1/products", swingRequest(), asAdmin)
	assertStatusCode(t, w, http.StatusCreated)
	product, _ := decodeData[model.Product](t, w)
	w = ts.do(http.MethodPost, "/api/v1/products", swingRequest(), asAdmin)
	assertStatusCode(t, w, http.StatusCreated)

	w = ts.do(http.MethodPost, "/api/v1/news", NewsRequest{
		Translations: map[model.Locale]model.NewsTranslation{
			model.LocaleEn: {Title: "Launch", Content: "<p>ok</p>"},
		},
	}, asAdmin)
	assertStatusCode(t, w, http.StatusCreated)
	item, _ := decodeData[model.News](t, w)

	// Anonymous callers are rejected on every read of a gated kind
	for _, target := range []string{
		"/api/v1/products",
		"/api/v1/products/" + product.ID,
		"/api/v1/products/" + product.ID + "/comments",
		"/api/v1/news",
		"/api/v1/news/" + item.ID,
	} {
		w = ts.do(http.MethodGet, target, nil)
		assertStatusCode(t, w, http.StatusUnauthorized)
	}
	w = ts.do(http.MethodPost, "/api/v1/news/"+item.ID+"/views", nil)
	assertStatusCode(t, w, http.StatusUnauthorized)
	w = ts.do(http.MethodPost, "/api/v1/products/"+product.ID+"/comments",
		CommentRequest{Name: "Sara", Rating: 5, Comment: "Great"})
	assertStatusCode(t, w, http.StatusUnauthorized)

	// Known caller without grants
	w = ts.do(http.MethodGet, "/api/v1/products/"+product.ID, nil, asCaller(testPhone))
	assertStatusCode(t, w, http.StatusForbidden)
	w = ts.do(http.MethodGet, "/api/v1/news/"+item.ID, nil, asCaller(testPhone))
	assertStatusCode(t, w, http.StatusForbidden)
	w = ts.do(http.MethodGet, "/api/v1/products", nil, asCaller(testPhone))
	assertStatusCode(t, w, http.StatusOK)
	products, _ := decodeData[[]model.Product](t, w)
	assert.Empty(t, products)

	// One product by id and all news by kind wildcard
	require.NoError(t, ts.gate.AllowPhone(t.Context(), testPhone))
	w = ts.do(http.MethodPost, "/api/v1/access/phones/"+testPhone+"/grants", GrantRequest{EntityID: product.ID}, asAdmin)
	assertStatusCode(t, w, http.StatusCreated)
	w = ts.do(http.MethodPost, "/api/v1/access/phones/"+testPhone+"/grants", GrantRequest{EntityID: "news:*"}, asAdmin)
	assertStatusCode(t, w, http.StatusCreated)

	w = ts.do(http.MethodGet, "/api/v1/products", nil, asCaller(testPhone))
	assertStatusCode(t, w, http.StatusOK)
	products, meta := decodeData[[]model.Product](t, w)
	require.Len(t, products, 1)
	assert.Equal(t, product.ID, products[0].ID)
	assert.Equal(t, int64(1), meta.Total)

	w = ts.do(http.MethodGet, "/api/v1/products/"+product.ID+"/comments", nil, asCaller(testPhone))
	assertStatusCode(t, w, http.StatusOK)
	w = ts.do(http.MethodGet, "/api/v1/news/"+item.ID, nil, asCaller(testPhone))
	assertStatusCode(t, w, http.StatusOK)
	w = ts.do(http.MethodGet, "/api/v1/news", nil, asCaller(testPhone))
	assertStatusCode(t, w, http.StatusOK)
	news, _ := decodeData[[]model.News](t, w)
	assert.Len(t, news, 1)

	// Services stay public when not gated
	w = ts.do(http.MethodGet, "/api/v1/services", nil)
	assertStatusCode(t, w, http.StatusOK)

	// Revoking the kind wildcard closes news again
	w = ts.do(http.MethodDelete, "/api/v1/access/phones/"+testPhone+"/grants/news:*", nil, asAdmin)
	assertStatusCode(t, w, http.StatusNoContent)
	w = ts.do(http.MethodGet, "/api/v1/news/"+item.ID, nil, asCaller(testPhone))
	assertStatusCode(t, w, http.StatusForbidden)
}

func TestCallerHeaderFromUntrustedPeer(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodPost, "/api/v1/services", ServiceRequest{
		Translations: map[model.Locale]model.ServiceTranslation{
			model.LocaleEn: {Name: "Installation"},
		},
	}, asAdmin)
	assertStatusCode(t, w, http.StatusCreated)
	svc, _ := decodeData[model.Service](t, w)
	require.NoError(t, ts.gate.AllowPhone(t.Context(), testPhone))
	require.NoError(t, ts.gate.Grant(t.Context(), testPhone, svc.ID))

	fromOutside := func(r *http.Request) { r.RemoteAddr = "203.0.113.7:5555" }
	w = ts.do(http.MethodGet, "/api/v1/services/"+svc.ID, nil, fromOutside, asCaller(testPhone))
	assertStatusCode(t, w, http.StatusUnauthorized)

	w = ts.do(http.MethodGet, "/api/v1/services/"+svc.ID, nil, asCaller(testPhone))
	assertStatusCode(t, w, http.StatusOK)
}

func TestNewsViews(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodPost, "/api/v1/news", NewsRequest{
		IsFeatured: true,
		Translations: map[model.Locale]model.NewsTranslation{
			model.LocaleFa: {Title: "خبر", Content: `<p>ok</p><iframe src="x"></iframe>`},
		},
	}, asAdmin)
	assertStatusCode(t, w, http.StatusCreated)
	item, _ := decodeData[model.News](t, w)
	assert.Equal(t, int64(0), item.Views)
	assert.NotContains(t, item.Translations[model.LocaleFa].Content, "iframe")

	for want := int64(1); want <= 3; want++ {
		w = ts.do(http.MethodPost, "/api/v1/news/"+item.ID+"/views", nil)
		assertStatusCode(t, w, http.StatusOK)
		views, _ := decodeData[ViewsResponse](t, w)
		assert.Equal(t, want, views.Views)
	}

	// Updates never touch the counter
	w = ts.do(http.MethodPut, "/api/v1/news/"+item.ID, NewsRequest{
		Translations: map[model.Locale]model.NewsTranslation{
			model.LocaleEn: {Title: "News"},
		},
	}, asAdmin)
	assertStatusCode(t, w, http.StatusOK)
	updated, _ := decodeData[model.News](t, w)
	assert.Equal(t, int64(3), updated.Views)
	assert.False(t, updated.IsFeatured)
	assert.Len(t, updated.Translations, 2)

	w = ts.do(http.MethodPost, "/api/v1/news/missing/views", nil)
	assertStatusCode(t, w, http.StatusNotFound)
}

func TestComments(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodPost, "/api/v1/products", swingRequest(), asAdmin)
	assertStatusCode(t, w, http.StatusCreated)
	product, _ := decodeData[model.Product](t, w)
	path := "/api/v1/products/" + product.ID + "/comments"

	w = ts.do(http.MethodPost, path, CommentRequest{Name: "Sara", Rating: 9, Comment: "Great"})
	assertStatusCode(t, w, http.StatusUnprocessableEntity)
	resp := assertErrorResponse(t, w, "validation_error")
	assert.Contains(t, resp.Error.Details, "rating")

	w = ts.do(http.MethodPost, path, CommentRequest{Name: "Sara", Rating: 5, Comment: "Great"})
	assertStatusCode(t, w, http.StatusCreated)
	w = ts.do(http.MethodPost, path, CommentRequest{Name: "Ali", Rating: 4, Comment: "Good"})
	assertStatusCode(t, w, http.StatusCreated)

	// Burst of three exhausted
	w = ts.do(http.MethodPost, path, CommentRequest{Name: "Ali", Rating: 4, Comment: "Again"})
	assertStatusCode(t, w, http.StatusTooManyRequests)

	w = ts.do(http.MethodGet, path, nil)
	assertStatusCode(t, w, http.StatusOK)
	comments, meta := decodeData[[]model.Comment](t, w)
	require.Len(t, comments, 2)
	assert.Equal(t, int64(2), meta.Total)
	assert.Equal(t, "Ali", comments[0].Name, "newest first")

	w = ts.do(http.MethodGet, "/api/v1/products/"+product.ID, nil)
	got, _ := decodeData[model.Product](t, w)
	assert.Len(t, got.Comments, 2)
}

func TestCommentOnUnknownProduct(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodPost, "/api/v1/products/missing/comments", CommentRequest{Name: "Sara", Rating: 5, Comment: "Hi"})
	assertStatusCode(t, w, http.StatusNotFound)
}

func multipartFile(t *testing.T, name string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestUpload(t *testing.T) {
	ts := newTestServer(t)
	png := append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 64)...)

	body, ct := multipartFile(t, "photo.png", png)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/uploads", body)
	req.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	ts.handler.ServeHTTP(w, req)
	assertStatusCode(t, w, http.StatusUnauthorized)

	body, ct = multipartFile(t, "photo.png", png)
	req = httptest.NewRequest(http.MethodPost, "/api/v1/uploads", body)
	req.Header.Set("Content-Type", ct)
	asAdmin(req)
	w = httptest.NewRecorder()
	ts.handler.ServeHTTP(w, req)
	assertStatusCode(t, w, http.StatusCreated)

	up, _ := decodeData[UploadResponse](t, w)
	assert.Equal(t, "image/png", up.ContentType)
	assert.Equal(t, int64(len(png)), up.Size)
	require.True(t, strings.HasPrefix(up.URL, UploadsURLPrefix))
	assert.True(t, strings.HasSuffix(up.URL, ".png"))

	w = ts.do(http.MethodGet, up.URL, nil)
	assertStatusCode(t, w, http.StatusOK)
	assert.Equal(t, png, w.Body.Bytes())

	// Directory listings are not served
	w = ts.do(http.MethodGet, UploadsURLPrefix, nil)
	assertStatusCode(t, w, http.StatusNotFound)
}

func TestUploadRejectsUnsupportedType(t *testing.T) {
	ts := newTestServer(t)

	body, ct := multipartFile(t, "notes.txt", []byte("plain text, not media"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/uploads", body)
	req.Header.Set("Content-Type", ct)
	asAdmin(req)
	w := httptest.NewRecorder()
	ts.handler.ServeHTTP(w, req)

	assertStatusCode(t, w, http.StatusUnprocessableEntity)
	resp := assertErrorResponse(t, w, "validation_error")
	assert.Contains(t, resp.Error.Details, "file")
}
