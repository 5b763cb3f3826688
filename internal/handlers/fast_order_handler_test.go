package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/Lixing-Zhang/fast-order/internal/fastorder"
	"github.com/Lixing-Zhang/fast-order/internal/middleware"
	"github.com/Lixing-Zhang/fast-order/internal/models"
	"github.com/Lixing-Zhang/fast-order/internal/repository"
	"github.com/Lixing-Zhang/fast-order/internal/service"
	"github.com/Lixing-Zhang/fast-order/internal/validation"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type nopOrderLog struct{}

func (nopOrderLog) Append(ctx context.Context, entry *models.OrderLogEntry) error { return nil }

func newFastOrderRouter(t *testing.T) http.Handler {
	t.Helper()

	svc := service.NewFastOrderService(
		fastorder.DefaultSchema(),
		repository.NewInMemoryProductRepository(),
		repository.NewInMemoryCartStore(),
		nopOrderLog{},
		nil,
		zap.NewNop(),
	)
	fastOrder := NewFastOrderHandler(svc, 3, zap.NewNop())
	cart := NewCartHandler(svc, zap.NewNop())

	r := chi.NewRouter()
	r.Use(middleware.Session(false))
	r.Get("/fast-order", fastOrder.GetForm)
	r.Post("/fast-order", fastOrder.Submit)
	r.Get("/api/cart", cart.GetCart)
	return r
}

func postForm(router http.Handler, session *http.Cookie, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/fast-order", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if session != nil {
		req.AddCookie(session)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == middleware.SessionCookieName {
			return c
		}
	}
	t.Fatal("no session cookie set")
	return nil
}

func TestFastOrderHandler_GetForm(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/fast-order", nil)
	w := httptest.NewRecorder()

	newFastOrderRouter(t).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var form FormSchemaResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&form))
	assert.Equal(t, "fast-order-", form.Prefix)
	require.Len(t, form.Rows, 3)
	assert.Equal(t, FieldSet{Article: "fast-order-article-2", Quantity: "fast-order-qtty-2"}, form.Rows[2])
}

func TestFastOrderHandler_Submit_Accepted(t *testing.T) {
	router := newFastOrderRouter(t)

	w := postForm(router, nil, url.Values{
		"fast-order-article-0": {"SW10001"},
		"fast-order-qtty-0":    {"2"},
		"fast-order-article-1": {"SW10002"},
		"fast-order-qtty-1":    {"1"},
		"fast-order-article-2": {" SW10001 "},
		"fast-order-qtty-2":    {"3"},
		"csrf-token":           {"ignored"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var accepted SubmissionAcceptedResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&accepted))
	assert.Equal(t, map[string]int{"SW10001": 5, "SW10002": 1}, accepted.OrderLines)
	require.NotNil(t, accepted.Cart)
	assert.Len(t, accepted.Cart.Items, 2)

	// the cart endpoint sees the same session cart
	req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	req.AddCookie(sessionCookie(t, w))
	cw := httptest.NewRecorder()
	router.ServeHTTP(cw, req)

	require.Equal(t, http.StatusOK, cw.Code)
	var cart models.Cart
	require.NoError(t, json.NewDecoder(cw.Body).Decode(&cart))
	assert.Len(t, cart.Items, 2)
}

func TestFastOrderHandler_Submit_JSON(t *testing.T) {
	body := `{"fast-order-article-0":"SW10006","fast-order-qtty-0":"10"}`
	req := httptest.NewRequest(http.MethodPost, "/fast-order", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	w := httptest.NewRecorder()

	newFastOrderRouter(t).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestFastOrderHandler_Submit_Rejected(t *testing.T) {
	tests := []struct {
		name    string
		form    url.Values
		inspect func(t *testing.T, resp SubmissionRejectedResponse)
	}{
		{
			name: "field violations",
			form: url.Values{
				"fast-order-article-0": {"SW99999"},
				"fast-order-qtty-0":    {"1"},
				"fast-order-article-1": {"SW10001"},
				"fast-order-qtty-1":    {"-2"},
			},
			inspect: func(t *testing.T, resp SubmissionRejectedResponse) {
				require.Len(t, resp.FormViolations, 2)
				assert.Equal(t, validation.CodeUnknownProductNumber, resp.FormViolations[0].Code)
				assert.Equal(t, "fast-order-article-0", resp.FormViolations[0].Field)
				assert.Equal(t, validation.CodeInvalidQuantity, resp.FormViolations[1].Code)
				assert.Equal(t, "SW99999", resp.FormData["fast-order-article-0"])
				assert.False(t, resp.EmptySubmission)
			},
		},
		{
			name: "empty submission",
			form: url.Values{
				"fast-order-article-0": {""},
				"fast-order-qtty-0":    {""},
			},
			inspect: func(t *testing.T, resp SubmissionRejectedResponse) {
				assert.True(t, resp.EmptySubmission)
				assert.Empty(t, resp.FormViolations)
				assert.Empty(t, resp.QuantityViolations)
			},
		},
		{
			name: "duplicates exceed stock",
			form: url.Values{
				"fast-order-article-0": {"SW10003"},
				"fast-order-qtty-0":    {"3"},
				"fast-order-article-1": {"SW10003"},
				"fast-order-qtty-1":    {"3"},
				"other-field":          {"dropped"},
			},
			inspect: func(t *testing.T, resp SubmissionRejectedResponse) {
				require.Len(t, resp.QuantityViolations, 1)
				v := resp.QuantityViolations[0]
				assert.Equal(t, models.KindExceedingStock, v.Kind)
				assert.Equal(t, 6, v.Requested)
				assert.Equal(t, 5, v.Available)
				assert.Contains(t, v.Message, "exceeds the available stock of 5")
				assert.NotContains(t, resp.FormData, "other-field")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postForm(newFastOrderRouter(t), nil, tt.form)
			require.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())

			var resp SubmissionRejectedResponse
			require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
			tt.inspect(t, resp)
		})
	}
}

func TestFastOrderHandler_Submit_CombinedWithCart(t *testing.T) {
	router := newFastOrderRouter(t)

	first := postForm(router, nil, url.Values{
		"fast-order-article-0": {"SW10002"},
		"fast-order-qtty-0":    {"10"},
	})
	require.Equal(t, http.StatusOK, first.Code)
	session := sessionCookie(t, first)

	second := postForm(router, session, url.Values{
		"fast-order-article-0": {"SW10002"},
		"fast-order-qtty-0":    {"5"},
	})
	require.Equal(t, http.StatusUnprocessableEntity, second.Code)

	var resp SubmissionRejectedResponse
	require.NoError(t, json.NewDecoder(second.Body).Decode(&resp))
	require.Len(t, resp.QuantityViolations, 1)
	assert.Equal(t, models.KindCombinedExceedingStock, resp.QuantityViolations[0].Kind)
	assert.Equal(t, 10, resp.QuantityViolations[0].CartQuantity)
	require.NotNil(t, resp.Cart)
	require.Len(t, resp.Cart.Items, 1)
	assert.Equal(t, 10, resp.Cart.Items[0].Quantity)
}

func TestFastOrderHandler_Submit_BadBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/fast-order", strings.NewReader(`{"fast-order-qtty-0": 3`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	newFastOrderRouter(t).ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFastOrderHandler_Submit_NoSession(t *testing.T) {
	svc := service.NewFastOrderService(fastorder.DefaultSchema(), repository.NewInMemoryProductRepository(),
		repository.NewInMemoryCartStore(), nopOrderLog{}, nil, zap.NewNop())
	handler := NewFastOrderHandler(svc, 1, zap.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/fast-order", strings.NewReader(""))
	w := httptest.NewRecorder()
	handler.Submit(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
