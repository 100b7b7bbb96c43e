package woocommerce

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/angelmondragon/wholesale-storefront/pkg/config"
	pkgerrors "github.com/angelmondragon/wholesale-storefront/pkg/errors"
	"github.com/angelmondragon/wholesale-storefront/pkg/logger"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func testConfig() config.WooCommerceConfig {
	return config.WooCommerceConfig{
		BaseURL:        "https://shop.test/",
		ConsumerKey:    "ck_test",
		ConsumerSecret: "cs_test",
		Timeout:        time.Second,
	}
}

func jsonResponse(status int, body string, headers map[string]string) *http.Response {
	h := http.Header{}
	for k, v := range headers {
		h.Set(k, v)
	}
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     h,
	}
}

func newTestClient(rt roundTripFunc) *Client {
	return NewClient(testConfig(), WithHTTPClient(&http.Client{Transport: rt}))
}

func TestListProductsSendsDefaultsAndReadsTotals(t *testing.T) {
	var captured *http.Request
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		captured = req
		return jsonResponse(http.StatusOK, `[{"id":7,"name":"LED Panel","slug":"led-panel","price":"8.99","meta_data":[{"key":"moq","value":"50"}]}]`, map[string]string{
			"X-WP-Total":      "41",
			"X-WP-TotalPages": "3",
		}), nil
	})

	page, err := client.ListProducts(context.Background(), ListProductsParams{})
	if err != nil {
		t.Fatalf("list products: %v", err)
	}

	if captured.URL.Path != "/wp-json/wc/v3/products" {
		t.Fatalf("unexpected path %q", captured.URL.Path)
	}
	q := captured.URL.Query()
	if q.Get("page") != "1" || q.Get("per_page") != "20" || q.Get("status") != "publish" {
		t.Fatalf("unexpected defaults %v", q)
	}
	if q.Get("_fields") != productListFields {
		t.Fatalf("unexpected _fields %q", q.Get("_fields"))
	}
	if q.Has("category") || q.Has("search") {
		t.Fatalf("empty filters must not be sent: %v", q)
	}
	user, pass, ok := captured.BasicAuth()
	if !ok || user != "ck_test" || pass != "cs_test" {
		t.Fatalf("basic auth missing")
	}
	if page.Total != 41 || page.TotalPages != 3 {
		t.Fatalf("unexpected totals %d/%d", page.Total, page.TotalPages)
	}
	if len(page.Products) != 1 || page.Products[0].Price.String() != "8.99" {
		t.Fatalf("unexpected products %+v", page.Products)
	}
	if page.Products[0].MetaData[0].Value != "50" {
		t.Fatalf("unexpected meta %+v", page.Products[0].MetaData)
	}
}

func TestListProductsMissingTotalsReadAsZero(t *testing.T) {
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		if req.URL.Query().Get("category") != "15" || req.URL.Query().Get("search") != "panel" {
			t.Fatalf("filters not forwarded: %v", req.URL.Query())
		}
		return jsonResponse(http.StatusOK, `[]`, map[string]string{"X-WP-TotalPages": "abc"}), nil
	})

	page, err := client.ListProducts(context.Background(), ListProductsParams{Page: 2, PerPage: 12, Category: "15", Search: " panel "})
	if err != nil {
		t.Fatalf("list products: %v", err)
	}
	if page.Total != 0 || page.TotalPages != 0 {
		t.Fatalf("expected zero totals, got %d/%d", page.Total, page.TotalPages)
	}
}

func TestClientRejectsMissingConfiguration(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.WooCommerceConfig
	}{
		{"missing url", config.WooCommerceConfig{ConsumerKey: "k", ConsumerSecret: "s"}},
		{"bad scheme", config.WooCommerceConfig{BaseURL: "shop.test", ConsumerKey: "k", ConsumerSecret: "s"}},
		{"missing secret", config.WooCommerceConfig{BaseURL: "https://shop.test", ConsumerKey: "k"}},
	}
	for _, tt := range tests {
		called := false
		client := NewClient(tt.cfg, WithHTTPClient(&http.Client{Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
			called = true
			return nil, errors.New("unexpected call")
		})}))
		_, err := client.ListProducts(context.Background(), ListProductsParams{})
		if !pkgerrors.IsCode(err, pkgerrors.CodeConfiguration) {
			t.Fatalf("%s: expected configuration error, got %v", tt.name, err)
		}
		if called {
			t.Fatalf("%s: request must not be sent", tt.name)
		}
	}
}

func TestUpstreamFailureHidesBody(t *testing.T) {
	client := newTestClient(func(*http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusInternalServerError, `{"code":"db_down","message":"secret stack"}`, nil), nil
	})

	_, err := client.ListCategories(context.Background(), ListCategoriesParams{})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUpstream {
		t.Fatalf("expected upstream error, got %v", err)
	}
	if strings.Contains(err.Error(), "secret stack") {
		t.Fatalf("upstream body leaked into error: %v", err)
	}
}

func TestUpstreamFailureLogsOperation(t *testing.T) {
	buf := &bytes.Buffer{}
	logg := logger.New(logger.Options{ServiceName: "test", Output: buf})
	client := NewClient(testConfig(), WithLogger(logg), WithHTTPClient(&http.Client{Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusBadGateway, `{"code":"gateway"}`, nil), nil
	})}))

	if _, err := client.ListCategories(context.Background(), ListCategoriesParams{}); err == nil {
		t.Fatal("expected error")
	}
	out := buf.String()
	if !strings.Contains(out, `"operation":"list_categories"`) {
		t.Fatalf("expected operation field; entry=%s", out)
	}
	if !strings.Contains(out, `"status":502`) {
		t.Fatalf("expected status field; entry=%s", out)
	}
}

func TestGetProductNotFound(t *testing.T) {
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		if req.URL.Path != "/wp-json/wc/v3/products/99" {
			t.Fatalf("unexpected path %q", req.URL.Path)
		}
		return jsonResponse(http.StatusNotFound, `{"code":"woocommerce_rest_product_invalid_id"}`, nil), nil
	})

	if _, err := client.GetProduct(context.Background(), 99); !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestTransportErrorIsRetryableDependency(t *testing.T) {
	client := newTestClient(func(*http.Request) (*http.Response, error) {
		return nil, context.DeadlineExceeded
	})

	_, err := client.GetProduct(context.Background(), 1)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
	if !pkgerrors.MetadataFor(typed.Code()).Retryable {
		t.Fatalf("dependency errors must be retryable")
	}
}

func TestGetProductBySlugReturnsFirstOrNil(t *testing.T) {
	body := `[{"id":3,"slug":"widget"},{"id":4,"slug":"widget"}]`
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		if req.URL.Query().Get("slug") != "widget" {
			return jsonResponse(http.StatusOK, `[]`, nil), nil
		}
		return jsonResponse(http.StatusOK, body, nil), nil
	})

	product, err := client.GetProductBySlug(context.Background(), "widget")
	if err != nil || product == nil || product.ID != 3 {
		t.Fatalf("expected first match, got %+v err=%v", product, err)
	}

	product, err = client.GetProductBySlug(context.Background(), "missing")
	if err != nil || product != nil {
		t.Fatalf("expected nil product, got %+v err=%v", product, err)
	}
}

func TestListCategoriesQuery(t *testing.T) {
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		q := req.URL.Query()
		if req.URL.Path != "/wp-json/wc/v3/products/categories" {
			t.Fatalf("unexpected path %q", req.URL.Path)
		}
		if q.Get("per_page") != "50" || q.Get("hide_empty") != "1" || q.Get("parent") != "0" {
			t.Fatalf("unexpected query %v", q)
		}
		return jsonResponse(http.StatusOK, `[{"id":1,"name":"Lighting","slug":"lighting","count":12,"image":{"id":5,"src":"https://img/1.png"}}]`, map[string]string{"X-WP-Total": "1"}), nil
	})

	parent := 0
	page, err := client.ListCategories(context.Background(), ListCategoriesParams{Parent: &parent, HideEmpty: true})
	if err != nil {
		t.Fatalf("list categories: %v", err)
	}
	if len(page.Categories) != 1 || page.Categories[0].Image == nil || page.Total != 1 {
		t.Fatalf("unexpected page %+v", page)
	}
}

func TestCountProductsReadsTotalHeader(t *testing.T) {
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		q := req.URL.Query()
		if q.Get("category") != "12" || q.Get("per_page") != "1" {
			t.Fatalf("unexpected query %v", q)
		}
		return jsonResponse(http.StatusOK, `[{"id":1}]`, map[string]string{"X-WP-Total": "27"}), nil
	})

	count, err := client.CountProducts(context.Background(), 12)
	if err != nil || count != 27 {
		t.Fatalf("expected 27, got %d err=%v", count, err)
	}
}

func TestFindOrCreateCustomer(t *testing.T) {
	t.Run("existing", func(t *testing.T) {
		client := newTestClient(func(req *http.Request) (*http.Response, error) {
			if req.Method != http.MethodGet {
				t.Fatalf("unexpected %s", req.Method)
			}
			if req.URL.Query().Get("email") != "buyer@example.com" {
				t.Fatalf("unexpected query %v", req.URL.Query())
			}
			return jsonResponse(http.StatusOK, `[{"id":11,"email":"buyer@example.com"}]`, nil), nil
		})
		customer, err := client.FindOrCreateCustomer(context.Background(), CustomerInput{Email: " buyer@example.com "})
		if err != nil || customer.ID != 11 {
			t.Fatalf("expected existing customer, got %+v err=%v", customer, err)
		}
	})

	t.Run("created", func(t *testing.T) {
		var posted map[string]any
		client := newTestClient(func(req *http.Request) (*http.Response, error) {
			if req.Method == http.MethodGet {
				return jsonResponse(http.StatusOK, `[]`, nil), nil
			}
			if err := json.NewDecoder(req.Body).Decode(&posted); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			return jsonResponse(http.StatusCreated, `{"id":12,"email":"new@example.com"}`, nil), nil
		})
		customer, err := client.FindOrCreateCustomer(context.Background(), CustomerInput{Email: "new@example.com", FirstName: "Ada"})
		if err != nil || customer.ID != 12 {
			t.Fatalf("expected created customer, got %+v err=%v", customer, err)
		}
		if posted["first_name"] != "Ada" || posted["email"] != "new@example.com" {
			t.Fatalf("unexpected body %v", posted)
		}
	})

	t.Run("missing email", func(t *testing.T) {
		client := newTestClient(func(*http.Request) (*http.Response, error) {
			t.Fatal("no request expected")
			return nil, nil
		})
		if _, err := client.FindOrCreateCustomer(context.Background(), CustomerInput{}); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
			t.Fatalf("expected validation error, got %v", err)
		}
	})
}

func TestCreateOrderDefaultsPaymentMethod(t *testing.T) {
	var posted map[string]any
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		if req.URL.Path != "/wp-json/wc/v3/orders" || req.Method != http.MethodPost {
			t.Fatalf("unexpected request %s %s", req.Method, req.URL.Path)
		}
		if err := json.NewDecoder(req.Body).Decode(&posted); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		return jsonResponse(http.StatusCreated, `{"id":501,"number":"501","status":"pending","total":571.2}`, nil), nil
	})

	order, err := client.CreateOrder(context.Background(), OrderInput{
		CustomerID: 11,
		LineItems:  []LineItem{{ProductID: 7, Quantity: 60, Subtotal: "390.00", Total: "390.00"}},
		MetaData:   []MetaData{{Key: "incoterm", Value: "FOB"}},
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if posted["payment_method"] != "bacs" || posted["payment_method_title"] != "Bank Transfer" || posted["set_paid"] != false {
		t.Fatalf("unexpected payment fields %v", posted)
	}
	if order.ID != 501 || order.Total.String() != "571.2" {
		t.Fatalf("unexpected order %+v", order)
	}
}

func TestFlexStringAcceptsNumbersAndNull(t *testing.T) {
	var payload struct {
		A FlexString `json:"a"`
		B FlexString `json:"b"`
		C FlexString `json:"c"`
	}
	if err := json.Unmarshal([]byte(`{"a":"1.50","b":2.25,"c":null}`), &payload); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if payload.A != "1.50" || payload.B != "2.25" || payload.C != "" {
		t.Fatalf("unexpected values %+v", payload)
	}
}
