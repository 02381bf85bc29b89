package webapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mobigenie/mobigenie/internal/catalog"
	"github.com/mobigenie/mobigenie/internal/chat"
	"github.com/mobigenie/mobigenie/internal/recommend"
	"github.com/mobigenie/mobigenie/internal/webserver"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const mainCSV = `model,brand,category,product_title,price,rating,review_count,image_url,inch
MacBook Pro 14,apple,laptops,Apple MacBook Pro 14,1999,4.8,1200,http://img/mbp14,14.0
Galaxy Book 3,samsung,laptops,Samsung Galaxy Book 3,1899,4.5,300,http://img/gb3,15.6
iPhone 13,apple,smartphones,Apple iPhone 13,799,4.7,5400,http://img/ip13,
iPhone 13 Pro,apple,smartphones,Apple iPhone 13 Pro,899,4.8,3100,http://img/ip13p,
Galaxy S21,samsung,smartphones,Samsung Galaxy S21,749,4.4,2800,http://img/s21,
`

const laptopCSV = `category,model,brand,product_title,price,rating,review_count,image_url,inch
laptop bags,,generic,Urban Laptop Bag 14,49.9,4.2,800,http://img/bag14,14.0
mouse,,apple,Apple Magic Mouse 2,99,4.6,2100,http://img/magicmouse,
mouse,,logitech,Logitech MX Master 3,89,4.8,5200,http://img/mx3,
`

const mobileCSV = `category,model,brand,product_title,price,rating,review_count,image_url,inch
screen protector,iPhone 13,generic,Tempered Glass iPhone 13,9.9,4.1,900,http://img/sp13,
phone cases,iPhone 13,spigen,Spigen Case iPhone 13,19.9,4.5,1500,http://img/case13,
charger,,apple,Apple 20W Charger,19,4.6,4100,http://img/apple20,
bluetooth headphone,,sony,Sony WH-1000XM4,279,4.8,8800,http://img/xm4,
`

type fakeGateway struct {
	text string
	err  error
}

func (f fakeGateway) Ask(ctx context.Context, query string) (string, error) {
	return f.text, f.err
}

func newTestServer(t *testing.T, gateway chat.Gateway) *echo.Echo {
	t.Helper()
	dir := t.TempDir()
	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		return path
	}
	store, err := catalog.Load(catalog.Sources{
		MainPath:   write("main.csv", mainCSV),
		LaptopPath: write("laptop.csv", laptopCSV),
		MobilePath: write("mobile.csv", mobileCSV),
	}, nil)
	require.NoError(t, err)

	srv := webserver.New(webserver.Config{})
	h := NewHandler(store, recommend.NewMatcher(nil), recommend.NewEngineWithRand(func(int) int { return 0 }), gateway)
	Register(srv.Echo(), h)
	return srv.Echo()
}

func post(t *testing.T, e *echo.Echo, path, body string) (int, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return rec.Code, out
}

func TestGreetUser(t *testing.T) {
	e := newTestServer(t, fakeGateway{})
	code, out := post(t, e, "/greet_user", `{"name":"Asha"}`)

	require.Equal(t, http.StatusOK, code)
	greeting, ok := out["response"].(string)
	require.True(t, ok)
	assert.Contains(t, greeting, "Hi Asha!")
	assert.Contains(t, greeting, "MacBook Pro 14, Galaxy Book 3")
	assert.Contains(t, greeting, "iPhone 13, iPhone 13 Pro, Galaxy S21")
}

func TestGreetUserMissingName(t *testing.T) {
	e := newTestServer(t, fakeGateway{})
	code, out := post(t, e, "/greet_user", `{}`)

	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, out, "error")
}

func TestGetModelDetails(t *testing.T) {
	e := newTestServer(t, fakeGateway{})
	code, out := post(t, e, "/get_model_details", `{"model":"MacBook Pro 14"}`)
	require.Equal(t, http.StatusOK, code)
	require.NotContains(t, out, "error")

	main, ok := out["response"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Apple MacBook Pro 14", main["title"])
	assert.Equal(t, 1999.0, main["price"])
	assert.Equal(t, strings.Repeat("⭐", 5), main["stars"])

	similar, ok := out["similar_products"].([]interface{})
	require.True(t, ok)
	require.Len(t, similar, 2)
	first := similar[0].(map[string]interface{})
	// Self-inclusion quirk: the matched product appears in its own
	// same-brand list.
	assert.Equal(t, "Same Brand Recommendation", first["brand_type"])
	assert.Equal(t, "Apple MacBook Pro 14", first["title"])
	second := similar[1].(map[string]interface{})
	assert.Equal(t, "Other Brand Recommendation", second["brand_type"])
	assert.Equal(t, "Samsung Galaxy Book 3", second["title"])

	accessories, ok := out["accessories"].([]interface{})
	require.True(t, ok)
	require.Len(t, accessories, 2)
	bag := accessories[0].(map[string]interface{})
	assert.Equal(t, `Laptop Bag (14.0" size)`, bag["accessory_type"])
	assert.Equal(t, "Urban Laptop Bag 14", bag["title"])
	mouse := accessories[1].(map[string]interface{})
	assert.Equal(t, "Magic Mouse", mouse["accessory_type"])
}

func TestGetModelDetailsSmartphone(t *testing.T) {
	e := newTestServer(t, fakeGateway{})
	code, out := post(t, e, "/get_model_details", `{"model":"iphone 13"}`)
	require.Equal(t, http.StatusOK, code)
	require.NotContains(t, out, "error")

	accessories, ok := out["accessories"].([]interface{})
	require.True(t, ok)
	var types []string
	for _, a := range accessories {
		types = append(types, a.(map[string]interface{})["accessory_type"].(string))
	}
	assert.Equal(t, []string{"Screen Protector", "Phone Case", "Charger", "Bluetooth Headphone"}, types)
}

func TestGetModelDetailsNoMatch(t *testing.T) {
	e := newTestServer(t, fakeGateway{})
	code, out := post(t, e, "/get_model_details", `{"model":"totally unknown xyz123"}`)

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "No similar product found for model: totally unknown xyz123", out["error"])
}

func TestAskMistral(t *testing.T) {
	e := newTestServer(t, fakeGateway{text: "A laptop is a portable computer."})
	code, out := post(t, e, "/ask_mistral", `{"query":"what is a laptop?"}`)

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "A laptop is a portable computer.", out["response"])
}

func TestAskMistralUpstreamFailureIsResponseText(t *testing.T) {
	e := newTestServer(t, fakeGateway{err: &chat.UpstreamChatError{Status: 503, Body: "model loading"}})
	code, out := post(t, e, "/ask_mistral", `{"query":"hello"}`)

	assert.Equal(t, http.StatusOK, code)
	assert.NotContains(t, out, "error")
	assert.Equal(t, "Error 503: model loading", out["response"])
}
