package httpserver_test

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"movieapi/httpserver"
	"movieapi/pkg/config"
)

type apiResponse struct {
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

func testConfig() *config.Config {
	return &config.Config{AllowOrigins: "*"}
}

func mustCreateServer(t testing.TB, options ...httpserver.Options) *httpserver.Server {
	t.Helper()
	server, err := httpserver.New(append([]httpserver.Options{httpserver.WithConfig(testConfig())}, options...)...)
	require.NoError(t, err)
	return server
}

func decodeAPIResponse(t testing.TB, recorder *httptest.ResponseRecorder) apiResponse {
	t.Helper()
	var resp apiResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp), "response should be an API envelope")
	return resp
}

func decodeJSON(t testing.TB, recorder *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), v))
}
