package integration_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"testing"

	"github.com/stretchr/testify/require"
)

// newCookieJar gives each simulated guest its own session cookie, and with it
// its own lock ownership.
func newCookieJar() (*cookiejar.Jar, error) {
	return cookiejar.New(nil)
}

func doRequest(t testing.TB, client *http.Client, method, url string, body any) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := client.Do(req)
	require.NoError(t, err)

	return res
}

func decodeResponse(t testing.TB, res *http.Response, dst any) {
	t.Helper()

	defer res.Body.Close()

	require.NoError(t, json.NewDecoder(res.Body).Decode(dst))
}
