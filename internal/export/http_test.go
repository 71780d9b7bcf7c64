package export

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPUploader(t *testing.T) {
	var path string
	var body []byte
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.EscapedPath()
		body, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer ts.Close()

	u := NewHTTPUploader(ts.URL+"/dav/huddle/", ts.Client())
	require.NoError(t, u.Upload(context.Background(), "24_Hour_ToDo.csv", []byte("x")))
	assert.Equal(t, "/dav/huddle/24_Hour_ToDo.csv", path)
	assert.Equal(t, "x", string(body))
}
