package export

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/dmitrijs2005/huddlekeeper/internal/netx"
)

// HTTPUploader PUTs export files under a base URL, for WebDAV shares and
// presigned upload prefixes.
type HTTPUploader struct {
	base   string
	client *http.Client
}

func NewHTTPUploader(base string, client *http.Client) *HTTPUploader {
	return &HTTPUploader{base: strings.TrimRight(base, "/"), client: client}
}

func (u *HTTPUploader) Upload(ctx context.Context, name string, body []byte) error {
	return netx.Put(ctx, u.client, u.base+"/"+url.PathEscape(name), body, "text/csv")
}
