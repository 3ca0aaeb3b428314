package rets

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/yourorg/comps-api/internal/metrics"
)

// Object is a binary payload returned by GetObject.
type Object struct {
	Data        []byte
	ContentType string
}

// Bodies smaller than this are assumed to be provider error pages, not
// actual images.
const minObjectBytes = 100

// GetPhoto fetches one listing photo via its own login -> getobject -> logout
// cycle. It returns (nil, nil) when the photo is unavailable: non-success
// status, an XML/HTML error payload, or an undersized body. Providers report
// errors as XML even on HTTP 200, so content-type is the only reliable
// signal.
func (c *Client) GetPhoto(ctx context.Context, listingID string, index int) (*Object, error) {
	sess, err := c.Login(ctx)
	if err != nil {
		return nil, err
	}
	defer c.Logout(sess)

	if sess.GetObjectURL == "" {
		return nil, nil
	}

	params := url.Values{}
	params.Set("Type", "Photo")
	params.Set("Resource", "Property")
	params.Set("ID", listingID+":"+strconv.Itoa(index))

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, sess.GetObjectURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	c.setHeaders(req.Header, sess.Cookie)

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.RetsRequests.WithLabelValues("getobject", "error").Inc()
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.RetsRequests.WithLabelValues("getobject", "not_found").Inc()
		return nil, nil
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/jpeg"
	}
	if strings.Contains(contentType, "text/xml") || strings.Contains(contentType, "text/html") {
		metrics.RetsRequests.WithLabelValues("getobject", "not_found").Inc()
		return nil, nil
	}

	data, err := readAllLimit(resp.Body, 16<<20)
	if err != nil {
		return nil, err
	}
	if len(data) < minObjectBytes {
		metrics.RetsRequests.WithLabelValues("getobject", "not_found").Inc()
		return nil, nil
	}

	metrics.RetsRequests.WithLabelValues("getobject", "ok").Inc()
	return &Object{Data: data, ContentType: contentType}, nil
}
