// internal/utils/datauri.go
package utils

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Data URIs are the only image currency in this system: uploads, masks and
// export results all travel as "data:<mimetype>;base64,<data>" strings.

const dataURIPrefix = "data:"

// maxFetchBytes caps URL ingestion; base64 inflates by a third, so this
// keeps stored documents within reason.
const maxFetchBytes = 20 << 20

// EncodeDataURI wraps raw bytes into a base64 data URI.
func EncodeDataURI(mimeType string, data []byte) string {
	return dataURIPrefix + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// DecodeDataURI splits a data URI into its MIME type and raw bytes.
func DecodeDataURI(uri string) (string, []byte, error) {
	if !strings.HasPrefix(uri, dataURIPrefix) {
		return "", nil, errors.New("not a data URI")
	}
	rest := uri[len(dataURIPrefix):]
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, errors.New("malformed data URI: missing payload")
	}
	mimeType, encoding, ok := strings.Cut(meta, ";")
	if !ok || encoding != "base64" {
		return "", nil, errors.New("malformed data URI: expected base64 encoding")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("malformed data URI: %w", err)
	}
	return mimeType, data, nil
}

// DataURIFromURL fetches an image over HTTP(S) and re-encodes it as a data
// URI. Non-image content types and fetch failures are rejected with a
// descriptive error.
func DataURIFromURL(ctx context.Context, rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return "", errors.New("invalid URL provided")
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("could not build request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("could not fetch the image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to fetch image, status: %s", resp.Status)
	}

	contentType := resp.Header.Get("Content-Type")
	if mt, _, ok := strings.Cut(contentType, ";"); ok {
		contentType = mt
	}
	contentType = strings.TrimSpace(contentType)
	if !strings.HasPrefix(contentType, "image/") {
		return "", errors.New("the provided URL does not point to a valid image file")
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchBytes+1))
	if err != nil {
		return "", fmt.Errorf("could not read image data: %w", err)
	}
	if len(data) > maxFetchBytes {
		return "", errors.New("image is too large")
	}

	return EncodeDataURI(contentType, data), nil
}
