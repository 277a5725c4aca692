package render

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bananalab/canvas-api/internal/pkg/storage"
)

// maxImageBytes caps a single fetched image.
const maxImageBytes = 50 << 20

// StorageImageSource resolves plan image references: embedded data URIs
// are decoded in place, URLs under the storage base are read from storage
// directly, anything else is fetched over HTTP.
type StorageImageSource struct {
	store   storage.Storage
	baseURL string
	client  *http.Client
}

// NewStorageImageSource creates the default image source
func NewStorageImageSource(store storage.Storage, baseURL string) *StorageImageSource {
	return &StorageImageSource{
		store:   store,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *StorageImageSource) Fetch(ctx context.Context, ref string) ([]byte, error) {
	switch {
	case strings.HasPrefix(ref, "data:"):
		return decodeInlineImage(ref)
	case s.baseURL != "" && strings.HasPrefix(ref, s.baseURL+"/"):
		key := strings.TrimPrefix(ref, s.baseURL+"/")
		rc, err := s.store.Get(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("failed to read stored image %s: %w", key, err)
		}
		defer rc.Close()
		return readCapped(rc)
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"):
		return s.fetchHTTP(ctx, ref)
	default:
		return nil, fmt.Errorf("unresolvable image reference %q", ref)
	}
}

func (s *StorageImageSource) fetchHTTP(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("image fetch returned %d", resp.StatusCode)
	}
	return readCapped(resp.Body)
}

func decodeInlineImage(uri string) ([]byte, error) {
	idx := strings.Index(uri, ",")
	if idx < 0 || !strings.HasSuffix(uri[:idx], ";base64") {
		return nil, fmt.Errorf("unsupported data URI")
	}
	return base64.StdEncoding.DecodeString(uri[idx+1:])
}

func readCapped(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxImageBytes+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxImageBytes {
		return nil, fmt.Errorf("image exceeds %d bytes", maxImageBytes)
	}
	return data, nil
}
