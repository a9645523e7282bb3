package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// SupabaseUploader stores photos in a Supabase Storage bucket over its REST API.
type SupabaseUploader struct {
	baseURL string
	apiKey  string
	bucket  string
	client  *http.Client
}

func NewSupabaseUploader(baseURL, apiKey, bucket string) *SupabaseUploader {
	return &SupabaseUploader{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		bucket:  bucket,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (u *SupabaseUploader) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	if u.baseURL == "" || u.apiKey == "" {
		return "", fmt.Errorf("storage: supabase credentials missing")
	}

	uploadURL := fmt.Sprintf("%s/storage/v1/object/%s/%s", u.baseURL, u.bucket, key)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, uploadURL, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("storage: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+u.apiKey)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Cache-Control", "3600")
	req.Header.Set("x-upsert", "false")

	resp, err := u.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("storage: upload %s: %w", key, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("storage: upload %s: status %d: %s", key, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", u.baseURL, u.bucket, key), nil
}
