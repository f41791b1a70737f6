package utils

import (
	"fmt"
	"io"
	"net/http"
	"time"
)

const downloadTimeout = 30 * time.Second

// DownloadFileFromURL fetches a remote file and returns its bytes together
// with the Content-Type the server declared (may be empty).
func DownloadFileFromURL(url string) ([]byte, string, error) {
	client := &http.Client{Timeout: downloadTimeout}

	resp, err := client.Get(url)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", fmt.Errorf("download returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", err
	}

	return data, resp.Header.Get("Content-Type"), nil
}
