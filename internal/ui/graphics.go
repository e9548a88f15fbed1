package ui

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/qeesung/image2ascii/convert"
)

// maxImageBytes caps how much of a destination image is downloaded.
const maxImageBytes = 8 << 20

type previewLoadedMsg struct {
	url string
	art string
	err error
}

// fetchPreviewCmd downloads the destination image and renders it as colored
// ASCII art sized to the given cell box.
func fetchPreviewCmd(client *http.Client, url string, width, height int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		img, err := fetchImage(ctx, client, url)
		if err != nil {
			return previewLoadedMsg{url: url, err: err}
		}
		return previewLoadedMsg{url: url, art: convertToASCII(img, width, height)}
	}
}

func fetchImage(ctx context.Context, client *http.Client, url string) (image.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid image url: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("image download failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("image download failed: status %d", resp.StatusCode)
	}
	img, _, err := image.Decode(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, fmt.Errorf("unsupported image: %w", err)
	}
	return img, nil
}

// convertToASCII converts an image to colored ASCII art.
func convertToASCII(img image.Image, targetWidth, targetHeight int) string {
	converter := convert.NewImageConverter()

	opts := convert.DefaultOptions
	opts.FixedWidth = targetWidth
	opts.FixedHeight = targetHeight
	opts.FitScreen = false
	opts.Colored = true
	opts.Ratio = 0.5 // Terminal cells are roughly twice as tall as wide

	return converter.Image2ASCIIString(img, &opts)
}
