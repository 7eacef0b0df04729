package services

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := range w {
		for y := range h {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	buf := &bytes.Buffer{}
	require.NoError(t, png.Encode(buf, img))
	return buf.Bytes()
}

func newImageServer(t *testing.T) *httptest.Server {
	t.Helper()

	large := encodePNG(t, 800, 600)
	small := encodePNG(t, 200, 100)

	mux := http.NewServeMux()
	mux.HandleFunc("/large.png", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(large)
	})
	mux.HandleFunc("/small.png", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(small)
	})
	mux.HandleFunc("/text", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write([]byte("this is definitely not an image"))
	})
	mux.HandleFunc("/slow", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func decodeJPEGFile(t *testing.T, path string) image.Image {
	t.Helper()

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	img, err := jpeg.Decode(f)
	require.NoError(t, err)
	return img
}

func TestDefaultAnimalImages(t *testing.T) {
	images := DefaultAnimalImages()
	require.Len(t, images, 3)

	names := make([]string, 0, len(images))
	for _, img := range images {
		names = append(names, img.Name)
		assert.NotEmpty(t, img.URL)
		assert.Equal(t, img.Name+".jpg", img.Filename())
	}
	assert.Equal(t, []string{"cat", "dog", "elephant"}, names)
}

func TestProvision(t *testing.T) {
	server := newImageServer(t)
	dir := filepath.Join(t.TempDir(), "static", "images")

	p := NewImageProvisioner(dir, 5*time.Second, 400, 300)
	results, err := p.Provision(context.Background(), []AnimalImage{
		{Name: "cat", URL: server.URL + "/large.png"},
		{Name: "dog", URL: server.URL + "/small.png"},
	})
	require.NoError(t, err)
	require.Len(t, results, 2)

	for _, r := range results {
		require.True(t, r.OK(), "%s: %v", r.Image.Name, r.Err)
	}

	cat := decodeJPEGFile(t, filepath.Join(dir, "cat.jpg"))
	assert.Equal(t, 400, cat.Bounds().Dx())
	assert.Equal(t, 300, cat.Bounds().Dy())

	dog := decodeJPEGFile(t, filepath.Join(dir, "dog.jpg"))
	assert.Equal(t, 200, dog.Bounds().Dx())
	assert.Equal(t, 100, dog.Bounds().Dy())
}

func TestProvisionFailuresDoNotStopOthers(t *testing.T) {
	server := newImageServer(t)
	dir := t.TempDir()

	p := NewImageProvisioner(dir, 200*time.Millisecond, 400, 300)
	results, err := p.Provision(context.Background(), []AnimalImage{
		{Name: "cat", URL: server.URL + "/missing.png"},
		{Name: "dog", URL: server.URL + "/text"},
		{Name: "elephant", URL: server.URL + "/slow"},
		{Name: "Bad Name", URL: server.URL + "/small.png"},
		{Name: "owl", URL: "not a url"},
		{Name: "fox", URL: server.URL + "/small.png"},
	})
	require.NoError(t, err)
	require.Len(t, results, 6)

	assert.ErrorContains(t, results[0].Err, "unexpected status 404")
	assert.ErrorIs(t, results[1].Err, ErrNotAnImage)
	assert.Error(t, results[2].Err)
	assert.ErrorContains(t, results[3].Err, "invalid image entry")
	assert.ErrorContains(t, results[4].Err, "invalid image entry")
	assert.True(t, results[5].OK())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "fox.jpg", entries[0].Name())
}

func TestProvisionDirectoryError(t *testing.T) {
	parent := t.TempDir()
	blocker := filepath.Join(parent, "static")
	require.NoError(t, os.WriteFile(blocker, []byte("file"), 0o644))

	p := NewImageProvisioner(filepath.Join(blocker, "images"), time.Second, 400, 300)
	_, err := p.Provision(context.Background(), DefaultAnimalImages())
	require.Error(t, err)
}

func TestFitImage(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		expectW       int
		expectH       int
	}{
		{name: "already fits", width: 400, height: 300, expectW: 400, expectH: 300},
		{name: "smaller", width: 10, height: 10, expectW: 10, expectH: 10},
		{name: "wide", width: 1600, height: 400, expectW: 400, expectH: 100},
		{name: "tall", width: 300, height: 900, expectW: 100, expectH: 300},
		{name: "same ratio", width: 1200, height: 900, expectW: 400, expectH: 300},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := image.NewRGBA(image.Rect(0, 0, tt.width, tt.height))
			dst := fitImage(src, 400, 300)
			assert.Equal(t, tt.expectW, dst.Bounds().Dx())
			assert.Equal(t, tt.expectH, dst.Bounds().Dy())
		})
	}
}
