package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	imagedraw "image/draw"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/amirphl/era4-frontend/utils"
	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// maxImageBytes caps a single downloaded image
const maxImageBytes = 20 * 1024 * 1024

var ErrNotAnImage = errors.New("downloaded content is not an image")

// AnimalImage is one picture the page can show, stored as <Name>.jpg
type AnimalImage struct {
	Name string `validate:"required,alphanum,lowercase"`
	URL  string `validate:"required,url"`
}

func (a AnimalImage) Filename() string {
	return a.Name + ".jpg"
}

var animalImageURLs = map[string]string{
	"cat":      "https://images.unsplash.com/photo-1514888286974-6c03e2ca1dba?w=400&h=300&fit=crop",
	"dog":      "https://images.unsplash.com/photo-1547407139-3c921a66005c?w=400&h=300&fit=crop",
	"elephant": "https://images.unsplash.com/photo-1558618666-fcd25c85cd64?w=400&h=300&fit=crop",
}

// DefaultAnimalImages returns the images for every animal on the page, in display order.
func DefaultAnimalImages() []AnimalImage {
	images := make([]AnimalImage, 0, len(utils.Animals))
	for _, name := range utils.Animals {
		images = append(images, AnimalImage{Name: name, URL: animalImageURLs[name]})
	}
	return images
}

// ProvisionResult reports the outcome for a single image
type ProvisionResult struct {
	Image AnimalImage
	Path  string
	Err   error
}

func (r ProvisionResult) OK() bool { return r.Err == nil }

// ImageProvisioner downloads animal images into the static images directory
type ImageProvisioner struct {
	Dir        string
	MaxWidth   int
	MaxHeight  int
	Timeout    time.Duration
	HTTPClient *http.Client
	validate   *validator.Validate
}

func NewImageProvisioner(dir string, timeout time.Duration, maxWidth, maxHeight int) *ImageProvisioner {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ImageProvisioner{
		Dir:        dir,
		MaxWidth:   maxWidth,
		MaxHeight:  maxHeight,
		Timeout:    timeout,
		HTTPClient: &http.Client{Timeout: timeout},
		validate:   validator.New(),
	}
}

// Provision downloads every image one after another. A failed image does not stop the
// rest; its error is carried in the result. The returned error is set only when the
// target directory cannot be created.
func (p *ImageProvisioner) Provision(ctx context.Context, images []AnimalImage) ([]ProvisionResult, error) {
	if err := os.MkdirAll(p.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create images directory %s: %w", p.Dir, err)
	}

	results := make([]ProvisionResult, 0, len(images))
	for _, img := range images {
		path := filepath.Join(p.Dir, img.Filename())
		results = append(results, ProvisionResult{
			Image: img,
			Path:  path,
			Err:   p.provisionOne(ctx, img, path),
		})
	}
	return results, nil
}

func (p *ImageProvisioner) provisionOne(ctx context.Context, img AnimalImage, path string) error {
	if err := p.validate.Struct(img); err != nil {
		return fmt.Errorf("invalid image entry: %w", err)
	}

	data, err := p.fetch(ctx, img.URL)
	if err != nil {
		return err
	}

	if mt := mimetype.Detect(data); !strings.HasPrefix(mt.String(), "image/") {
		return fmt.Errorf("%w (detected %s)", ErrNotAnImage, mt.String())
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to decode image: %w", err)
	}

	return writeJPEG(path, fitImage(src, p.MaxWidth, p.MaxHeight))
}

func (p *ImageProvisioner) fetch(ctx context.Context, url string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", utils.ServiceName+"/setup-images")

	resp, err := p.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxImageBytes {
		return nil, fmt.Errorf("image exceeds %d bytes", maxImageBytes)
	}
	return data, nil
}

// fitImage scales src down to fit within maxW x maxH keeping its aspect ratio.
// Smaller images are returned unchanged.
func fitImage(src image.Image, maxW, maxH int) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxW && h <= maxH {
		return src
	}

	scale := min(float64(maxW)/float64(w), float64(maxH)/float64(h))
	nw := max(1, int(float64(w)*scale))
	nh := max(1, int(float64(h)*scale))

	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	imagedraw.Draw(dst, dst.Bounds(), &image.Uniform{C: color.White}, image.Point{}, imagedraw.Src)
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, b, xdraw.Over, nil)
	return dst
}

// writeJPEG encodes img next to path and renames it into place
func writeJPEG(path string, img image.Image) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+"-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := jpeg.Encode(tmp, img, &jpeg.Options{Quality: 85}); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to encode jpeg: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
