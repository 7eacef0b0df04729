// Command setup-images downloads the animal pictures shown by the frontend
// into the static images directory.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/amirphl/era4-frontend/app/services"
	"github.com/amirphl/era4-frontend/config"
)

func main() {
	cfg, err := config.LoadProductionConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	dir := flag.String("dir", cfg.Provisioner.ImagesDir, "directory the images are written to")
	timeout := flag.Duration("timeout", cfg.Provisioner.Timeout, "per-image download timeout")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	provisioner := services.NewImageProvisioner(*dir, *timeout, cfg.Provisioner.MaxWidth, cfg.Provisioner.MaxHeight)
	images := services.DefaultAnimalImages()

	fmt.Println("Downloading animal images...")

	results, err := provisioner.Provision(ctx, images)
	if err != nil {
		stop()
		log.Fatalf("Failed to prepare images directory: %v", err)
	}

	succeeded := 0
	for _, r := range results {
		if r.OK() {
			succeeded++
			fmt.Printf("Downloaded %s\n", r.Image.Filename())
			continue
		}
		fmt.Printf("Failed to download %s: %v\n", r.Image.Filename(), r.Err)
	}

	fmt.Printf("\nDownloaded %d/%d images successfully\n", succeeded, len(images))

	if succeeded != len(images) {
		fmt.Println("Some images failed to download. The app still works but those images won't display.")
		stop()
		os.Exit(1)
	}
	fmt.Println("All images are ready.")
}
