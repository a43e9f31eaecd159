package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"facegreeter/internal/config"
	"facegreeter/internal/logger"
	"facegreeter/internal/model"
	"facegreeter/internal/service/ai"
	"facegreeter/internal/service/gallery"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var enrollCmd = &cobra.Command{
	Use:   "enroll <name> <image>",
	Short: "Add or replace one face in the gallery",
	Args:  cobra.ExactArgs(2),
	RunE:  runEnroll,
}

var importCmd = &cobra.Command{
	Use:   "import <dir>",
	Short: "Enroll every image in a directory, named after its file",
	Long: `Import enrolls every .jpg, .jpeg, .png, .bmp and .webp file in <dir>.
The file name without extension becomes the person's name. Images without
a detectable face are reported and skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

var importExtensions = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".bmp": true, ".webp": true}

func init() {
	rootCmd.AddCommand(enrollCmd)
	rootCmd.AddCommand(importCmd)
}

// openGallery builds the configured recognizer and loads the existing gallery.
func openGallery(cfg *config.Config, log *logger.Logger) (*gallery.Gallery, func(), error) {
	recognizer, err := ai.NewRecognizer(cfg)
	if err != nil {
		return nil, nil, err
	}
	faces := ai.NewFaceService(recognizer, log)

	g := gallery.New(cfg.GalleryDirectory, faces, log)
	if _, err := g.Scan(); err != nil {
		faces.Close()
		return nil, nil, err
	}
	return g, func() { faces.Close() }, nil
}

func runEnroll(cmd *cobra.Command, args []string) error {
	cfg := loadConfig(cmd)
	log := logger.NewLogger(cfg)
	defer log.Close()

	data, err := os.ReadFile(args[1])
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", args[1], err)
	}

	g, closeGallery, err := openGallery(cfg, log)
	if err != nil {
		return err
	}
	defer closeGallery()

	entry, err := g.Enroll(args[0], data)
	if err != nil {
		if errors.Is(err, model.ErrNoFaceDetected) {
			return fmt.Errorf("no face detected in %s", args[1])
		}
		return err
	}

	fmt.Printf("Enrolled %s -> %s\n", entry.Name, entry.Path)
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	cfg := loadConfig(cmd)
	log := logger.NewLogger(cfg)
	defer log.Close()

	files, err := os.ReadDir(args[0])
	if err != nil {
		return fmt.Errorf("failed to read directory: %w", err)
	}

	var paths []string
	for _, file := range files {
		if file.IsDir() || !importExtensions[strings.ToLower(filepath.Ext(file.Name()))] {
			continue
		}
		paths = append(paths, filepath.Join(args[0], file.Name()))
	}
	if len(paths) == 0 {
		fmt.Println("No images found to import")
		return nil
	}

	g, closeGallery, err := openGallery(cfg, log)
	if err != nil {
		return err
	}
	defer closeGallery()

	bar := progressbar.NewOptions(len(paths),
		progressbar.OptionSetDescription("Enrolling faces"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetItsString("images"),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionFullWidth(),
	)

	var enrolled int
	var failures []string
	for _, path := range paths {
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		data, err := os.ReadFile(path)
		if err == nil {
			_, err = g.Enroll(name, data)
		}
		if err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", filepath.Base(path), err))
		} else {
			enrolled++
		}
		bar.Add(1)
	}
	bar.Finish()

	fmt.Printf("\nEnrolled %d of %d images into %s\n", enrolled, len(paths), cfg.GalleryDirectory)
	for _, f := range failures {
		fmt.Printf("  skipped %s\n", f)
	}
	return nil
}
