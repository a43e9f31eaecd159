package gallery

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"facegreeter/internal/logger"
	"facegreeter/internal/model"
	"facegreeter/internal/service/ai"

	"gocv.io/x/gocv"
)

// Encoder extracts a face reference from an image, returning model.ErrNoFaceDetected when there is none.
type Encoder interface {
	Reference(img gocv.Mat) (model.FaceReference, error)
}

var imageExtensions = map[string]bool{".jpg": true, ".jpeg": true, ".png": true}

// Gallery is the in-memory set of enrolled identities backed by a flat directory of <name>.jpg files.
// Readers get an immutable snapshot; writers replace the slice, so a snapshot taken by a
// streaming loop is never modified underneath it.
type Gallery struct {
	dir     string
	encoder Encoder
	logger  *logger.Logger

	writeMu sync.Mutex // serializes Enroll and Scan
	mu      sync.RWMutex
	entries []model.GalleryEntry
	index   map[string]int
}

func New(dir string, encoder Encoder, logger *logger.Logger) *Gallery {
	return &Gallery{
		dir:     dir,
		encoder: encoder,
		logger:  logger,
		entries: []model.GalleryEntry{},
		index:   make(map[string]int),
	}
}

// Dir returns the gallery directory.
func (g *Gallery) Dir() string {
	return g.dir
}

// Snapshot returns the current entries in enrollment order. The slice must not be modified.
func (g *Gallery) Snapshot() []model.GalleryEntry {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.entries
}

// Names returns the enrolled names in iteration order.
func (g *Gallery) Names() []string {
	entries := g.Snapshot()
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	return names
}

// Len returns the number of enrolled identities.
func (g *Gallery) Len() int {
	return len(g.Snapshot())
}

// Get looks up an entry by name.
func (g *Gallery) Get(name string) (model.GalleryEntry, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	i, ok := g.index[name]
	if !ok {
		return model.GalleryEntry{}, false
	}
	return g.entries[i], true
}

// put replaces an existing entry in place or appends a new one.
func (g *Gallery) put(entry model.GalleryEntry) {
	g.mu.Lock()
	defer g.mu.Unlock()

	next := make([]model.GalleryEntry, len(g.entries), len(g.entries)+1)
	copy(next, g.entries)

	if i, ok := g.index[entry.Name]; ok {
		next[i] = entry
	} else {
		g.index[entry.Name] = len(next)
		next = append(next, entry)
	}
	g.entries = next
}

// Scan loads every image in the gallery directory. Files without a detectable face are skipped.
func (g *Gallery) Scan() (int, error) {
	g.writeMu.Lock()
	defer g.writeMu.Unlock()

	if err := os.MkdirAll(g.dir, 0755); err != nil {
		return 0, fmt.Errorf("failed to create gallery directory: %w", err)
	}

	files, err := os.ReadDir(g.dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read gallery directory: %w", err)
	}

	// Enroll writes <name>.jpg, so a .jpg shadows any other image of the same name.
	hasJPEG := make(map[string]bool)
	for _, file := range files {
		if !file.IsDir() && strings.ToLower(filepath.Ext(file.Name())) == ".jpg" {
			hasJPEG[strings.TrimSuffix(file.Name(), filepath.Ext(file.Name()))] = true
		}
	}

	loaded := 0
	for _, file := range files {
		ext := strings.ToLower(filepath.Ext(file.Name()))
		if file.IsDir() || !imageExtensions[ext] {
			continue
		}
		if ext != ".jpg" && hasJPEG[strings.TrimSuffix(file.Name(), filepath.Ext(file.Name()))] {
			g.logger.Warning("Skipping gallery file %s: superseded by a .jpg enrollment", file.Name())
			continue
		}

		name, err := NormalizeName(strings.TrimSuffix(file.Name(), filepath.Ext(file.Name())))
		if err != nil {
			g.logger.Warning("Skipping gallery file %s: %v", file.Name(), err)
			continue
		}

		path := filepath.Join(g.dir, file.Name())
		entry, err := g.load(name, path)
		if err != nil {
			g.logger.Warning("Skipping gallery file %s: %v", file.Name(), err)
			continue
		}

		g.put(entry)
		loaded++
	}

	g.logger.Info("Loaded %d face(s) from %s", loaded, g.dir)
	return loaded, nil
}

func (g *Gallery) load(name, path string) (model.GalleryEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.GalleryEntry{}, err
	}

	ref, err := g.reference(data)
	if err != nil {
		return model.GalleryEntry{}, err
	}

	info, err := os.Stat(path)
	enrolledAt := time.Now()
	if err == nil {
		enrolledAt = info.ModTime()
	}

	return model.GalleryEntry{Name: name, Path: path, Reference: ref, EnrolledAt: enrolledAt}, nil
}

func (g *Gallery) reference(data []byte) (model.FaceReference, error) {
	img, err := ai.DecodeImage(data)
	if err != nil {
		return model.FaceReference{}, err
	}
	defer img.Close()

	return g.encoder.Reference(img)
}

// Enroll adds or replaces name with the face in data. The image is stored as <name>.jpg.
// Nothing changes, on disk or in memory, when data has no detectable face.
func (g *Gallery) Enroll(name string, data []byte) (model.GalleryEntry, error) {
	name, err := NormalizeName(name)
	if err != nil {
		return model.GalleryEntry{}, err
	}

	jpegData, err := NormalizeUpload(data)
	if err != nil {
		return model.GalleryEntry{}, err
	}

	g.writeMu.Lock()
	defer g.writeMu.Unlock()

	ref, err := g.reference(jpegData)
	if err != nil {
		if errors.Is(err, model.ErrNoFaceDetected) {
			g.logger.Warning("Enrollment of %s rejected: no face detected", name)
		}
		return model.GalleryEntry{}, err
	}

	path, err := g.writeImage(name, jpegData)
	if err != nil {
		return model.GalleryEntry{}, err
	}

	_, replaced := g.Get(name)
	entry := model.GalleryEntry{Name: name, Path: path, Reference: ref, EnrolledAt: time.Now()}
	g.put(entry)

	if replaced {
		g.logger.Info("Updated face for %s", name)
	} else {
		g.logger.Info("Added face for %s", name)
	}
	return entry, nil
}

// writeImage stores the image through a temp file so a crash never leaves a partial <name>.jpg.
func (g *Gallery) writeImage(name string, data []byte) (string, error) {
	if err := os.MkdirAll(g.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create gallery directory: %w", err)
	}

	path := filepath.Join(g.dir, name+".jpg")
	tmp, err := os.CreateTemp(g.dir, ".enroll-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to write image: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to write image: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("failed to save image: %w", err)
	}
	g.removeStale(name, path)
	return path, nil
}

// removeStale deletes other images of name (alice.png, alice.JPEG) so a later Scan
// cannot load an older enrollment over the one just written.
func (g *Gallery) removeStale(name, keep string) {
	files, err := os.ReadDir(g.dir)
	if err != nil {
		return
	}
	keepInfo, err := os.Stat(keep)
	if err != nil {
		return
	}
	for _, file := range files {
		ext := filepath.Ext(file.Name())
		if file.IsDir() || !imageExtensions[strings.ToLower(ext)] || strings.TrimSuffix(file.Name(), ext) != name {
			continue
		}
		path := filepath.Join(g.dir, file.Name())
		// case-insensitive filesystems report alice.JPG and alice.jpg as one file
		if info, err := os.Stat(path); err != nil || os.SameFile(info, keepInfo) {
			continue
		}
		if err := os.Remove(path); err != nil {
			g.logger.Warning("Failed to remove stale gallery file %s: %v", file.Name(), err)
		}
	}
}
