package services

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"team-pairing-system/pairing"
	"team-pairing-system/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

// LayoutSource lists the layout image file names available.
type LayoutSource interface {
	Name() string
	List(ctx context.Context) ([]string, error)
}

// DirLayoutSource reads layout images from a local directory.
type DirLayoutSource struct {
	Dir string
}

func (d DirLayoutSource) Name() string { return "dir" }

func (d DirLayoutSource) List(_ context.Context) ([]string, error) {
	return utils.ListFiles(d.Dir)
}

// R2LayoutSource lists layout images stored in the R2 bucket under Prefix.
type R2LayoutSource struct {
	Prefix string
}

func (r R2LayoutSource) Name() string { return "r2" }

func (r R2LayoutSource) List(ctx context.Context) ([]string, error) {
	return utils.ListR2Keys(ctx, r.Prefix)
}

// LayoutService caches the layout inventory and serves the images.
type LayoutService struct {
	Source LayoutSource
	Dir    string // local image dir, also the import target for dir sources

	mu          sync.RWMutex
	inv         pairing.Inventory
	refreshedAt time.Time
}

func NewLayoutService(source LayoutSource, dir string) *LayoutService {
	return &LayoutService{Source: source, Dir: dir, inv: pairing.BuildInventory(nil)}
}

// Refresh rebuilds the inventory from the source. On failure the previous
// inventory stays in effect.
func (s *LayoutService) Refresh(ctx context.Context) error {
	files, err := s.Source.List(ctx)
	if err != nil {
		utils.Log.WithError(err).WithField("source", s.Source.Name()).Warn("⚠️  [LAYOUTS] refresh failed")
		return err
	}
	inv := pairing.BuildInventory(files)

	s.mu.Lock()
	s.inv = inv
	s.refreshedAt = time.Now().UTC()
	s.mu.Unlock()

	total := 0
	for _, ls := range inv {
		total += len(ls)
	}
	utils.Log.WithField("source", s.Source.Name()).Debugf("🗺️  [LAYOUTS] %d layouts indexed", total)
	return nil
}

// Inventory returns the cached inventory. Callers must not modify it.
func (s *LayoutService) Inventory() pairing.Inventory {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inv
}

func (s *LayoutService) RefreshedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refreshedAt
}

type scenarioLayouts struct {
	Key     string           `json:"key"`
	Label   string           `json:"label"`
	Prefix  string           `json:"prefix"`
	Layouts []pairing.Layout `json:"layouts"`
}

// GetLayouts returns the inventory keyed by scenario, plus labelled entries
// for clients that render a picker.
func (s *LayoutService) GetLayouts(c *fiber.Ctx) error {
	inv := s.Inventory()
	scenarios := make([]scenarioLayouts, 0, len(pairing.ScenarioPrefixes))
	for _, key := range sortedScenarios(inv) {
		scenarios = append(scenarios, scenarioLayouts{
			Key:     key,
			Label:   pairing.ScenarioLabel(key),
			Prefix:  pairing.ScenarioPrefixes[key],
			Layouts: inv[key],
		})
	}
	return c.JSON(fiber.Map{
		"layouts":      inv,
		"scenarios":    scenarios,
		"source":       s.Source.Name(),
		"refreshed_at": s.RefreshedAt(),
	})
}

// ServeLayout sends one layout image.
func (s *LayoutService) ServeLayout(c *fiber.Ctx) error {
	name := c.Params("file")
	if _, _, ok := pairing.ParseLayoutFile(name); !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "layout not found"})
	}

	if src, ok := s.Source.(R2LayoutSource); ok {
		return c.Redirect(utils.R2PublicURL(src.Prefix+name), fiber.StatusFound)
	}

	path, err := utils.SafeJoin(s.Dir, name)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if _, err := os.Stat(path); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "layout not found"})
	}
	c.Set("Cache-Control", "public, max-age=3600")
	return c.SendFile(path)
}

// ImportLayouts accepts a zip of layout images ("archive" form field),
// keeps the files named like layouts and refreshes the inventory.
func (s *LayoutService) ImportLayouts(c *fiber.Ctx) error {
	archive, err := c.FormFile("archive")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "archive is required"})
	}
	if !strings.HasSuffix(strings.ToLower(archive.Filename), ".zip") {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "archive must be a .zip"})
	}

	tmpDir, err := os.MkdirTemp("", "layouts-")
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to prepare import"})
	}
	defer os.RemoveAll(tmpDir)

	base := slug.Make(strings.TrimSuffix(archive.Filename, filepath.Ext(archive.Filename)))
	zipPath := filepath.Join(tmpDir, base+"-"+uuid.NewString()+".zip")
	if err := utils.SaveFile(archive, zipPath); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to save archive"})
	}

	imported, err := s.importArchive(c.UserContext(), zipPath, filepath.Join(tmpDir, "out"))
	if err != nil {
		utils.Log.WithError(err).Error("❌ [LAYOUTS] import failed")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "import failed", "details": err.Error()})
	}
	if err := s.Refresh(c.UserContext()); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "imported but refresh failed"})
	}

	utils.Log.WithField("source", s.Source.Name()).Infof("📦 [LAYOUTS] imported %d files from %s", len(imported), archive.Filename)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"imported": imported, "layouts": s.Inventory()})
}

// importArchive extracts the layout files of zipPath into staging, then moves
// them into the layout dir or uploads them to R2.
func (s *LayoutService) importArchive(ctx context.Context, zipPath, staging string) ([]string, error) {
	accept := func(name string) bool {
		_, _, ok := pairing.ParseLayoutFile(name)
		return ok
	}
	names, err := utils.UnzipFlat(zipPath, staging, accept)
	if err != nil {
		return nil, err
	}

	src, toR2 := s.Source.(R2LayoutSource)
	if !toR2 {
		if err := utils.EnsureDataDir(s.Dir); err != nil {
			return nil, err
		}
	}
	for _, name := range names {
		from := filepath.Join(staging, name)
		if !toR2 {
			if err := utils.MoveFile(from, filepath.Join(s.Dir, name)); err != nil {
				return nil, err
			}
			continue
		}
		body, err := os.ReadFile(from)
		if err != nil {
			return nil, err
		}
		if _, err := utils.UploadBytesToR2(ctx, src.Prefix+name, body, "image/png"); err != nil {
			return nil, err
		}
	}
	if names == nil {
		names = []string{}
	}
	return names, nil
}

func sortedScenarios(inv pairing.Inventory) []string {
	keys := make([]string, 0, len(inv))
	for k := range inv {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
