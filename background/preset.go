package background

import (
	"errors"
	"fmt"
	"image"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/chaos-io/bgswap/util"
)

// 在线预设背景的默认尺寸，合成时会再缩放到原图大小
const (
	DefaultWidth  = 800
	DefaultHeight = 600
)

var ErrUnknownBackground = errors.New("unknown background")

// Preset 不依赖文件的内置背景
type Preset struct {
	Name    string
	Top     Color
	Bottom  Color
	Pattern bool
}

// Render 按给定尺寸生成预设背景
func (p Preset) Render(width, height int) *image.RGBA {
	if p.Pattern {
		return MakePattern(width, height)
	}
	return MakeGradient(p.Top, p.Bottom, width, height)
}

var OnlinePresets = []Preset{
	{Name: "Gradient Blue", Top: Color{100, 150, 255}, Bottom: Color{200, 220, 255}},
	{Name: "Gradient Purple", Top: Color{150, 100, 255}, Bottom: Color{220, 200, 255}},
	{Name: "Gradient Green", Top: Color{100, 255, 150}, Bottom: Color{200, 255, 220}},
	{Name: "Abstract Pattern", Pattern: true},
}

// LookupPreset 按名字（忽略大小写）查找内置背景
func LookupPreset(name string) (Preset, bool) {
	for _, p := range OnlinePresets {
		if strings.EqualFold(p.Name, strings.TrimSpace(name)) {
			return p, true
		}
	}
	return Preset{}, false
}

// Catalog 预设背景目录。
//
// 目录不存在或没有支持的图片时退回到 OnlinePresets。
type Catalog struct {
	dir string

	mu    sync.RWMutex
	files []string
}

func NewCatalog(dir string) *Catalog {
	return &Catalog{dir: dir}
}

func (c *Catalog) Dir() string {
	return c.dir
}

// Reload 重新扫描目录，只保留 .png/.jpg/.jpeg/.webp 文件
func (c *Catalog) Reload() error {
	entries, err := os.ReadDir(c.dir)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Warn("backgrounds folder not found, using online presets", "dir", c.dir)
		c.setFiles(nil)
		return nil
	}
	if err != nil {
		return fmt.Errorf("read backgrounds dir: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !util.IsSupportedImage(entry.Name()) {
			continue
		}
		files = append(files, entry.Name())
	}
	sort.Strings(files)

	if len(files) == 0 {
		slog.Warn("no background images found, using online presets", "dir", c.dir)
	}
	c.setFiles(files)
	return nil
}

func (c *Catalog) setFiles(files []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.files = files
}

// Files 目录中可用的背景文件名
func (c *Catalog) Files() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]string(nil), c.files...)
}

// Names 当前可选择的预设背景名
func (c *Catalog) Names() []string {
	if files := c.Files(); len(files) > 0 {
		return files
	}
	names := make([]string, 0, len(OnlinePresets))
	for _, p := range OnlinePresets {
		names = append(names, p.Name)
	}
	return names
}

// Load 加载预设背景：先查目录文件，再查内置背景
func (c *Catalog) Load(name string) (image.Image, error) {
	for _, f := range c.Files() {
		if f != name {
			continue
		}
		img, err := util.OpenImage(filepath.Join(c.dir, f))
		if err != nil {
			return nil, fmt.Errorf("open background %s: %w", f, err)
		}
		return img, nil
	}

	if p, ok := LookupPreset(name); ok {
		return p.Render(DefaultWidth, DefaultHeight), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownBackground, name)
}
