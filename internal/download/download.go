// Package download fetches card images and auxiliary assets to local folders.
package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/arcanaland/altered-scribe/internal/card"
)

// webBucket is the asset type whose oddly named files get a synthetic name.
const webBucket = "WEB"

// Options select what to download and where.
type Options struct {
	Languages        []card.Language
	ImagesDir        string
	AssetsDir        string
	Images           bool
	Assets           bool
	CollectorNumbers bool
	Force            bool
	// RequestsPerSecond paces downloads; zero means unlimited.
	RequestsPerSecond float64
}

// Stats summarizes a run.
type Stats struct {
	Downloaded int
	Skipped    int
	Failed     int
}

// Downloader fetches files for a set of cards, one at a time.
type Downloader struct {
	log        *slog.Logger
	httpClient *http.Client
	limiter    *rate.Limiter
	opts       Options
}

// New creates a Downloader. A nil client gets a default with a 30s timeout.
func New(logger *slog.Logger, client *http.Client, opts Options) *Downloader {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}
	return &Downloader{
		log:        logger.With("component", "download"),
		httpClient: client,
		limiter:    rate.NewLimiter(limit, 1),
		opts:       opts,
	}
}

// ImagePath returns where the image of c in lang is stored.
func (d *Downloader) ImagePath(c *card.Card, lang card.Language) string {
	name := string(c.ID)
	if d.opts.CollectorNumbers {
		if number := c.CollectorNumberFormatted[lang]; number != "" {
			if c.IsSpecialEdition() {
				number = strings.Replace(number, "BTG", "BTGKS", 1)
			}
			name = number
		}
	}
	return filepath.Join(d.opts.ImagesDir, string(lang), name+".jpg")
}

// assetFileName picks the file name for an asset URL. Names without an image
// extension are renamed in the WEB bucket only; counter is advanced when a
// synthetic name is used.
func (d *Downloader) assetFileName(c *card.Card, assetType, assetURL string, counter *int) string {
	name := assetURL
	if u, err := url.Parse(assetURL); err == nil {
		name = u.Path
	}
	name = path.Base(name)

	if strings.HasSuffix(name, ".jpg") || strings.HasSuffix(name, ".png") {
		return name
	}

	d.log.Warn("asset has a non-standard ending",
		slog.String("card", string(c.ID)),
		slog.String("type", assetType),
		slog.String("file", name),
	)
	if assetType == webBucket {
		name = fmt.Sprintf("%s_XXX%d_WEB.jpg", c.ID, *counter)
		*counter++
		d.log.Info("renaming asset", slog.String("card", string(c.ID)), slog.String("file", name))
	}
	return name
}

// Run downloads everything requested for cards, visiting them in id order.
func (d *Downloader) Run(ctx context.Context, cards map[card.CardID]*card.Card) (Stats, error) {
	var stats Stats

	ids := make([]card.CardID, 0, len(cards))
	for id := range cards {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	for _, id := range ids {
		c := cards[id]
		if d.opts.Images {
			for _, lang := range c.ImagePath.Languages() {
				if !slices.Contains(d.opts.Languages, lang) {
					continue
				}
				if err := d.fetch(ctx, c.ImagePath[lang], d.ImagePath(c, lang), &stats); err != nil {
					return stats, err
				}
			}
		}

		if d.opts.Assets {
			counter := 0
			for _, assetType := range sortedKeys(c.Assets) {
				for _, assetURL := range c.Assets[assetType] {
					name := d.assetFileName(c, assetType, assetURL, &counter)
					target := filepath.Join(d.opts.AssetsDir, assetType, name)
					if err := d.fetch(ctx, assetURL, target, &stats); err != nil {
						return stats, err
					}
				}
			}
		}
	}
	return stats, nil
}

// fetch downloads one unit unless it is already present. Only a cancelled
// context is returned as an error; any other failure is logged and counted.
func (d *Downloader) fetch(ctx context.Context, src, target string, stats *Stats) error {
	if !d.opts.Force {
		if _, err := os.Stat(target); err == nil {
			stats.Skipped++
			return nil
		}
	}

	if err := d.limiter.Wait(ctx); err != nil {
		return err
	}

	d.log.Debug("downloading", slog.String("url", src), slog.String("path", target))
	if err := d.save(ctx, src, target); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		d.log.Warn("download failed", slog.String("url", src), slog.String("path", target), slog.String("error", err.Error()))
		stats.Failed++
		return nil
	}
	stats.Downloaded++
	return nil
}

var errStatus = errors.New("unexpected status")

func (d *Downloader) save(ctx context.Context, src, target string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	resp, err := d.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w %d", errStatus, resp.StatusCode)
	}

	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("create folder: %w", err)
	}
	f, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		os.Remove(target)
		return fmt.Errorf("write file: %w", err)
	}
	return f.Close()
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
