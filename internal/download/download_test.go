package download

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arcanaland/altered-scribe/internal/card"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fileServer struct {
	*httptest.Server
	hits atomic.Int32
}

// newFileServer serves the request path as the body; paths under /missing/
// answer 404.
func newFileServer(t *testing.T) *fileServer {
	t.Helper()
	fs := &fileServer{}
	fs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fs.hits.Add(1)
		if filepath.Dir(r.URL.Path) == "/missing" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(r.URL.Path))
	}))
	t.Cleanup(fs.Close)
	return fs
}

func testCards(base string) map[card.CardID]*card.Card {
	return map[card.CardID]*card.Card{
		"ALT_CORE_B_AX_04_C": {
			ID: "ALT_CORE_B_AX_04_C",
			ImagePath: card.Translations{
				"en": base + "/img/en.jpg",
				"fr": base + "/img/fr.jpg",
				"de": base + "/img/de.jpg",
			},
			Assets: map[string][]string{
				"WEB":  {base + "/web/a.jpg", base + "/web/blob", base + "/web/other?size=2"},
				"HERO": {base + "/hero/h.png", base + "/hero/raw"},
			},
			CollectorNumberFormatted: card.Translations{"en": "BTG-004-C-EN", "fr": "BTG-004-C-FR"},
		},
		"ALT_COREKS_B_AX_04_C": {
			ID:                       "ALT_COREKS_B_AX_04_C",
			ImagePath:                card.Translations{"en": base + "/img/ks.jpg"},
			CollectorNumberFormatted: card.Translations{"en": "BTG-004-C-EN"},
		},
	}
}

func TestRun_DownloadsAndNamesFiles(t *testing.T) {
	srv := newFileServer(t)
	dir := t.TempDir()
	d := New(newTestLogger(), srv.Client(), Options{
		Languages: []card.Language{"en", "fr"},
		ImagesDir: filepath.Join(dir, "images"),
		AssetsDir: filepath.Join(dir, "assets"),
		Images:    true,
		Assets:    true,
	})

	stats, err := d.Run(context.Background(), testCards(srv.URL))
	require.NoError(t, err)
	assert.Equal(t, Stats{Downloaded: 8}, stats)

	for _, p := range []string{
		"images/en/ALT_CORE_B_AX_04_C.jpg",
		"images/fr/ALT_CORE_B_AX_04_C.jpg",
		"images/en/ALT_COREKS_B_AX_04_C.jpg",
		"assets/WEB/a.jpg",
		"assets/WEB/ALT_CORE_B_AX_04_C_XXX0_WEB.jpg",
		"assets/WEB/ALT_CORE_B_AX_04_C_XXX1_WEB.jpg",
		"assets/HERO/h.png",
		"assets/HERO/raw",
	} {
		assert.FileExists(t, filepath.Join(dir, p))
	}
	assert.NoDirExists(t, filepath.Join(dir, "images", "de"), "languages not requested are skipped")

	data, err := os.ReadFile(filepath.Join(dir, "images", "fr", "ALT_CORE_B_AX_04_C.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "/img/fr.jpg", string(data))
}

func TestRun_SkipsExistingFiles(t *testing.T) {
	srv := newFileServer(t)
	dir := t.TempDir()
	opts := Options{
		Languages: []card.Language{"en"},
		ImagesDir: filepath.Join(dir, "images"),
		AssetsDir: filepath.Join(dir, "assets"),
		Images:    true,
		Assets:    true,
	}
	cards := testCards(srv.URL)

	first, err := New(newTestLogger(), srv.Client(), opts).Run(context.Background(), cards)
	require.NoError(t, err)
	require.Zero(t, first.Skipped)
	hits := srv.hits.Load()

	second, err := New(newTestLogger(), srv.Client(), opts).Run(context.Background(), cards)
	require.NoError(t, err)
	assert.Equal(t, Stats{Skipped: first.Downloaded}, second)
	assert.Equal(t, hits, srv.hits.Load(), "second run issues no requests")

	opts.Force = true
	forced, err := New(newTestLogger(), srv.Client(), opts).Run(context.Background(), cards)
	require.NoError(t, err)
	assert.Equal(t, first.Downloaded, forced.Downloaded)
	assert.Equal(t, 2*hits, srv.hits.Load())
}

func TestImagePath_CollectorNumbers(t *testing.T) {
	d := New(newTestLogger(), nil, Options{ImagesDir: "images", CollectorNumbers: true})
	cards := testCards("http://x")

	assert.Equal(t, filepath.Join("images", "fr", "BTG-004-C-FR.jpg"),
		d.ImagePath(cards["ALT_CORE_B_AX_04_C"], "fr"))
	assert.Equal(t, filepath.Join("images", "en", "BTGKS-004-C-EN.jpg"),
		d.ImagePath(cards["ALT_COREKS_B_AX_04_C"], "en"))
	assert.Equal(t, filepath.Join("images", "de", "ALT_CORE_B_AX_04_C.jpg"),
		d.ImagePath(cards["ALT_CORE_B_AX_04_C"], "de"), "no number in that language falls back to the id")

	plain := New(newTestLogger(), nil, Options{ImagesDir: "images"})
	assert.Equal(t, filepath.Join("images", "en", "ALT_COREKS_B_AX_04_C.jpg"),
		plain.ImagePath(cards["ALT_COREKS_B_AX_04_C"], "en"))
}

func TestRun_FailureWritesNothing(t *testing.T) {
	srv := newFileServer(t)
	dir := t.TempDir()
	d := New(newTestLogger(), srv.Client(), Options{
		Languages: []card.Language{"en"},
		ImagesDir: dir,
		Images:    true,
	})
	cards := map[card.CardID]*card.Card{
		"A": {ID: "A", ImagePath: card.Translations{"en": srv.URL + "/missing/a.jpg"}},
		"B": {ID: "B", ImagePath: card.Translations{"en": srv.URL + "/ok/b.jpg"}},
	}

	stats, err := d.Run(context.Background(), cards)
	require.NoError(t, err)
	assert.Equal(t, Stats{Downloaded: 1, Failed: 1}, stats)
	assert.NoFileExists(t, filepath.Join(dir, "en", "A.jpg"))
	assert.FileExists(t, filepath.Join(dir, "en", "B.jpg"))
}

func TestRun_CancelledContext(t *testing.T) {
	srv := newFileServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d := New(newTestLogger(), srv.Client(), Options{
		Languages:         []card.Language{"en"},
		ImagesDir:         t.TempDir(),
		Images:            true,
		RequestsPerSecond: 1,
	})
	_, err := d.Run(ctx, testCards(srv.URL))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, srv.hits.Load())
}
