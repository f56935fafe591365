package inbox

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"pencilsketch/render"
	"pencilsketch/sketch"
)

type fakeRenderer struct {
	mu    sync.Mutex
	seen  []string
	fail  map[string]bool
	onRun func()
}

func (f *fakeRenderer) RenderFile(_ context.Context, path string) (*render.Outcome, error) {
	f.mu.Lock()
	f.seen = append(f.seen, filepath.Base(path))
	f.mu.Unlock()
	if f.onRun != nil {
		f.onRun()
	}
	if f.fail[filepath.Base(path)] {
		return nil, errors.New("decode failed")
	}
	return &render.Outcome{Input: path}, nil
}

func testConfig(t *testing.T) Config {
	t.Helper()
	root := t.TempDir()
	cfg := Config{
		InboxDir:     filepath.Join(root, "inbox"),
		DoneDir:      filepath.Join(root, "done"),
		FailedDir:    filepath.Join(root, "failed"),
		PollInterval: 10 * time.Millisecond,
	}
	for _, d := range []string{cfg.InboxDir, cfg.DoneDir, cfg.FailedDir} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			t.Fatal(err)
		}
	}
	return cfg
}

func touch(t *testing.T, dir, name string, mod time.Time) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Chtimes(path, mod, mod); err != nil {
		t.Fatal(err)
	}
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func TestPollOnce(t *testing.T) {
	cfg := testConfig(t)
	base := time.Now().Add(-time.Hour)
	touch(t, cfg.InboxDir, "c.png", base.Add(3*time.Minute))
	touch(t, cfg.InboxDir, "a.jpg", base.Add(1*time.Minute))
	touch(t, cfg.InboxDir, "b.JPEG", base.Add(2*time.Minute))
	touch(t, cfg.InboxDir, "notes.txt", base)
	touch(t, cfg.InboxDir, ".hidden.png", base)

	r := &fakeRenderer{fail: map[string]bool{"b.JPEG": true}}
	w := NewWatcher(r, cfg, nil)

	stats, err := w.PollOnce(context.Background())
	if err != nil {
		t.Fatalf("PollOnce() error = %v", err)
	}
	if diff := cmp.Diff([]string{"a.jpg", "b.JPEG", "c.png"}, r.seen); diff != "" {
		t.Errorf("render order mismatch (-want +got):\n%s", diff)
	}
	if stats != (Stats{Processed: 2, Failed: 1}) {
		t.Errorf("PollOnce() stats = %+v", stats)
	}
	if w.Stats() != stats {
		t.Errorf("Stats() = %+v, want %+v", w.Stats(), stats)
	}

	for _, p := range []string{
		filepath.Join(cfg.DoneDir, "a.jpg"),
		filepath.Join(cfg.DoneDir, "c.png"),
		filepath.Join(cfg.FailedDir, "b.JPEG"),
		filepath.Join(cfg.InboxDir, "notes.txt"),
		filepath.Join(cfg.InboxDir, ".hidden.png"),
	} {
		if !exists(p) {
			t.Errorf("expected %s to exist", p)
		}
	}

	// Second pass finds nothing new.
	stats, err = w.PollOnce(context.Background())
	if err != nil {
		t.Fatalf("second PollOnce() error = %v", err)
	}
	if stats != (Stats{}) {
		t.Errorf("second PollOnce() stats = %+v, want zero", stats)
	}
}

func TestPollOnceMinAge(t *testing.T) {
	cfg := testConfig(t)
	cfg.MinAge = time.Minute
	now := time.Now()
	touch(t, cfg.InboxDir, "old.png", now.Add(-2*time.Minute))
	touch(t, cfg.InboxDir, "fresh.png", now)

	r := &fakeRenderer{}
	w := NewWatcher(r, cfg, nil)
	if _, err := w.PollOnce(context.Background()); err != nil {
		t.Fatalf("PollOnce() error = %v", err)
	}
	if diff := cmp.Diff([]string{"old.png"}, r.seen); diff != "" {
		t.Errorf("rendered files mismatch (-want +got):\n%s", diff)
	}
	if !exists(filepath.Join(cfg.InboxDir, "fresh.png")) {
		t.Error("fresh.png should stay in the inbox")
	}
}

func TestPollOnceNameCollision(t *testing.T) {
	cfg := testConfig(t)
	touch(t, cfg.DoneDir, "photo.png", time.Now())
	touch(t, cfg.InboxDir, "photo.png", time.Now().Add(-time.Minute))

	w := NewWatcher(&fakeRenderer{}, cfg, nil)
	if _, err := w.PollOnce(context.Background()); err != nil {
		t.Fatalf("PollOnce() error = %v", err)
	}
	if !exists(filepath.Join(cfg.DoneDir, "photo-1.png")) {
		t.Error("expected photo-1.png in done dir")
	}
}

func TestPollOnceSkipsRenderOutputs(t *testing.T) {
	cfg := testConfig(t)
	base := time.Now().Add(-time.Hour)
	touch(t, cfg.InboxDir, "photo_sketch.png", base)
	touch(t, cfg.InboxDir, "photo_colored.jpg", base)
	touch(t, cfg.InboxDir, "sketchbook.png", base)

	r := &fakeRenderer{}
	w := NewWatcher(r, cfg, nil)
	if _, err := w.PollOnce(context.Background()); err != nil {
		t.Fatalf("PollOnce() error = %v", err)
	}
	if diff := cmp.Diff([]string{"sketchbook.png"}, r.seen); diff != "" {
		t.Errorf("rendered files mismatch (-want +got):\n%s", diff)
	}
}

func TestPollOnceOutputsInInboxRenderOnce(t *testing.T) {
	cfg := testConfig(t)

	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for i := range 16 {
		img.Set(i%4, i/4, color.RGBA{R: uint8(i * 16), G: 80, B: 200, A: 255})
	}
	src := filepath.Join(cfg.InboxDir, "photo.png")
	f, err := os.Create(src)
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	f.Close()
	old := time.Now().Add(-time.Minute)
	if err := os.Chtimes(src, old, old); err != nil {
		t.Fatal(err)
	}

	renderer, err := render.New(render.Options{
		Params: sketch.Params{
			GaussianSize: 3, Sigma: 1, BilateralSize: 3, SigmaC: 30, SigmaS: 30,
			Gamma: 2, Hue: 1, Saturation: 1,
		},
		OutputDir:    cfg.InboxDir,
		WriteMono:    true,
		WriteColored: true,
	}, sketch.Serial{})
	if err != nil {
		t.Fatalf("render.New() error = %v", err)
	}

	w := NewWatcher(renderer, cfg, nil)
	for pass := 1; pass <= 3; pass++ {
		if _, err := w.PollOnce(context.Background()); err != nil {
			t.Fatalf("pass %d: PollOnce() error = %v", pass, err)
		}
	}
	if got := w.Stats(); got != (Stats{Processed: 1}) {
		t.Errorf("Stats() = %+v, want one processed file", got)
	}

	entries, err := os.ReadDir(cfg.InboxDir)
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	if diff := cmp.Diff([]string{"photo_colored.png", "photo_sketch.png"}, names); diff != "" {
		t.Errorf("inbox contents mismatch (-want +got):\n%s", diff)
	}
}

func TestPollOnceCancelledBetweenFiles(t *testing.T) {
	cfg := testConfig(t)
	base := time.Now().Add(-time.Hour)
	touch(t, cfg.InboxDir, "1.png", base)
	touch(t, cfg.InboxDir, "2.png", base.Add(time.Minute))

	ctx, cancel := context.WithCancel(context.Background())
	r := &fakeRenderer{onRun: cancel}
	w := NewWatcher(r, cfg, nil)

	if _, err := w.PollOnce(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("PollOnce() error = %v, want context.Canceled", err)
	}
	if diff := cmp.Diff([]string{"1.png"}, r.seen); diff != "" {
		t.Errorf("rendered files mismatch (-want +got):\n%s", diff)
	}
	if !exists(filepath.Join(cfg.InboxDir, "2.png")) {
		t.Error("2.png should stay in the inbox after cancellation")
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	cfg := testConfig(t)
	touch(t, cfg.InboxDir, "a.png", time.Now().Add(-time.Minute))

	processed := make(chan struct{}, 1)
	r := &fakeRenderer{onRun: func() { processed <- struct{}{} }}
	w := NewWatcher(r, cfg, nil)

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- w.Run(ctx) }()

	select {
	case <-processed:
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not process the inbox")
	}
	cancel()

	select {
	case err := <-errc:
		if err != nil {
			t.Errorf("Run() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run() did not return after cancel")
	}
	select {
	case <-w.Done():
	default:
		t.Error("Done() not closed after Run returned")
	}
}

func TestIsSupported(t *testing.T) {
	tests := map[string]bool{
		"a.png": true, "a.JPG": true, "a.jpeg": true, "a.webp": true, "a.tif": true,
		"a.txt": false, "a": false, "a.pdf": false,
	}
	for name, want := range tests {
		if got := IsSupported(name); got != want {
			t.Errorf("IsSupported(%q) = %v, want %v", name, got, want)
		}
	}
}
