package shutdown

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"pencilsketch/logging"
)

func TestRemoveTempOutputs(t *testing.T) {
	dir := t.TempDir()
	files := map[string]bool{
		".cat_sketch.png.123456":  false,
		".cat_colored.jpg.987654": false,
		"cat_sketch.png":          true,
		"cat_colored.jpg":         true,
		"notes.txt":               true,
	}
	for name := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	fn := RemoveTempOutputs(logging.NewNop(), dir)
	if err := fn(context.Background()); err != nil {
		t.Fatalf("cleanup error = %v", err)
	}

	for name, keep := range files {
		_, err := os.Stat(filepath.Join(dir, name))
		if keep && err != nil {
			t.Errorf("%s was removed", name)
		}
		if !keep && err == nil {
			t.Errorf("%s was not removed", name)
		}
	}
}

func TestRemoveTempOutputsMissingDir(t *testing.T) {
	fn := RemoveTempOutputs(logging.NewNop(), filepath.Join(t.TempDir(), "missing"))
	if err := fn(context.Background()); err != nil {
		t.Errorf("cleanup error = %v, want nil", err)
	}
}
