package shutdown

import (
	"context"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"pencilsketch/logging"
)

// TempOutputPattern matches the temporary files imageio.WriteFile creates
// next to an output before renaming it into place.
const TempOutputPattern = ".*_*.*.*"

// RemoveTempOutputs returns a Func that deletes partial outputs left in
// dir by an interrupted render. Failures are logged, never returned.
func RemoveTempOutputs(logger *logging.Logger, dir string) Func {
	return func(ctx context.Context) error {
		matches, err := filepath.Glob(filepath.Join(dir, TempOutputPattern))
		if err != nil {
			logger.Error("failed to list temporary outputs", zap.String("dir", dir), zap.Error(err))
			return nil
		}
		if len(matches) == 0 {
			return nil
		}

		var removed, failed int
		for _, m := range matches {
			if ctx.Err() != nil {
				logger.Warn("shutdown deadline reached during temp cleanup",
					zap.Int("removed", removed),
					zap.Int("remaining", len(matches)-removed-failed))
				return nil
			}
			info, err := os.Lstat(m)
			if err != nil || !info.Mode().IsRegular() {
				continue
			}
			if err := os.Remove(m); err != nil {
				failed++
				logger.Warn("failed to remove temporary output", zap.String("file", filepath.Base(m)), zap.Error(err))
				continue
			}
			removed++
		}

		logger.Info("removed temporary outputs", zap.Int("removed", removed), zap.Int("failed", failed))
		return nil
	}
}
