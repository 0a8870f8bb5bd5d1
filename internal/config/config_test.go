package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"ideamap-canvas/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// clearEnv blanks every variable the loader reads so the host environment
// cannot leak into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"ENVIRONMENT", "CANVAS_MIN_SCALE", "CANVAS_MAX_SCALE", "CANVAS_ZOOM_TO_POINTER",
		"SERVER_HOST", "SERVER_PORT", "LOG_LEVEL", "LOG_FORMAT",
		"METRICS_ENABLED", "METRICS_NAMESPACE", "TRACING_ENABLED", "OTEL_EXPORTER_OTLP_ENDPOINT",
	} {
		t.Setenv(key, "")
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault_IsValid(t *testing.T) {
	cfg := config.Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 0.2, cfg.Viewport.MinScale)
	assert.Equal(t, 3.0, cfg.Viewport.MaxScale)
	assert.Equal(t, 16*time.Millisecond, cfg.Drag.FrameInterval)
	assert.Equal(t, "uncategorized", cfg.Layout.Cluster.Uncategorized)
	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Address())
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *config.Config)
		wantErr bool
		errMsg  string
	}{
		{
			name:   "defaults",
			mutate: func(c *config.Config) {},
		},
		{
			name:    "max scale below min scale",
			mutate:  func(c *config.Config) { c.Viewport.MaxScale = 0.1 },
			wantErr: true,
			errMsg:  "MaxScale",
		},
		{
			name:    "zero min scale",
			mutate:  func(c *config.Config) { c.Viewport.MinScale = 0 },
			wantErr: true,
			errMsg:  "MinScale",
		},
		{
			name:    "wheel zoom in that shrinks",
			mutate:  func(c *config.Config) { c.Viewport.WheelZoomIn = 0.9 },
			wantErr: true,
			errMsg:  "WheelZoomIn",
		},
		{
			name:    "fit ceiling above max scale",
			mutate:  func(c *config.Config) { c.Viewport.MaxFitScale = 5 },
			wantErr: true,
			errMsg:  "max_fit_scale",
		},
		{
			name:    "unknown log level",
			mutate:  func(c *config.Config) { c.Logging.Level = "verbose" },
			wantErr: true,
			errMsg:  "Level",
		},
		{
			name:    "metrics enabled without namespace",
			mutate:  func(c *config.Config) { c.Metrics.Namespace = "" },
			wantErr: true,
			errMsg:  "Namespace",
		},
		{
			name: "metrics disabled without namespace",
			mutate: func(c *config.Config) {
				c.Metrics.Enabled = false
				c.Metrics.Namespace = ""
			},
		},
		{
			name:    "port out of range",
			mutate:  func(c *config.Config) { c.Server.Port = 70000 },
			wantErr: true,
			errMsg:  "Port",
		},
		{
			name:    "unknown environment",
			mutate:  func(c *config.Config) { c.Environment = "qa" },
			wantErr: true,
			errMsg:  "Environment",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoader_Hierarchy(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	writeFile(t, dir, "base.yaml", `
viewport:
  max_scale: 4
edge:
  curve_offset: 20
drag:
  frame_interval: 8ms
`)
	writeFile(t, dir, "development.yaml", `
edge:
  curve_offset: 40
`)
	writeFile(t, dir, "local.json", `{"logging": {"level": "debug", "format": "console"}}`)

	t.Setenv("CANVAS_MIN_SCALE", "0.5")

	cfg, err := config.NewLoader(dir, config.Development).Load()
	require.NoError(t, err)

	assert.Equal(t, 4.0, cfg.Viewport.MaxScale)
	assert.Equal(t, 0.5, cfg.Viewport.MinScale)
	assert.Equal(t, 40.0, cfg.Edge.CurveOffset)
	assert.Equal(t, 8*time.Millisecond, cfg.Drag.FrameInterval)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.Equal(t, []string{
		"defaults",
		filepath.Join(dir, "base.yaml"),
		filepath.Join(dir, "development.yaml"),
		filepath.Join(dir, "local.json"),
		"environment",
	}, cfg.LoadedFrom)
}

func TestLoader_LocalIgnoredOutsideDevelopment(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	writeFile(t, dir, "local.yaml", "logging:\n  level: debug\n")

	cfg, err := config.NewLoader(dir, config.Production).Load()
	require.NoError(t, err)

	assert.Equal(t, config.Production, cfg.Environment)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoader_Errors(t *testing.T) {
	t.Run("malformed base file", func(t *testing.T) {
		clearEnv(t)
		dir := t.TempDir()
		writeFile(t, dir, "base.yaml", "viewport: [not, a, map")

		_, err := config.NewLoader(dir, config.Development).Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "base")
	})

	t.Run("unknown field", func(t *testing.T) {
		clearEnv(t)
		dir := t.TempDir()
		writeFile(t, dir, "base.yaml", "viewport:\n  max_zoom: 9\n")

		_, err := config.NewLoader(dir, config.Development).Load()
		assert.Error(t, err)
	})

	t.Run("invalid result", func(t *testing.T) {
		clearEnv(t)
		dir := t.TempDir()
		writeFile(t, dir, "base.yaml", "viewport:\n  min_scale: 5\n")

		_, err := config.NewLoader(dir, config.Development).Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "validation failed")
	})

	t.Run("unparseable environment variable", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("SERVER_PORT", "http")

		_, err := config.NewLoader(t.TempDir(), config.Development).Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "SERVER_PORT")
	})

	t.Run("broken local file is only a warning", func(t *testing.T) {
		clearEnv(t)
		dir := t.TempDir()
		writeFile(t, dir, "local.yaml", ":::")

		cfg, err := config.NewLoader(dir, config.Development).Load()
		require.NoError(t, err)
		assert.NotContains(t, cfg.LoadedFrom, filepath.Join(dir, "local.yaml"))
	})
}

func TestLoadFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	path := writeFile(t, dir, "canvas.yml", "node:\n  width: 200\n  height: 100\n")
	cfg, err := config.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 200.0, cfg.Node.Width)
	assert.Equal(t, 100.0, cfg.Node.Height)

	empty := writeFile(t, dir, "empty.yaml", "")
	cfg, err = config.LoadFile(empty)
	require.NoError(t, err)
	assert.Equal(t, config.Default().Node, cfg.Node)

	_, err = config.LoadFile(filepath.Join(dir, "canvas.toml"))
	assert.Error(t, err)

	_, err = config.LoadFile(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestApplyEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("ENVIRONMENT", "Staging")
	t.Setenv("CANVAS_ZOOM_TO_POINTER", "true")
	t.Setenv("METRICS_ENABLED", "false")
	t.Setenv("LOG_LEVEL", "WARN")

	cfg := config.Default()
	require.NoError(t, config.ApplyEnvironment(cfg))

	assert.Equal(t, config.Staging, cfg.Environment)
	assert.True(t, cfg.Viewport.ZoomToPointer)
	assert.False(t, cfg.Metrics.Enabled)
	assert.Equal(t, "warn", cfg.Logging.Level)

	t.Setenv("CANVAS_MAX_SCALE", "huge")
	assert.Error(t, config.ApplyEnvironment(cfg))
}

func TestWatcher_Reload(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := writeFile(t, dir, "base.yaml", "edge:\n  curve_offset: 30\n")

	loader := config.NewLoader(dir, config.Development)
	initial, err := loader.Load()
	require.NoError(t, err)

	w, err := config.NewWatcher(loader, initial, zap.NewNop(), config.WithDebounce(10*time.Millisecond))
	require.NoError(t, err)
	defer w.Stop()

	changed := make(chan *config.Config, 1)
	w.OnChange(func(c *config.Config) { changed <- c })

	require.NoError(t, os.WriteFile(path, []byte("edge:\n  curve_offset: 55\n"), 0o644))

	select {
	case c := <-changed:
		assert.Equal(t, 55.0, c.Edge.CurveOffset)
	case <-time.After(5 * time.Second):
		t.Fatal("no reload after config change")
	}
	assert.Equal(t, 55.0, w.GetConfig().Edge.CurveOffset)
}

func TestWatcher_InvalidReloadKeepsPrevious(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := writeFile(t, dir, "base.yaml", "edge:\n  curve_offset: 30\n")

	loader := config.NewLoader(dir, config.Production)
	initial, err := loader.Load()
	require.NoError(t, err)

	// Production never starts the file loop; Reload is driven by hand
	w, err := config.NewWatcher(loader, initial, zap.NewNop())
	require.NoError(t, err)
	defer w.Stop()

	calls := make(chan *config.Config, 4)
	w.OnChange(func(c *config.Config) { calls <- c })

	require.NoError(t, os.WriteFile(path, []byte("viewport:\n  min_scale: -1\n"), 0o644))
	w.Reload()
	assert.Same(t, initial, w.GetConfig())

	// Unchanged content does not notify
	require.NoError(t, os.WriteFile(path, []byte("edge:\n  curve_offset: 30\n"), 0o644))
	w.Reload()
	assert.Same(t, initial, w.GetConfig())

	assert.Never(t, func() bool { return len(calls) > 0 }, 50*time.Millisecond, 10*time.Millisecond)
}

func TestWatcher_PanickingCallback(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := writeFile(t, dir, "base.yaml", "node:\n  width: 100\n")

	loader := config.NewLoader(dir, config.Production)
	initial, err := loader.Load()
	require.NoError(t, err)

	w, err := config.NewWatcher(loader, initial, zap.NewNop())
	require.NoError(t, err)
	defer w.Stop()

	got := make(chan float64, 1)
	w.OnChange(func(*config.Config) { panic("boom") })
	w.OnChange(func(c *config.Config) { got <- c.Node.Width })

	require.NoError(t, os.WriteFile(path, []byte("node:\n  width: 120\n"), 0o644))
	w.Reload()

	select {
	case width := <-got:
		assert.Equal(t, 120.0, width)
	case <-time.After(time.Second):
		t.Fatal("healthy callback was not notified")
	}
}

func TestEnvironmentFromEnv(t *testing.T) {
	tests := map[string]config.Environment{
		"":           config.Development,
		"production": config.Production,
		"STAGING":    config.Staging,
		"qa":         config.Development,
	}
	for value, want := range tests {
		t.Run(value, func(t *testing.T) {
			t.Setenv("ENVIRONMENT", value)
			assert.Equal(t, want, config.EnvironmentFromEnv())
		})
	}
}
