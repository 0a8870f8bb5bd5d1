// Package config provides configuration management for the canvas engine.
//
// Configuration is loaded from multiple sources in priority order (highest wins):
//  1. Default values in code
//  2. base.yaml (or base.json) - common settings
//  3. {environment}.yaml - environment-specific overrides
//  4. local.yaml - developer overrides, development only
//  5. Environment variables
//
// # File Structure
//
//	config/
//	├── base.yaml
//	├── development.yaml
//	├── production.yaml
//	└── local.yaml
//
// # Usage
//
//	loader := config.NewLoader("config", config.Development)
//	cfg, err := loader.Load()
//	if err != nil {
//	    return err
//	}
//
// Hot reloading re-runs the loader when a file in the config directory
// changes and hands the new value to registered callbacks:
//
//	watcher, err := config.NewWatcher(loader, cfg, logger)
//	watcher.OnChange(func(c *config.Config) { canvas.ApplyConfig(c) })
//	defer watcher.Stop()
//
// # Environment Variables
//
//	ENVIRONMENT             development | staging | production
//	CANVAS_MIN_SCALE        viewport.min_scale
//	CANVAS_MAX_SCALE        viewport.max_scale
//	CANVAS_ZOOM_TO_POINTER  viewport.zoom_to_pointer
//	SERVER_HOST             server.host
//	SERVER_PORT             server.port
//	LOG_LEVEL               logging.level
//	LOG_FORMAT              logging.format
//	METRICS_ENABLED         metrics.enabled
//	METRICS_NAMESPACE       metrics.namespace
//	TRACING_ENABLED         tracing.enabled
//	OTEL_EXPORTER_OTLP_ENDPOINT  tracing.endpoint
package config
