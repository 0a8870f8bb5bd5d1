package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Environment represents the deployment environment
type Environment string

const (
	Development Environment = "development"
	Staging     Environment = "staging"
	Production  Environment = "production"
)

// Config is the full engine configuration
type Config struct {
	Environment Environment `yaml:"environment" json:"environment" validate:"oneof=development staging production"`

	Viewport Viewport `yaml:"viewport" json:"viewport"`
	Node     Node     `yaml:"node" json:"node"`
	Edge     Edge     `yaml:"edge" json:"edge"`
	Drag     Drag     `yaml:"drag" json:"drag"`
	Layout   Layout   `yaml:"layout" json:"layout"`
	Server   Server   `yaml:"server" json:"server"`
	Logging  Logging  `yaml:"logging" json:"logging"`
	Metrics  Metrics  `yaml:"metrics" json:"metrics"`
	Tracing  Tracing  `yaml:"tracing" json:"tracing"`

	// LoadedFrom lists the sources applied, lowest priority first
	LoadedFrom []string `yaml:"-" json:"-"`
}

// Viewport holds zoom limits and step factors
type Viewport struct {
	MinScale      float64 `yaml:"min_scale" json:"min_scale" validate:"gt=0"`
	MaxScale      float64 `yaml:"max_scale" json:"max_scale" validate:"gtfield=MinScale"`
	WheelZoomIn   float64 `yaml:"wheel_zoom_in" json:"wheel_zoom_in" validate:"gt=1"`
	WheelZoomOut  float64 `yaml:"wheel_zoom_out" json:"wheel_zoom_out" validate:"gt=0,lt=1"`
	KeyZoomIn     float64 `yaml:"key_zoom_in" json:"key_zoom_in" validate:"gt=1"`
	KeyZoomOut    float64 `yaml:"key_zoom_out" json:"key_zoom_out" validate:"gt=0,lt=1"`
	MaxFitScale   float64 `yaml:"max_fit_scale" json:"max_fit_scale" validate:"gt=0"`
	FitFill       float64 `yaml:"fit_fill" json:"fit_fill" validate:"gt=0,lte=1"`
	ZoomToPointer bool    `yaml:"zoom_to_pointer" json:"zoom_to_pointer"`
}

// Node is the rendered extent of a node in logical units
type Node struct {
	Width  float64 `yaml:"width" json:"width" validate:"gt=0"`
	Height float64 `yaml:"height" json:"height" validate:"gt=0"`
}

// Edge holds link geometry, in screen pixels
type Edge struct {
	HitRadius       float64 `yaml:"hit_radius" json:"hit_radius" validate:"gt=0"`
	StrokeTolerance float64 `yaml:"stroke_tolerance" json:"stroke_tolerance" validate:"gte=0"`
	CurveOffset     float64 `yaml:"curve_offset" json:"curve_offset"`
}

// Drag tunes pointer handling
type Drag struct {
	FrameInterval time.Duration `yaml:"frame_interval" json:"frame_interval" validate:"gt=0"`
	DeadZone      float64       `yaml:"dead_zone" json:"dead_zone" validate:"gte=0"`
	// DoubleClickWindow is used when the host does not report click counts
	DoubleClickWindow time.Duration `yaml:"double_click_window" json:"double_click_window" validate:"gte=0"`
}

// Layout groups the per-algorithm tunables
type Layout struct {
	Radial  RadialLayout  `yaml:"radial" json:"radial"`
	Level   LevelLayout   `yaml:"level" json:"level"`
	Cluster ClusterLayout `yaml:"cluster" json:"cluster"`
}

// RadialLayout tunes the radial layout
type RadialLayout struct {
	CenterX       float64 `yaml:"center_x" json:"center_x"`
	CenterY       float64 `yaml:"center_y" json:"center_y"`
	RadiusPerNode float64 `yaml:"radius_per_node" json:"radius_per_node" validate:"gt=0"`
	MaxRadius     float64 `yaml:"max_radius" json:"max_radius" validate:"gt=0"`
}

// LevelLayout tunes the level (flowchart) layout
type LevelLayout struct {
	SpacingX float64 `yaml:"spacing_x" json:"spacing_x" validate:"gt=0"`
	SpacingY float64 `yaml:"spacing_y" json:"spacing_y" validate:"gt=0"`
	StartY   float64 `yaml:"start_y" json:"start_y"`
	Width    float64 `yaml:"width" json:"width" validate:"gt=0"`
}

// ClusterLayout tunes category clustering
type ClusterLayout struct {
	Uncategorized string  `yaml:"uncategorized" json:"uncategorized" validate:"required"`
	Columns       int     `yaml:"columns" json:"columns" validate:"gte=0"`
	CellWidth     float64 `yaml:"cell_width" json:"cell_width" validate:"gt=0"`
	CellHeight    float64 `yaml:"cell_height" json:"cell_height" validate:"gt=0"`
	Gap           float64 `yaml:"gap" json:"gap" validate:"gte=0"`
}

// Server configures the HTTP layout service
type Server struct {
	Host            string        `yaml:"host" json:"host"`
	Port            int           `yaml:"port" json:"port" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" json:"read_timeout" validate:"gt=0"`
	WriteTimeout    time.Duration `yaml:"write_timeout" json:"write_timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" json:"shutdown_timeout" validate:"gt=0"`
	MaxRequestSize  int64         `yaml:"max_request_size" json:"max_request_size" validate:"gt=0"`
	RequestTimeout  time.Duration `yaml:"request_timeout" json:"request_timeout" validate:"gt=0"`
	Breaker         Breaker       `yaml:"breaker" json:"breaker"`
}

// Breaker configures the circuit breaker guarding the layout routes
type Breaker struct {
	Enabled          bool          `yaml:"enabled" json:"enabled"`
	MaxRequests      uint32        `yaml:"max_requests" json:"max_requests" validate:"gte=1"`
	Interval         time.Duration `yaml:"interval" json:"interval" validate:"gte=0"`
	Timeout          time.Duration `yaml:"timeout" json:"timeout" validate:"gt=0"`
	FailureThreshold float64       `yaml:"failure_threshold" json:"failure_threshold" validate:"gt=0,lte=1"`
	MinRequests      uint32        `yaml:"min_requests" json:"min_requests" validate:"gte=1"`
}

// Address returns host:port
func (s Server) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Logging configures the zap logger
type Logging struct {
	Level  string `yaml:"level" json:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" json:"format" validate:"oneof=json console"`
}

// Metrics configures the prometheus collector
type Metrics struct {
	Enabled   bool   `yaml:"enabled" json:"enabled"`
	Namespace string `yaml:"namespace" json:"namespace" validate:"required_if=Enabled true"`
	Path      string `yaml:"path" json:"path" validate:"omitempty,startswith=/"`
}

// Tracing configures OpenTelemetry span export
type Tracing struct {
	Enabled     bool    `yaml:"enabled" json:"enabled"`
	ServiceName string  `yaml:"service_name" json:"service_name" validate:"required_if=Enabled true"`
	Endpoint    string  `yaml:"endpoint" json:"endpoint" validate:"omitempty,hostname_port"`
	Insecure    bool    `yaml:"insecure" json:"insecure"`
	SampleRate  float64 `yaml:"sample_rate" json:"sample_rate" validate:"gte=0,lte=1"`
}

// Default returns the configuration used when no file or variable overrides it
func Default() *Config {
	return &Config{
		Environment: Development,
		Viewport: Viewport{
			MinScale:     0.2,
			MaxScale:     3.0,
			WheelZoomIn:  1.1,
			WheelZoomOut: 0.9,
			KeyZoomIn:    1.2,
			KeyZoomOut:   0.8,
			MaxFitScale:  1.0,
			FitFill:      0.9,
		},
		Node: Node{Width: 160, Height: 80},
		Edge: Edge{
			HitRadius:       12,
			StrokeTolerance: 4,
			CurveOffset:     30,
		},
		Drag: Drag{
			FrameInterval:     16 * time.Millisecond,
			DeadZone:          3,
			DoubleClickWindow: 300 * time.Millisecond,
		},
		Layout: Layout{
			Radial: RadialLayout{CenterX: 400, CenterY: 300, RadiusPerNode: 50, MaxRadius: 300},
			Level:  LevelLayout{SpacingX: 220, SpacingY: 160, StartY: 80, Width: 1200},
			Cluster: ClusterLayout{
				Uncategorized: "uncategorized",
				CellWidth:     360,
				CellHeight:    280,
				Gap:           40,
			},
		},
		Server: Server{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			MaxRequestSize:  4 * 1024 * 1024, // 4MB
			RequestTimeout:  5 * time.Second,
			Breaker: Breaker{
				Enabled:          true,
				MaxRequests:      5,
				Interval:         30 * time.Second,
				Timeout:          60 * time.Second,
				FailureThreshold: 0.8,
				MinRequests:      5,
			},
		},
		Logging: Logging{Level: "info", Format: "json"},
		Metrics: Metrics{Enabled: true, Namespace: "ideamap", Path: "/metrics"},
		Tracing: Tracing{
			ServiceName: "ideamap-canvas",
			Endpoint:    "localhost:4317",
			Insecure:    true,
			SampleRate:  1.0,
		},
	}
}

var validate = validator.New()

// Validate checks struct tags and the rules that span sections
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if c.Viewport.MaxFitScale > c.Viewport.MaxScale {
		return fmt.Errorf("invalid configuration: viewport.max_fit_scale %.2f exceeds max_scale %.2f",
			c.Viewport.MaxFitScale, c.Viewport.MaxScale)
	}
	return nil
}

// EnvironmentFromEnv reads ENVIRONMENT, defaulting to development for
// unset or unknown values
func EnvironmentFromEnv() Environment {
	switch env := Environment(strings.ToLower(os.Getenv("ENVIRONMENT"))); env {
	case Staging, Production:
		return env
	default:
		return Development
	}
}
