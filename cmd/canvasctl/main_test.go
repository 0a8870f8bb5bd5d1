package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"ideamap-canvas/pkg/api"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const chainYAML = `nodes:
  - id: A
    x: 0
    y: 0
    connections: [B]
  - id: B
    x: 100
    y: 100
    connections: [C]
  - id: C
    x: 200
    y: 200
`

const pairYAML = `nodes:
  - id: a
    x: 100
    y: 100
  - id: b
    x: 300
    y: 300
container:
  width: 800
  height: 600
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// run executes canvasctl with args and returns stdout
func run(t *testing.T, stdin io.Reader, args ...string) (string, error) {
	t.Helper()
	t.Setenv("ENVIRONMENT", "")
	t.Setenv("LOG_LEVEL", "error")

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	if stdin != nil {
		cmd.SetIn(stdin)
	}
	err := cmd.Execute()
	return out.String(), err
}

func placements(resp api.LayoutResponse) map[string]api.Placement {
	out := make(map[string]api.Placement, len(resp.Placements))
	for _, p := range resp.Placements {
		out[p.ID] = p
	}
	return out
}

func TestLayout_Radial(t *testing.T) {
	path := writeFile(t, "chain.yaml", chainYAML)

	out, err := run(t, nil, "layout", "radial", path)
	require.NoError(t, err)

	var resp api.LayoutResponse
	require.NoError(t, yaml.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "radial", resp.Kind)
	assert.Equal(t, "B", resp.Center)

	got := placements(resp)
	require.Len(t, got, 3)
	assert.InDelta(t, 400, got["B"].X, 1e-9)
	assert.InDelta(t, 300, got["B"].Y, 1e-9)
	assert.InDelta(t, 550, got["A"].X, 1e-9)
	assert.InDelta(t, 250, got["C"].X, 1e-9)
}

func TestLayout_LevelFromStdinAsJSON(t *testing.T) {
	in := strings.NewReader(`{"nodes":[{"id":"A","x":0,"y":0,"connections":["B"]},{"id":"B","x":5,"y":5}]}`)

	out, err := run(t, in, "layout", "level", "-", "--width", "1000", "-o", "json")
	require.NoError(t, err)

	var resp api.LayoutResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	got := placements(resp)

	require.NotNil(t, got["A"].Level)
	require.NotNil(t, got["B"].Level)
	assert.Equal(t, 0, *got["A"].Level)
	assert.Equal(t, 1, *got["B"].Level)
	assert.InDelta(t, 500, got["A"].X, 1e-9)
	assert.InDelta(t, 80, got["A"].Y, 1e-9)
	assert.Greater(t, got["B"].Y, got["A"].Y)
}

func TestLayout_WriteBackSnapshot(t *testing.T) {
	path := writeFile(t, "chain.yaml", chainYAML)

	out, err := run(t, nil, "layout", "radial", path, "--snapshot")
	require.NoError(t, err)

	snap, err := readSnapshot("-", strings.NewReader(out))
	require.NoError(t, err)
	require.Len(t, snap.Nodes, 3)
	assert.Equal(t, "A", snap.Nodes[0].ID)
	assert.Equal(t, []string{"B"}, snap.Nodes[0].Connections)
	assert.InDelta(t, 550, snap.Nodes[0].X, 1e-9)
	assert.InDelta(t, 400, snap.Nodes[1].X, 1e-9)
}

func TestLayout_Cluster(t *testing.T) {
	path := writeFile(t, "work.yaml", `nodes:
  - {id: a, x: 0, y: 0, category: work, connections: [b]}
  - {id: b, x: 0, y: 0, category: work, connections: [c]}
  - {id: c, x: 0, y: 0}
`)

	out, err := run(t, nil, "layout", "cluster", path)
	require.NoError(t, err)

	var resp api.ClusterResponse
	require.NoError(t, yaml.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Buckets, 2)
	assert.Equal(t, "uncategorized", resp.Buckets[0].Key)
	assert.Equal(t, "work", resp.Buckets[1].Key)
	assert.Equal(t, []string{"a", "b"}, resp.Buckets[1].Members)
	require.Len(t, resp.Edges, 1)
	assert.Equal(t, 1, resp.Edges[0].Count)
	assert.False(t, resp.Edges[0].Bidirectional)
}

func TestLayout_ConfigFile(t *testing.T) {
	path := writeFile(t, "chain.yaml", chainYAML)
	cfgPath := writeFile(t, "canvas.yaml", `layout:
  radial:
    center_x: 0
    center_y: 0
`)

	out, err := run(t, nil, "layout", "radial", path, "--config", cfgPath)
	require.NoError(t, err)

	var resp api.LayoutResponse
	require.NoError(t, yaml.Unmarshal([]byte(out), &resp))
	got := placements(resp)
	assert.InDelta(t, 0, got["B"].X, 1e-9)
	assert.InDelta(t, 150, got["A"].X, 1e-9)
}

func TestFit_Center(t *testing.T) {
	path := writeFile(t, "pair.yaml", pairYAML)

	out, err := run(t, nil, "fit", path, "--center")
	require.NoError(t, err)

	var resp api.ViewportResponse
	require.NoError(t, yaml.Unmarshal([]byte(out), &resp))
	assert.Equal(t, api.ViewportResponse{Scale: 1, PanX: 200, PanY: 100}, resp)

	out, err = run(t, nil, "fit", path, "--center", "--width", "1000")
	require.NoError(t, err)
	require.NoError(t, yaml.Unmarshal([]byte(out), &resp))
	assert.InDelta(t, 300, resp.PanX, 1e-9)
}

func TestFit_KeepsNodesCentered(t *testing.T) {
	path := writeFile(t, "pair.yaml", pairYAML)

	out, err := run(t, nil, "fit", path, "-o", "json")
	require.NoError(t, err)

	var resp api.ViewportResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Greater(t, resp.Scale, 0.0)
	assert.LessOrEqual(t, resp.Scale, 1.0)
}

func TestErrors(t *testing.T) {
	chain := writeFile(t, "chain.yaml", chainYAML)
	blank := writeFile(t, "blank.yaml", "nodes:\n  - {id: \"\", x: 0, y: 0}\n")

	tests := []struct {
		name    string
		stdin   string
		args    []string
		wantErr string
	}{
		{name: "unknown layout", args: []string{"layout", "spiral", chain}, wantErr: "unknown layout"},
		{name: "missing file", args: []string{"layout", "radial", filepath.Join(t.TempDir(), "nope.yaml")}, wantErr: "open snapshot"},
		{name: "empty stdin", args: []string{"layout", "radial"}, wantErr: "is empty"},
		{name: "blank id", args: []string{"layout", "radial", blank}, wantErr: "invalid snapshot"},
		{name: "unknown output", args: []string{"fit", chain, "-o", "xml"}, wantErr: "unknown output format"},
		{name: "bad log level", args: []string{"fit", chain, "--log-level", "loud"}, wantErr: "create logger"},
		{name: "unsupported config", args: []string{"fit", chain, "--config", "canvas.toml"}, wantErr: "load config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, strings.NewReader(tt.stdin), tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestServe_ShutsDownOnCancel(t *testing.T) {
	t.Setenv("ENVIRONMENT", "")
	opts := &rootOptions{logLevel: "error"}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- opts.serve(ctx, "127.0.0.1:0") }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
