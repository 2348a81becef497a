package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"prismora-backend/internal/canvas"
	"prismora-backend/internal/models"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// snapshot is the file format prismctl reads: a board's cards and links.
// Ids may be any string; non-uuid ids are mapped to stable name-based uuids.
type snapshot struct {
	Prismions   []cardSpec `yaml:"prismions" json:"prismions"`
	Connections []linkSpec `yaml:"connections,omitempty" json:"connections,omitempty"`
}

type cardSpec struct {
	ID     string  `yaml:"id" json:"id"`
	X      float64 `yaml:"x" json:"x"`
	Y      float64 `yaml:"y" json:"y"`
	ZIndex int     `yaml:"zIndex,omitempty" json:"zIndex,omitempty"`
	W      float64 `yaml:"w,omitempty" json:"w,omitempty"`
	H      float64 `yaml:"h,omitempty" json:"h,omitempty"`
}

type linkSpec struct {
	From     string      `yaml:"from" json:"from"`
	To       string      `yaml:"to" json:"to"`
	FromPort models.Port `yaml:"fromPort,omitempty" json:"fromPort,omitempty"`
	ToPort   models.Port `yaml:"toPort,omitempty" json:"toPort,omitempty"`
}

type connectorReport struct {
	From     string      `yaml:"from" json:"from"`
	To       string      `yaml:"to" json:"to"`
	FromPort models.Port `yaml:"fromPort" json:"fromPort"`
	ToPort   models.Port `yaml:"toPort" json:"toPort"`
	Path     string      `yaml:"path" json:"path"`
	Bounds   canvas.Rect `yaml:"bounds" json:"bounds"`
}

func readSnapshot(path string, stdin io.Reader) (*snapshot, error) {
	var r io.Reader = stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	// JSON input parses as YAML too
	var s snapshot
	if err := yaml.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	seen := make(map[string]bool, len(s.Prismions))
	for _, c := range s.Prismions {
		if c.ID == "" {
			return nil, fmt.Errorf("prismion without id")
		}
		if seen[c.ID] {
			return nil, fmt.Errorf("duplicate prismion id %q", c.ID)
		}
		seen[c.ID] = true
	}
	return &s, nil
}

func cardUUID(id string) uuid.UUID {
	if u, err := uuid.Parse(id); err == nil {
		return u
	}
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(id))
}

func (c cardSpec) prismion() models.Prismion {
	size := models.Size{
		W:    c.W,
		H:    c.H,
		MinW: models.DefaultPrismionMinW,
		MinH: models.DefaultPrismionMinH,
	}
	if size.W == 0 {
		size.W = models.DefaultPrismionW
	}
	if size.H == 0 {
		size.H = models.DefaultPrismionH
	}
	return models.Prismion{
		UUID:     cardUUID(c.ID),
		Position: models.Position{X: c.X, Y: c.Y, ZIndex: c.ZIndex},
		Size:     size.Clamp(),
		State:    models.PrismionActive,
	}
}

func (s *snapshot) prismions() []models.Prismion {
	out := make([]models.Prismion, len(s.Prismions))
	for i, c := range s.Prismions {
		out[i] = c.prismion()
	}
	return out
}

// resolve runs the overlap resolver over the snapshot and writes the new
// positions back into it.
func (s *snapshot) resolve(opts canvas.ResolveOptions, target string) {
	if target != "" {
		opts.TargetID = cardUUID(target).String()
	}
	resolved := canvas.ResolveOverlapsList(s.prismions(), &opts)
	for i := range s.Prismions {
		s.Prismions[i].X = resolved[i].Position.X
		s.Prismions[i].Y = resolved[i].Position.Y
		s.Prismions[i].W = resolved[i].Size.W
		s.Prismions[i].H = resolved[i].Size.H
	}
}

func (s *snapshot) connectors() ([]connectorReport, error) {
	byID := make(map[string]models.Prismion, len(s.Prismions))
	for _, c := range s.Prismions {
		byID[c.ID] = c.prismion()
	}

	out := make([]connectorReport, 0, len(s.Connections))
	for _, l := range s.Connections {
		from, ok := byID[l.From]
		if !ok {
			return nil, fmt.Errorf("connection references unknown prismion %q", l.From)
		}
		to, ok := byID[l.To]
		if !ok {
			return nil, fmt.Errorf("connection references unknown prismion %q", l.To)
		}
		if (l.FromPort != "" && !l.FromPort.Valid()) || (l.ToPort != "" && !l.ToPort.Valid()) {
			return nil, fmt.Errorf("invalid port on %s -> %s", l.From, l.To)
		}

		ports := canvas.FindOptimalPorts(from, to)
		conn := models.Connection{
			FromPrismionID: from.UUID,
			FromPort:       ports.FromPort,
			ToPrismionID:   to.UUID,
			ToPort:         ports.ToPort,
		}
		if l.FromPort != "" {
			conn.FromPort = l.FromPort
		}
		if l.ToPort != "" {
			conn.ToPort = l.ToPort
		}

		geo := canvas.BuildConnectorGeometry(conn, from, to)
		out = append(out, connectorReport{
			From:     l.From,
			To:       l.To,
			FromPort: conn.FromPort,
			ToPort:   conn.ToPort,
			Path:     geo.Path,
			Bounds:   geo.Bounds,
		})
	}
	return out, nil
}

func writeOutput(w io.Writer, format string, v interface{}) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml", "":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}
