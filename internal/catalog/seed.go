package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/robalobadob/npsguess/assets"
	"github.com/robalobadob/npsguess/internal/park"
)

// SeedProvider serves a static catalog, either from a JSON file on disk
// or from the copy embedded in the binary.
//
// The file format is a JSON array of park.Park objects.
type SeedProvider struct {
	path string
}

// NewSeedProvider returns a provider reading path, or the embedded seed
// catalog when path is empty.
func NewSeedProvider(path string) *SeedProvider {
	return &SeedProvider{path: path}
}

func (s *SeedProvider) Name() string { return SourceSeed }

func (s *SeedProvider) FetchParks(ctx context.Context) ([]park.Park, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		raw []byte
		err error
	)
	if s.path != "" {
		raw, err = os.ReadFile(s.path)
	} else {
		raw, err = assets.SeedParks()
	}
	if err != nil {
		return nil, fmt.Errorf("read seed catalog: %w", err)
	}
	return DecodeParks(raw)
}

// DecodeParks parses a JSON array of parks and normalizes each entry.
// Entries without a name are skipped.
func DecodeParks(raw []byte) ([]park.Park, error) {
	var in []park.Park
	if err := json.Unmarshal(raw, &in); err != nil {
		return nil, fmt.Errorf("decode parks: %w", err)
	}
	out := make([]park.Park, 0, len(in))
	for _, p := range in {
		p = park.Normalize(p)
		if p.Name == "" {
			continue
		}
		if p.Location != nil && !p.Location.Valid() {
			p.Location = nil
		}
		out = append(out, p)
	}
	if len(out) == 0 {
		return nil, errors.New("decode parks: no parks")
	}
	return out, nil
}
