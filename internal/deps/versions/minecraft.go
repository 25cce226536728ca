package versions

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"

	"github.com/majorcontext/modsync/internal/log"
	"github.com/majorcontext/modsync/internal/version"
)

// DefaultManifestURL is Mojang's launcher version manifest.
const DefaultManifestURL = "https://piston-meta.mojang.com/mc/game/version_manifest_v2.json"

// Patches maps a minor version to its latest released patch.
type Patches map[int]int

// Latest returns the latest patch released on minor.
func (p Patches) Latest(minor int) (int, bool) {
	patch, ok := p[minor]
	return patch, ok
}

// Minors returns the known minor versions in ascending order.
func (p Patches) Minors() []int {
	minors := make([]int, 0, len(p))
	for m := range p {
		minors = append(minors, m)
	}
	sort.Ints(minors)
	return minors
}

// MinecraftCatalog reads released platform versions from the version
// manifest.
type MinecraftCatalog struct {
	// HTTPClient is the HTTP client to use. If nil, a client with
	// DefaultTimeout is used.
	HTTPClient *http.Client
	// URL overrides DefaultManifestURL.
	URL string
}

type manifestEntry struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

type manifest struct {
	Versions []manifestEntry `json:"versions"`
}

// LatestPatches returns, for every minor line of major, the highest patch
// published as a release. Snapshots and other non-release entries are
// ignored, as are ids that are not numeric platform versions.
func (c *MinecraftCatalog) LatestPatches(ctx context.Context, major int) (Patches, error) {
	u := c.URL
	if u == "" {
		u = DefaultManifestURL
	}
	req, err := newGet(ctx, u)
	if err != nil {
		return nil, err
	}

	log.Debug("fetching version manifest", "url", req.URL.Redacted())
	body, err := fetch(clientOrDefault(c.HTTPClient), req)
	if err != nil {
		return nil, fmt.Errorf("fetching version manifest: %w", err)
	}

	var m manifest
	if err := json.Unmarshal(body, &m); err != nil {
		return nil, fmt.Errorf("decoding version manifest: %w", err)
	}

	latest := make(Patches)
	for _, entry := range m.Versions {
		if entry.Type != "release" {
			continue
		}
		p, err := version.ParsePlatform(entry.ID)
		if err != nil {
			log.Debug("skipping unparsable release id", "id", entry.ID, "error", err)
			continue
		}
		if p.Major != major {
			continue
		}
		if cur, ok := latest[p.Minor]; !ok || p.Patch > cur {
			latest[p.Minor] = p.Patch
		}
	}
	if len(latest) == 0 {
		return nil, fmt.Errorf("version manifest lists no releases for major version %d", major)
	}
	return latest, nil
}
