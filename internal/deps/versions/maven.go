package versions

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/majorcontext/modsync/internal/credential"
	"github.com/majorcontext/modsync/internal/log"
)

// CredentialSource looks up basic-auth credentials for a repository.
type CredentialSource interface {
	Get(repository string) (*credential.Credential, error)
}

// MavenLister lists artifact versions from a Maven repository's
// artifact-level maven-metadata.xml.
type MavenLister struct {
	// HTTPClient is the HTTP client to use. If nil, a client with
	// DefaultTimeout is used.
	HTTPClient *http.Client
	// Credentials, when set, supplies basic auth for private repositories.
	Credentials CredentialSource
}

// mavenMetadata is the subset of the A-level metadata document we read.
// See https://maven.apache.org/repositories/metadata.html
type mavenMetadata struct {
	XMLName    xml.Name `xml:"metadata"`
	Versioning *struct {
		Versions *struct {
			Version []string `xml:"version"`
		} `xml:"versions"`
	} `xml:"versioning"`
}

// MetadataURL returns the location of the metadata document for
// groupID:artifactID in repository.
func MetadataURL(repository, groupID, artifactID string) (string, error) {
	if !strings.HasSuffix(repository, "/") {
		repository += "/"
	}
	base, err := url.Parse(repository)
	if err != nil {
		return "", fmt.Errorf("invalid repository URL %q: %w", repository, err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return "", fmt.Errorf("invalid repository URL %q: scheme must be http or https", repository)
	}
	path := strings.ReplaceAll(groupID, ".", "/") + "/" + artifactID + "/maven-metadata.xml"
	ref, err := url.Parse(path)
	if err != nil {
		return "", fmt.Errorf("invalid coordinates %s:%s: %w", groupID, artifactID, err)
	}
	return base.ResolveReference(ref).String(), nil
}

// Versions returns every version listed for the artifact, in document order.
func (l *MavenLister) Versions(ctx context.Context, repository, groupID, artifactID string) ([]string, error) {
	u, err := MetadataURL(repository, groupID, artifactID)
	if err != nil {
		return nil, err
	}
	req, err := newGet(ctx, u)
	if err != nil {
		return nil, err
	}
	l.authorize(req, repository)

	log.Debug("fetching maven metadata", "url", req.URL.Redacted())
	body, err := fetch(clientOrDefault(l.HTTPClient), req)
	if err != nil {
		return nil, err
	}
	return parseMavenMetadata(body)
}

func (l *MavenLister) authorize(req *http.Request, repository string) {
	if l.Credentials == nil {
		return
	}
	cred, err := l.Credentials.Get(repository)
	if err != nil {
		if !errors.Is(err, credential.ErrNotFound) {
			log.Warn("reading repository credential", "repository", repository, "error", err)
		}
		return
	}
	req.SetBasicAuth(cred.Username, cred.Password)
}

func parseMavenMetadata(body []byte) ([]string, error) {
	var meta mavenMetadata
	if err := xml.Unmarshal(body, &meta); err != nil {
		return nil, fmt.Errorf("decoding maven metadata: %w", err)
	}
	if meta.Versioning == nil || meta.Versioning.Versions == nil || len(meta.Versioning.Versions.Version) == 0 {
		return nil, fmt.Errorf("could not find versions in maven metadata")
	}

	versions := make([]string, len(meta.Versioning.Versions.Version))
	for i, v := range meta.Versioning.Versions.Version {
		versions[i] = strings.TrimSpace(v)
	}
	return versions, nil
}
