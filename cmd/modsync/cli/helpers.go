package cli

import (
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/majorcontext/modsync/internal/credential"
	"github.com/majorcontext/modsync/internal/deps"
	"github.com/majorcontext/modsync/internal/deps/versions"
	"github.com/majorcontext/modsync/internal/log"
)

// inActions reports whether modsync runs inside a GitHub Actions job.
func inActions() bool {
	return os.Getenv("GITHUB_ACTIONS") == "true"
}

// actionInput returns the workflow input name as exposed to the process,
// or def when the input is unset or blank.
func actionInput(name, def string) string {
	key := "INPUT_" + strings.ToUpper(strings.ReplaceAll(name, " ", "_"))
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// actionBool is actionInput for boolean inputs. Unparseable values fall back
// to def with a warning.
func actionBool(name string, def bool) bool {
	raw := actionInput(name, "")
	if raw == "" {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		log.Warn("ignoring invalid boolean input", "input", name, "value", raw)
		return def
	}
	return v
}

// writeActionOutput appends name=value to the step output file. It is a
// no-op when path is empty.
func writeActionOutput(path, name, value string) error {
	if path == "" {
		return nil
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening step output: %w", err)
	}
	if _, err := fmt.Fprintf(f, "%s=%s\n", name, value); err != nil {
		f.Close()
		return fmt.Errorf("writing step output: %w", err)
	}
	return f.Close()
}

func httpClient() *http.Client {
	return &http.Client{Timeout: globalCfg.Resolve.HTTPTimeout}
}

// newResolver builds a resolver that lists Maven metadata, authenticating
// with stored repository credentials.
func newResolver() *deps.Resolver {
	return &deps.Resolver{
		Lister: &versions.MavenLister{
			HTTPClient:  httpClient(),
			Credentials: credential.NewKeyringStore(),
		},
		Delay: globalCfg.Resolve.TrialDelay,
	}
}

func newCatalog() *versions.MinecraftCatalog {
	return &versions.MinecraftCatalog{
		HTTPClient: httpClient(),
		URL:        globalCfg.Platform.ManifestURL,
	}
}
