package deps

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/majorcontext/modsync/internal/pattern"
)

// ErrUnresolvedProperty is returned when a wildcard property names neither a
// contextual wildcard nor a named wildcard of the version pattern.
var ErrUnresolvedProperty = errors.New("unresolved property")

var declarationKeys = map[string]bool{
	"repository": true,
	"groupId":    true,
	"artifactId": true,
	"version":    true,
	"properties": true,
}

var propertyKeys = map[string]bool{
	"source": true,
	"name":   true,
}

// LoadDeclarations reads and validates a declarations file.
func LoadDeclarations(path string) ([]*Declaration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	decls, err := ParseDeclarations(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return decls, nil
}

// ParseDeclarations parses a YAML sequence of dependency declarations:
//
//	# modding-dependencies.yml
//	- repository: https://maven.fabricmc.net
//	  groupId: net.fabricmc.fabric-api
//	  artifactId: fabric-api
//	  version: "${fabric_version}+${mcVersion}"
//	  properties:
//	    fabric_version:
//	      source: wildcard
//
// Every field is required. Validation is eager: any error is reported here,
// before anything touches the network.
func ParseDeclarations(data []byte) ([]*Declaration, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing declarations: %w", err)
	}

	root := &doc
	if root.Kind == yaml.DocumentNode && len(root.Content) == 1 {
		root = root.Content[0]
	}
	if root.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("declarations must be a sequence")
	}

	decls := make([]*Declaration, 0, len(root.Content))
	for i, entry := range root.Content {
		decl, err := parseDeclaration(entry)
		if err != nil {
			return nil, fmt.Errorf("dependencies[%d]: %w", i, err)
		}
		decls = append(decls, decl)
	}
	return decls, nil
}

func parseDeclaration(node *yaml.Node) (*Declaration, error) {
	fields, err := mappingFields(node, declarationKeys)
	if err != nil {
		return nil, err
	}

	var decl Declaration
	if decl.Repository, err = stringField(fields, "repository"); err != nil {
		return nil, err
	}
	if decl.GroupID, err = stringField(fields, "groupId"); err != nil {
		return nil, err
	}

	artifactID, err := stringField(fields, "artifactId")
	if err != nil {
		return nil, err
	}
	if decl.ArtifactID, err = pattern.Compile(artifactID); err != nil {
		return nil, fmt.Errorf("artifactId: %w", err)
	}

	ver, err := stringField(fields, "version")
	if err != nil {
		return nil, err
	}
	if decl.Version, err = pattern.Compile(ver); err != nil {
		return nil, fmt.Errorf("version: %w", err)
	}

	propsNode, ok := fields["properties"]
	if !ok {
		return nil, fmt.Errorf("properties is required")
	}
	if decl.Properties, err = parseProperties(propsNode); err != nil {
		return nil, err
	}

	if err := decl.validate(); err != nil {
		return nil, err
	}
	return &decl, nil
}

func parseProperties(node *yaml.Node) ([]Property, error) {
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("properties must be a mapping from a name to {source, name}")
	}

	var props []Property
	seen := make(map[string]bool)
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode, valNode := node.Content[i], node.Content[i+1]
		if !isString(keyNode) {
			return nil, fmt.Errorf("properties: line %d: property name must be a string", keyNode.Line)
		}
		name := keyNode.Value
		if seen[name] {
			return nil, fmt.Errorf("properties: duplicate property %q", name)
		}
		seen[name] = true

		fields, err := mappingFields(valNode, propertyKeys)
		if err != nil {
			return nil, fmt.Errorf("properties.%s: %w", name, err)
		}
		source, err := stringField(fields, "source")
		if err != nil {
			return nil, fmt.Errorf("properties.%s: %w", name, err)
		}

		prop := Property{Name: name, Source: PropertySource(source), Wildcard: name}
		if _, ok := fields["name"]; ok {
			if prop.Wildcard, err = stringField(fields, "name"); err != nil {
				return nil, fmt.Errorf("properties.%s: %w", name, err)
			}
		}
		props = append(props, prop)
	}

	sort.Slice(props, func(i, j int) bool { return props[i].Name < props[j].Name })
	return props, nil
}

// mappingFields indexes a mapping node by key, rejecting unknown keys.
func mappingFields(node *yaml.Node, allowed map[string]bool) (map[string]*yaml.Node, error) {
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: expected a mapping", node.Line)
	}
	fields := make(map[string]*yaml.Node, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		if !allowed[key] {
			return nil, fmt.Errorf("line %d: unknown field %q", node.Content[i].Line, key)
		}
		if _, dup := fields[key]; dup {
			return nil, fmt.Errorf("line %d: duplicate field %q", node.Content[i].Line, key)
		}
		fields[key] = node.Content[i+1]
	}
	return fields, nil
}

func stringField(fields map[string]*yaml.Node, key string) (string, error) {
	node, ok := fields[key]
	if !ok {
		return "", fmt.Errorf("%s is required", key)
	}
	if !isString(node) {
		return "", fmt.Errorf("line %d: %s must be a string", node.Line, key)
	}
	return node.Value, nil
}

func isString(node *yaml.Node) bool {
	return node.Kind == yaml.ScalarNode && node.ShortTag() == "!!str"
}
