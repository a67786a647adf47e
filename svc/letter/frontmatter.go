package letter

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

type frontmatter struct {
	Title   string `yaml:"title"`
	Subject string `yaml:"subject"`
}

var delimiter = []byte("---")

// splitFrontmatter separates the YAML header from the markdown body.
func splitFrontmatter(content []byte) (frontmatter, string, error) {
	var meta frontmatter
	if !bytes.HasPrefix(content, delimiter) {
		return meta, string(content), nil
	}

	rest := bytes.TrimLeft(bytes.TrimPrefix(content, delimiter), "\r\n")
	end := bytes.Index(rest, append([]byte("\n"), delimiter...))
	if end == -1 {
		return meta, "", fmt.Errorf("%w: closing frontmatter delimiter not found", ErrRender)
	}

	if err := yaml.Unmarshal(rest[:end], &meta); err != nil {
		return meta, "", fmt.Errorf("%w: frontmatter: %v", ErrRender, err)
	}

	body := rest[end+1+len(delimiter):]
	body = bytes.TrimPrefix(body, []byte("\r"))
	body = bytes.TrimPrefix(body, []byte("\n"))
	return meta, string(body), nil
}
