package config

import "strings"

// DeploySection is the configuration section describing where built artifacts
// are copied.
const DeploySection = "deploy"

// Deploy config keys. Both are optional paths; an empty value means the
// corresponding artifact is not deployed.
const (
	DeployDocDir   = "doc_dir"
	DeployCoverDir = "cover_dir"
)

// Deploy holds the resolved deployment directories.
type Deploy struct {
	DocDir   string
	CoverDir string
}

// DeployDirs reads the deploy section, substituting the {name} and {type}
// placeholders with the project name and artifact type. Missing options
// resolve to empty strings.
func (c *Config) DeployDirs(name, artifactType string) Deploy {
	expand := func(option string) string {
		v, err := c.Get(DeploySection, option)
		if err != nil {
			return ""
		}
		v = strings.ReplaceAll(v, "{name}", name)
		v = strings.ReplaceAll(v, "{type}", artifactType)
		return v
	}

	return Deploy{
		DocDir:   expand(DeployDocDir),
		CoverDir: expand(DeployCoverDir),
	}
}
