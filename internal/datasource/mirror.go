package datasource

import (
	"fmt"
	"strings"
)

// Mirror locates pre-processed CSVs in the per-state GitHub data repositories
type Mirror struct {
	Org    string
	Branch string
}

// DefaultMirror points at the openelections organization's master branches
var DefaultMirror = Mirror{Org: "openelections", Branch: "master"}

func (m Mirror) root(state string) string {
	return fmt.Sprintf("https://raw.githubusercontent.com/%s/openelections-data-%s/%s",
		m.Org, strings.ToLower(state), m.Branch)
}

// GithubURL returns the raw URL of filename at the top of the state's data repository
func (m Mirror) GithubURL(state, filename string) string {
	return m.root(state) + "/" + filename
}

// RawGithubURL returns the raw URL of filename inside dir of the state's data repository
func (m Mirror) RawGithubURL(state, dir, filename string) string {
	return m.root(state) + "/" + strings.Trim(dir, "/") + "/" + filename
}
