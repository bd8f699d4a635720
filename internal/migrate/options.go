package migrate

import "strings"

// VersionMode distinguishes how the -v/--version flag was supplied.
type VersionMode int

// Supported version modes.
const (
	// VersionUnset means the flag was absent.
	VersionUnset VersionMode = iota
	// VersionShow means the flag was given without a value: list installed migrations.
	VersionShow
	// VersionExplicit means the flag carried a version token.
	VersionExplicit
)

// VersionOption captures the -v/--version flag.
type VersionOption struct {
	Mode  VersionMode
	Token string
}

// ExplicitVersion returns an option carrying token, or an unset option for a blank token.
func ExplicitVersion(token string) VersionOption {
	trimmedToken := strings.TrimSpace(token)
	if len(trimmedToken) == 0 {
		return VersionOption{}
	}
	return VersionOption{Mode: VersionExplicit, Token: trimmedToken}
}

// ShowInstalledVersions returns the bare-flag option.
func ShowInstalledVersions() VersionOption {
	return VersionOption{Mode: VersionShow}
}

// explicitToken returns the version token for explicit options and "" otherwise.
func (option VersionOption) explicitToken() string {
	if option.Mode != VersionExplicit {
		return ""
	}
	return option.Token
}

// RunOptions are shared by every target of one invocation.
type RunOptions struct {
	Version VersionOption
	Catchup bool
}
