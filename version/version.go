// Package version reports which build of minisynth is running.
package version

import "runtime/debug"

// Version can be set when building:
// go build -ldflags "-X github.com/rsta2/minisynth/version.Version=$(git describe --dirty)"
var Version string

// Hash is the short VCS revision the binary was built from, with "-dirty"
// appended for a modified tree, or "" if unknown.
var Hash = vcsHash()

// VersionOrHash is Version if set, then the module version of an installed
// binary, then Hash, then "devel".
var VersionOrHash = func() string {
	if Version != "" {
		return Version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	if Hash != "" {
		return Hash
	}
	return "devel"
}()

func vcsHash() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	var revision string
	var modified bool
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			revision = setting.Value
		case "vcs.modified":
			modified = setting.Value == "true"
		}
	}
	if len(revision) > 7 {
		revision = revision[:7]
	}
	if revision != "" && modified {
		revision += "-dirty"
	}
	return revision
}
