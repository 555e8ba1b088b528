package generator

import (
	"log/slog"

	"github.com/calumari/nativize/internal/deps"
)

// Config holds generation settings for one batch.
type Config struct {
	Models       []string // object-model YAML files
	TypesDir     string   // optional Go package directory with struct and enum declarations
	TypesPackage string   // package path the Go declarations are registered under
	Output       string   // output directory
	Debug        bool     // when true, label every generated section
	Command      string   // canonical invocation command line
	Version      string   // nativizegen build version
	Options      Options
	Log          *slog.Logger
}

// Options are the batch settings that may also come from a YAML file.
type Options struct {
	// AsyncLoad keeps native dependencies in the tables and allows duplicates.
	AsyncLoad bool `yaml:"async_load"`
	// Server and Client drop assets excluded from the target build.
	Server bool `yaml:"server"`
	Client bool `yaml:"client"`
	// CallChain chains dependency functions of converted sibling classes.
	CallChain bool `yaml:"call_chain"`
	// Wrappers names native wrapper-template structs.
	Wrappers []string `yaml:"wrappers"`
	// Only restricts emission to the named converted types.
	Only []string `yaml:"only"`
	// Jobs limits parallel emission; zero uses every processor.
	Jobs int `yaml:"jobs"`
}

func (o Options) deps() deps.Options {
	return deps.Options{AsyncLoad: o.AsyncLoad, Server: o.Server, Client: o.Client, CallChain: o.CallChain}
}

func (o Options) wrappers() map[string]bool {
	out := make(map[string]bool, len(o.Wrappers))
	for _, w := range o.Wrappers {
		out[w] = true
	}
	return out
}

// fileModel is the root template model for one emitted type.
type fileModel struct {
	Name        string
	Sections    []sectionModel
	Unconverted []string
	Debug       bool
	Command     string
	Version     string
}

// sectionModel is one generated function or declaration.
type sectionModel struct {
	Title string
	Code  string
	Debug bool
}

// nativeModel is the template model of the dependency side table.
type nativeModel struct {
	Entries []deps.Entry
	Command string
	Version string
}
