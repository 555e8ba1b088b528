package generator

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadOptions reads batch options from a YAML file. Unknown keys are rejected.
func LoadOptions(path string) (Options, error) {
	var opts Options
	f, err := os.Open(path)
	if err != nil {
		return opts, err
	}
	defer f.Close()
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&opts); err != nil && !errors.Is(err, io.EOF) {
		return opts, fmt.Errorf("%s: %w", path, err)
	}
	if opts.Jobs < 0 {
		return opts, fmt.Errorf("%s: jobs must not be negative", path)
	}
	return opts, nil
}
