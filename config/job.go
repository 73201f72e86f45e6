package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalidJob is wrapped by every job validation failure.
var ErrInvalidJob = errors.New("invalid report job")

// Export formats understood by the export package.
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// Job describes one batch report run.
type Job struct {
	Inputs JobInputs `yaml:"inputs"`
	Output JobOutput `yaml:"output"`
	Charts bool      `yaml:"charts"`
}

type JobInputs struct {
	Events       string `yaml:"events"`
	Demographics string `yaml:"demographics"`
	Campaigns    string `yaml:"campaigns"`
}

type JobOutput struct {
	Dir     string   `yaml:"dir"`
	Formats []string `yaml:"formats"`
}

// LoadJob reads, normalizes and validates a job file. Relative input and
// output paths are resolved against the job file's directory.
func LoadJob(path string) (Job, error) {
	var job Job

	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return job, fmt.Errorf("job file not found at %s", path)
		}
		return job, fmt.Errorf("read job file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, &job); err != nil {
		return job, fmt.Errorf("parse job file %s: %w", path, err)
	}

	job.Normalize()
	job.resolve(filepath.Dir(path))
	if err := job.Validate(); err != nil {
		return job, fmt.Errorf("validate job file %s: %w", path, err)
	}
	return job, nil
}

func (j *Job) resolve(base string) {
	for _, p := range []*string{&j.Inputs.Events, &j.Inputs.Demographics, &j.Inputs.Campaigns, &j.Output.Dir} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(base, *p)
		}
	}
}

// Normalize trims paths, lower-cases and de-duplicates formats and applies
// defaults.
func (j *Job) Normalize() {
	j.Inputs.Events = strings.TrimSpace(j.Inputs.Events)
	j.Inputs.Demographics = strings.TrimSpace(j.Inputs.Demographics)
	j.Inputs.Campaigns = strings.TrimSpace(j.Inputs.Campaigns)
	j.Output.Dir = strings.TrimSpace(j.Output.Dir)
	if j.Output.Dir == "" {
		j.Output.Dir = "processed"
	}

	seen := make(map[string]bool)
	formats := make([]string, 0, len(j.Output.Formats))
	for _, f := range j.Output.Formats {
		f = strings.ToLower(strings.TrimSpace(f))
		if f == "" || seen[f] {
			continue
		}
		seen[f] = true
		formats = append(formats, f)
	}
	if len(formats) == 0 {
		formats = []string{FormatJSON}
	}
	j.Output.Formats = formats
}

// Validate checks that the events input is set and formats are known.
// Demographics and campaigns are optional.
func (j Job) Validate() error {
	if j.Inputs.Events == "" {
		return fmt.Errorf("%w: inputs.events is required", ErrInvalidJob)
	}
	for _, f := range j.Output.Formats {
		switch f {
		case FormatJSON, FormatCSV, FormatXLSX:
		default:
			return fmt.Errorf("%w: unsupported output format %q", ErrInvalidJob, f)
		}
	}
	return nil
}
