// Package config loads settings from CUE files, unified against an
// embedded schema that supplies the defaults.
package config

import (
	_ "embed"
	"os"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/ezrec/lmcview/animate"
)

//go:embed schema.cue
var schema string

// Animation holds marker timings as CUE duration strings.
type Animation struct {
	Speed   float64 `json:"speed"`
	Minimum string  `json:"minimum"`
	Pulse   string  `json:"pulse"`
	Settle  string  `json:"settle"`
	Grace   string  `json:"grace"`
}

// Config is the decoded configuration.
type Config struct {
	Server    string    `json:"server"`
	Prefs     string    `json:"prefs"`
	Share     string    `json:"share"`
	Animation Animation `json:"animation"`
}

// Default is the configuration without any file.
func Default() (cfg Config, err error) {
	return Load()
}

// Load unifies the files at paths, in order, with the schema.
func Load(paths ...string) (cfg Config, err error) {
	ctx := cuecontext.New()

	value := ctx.CompileString("close({"+schema+"})", cue.Filename("schema.cue"))
	err = value.Err()
	if err != nil {
		return
	}

	for _, path := range paths {
		var content []byte
		content, err = os.ReadFile(path)
		if err != nil {
			return
		}

		file := ctx.CompileBytes(content, cue.Filename(path))
		err = file.Err()
		if err != nil {
			return
		}

		value = value.Unify(file)
	}

	err = value.Validate()
	if err != nil {
		return
	}

	err = value.Decode(&cfg)
	if err != nil {
		return
	}

	_, err = cfg.Animation.Timings()
	return
}

// Timings parses the durations.
func (anim Animation) Timings() (t Timings, err error) {
	fields := []struct {
		name  string
		value string
		to    *time.Duration
	}{
		{"minimum", anim.Minimum, &t.Minimum},
		{"pulse", anim.Pulse, &t.Pulse},
		{"settle", anim.Settle, &t.Settle},
		{"grace", anim.Grace, &t.Grace},
	}

	for _, field := range fields {
		*field.to, err = time.ParseDuration(field.value)
		if err != nil {
			err = &ErrDuration{Field: field.name, Value: field.value, Err: err}
			return
		}
	}

	t.Speed = anim.Speed
	return
}

// Timings are parsed animation settings.
type Timings struct {
	Speed   float64
	Minimum time.Duration
	Pulse   time.Duration
	Settle  time.Duration
	Grace   time.Duration
}

// Apply sets the sequencer's timings.
func (t Timings) Apply(seq *animate.Sequencer) {
	seq.Speed = t.Speed
	seq.Minimum = t.Minimum
	seq.Pulse = t.Pulse
	seq.Settle = t.Settle
	seq.Grace = t.Grace
}
