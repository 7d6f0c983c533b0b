// pkg/domain/page/page.go

// Package page describes the title page shown at the root of an API: the
// service identity, optional link buttons, an optional included content file
// and the redacted configuration table.
package page

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/damianoneill/go-titlepage/pkg/domain/config"
	"github.com/damianoneill/go-titlepage/pkg/domain/options"
)

//go:generate mockgen -destination=mocks/mock_page.go -package=mocks github.com/damianoneill/go-titlepage/pkg/domain/page Renderer

// MaxIncludeFileSize is the largest include file that is embedded in the page.
const MaxIncludeFileSize = 51200

// HiddenConfigurationNotice replaces the configuration table when there is
// nothing to show.
const HiddenConfigurationNotice = "Configuration values are hidden for security purposes."

// LinkButton is a named link rendered as a button below the header.
type LinkButton struct {
	Name string `mapstructure:"name" json:"name"`
	URL  string `mapstructure:"url" json:"url"`
}

// Options holds everything the title page displays.
type Options struct {
	// APIName is the page heading and title.
	APIName string

	// Description is shown below the heading.
	Description string

	// Version is the running service version.
	Version string

	// Environment is the hosting environment name, e.g. "Production".
	Environment string

	// BuildMode describes how the binary was built, e.g. "Release".
	BuildMode string

	// BuiltTime is shown as "---" when zero.
	BuiltTime time.Time

	// LinkButtons are rendered in order. The row is omitted when empty.
	LinkButtons []LinkButton

	// IncludeFile is an optional file shown in a second column. Files with
	// an .htm* extension are embedded as HTML, anything else as text.
	IncludeFile string

	// Configurations are the already redacted entries for the table.
	Configurations []config.FlatEntry
}

// Option is a function that modifies Options
type Option = options.Option[Options]

// DefaultOptions returns the values used when nothing is set.
func DefaultOptions() Options {
	return Options{
		APIName:     "API",
		Environment: "Production",
		BuildMode:   "Release",
	}
}

// WithName sets the API name.
func WithName(name string) Option {
	return options.OptionFunc[Options](func(o *Options) error {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("api name cannot be empty")
		}
		o.APIName = name
		return nil
	})
}

func WithDescription(description string) Option {
	return options.OptionFunc[Options](func(o *Options) error {
		o.Description = description
		return nil
	})
}

func WithVersion(version string) Option {
	return options.OptionFunc[Options](func(o *Options) error {
		o.Version = version
		return nil
	})
}

func WithEnvironment(environment string) Option {
	return options.OptionFunc[Options](func(o *Options) error {
		o.Environment = environment
		return nil
	})
}

func WithBuildMode(mode string) Option {
	return options.OptionFunc[Options](func(o *Options) error {
		o.BuildMode = mode
		return nil
	})
}

func WithBuildTime(built time.Time) Option {
	return options.OptionFunc[Options](func(o *Options) error {
		o.BuiltTime = built
		return nil
	})
}

// WithLinkButton appends a button. Buttons keep the order they were added in.
func WithLinkButton(name, url string) Option {
	return options.OptionFunc[Options](func(o *Options) error {
		if name == "" || url == "" {
			return fmt.Errorf("link button needs a name and a url: %q %q", name, url)
		}
		o.LinkButtons = append(o.LinkButtons, LinkButton{Name: name, URL: url})
		return nil
	})
}

// WithIncludeFile sets the path of a file shown next to the configuration.
func WithIncludeFile(path string) Option {
	return options.OptionFunc[Options](func(o *Options) error {
		o.IncludeFile = path
		return nil
	})
}

// WithConfigurations sets the entries shown in the configuration table.
func WithConfigurations(entries []config.FlatEntry) Option {
	return options.OptionFunc[Options](func(o *Options) error {
		o.Configurations = entries
		return nil
	})
}

// BuildTimeFromVersion derives a build time from an auto-incremented version:
// build is the number of days since start and revision the number of minutes
// since midnight on that day.
func BuildTimeFromVersion(start time.Time, build, revision int) time.Time {
	day := start.AddDate(0, 0, build)
	midnight := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	return midnight.Add(time.Duration(revision) * time.Minute)
}

// Renderer writes the title page.
type Renderer interface {
	// Render writes the complete HTML document for opts to w. Problems with
	// the include file are shown in the page rather than returned.
	Render(w io.Writer, opts Options) error
}
