// Package page renders the title page with html/template.
package page

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	domainpage "github.com/damianoneill/go-titlepage/pkg/domain/page"
)

//go:embed templates/index.html.tmpl
var templates embed.FS

// builtLayout formats BuiltTime on the page.
const builtLayout = "2 January 2006, 15:04"

var bodyContent = regexp.MustCompile(`(?is)<body>(.+)</body>`)

var _ domainpage.Renderer = (*HTMLRenderer)(nil)

// HTMLRenderer renders domainpage.Options into a complete HTML document.
// Values are escaped by html/template; only .htm* include files are
// embedded verbatim.
type HTMLRenderer struct {
	tmpl *template.Template
}

func NewRenderer() (*HTMLRenderer, error) {
	tmpl, err := template.ParseFS(templates, "templates/index.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parsing page template: %w", err)
	}
	return &HTMLRenderer{tmpl: tmpl}, nil
}

type includeBlock struct {
	HTML   template.HTML
	Text   string
	Notice string
}

type view struct {
	domainpage.Options
	Built        string
	Include      *includeBlock
	HiddenNotice string
}

func (r *HTMLRenderer) Render(w io.Writer, opts domainpage.Options) error {
	v := view{
		Options:      opts,
		Built:        "---",
		HiddenNotice: domainpage.HiddenConfigurationNotice,
	}
	if !opts.BuiltTime.IsZero() {
		v.Built = opts.BuiltTime.Format(builtLayout)
	}
	if opts.IncludeFile != "" {
		v.Include = loadInclude(opts.IncludeFile)
	}

	if err := r.tmpl.Execute(w, v); err != nil {
		return fmt.Errorf("rendering title page: %w", err)
	}
	return nil
}

// loadInclude never fails: a file that cannot be shown becomes a notice.
func loadInclude(path string) *includeBlock {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return &includeBlock{Notice: fmt.Sprintf("Contents file %s not found!", path)}
	}
	if info.Size() > domainpage.MaxIncludeFileSize {
		return &includeBlock{Notice: fmt.Sprintf("Contents file %s is too big!", path)}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return &includeBlock{Notice: fmt.Sprintf("Contents file %s could not be read!", path)}
	}
	contents := string(data)

	if strings.HasPrefix(strings.ToLower(filepath.Ext(path)), ".htm") {
		if m := bodyContent.FindStringSubmatch(contents); m != nil {
			contents = m[1]
		}
		// #nosec G203 -- include files are deployed with the service
		return &includeBlock{HTML: template.HTML(contents)}
	}

	return &includeBlock{Text: contents}
}
