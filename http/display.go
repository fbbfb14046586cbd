package http

import (
	"embed"
	"html/template"
	"io"
	"math/rand"
	"strings"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"bookgenre/feedback"
	"bookgenre/ml"
	"bookgenre/pipeline"
)

//go:embed templates/*.html
var templateFS embed.FS

// Quotes shown under a prediction.
var Quotes = []string{
	"“A reader lives a thousand lives before he dies.” – George R.R. Martin",
	"“So many books, so little time.” – Frank Zappa",
	"“Books are a uniquely portable magic.” – Stephen King",
	"“Until I feared I would lose it, I never loved to read.” – Harper Lee",
}

var titleCaser = cases.Title(language.English)

// Humanize turns a schema field name into a form label, e.g. Books_Read_Per_Year -> Books Read Per Year.
func Humanize(field string) string {
	return titleCaser.String(strings.ReplaceAll(field, "_", " "))
}

// quotePicker picks quotes uniformly at random. rand.Rand is not safe for concurrent use.
type quotePicker struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func (p *quotePicker) pick() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Quotes[p.rng.Intn(len(Quotes))]
}

type formField struct {
	Name        string
	Label       string
	Categorical bool
	Options     []string
	Value       string
}

type formPage struct {
	Version string
	Fields  []formField
	Error   string
}

type choiceOption struct {
	Value string
	Text  string
}

type resultPage struct {
	Label     string
	Glyph     string
	Quote     string
	Inputs    []pipeline.FieldValue
	ChoiceKey string
	Choices   []choiceOption
	Error     string
}

type thanksPage struct {
	Label  string
	Glyph  string
	Choice string
	Saved  bool
}

type renderer struct {
	tmpl *template.Template
}

func newRenderer() (*renderer, error) {
	tmpl, err := template.New("").Funcs(template.FuncMap{"humanize": Humanize}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &renderer{tmpl: tmpl}, nil
}

func (r *renderer) render(w io.Writer, name string, data any) error {
	return r.tmpl.ExecuteTemplate(w, name, data)
}

// buildForm lays out one input per schema field in schema order.
// Submitted values are kept so a rejected form comes back filled in.
func buildForm(artifacts *ml.Artifacts, submitted map[string]string, message string) formPage {
	page := formPage{Version: artifacts.Schema.Version, Error: message}
	for _, name := range artifacts.Schema.Fields {
		field := formField{Name: name, Label: Humanize(name)}
		if enc, ok := artifacts.Encoders[name]; ok {
			field.Categorical = true
			field.Options = enc.Classes()
		} else {
			field.Value = "0"
		}
		if v, ok := submitted[name]; ok {
			field.Value = v
		}
		page.Fields = append(page.Fields, field)
	}
	return page
}

func feedbackChoices() []choiceOption {
	choices := feedback.Choices()
	options := make([]choiceOption, 0, len(choices))
	for _, c := range choices {
		options = append(options, choiceOption{Value: string(c), Text: c.Text()})
	}
	return options
}
