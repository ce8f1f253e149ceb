package template

import (
	"bytes"
	"fmt"
	"strings"
	"sync"
	"text/template"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Name identifies a notification message
type Name string

const (
	Mismatch  Name = "mismatch"
	Recovered Name = "recovered"
)

// Default message bodies
const (
	DefaultMismatch  = "IP address mismatch between router and DNS server!\nRouter IP: {{.RouterIP}}\nDNS IP: {{.DNSIP}}"
	DefaultRecovered = "IP addresses are the same again"
)

// DefaultMismatchText renders the default mismatch message without a template
func DefaultMismatchText(routerIP, dnsIP string) string {
	return fmt.Sprintf("IP address mismatch between router and DNS server!\nRouter IP: %s\nDNS IP: %s", routerIP, dnsIP)
}

// Data is the value templates are executed with
type Data struct {
	Hostname string
	RouterIP string
	DNSIP    string
	Time     time.Time
	RaisedAt time.Time
}

// Loader manages notification templates
type Loader struct {
	logger    *zap.Logger
	templates map[Name]*template.Template
	mu        sync.RWMutex
}

// NewLoader creates a loader with the default templates, then applies any
// non-empty overrides.
func NewLoader(overrides map[Name]string, logger *zap.Logger) (*Loader, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	loader := &Loader{
		logger:    logger,
		templates: make(map[Name]*template.Template),
	}

	defaults := map[Name]string{
		Mismatch:  DefaultMismatch,
		Recovered: DefaultRecovered,
	}
	for name, content := range defaults {
		if err := loader.SetTemplate(name, content); err != nil {
			return nil, err
		}
	}

	for name, content := range overrides {
		if strings.TrimSpace(content) == "" {
			continue
		}
		if _, ok := defaults[name]; !ok {
			return nil, fmt.Errorf("unknown template: %s", name)
		}
		if err := loader.SetTemplate(name, content); err != nil {
			return nil, err
		}
	}

	return loader, nil
}

// SetTemplate parses and stores a template
func (t *Loader) SetTemplate(name Name, content string) error {
	tmpl, err := template.New(string(name)).Funcs(templateFuncs).Option("missingkey=error").Parse(content)
	if err != nil {
		return fmt.Errorf("invalid template %s: %w", name, err)
	}

	t.mu.Lock()
	t.templates[name] = tmpl
	t.mu.Unlock()
	return nil
}

// Render executes the named template
func (t *Loader) Render(name Name, data Data) (string, error) {
	t.mu.RLock()
	tmpl, ok := t.templates[name]
	t.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("template not found: %s", name)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render template %s: %w", name, err)
	}
	return buf.String(), nil
}

// Template functions available in all templates
var templateFuncs = template.FuncMap{
	"formatTime": func(t time.Time) string {
		return t.Format(time.RFC1123Z)
	},
	"formatDuration": func(d time.Duration) string {
		return d.Round(time.Second).String()
	},
	"since": func(t time.Time) time.Duration {
		if t.IsZero() {
			return 0
		}
		return time.Since(t)
	},
	"title": func(s string) string {
		return cases.Title(language.Und).String(s)
	},
	"upper": strings.ToUpper,
}
