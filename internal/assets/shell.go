package assets

import (
	"bytes"
	"fmt"
	"html/template"
	"sync"
)

// ShellTemplateName names the engine host page template.
const ShellTemplateName = "shell"

// ShellData fills the engine host page.
type ShellData struct {
	ScriptURL string // pdf.js library
	WorkerURL string // pdf.js worker module
}

var shellTemplate = sync.OnceValues(func() (*template.Template, error) {
	content, err := LoadTemplate(ShellTemplateName)
	if err != nil {
		return nil, err
	}
	tmpl, err := template.New(ShellTemplateName).Parse(content)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTemplateRender, err)
	}
	return tmpl, nil
})

// RenderShell executes the engine host page for a locator.
func RenderShell(data ShellData) ([]byte, error) {
	tmpl, err := shellTemplate()
	if err != nil {
		return nil, err
	}

	// Locator URLs may be file:// URLs, which html/template would filter
	// out of src attributes. They come from configuration, not documents.
	view := struct {
		ScriptURL template.URL
		WorkerURL string
	}{
		ScriptURL: template.URL(data.ScriptURL), // #nosec G203 -- configured locator
		WorkerURL: data.WorkerURL,
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, view); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTemplateRender, err)
	}
	return buf.Bytes(), nil
}
