package web

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

const (
	Title      = "RAG-TP"
	Subtitle   = "Retrieval-Augmented Generation — Prototype"
	StatusLine = "Frontend initialisé avec succès."
)

// The shell has no inputs, so its markup is fixed at init.
var shellHTML = `<div class="app">` +
	`<header class="app-header">` +
	`<h1>` + templ.EscapeString(Title) + `</h1>` +
	`<p>` + templ.EscapeString(Subtitle) + `</p>` +
	`</header>` +
	`<main>` +
	`<p>` + templ.EscapeString(StatusLine) + `</p>` +
	`</main>` +
	`</div>`

// Shell renders the application frame: a header with title and subtitle
// and a main block with a single status line.
func Shell() templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := io.WriteString(w, shellHTML)
		return err
	})
}

const (
	pageHead = `<!DOCTYPE html>` +
		`<html lang="fr">` +
		`<head>` +
		`<meta charset="utf-8">` +
		`<meta name="viewport" content="width=device-width, initial-scale=1">` +
		`<title>RAG-TP</title>` +
		`<link rel="stylesheet" href="/static/app.css">` +
		`</head>` +
		`<body><div id="root">`
	pageTail = `</div></body></html>`
)

// Page wraps Shell in a complete HTML document.
func Page() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, pageHead); err != nil {
			return err
		}
		if err := Shell().Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, pageTail)
		return err
	})
}
