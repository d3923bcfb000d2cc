// Package templates renders the HTML views served by the web package.
package templates

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/JonMunkholm/featureprep/internal/core"
	"github.com/JonMunkholm/featureprep/internal/table"
	"github.com/JonMunkholm/featureprep/internal/tableio"
	"github.com/a-h/templ"
)

const pageStyle = `body{font-family:system-ui,sans-serif;margin:2rem;color:#1f2937}` +
	`table{border-collapse:collapse;font-size:.875rem}` +
	`th,td{border:1px solid #d1d5db;padding:.25rem .5rem;text-align:right}` +
	`th{background:#f3f4f6}td.cat{text-align:left}` +
	`.alert{border:1px solid #fca5a5;background:#fef2f2;padding:1rem;border-radius:.375rem}` +
	`.meta{color:#6b7280;font-size:.875rem}`

// writer accumulates the first write error so components can render
// without checking every call.
type writer struct {
	w   io.Writer
	err error
}

func (w *writer) raw(s string) {
	if w.err != nil {
		return
	}
	_, w.err = io.WriteString(w.w, s)
}

func (w *writer) text(s string) {
	w.raw(templ.EscapeString(s))
}

func page(title string, body func(w *writer)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, out io.Writer) error {
		w := &writer{w: out}
		w.raw("<!DOCTYPE html><html lang=\"en\"><head><meta charset=\"utf-8\"><title>")
		w.text(title)
		w.raw("</title><style>" + pageStyle + "</style></head><body>")
		body(w)
		w.raw("</body></html>")
		return w.err
	})
}

// ErrorAlert renders an error box with its code and suggested action.
func ErrorAlert(message, action, code string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, out io.Writer) error {
		w := &writer{w: out}
		errorAlert(w, message, action, code)
		return w.err
	})
}

func errorAlert(w *writer, message, action, code string) {
	w.raw(`<div class="alert" role="alert"><strong>`)
	w.text(message)
	w.raw("</strong>")
	if action != "" {
		w.raw("<p>")
		w.text(action)
		w.raw("</p>")
	}
	w.raw(`<p class="meta">Code: `)
	w.text(code)
	w.raw("</p></div>")
}

// ErrorPage wraps ErrorAlert in a full document.
func ErrorPage(message, action, code string) templ.Component {
	return page("Run failed", func(w *writer) {
		w.raw("<h1>Run failed</h1>")
		errorAlert(w, message, action, code)
	})
}

// RunView renders the final table of a run.
func RunView(res *core.RunResult) templ.Component {
	return page("Run "+res.Source, func(w *writer) {
		w.raw("<h1>")
		w.text(res.Source)
		w.raw(`</h1><p class="meta">Run `)
		w.text(res.RunID)
		w.raw(fmt.Sprintf(" &middot; %d rows &middot; %d columns &middot; %d ms</p>",
			res.Rows, res.Columns, res.Millis))
		tableBody(w, res.Table)
	})
}

func tableBody(w *writer, t *table.Table) {
	cols := t.Columns()

	w.raw("<table><thead><tr><th>#</th>")
	for _, c := range cols {
		w.raw("<th>")
		w.text(c.Name())
		w.raw("</th>")
	}
	w.raw("</tr></thead><tbody>")

	for i := 0; i < t.Rows(); i++ {
		w.raw("<tr><td>" + strconv.Itoa(i) + "</td>")
		for _, c := range cols {
			if c.Kind() == table.Numeric {
				w.raw("<td>")
				w.text(tableio.FormatNumber(c.Float(i)))
			} else {
				w.raw(`<td class="cat">`)
				w.text(tableio.FormatText(c.Text(i)))
			}
			w.raw("</td>")
		}
		w.raw("</tr>")
	}
	w.raw("</tbody></table>")
}
