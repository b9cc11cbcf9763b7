package handler

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"votecheck/internal/platform/i18n"
)

//go:embed templates/index.html
var templateFS embed.FS

var indexTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

type indexPage struct {
	Lang       string
	Title      string
	IDLabel    string
	Submit     string
	Loading    string
	InvalidID  string
	Election   string
	Referendum string
}

// HandleIndex serves the lookup form.
func (h *Handler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	page := indexPage{
		Lang:       i18n.FromContext(ctx).String(),
		Title:      i18n.T(ctx, i18n.MsgPageTitle),
		IDLabel:    i18n.T(ctx, i18n.MsgIDLabel),
		Submit:     i18n.T(ctx, i18n.MsgSubmit),
		Loading:    i18n.T(ctx, i18n.MsgLoading),
		InvalidID:  i18n.T(ctx, i18n.MsgInvalidID),
		Election:   i18n.T(ctx, i18n.MsgElection),
		Referendum: i18n.T(ctx, i18n.MsgReferendum),
	}

	var buf bytes.Buffer
	if err := indexTemplate.Execute(&buf, page); err != nil {
		h.logger.ErrorContext(ctx, "render index", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}
