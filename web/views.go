package web

import (
	"errors"
	"net/http"
	"strings"

	"github.com/beconnected/beconnected"
	"github.com/beconnected/beconnected/http/resp"
	"github.com/beconnected/beconnected/http/router"
	"github.com/beconnected/beconnected/route"
)

type profileData struct {
	Profile     beconnected.User
	IsSelf      bool
	Connections []beconnected.User
}

type networkData struct {
	Query   string
	Results []beconnected.User
}

func (h *Handler) home(w http.ResponseWriter, r *http.Request) {
	if err := h.Html(w, r, layout(r), resp.Tmpls(homeTmpl)); err != nil {
		h.Err(w, r, err)
	}
}

func (h *Handler) feed(w http.ResponseWriter, r *http.Request) {
	if err := h.Html(w, r, resp.Authed(), resp.Tmpls(feedTmpl)); err != nil {
		h.Err(w, r, err)
	}
}

// network searches for people to connect with by the "q" query param.
func (h *Handler) network(w http.ResponseWriter, r *http.Request) {
	u, _ := currentUser(r.Context())
	data := networkData{Query: strings.TrimSpace(r.URL.Query().Get("q"))}

	var err error
	data.Results, err = h.accounts.Search(r.Context(), data.Query, u.ID)
	if err != nil {
		if err := h.Redirect(w, r, resp.GenericErr(err), resp.Url(route.FeedPath), resp.Code(http.StatusSeeOther)); err != nil {
			h.Err(w, r, err)
		}
		return
	}

	if wantsJSON(r) {
		if err := h.Json(w, r, resp.Data(data)); err != nil {
			h.Err(w, r, err)
		}

		return
	}

	if err := h.Html(w, r, resp.Authed(), resp.Tmpls(networkTmpl), resp.Data(data)); err != nil {
		h.Err(w, r, err)
	}
}

func (h *Handler) profile(w http.ResponseWriter, r *http.Request) {
	h.renderProfile(w, r, profileTmpl)
}

func (h *Handler) connections(w http.ResponseWriter, r *http.Request) {
	h.renderProfile(w, r, connectionsTmpl)
}

// renderProfile renders tmpl with the user named by the username param of the matched route.
func (h *Handler) renderProfile(w http.ResponseWriter, r *http.Request, tmpl string) {
	m, ok := router.MatchFrom(r.Context())
	if !ok {
		h.notFound(w, r)
		return
	}

	username := m.Params.Get(route.UsernameParam)
	p, err := h.accounts.FindUser(r.Context(), username)
	if errors.Is(err, beconnected.ErrNotExist) {
		h.notFound(w, r)
		return
	}

	if err != nil {
		if err := h.Redirect(w, r, resp.GenericErr(err), resp.Url(route.FeedPath), resp.Code(http.StatusSeeOther)); err != nil {
			h.Err(w, r, err)
		}
		return
	}

	u, _ := currentUser(r.Context())
	data := profileData{Profile: p, IsSelf: p.ID == u.ID, Connections: []beconnected.User{}}
	if err := h.Html(w, r, resp.Authed(), resp.Tmpls(tmpl), resp.Data(data)); err != nil {
		h.Err(w, r, err)
	}
}

func (h *Handler) messages(w http.ResponseWriter, r *http.Request) {
	if err := h.Html(w, r, resp.Authed(), resp.Tmpls(messagesTmpl)); err != nil {
		h.Err(w, r, err)
	}
}

func (h *Handler) settings(w http.ResponseWriter, r *http.Request) {
	if err := h.Html(w, r, resp.Authed(), resp.Tmpls(settingsTmpl)); err != nil {
		h.Err(w, r, err)
	}
}

// notFound renders the not found page with a 404,
// inside whichever layout fits the visitor.
func (h *Handler) notFound(w http.ResponseWriter, r *http.Request) {
	if wantsJSON(r) {
		if err := h.Json(w, r, resp.Code(http.StatusNotFound)); err != nil {
			h.Err(w, r, err)
		}

		return
	}

	if err := h.Html(w, r, layout(r), resp.Tmpls(notFoundTmpl), resp.Code(http.StatusNotFound)); err != nil {
		h.Err(w, r, err)
	}
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if err := h.Json(w, r, resp.Data(map[string]string{"status": "ok"})); err != nil {
		h.Err(w, r, err)
	}
}
