/*
Package resp provides a high-level API for responding to HTTP requests
with an easy way to configure the responses application-wide.

resp provides three main ways of responding to an HTTP request:
  - rendering HTML templates
  - rendering JSON data
  - redirecting

Each accepts Fn functional options composing the particular response, e.g.:

	d.Html(w, r, resp.Authed(), resp.Tmpls("tmpl/feed.tmpl"), resp.Data(posts))
	d.Redirect(w, r, resp.Url("/login"), resp.Flash(flash))
*/
package resp
