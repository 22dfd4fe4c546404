/*
Package web serves the pages of BeConnected.

A [Handler] renders one page per [route.View] of the route table,
plus the actions around them: logging in and out, signing up,
signing in with Google and a health check.
[*Handler.Mount] registers all of them on a [router.Router],
which puts the guarded views behind the auth guard.

Templates and static assets are embedded; cf. [Templates] and [Assets].
Pages render inside one of two layouts, [AuthedTmpl] when someone is logged in
and [UnauthedTmpl] otherwise.
*/
package web
