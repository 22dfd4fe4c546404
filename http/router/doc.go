/*
Package router routes HTTP requests to the web app's handlers, as a thin wrapper around [mux.Router].

A [Router] registers two kinds of routes.
Views come from a [route.Table]: [*Router.HandleViews] registers every Entry in the order the table matches them,
placing [middleware.RequireAuthed] in front of each so that the Auth Guard decides on every request.
Actions, like submitting the login form, are plain [Route]s registered with [*Router.HandleRoutes].

Middlewares every request needs are set once with [*Router.OnEveryRequest], before registering routes.
*/
package router
