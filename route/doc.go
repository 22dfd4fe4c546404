/*
Package route defines which views the web app serves and who may see them.

# Table

A [Table] maps URL path patterns to a [View].
Patterns are written with named parameters, like "/profile/:username",
and every [Entry] in a [Table] has a unique pattern.
[*Table.Match] resolves a request path to the single best [Entry]:
literal segments win over parameter segments,
regardless of the order entries were declared in.

[Default] builds the table the web app serves.

# Guard

A [Guard] decides, for one navigation, whether a view renders or the navigation
is redirected to the login page.
A [Guard] never remembers a verdict;
calling code supplies the session state of the navigation being checked every time.
*/
package route
