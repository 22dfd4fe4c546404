/*
Package auth authenticates users of the web app.

# Login

[Service.Login] checks an email, or username, and password against the bcrypt hash a [UserStore] holds
and, on success, issues a session token: an HS256 JWT whose subject is the user's ID.
Bad credentials are not errors, they come back as an unsuccessful [Result] with a reason.
Errors mean a collaborator, e.g., the database, failed.

# Google

When configured, [GoogleService] exchanges an OAuth2 code for the Google account's email
which [Service.LoginVerified] logs in without a password.
*/
package auth
