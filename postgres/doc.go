/*
Package postgres manages our database connection. As part of the connection process, we also ensure that all migrations
have been run on the proper database. The situation where the database is simply a target for some testing has been
considered as well. In this scenario, we are dropping the public schema.

[DB] wraps a *gorm.DB with finisher methods returning the web app's sentinel errors,
and [UserStore] persists users on top of it.
*/
package postgres
