/*
Package req provides ergonomics for handling an HTTP request.

A [Parser] decodes the payload of a request into a pointer to a struct,
whether the payload is JSON, for API clients, or a url-encoded form, for browsers.
The struct uses "json" and "schema" tags to match keys in the payload to its fields
and "validate" tags to state what values are acceptable.

Errors decoding and validating the payload are translated to the web app's sentinel errors,
so handlers respond the same way no matter how the payload was encoded.
Values of fields holding passwords are masked in [ValidationErrors].
*/
package req
