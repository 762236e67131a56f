// Package domain defines the request/response types, the feature allowlist,
// and the error taxonomy shared by the proxy handlers. Types here carry no
// behaviour beyond validation helpers; everything is built per request and
// discarded with it.
package domain
