/*
Package x contains the extensions of the quorum engine.

Extensions implement common functionality (Handler, Decorator, etc.) and are
combined together by the app package into a single application. This package
declares the Authenticator abstraction shared by all of them: handlers never
verify signatures themselves, they ask an Authenticator which conditions were
fulfilled by the current transaction.
*/
package x
