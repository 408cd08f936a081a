// Package quorumtest provides mocks and helpers shared by the tests of all
// quorum packages. It must never be imported by non test code.
package quorumtest
