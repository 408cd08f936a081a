// Package utils provides decorators shared by all transaction handlers:
// panic recovery, logging, savepoints and tagging.
package utils
