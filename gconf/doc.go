/*
Package gconf implements a configuration store intended to be used as a global,
in-database configuration.

Each package owns a single configuration entity stored under the "_c:<pkg>"
key. A configuration is loaded from the genesis file using InitConfig and can
later be changed by its owner through a patch message processed by
UpdateConfigurationHandler.
*/
package gconf
