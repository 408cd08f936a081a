/*
Package resource implements named resources with a single owner.

A resource can be transferred only with the authorization of its current
owner. When the owner is the authority of a multisig group, the transfer is
possible only by executing a proposal of that group.
*/
package resource
