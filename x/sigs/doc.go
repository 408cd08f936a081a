/*
Package sigs provides basic authentication
middleware to verify the signatures on the transaction,
and maintain nonces for replay protection.

Every signature declares the sequence of its signer. The sequence must match
the value stored for the signer's public key and is incremented once the
signature is verified, so that a signed transaction cannot be replayed.
*/
package sigs
