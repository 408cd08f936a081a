/*
Package multisig implements M-of-N groups that act through a derived
authority.

A group is an ordered list of owners and a threshold. Each group has an
authority condition derived from the group ID and a nonce. The authority has
no private key. It is granted only while this extension executes a proposal
that collected at least threshold approvals.

An owner creates a proposal of an operation, recording its own approval.
Other owners approve it. Once the quorum is reached, anyone can execute the
proposal exactly once. The operation runs in a cache wrap of the store with
the authority as its only signer, and its changes are written only when it
succeeds.

Changing the owners of a group increments its configuration version. A
proposal created for another version cannot be approved nor executed.
Owners and threshold can only be changed by the group itself, by executing a
proposal targeting one of the governance paths.

The Initializer loads groups and the extension Configuration from the
genesis file.
*/
package multisig
