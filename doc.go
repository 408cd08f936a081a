/*
Package quorum defines interfaces used throughout the multi-party
authorization engine, such as: storage, transactions, handlers, addresses and
conditions. It also contains helpers to work with context and logging.

Extensions live under the x/ directory. The multisig extension keeps groups of
owners and their proposals, counts approvals and executes an operation on
behalf of the group authority once a quorum is reached.
*/

package quorum
