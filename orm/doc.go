/*
Package orm provides an easy to use db wrapper.

Entities implementing the Model interface are stored in a ModelBucket under
their primary key. Secondary indexes are kept next to the data, so that
entities can be looked up by any derived value, and a Sequence can generate
the primary keys.

All data of a bucket named "proposals" is stored under the "proposals:" key
prefix, all index entries under "_i.proposals_<index>:" and sequences under
"_s.proposals:<name>".
*/
package orm
