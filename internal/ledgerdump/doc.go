/*
Package ledgerdump decodes the raw storage of the Crash contract into a
ledger snapshot and persists snapshots in the file system.

A snapshot pulled at some block allows to inspect the whole ledger offline
and to verify its internal consistency: every per-coin total equals the sum
of user balances and no balance exceeds the configured maximum.

Snapshots are stored as human-readable YAML files named
'<label>-<block>-crash.yaml'.
*/
package ledgerdump
