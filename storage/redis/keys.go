package redis

import "fmt"

/*
	JOURNAL STORAGE:    per-client ZSet of used submission sequence numbers.
	SCHEMA STORAGE:     hash of spec document name -> serialized JSON schema.
*/

func (r *JournalStorage) journalSetKey(clientID string) string {
	return fmt.Sprintf("JOURNAL:SEQS:%s:CLIENT-%s", r.Namespace, clientID)
}

func (r *SchemaStorage) schemaStorageKey() string {
	return fmt.Sprintf("SCHEMA:SPECS:%s", r.Namespace)
}
