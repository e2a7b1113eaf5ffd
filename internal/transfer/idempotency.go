package transfer

import "github.com/google/uuid"

// TransactionID derives the idempotency key passed to providers. A non-empty
// note yields a deterministic name-based UUID, so retries of the same logical
// transfer carry the same key and are deduplicated provider-side. Without a
// note every call is a distinct logical transfer and gets a random UUID.
//
// The version nibble is forced to '4' for provider format compliance.
func TransactionID(note string) string {
	if note == "" {
		return uuid.NewString()
	}

	id := uuid.NewSHA1(uuid.NameSpaceDNS, []byte(note)).String()
	return id[:14] + "4" + id[15:]
}
