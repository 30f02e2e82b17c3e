package ledger

// EntryActive is the storage value marking a whitelist entry as currently
// valid. Any other value, or an absent entry, means "not valid".
const EntryActive = "active"

// Storage keys for the owner and dapp bindings written to a device account
// at registration time.
const (
	DeviceOwnerKey = "owner"
	DeviceDappKey  = "dapp"
)

// TokenKey returns the device-scoped whitelist key for a capability key id.
func TokenKey(tokenID string) string {
	return "key_" + tokenID
}

// DeviceKey returns the authority-scoped whitelist key for a device address.
func DeviceKey(address string) string {
	return "device_" + address
}

// OrgKey returns the authority-scoped whitelist key for an organisation
// address.
func OrgKey(address string) string {
	return "org_" + address
}

// UserKey returns the organisation-scoped membership key for a member
// address.
func UserKey(address string) string {
	return "user_" + address
}

// IsActive reports whether a fetched entry marks its subject as currently
// valid. A nil entry (absent) is never active.
func IsActive(entry *DataEntry) bool {
	return entry != nil && entry.Value == EntryActive
}
