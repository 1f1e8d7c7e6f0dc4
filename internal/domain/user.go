package domain

// User belongs to exactly one Account (§3).
type User struct {
	ID        ID
	AccountID ID
	Metadata  Metadata
}

// NewUser creates a User owned by accountID.
func NewUser(accountID ID, metadata map[string]string) (*User, error) {
	md, err := NewMetadata(metadata)
	if err != nil {
		return nil, err
	}
	return &User{ID: NewID(), AccountID: accountID, Metadata: md}, nil
}
