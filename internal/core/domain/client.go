package domain

// ClientStatus represents the subscription state of a client.
type ClientStatus string

const (
	ClientActive    ClientStatus = "active"
	ClientSuspended ClientStatus = "suspended"
	ClientCancelled ClientStatus = "cancelled"
)

// Address is the service installation address of a client.
type Address struct {
	Street   string `json:"street"`
	Number   string `json:"number"`
	District string `json:"district"`
	City     string `json:"city"`
	State    string `json:"state"`
	ZipCode  string `json:"zip_code"`
}

// Client is a registered subscriber. IDs are creation-time epoch millis and
// are not guaranteed globally unique under concurrent writers. Plan holds the
// plan *name*, not its id; renaming a plan does not cascade to clients.
type Client struct {
	ID        int64        `json:"id"`
	Name      string       `json:"name"`
	Email     string       `json:"email"`
	Phone     string       `json:"phone"`
	Document  string       `json:"document"`
	Address   Address      `json:"address"`
	Plan      string       `json:"plan"`
	Status    ClientStatus `json:"status"`
	CreatedAt int64        `json:"created_at"`
}
