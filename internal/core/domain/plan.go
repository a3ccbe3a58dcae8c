package domain

// Plan is a service plan offered to clients. Clients reference plans by name.
type Plan struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
}

// DefaultPlans is the starter set seeded when no plans exist yet.
func DefaultPlans(now int64) []Plan {
	return []Plan{
		{ID: now, Name: "Basic 100", Price: 49.90, Description: "100 Mbps fiber, ideal for browsing and streaming"},
		{ID: now + 1, Name: "Plus 300", Price: 79.90, Description: "300 Mbps fiber with symmetric upload"},
		{ID: now + 2, Name: "Turbo 600", Price: 119.90, Description: "600 Mbps fiber for heavy households and home office"},
	}
}
