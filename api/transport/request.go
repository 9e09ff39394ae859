package transport

type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	TTL int `json:"ttl_seconds"`
}

type TaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}
