package respond

type AdminRespond struct {
	ID    string   `json:"id"`
	Email string   `json:"email"`
	Roles []string `json:"roles"`
}

type LoginRespond struct {
	Token string       `json:"token"`
	User  AdminRespond `json:"user"`
}
