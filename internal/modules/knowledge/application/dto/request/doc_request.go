package request

type CreateDocRequest struct {
	Title string `json:"title" binding:"required,min=1,max=255"`
	Body  string `json:"body" binding:"required,min=1"`
	// Format 缺省为 text
	Format string `json:"format" binding:"omitempty,oneof=text markdown html"`
}
