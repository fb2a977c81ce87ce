package handler

type createArticleRequest struct {
	Title   string `json:"title"   validate:"required,max=100"`
	Content string `json:"content" validate:"required"`
}

type updateArticleRequest struct {
	Title   *string `json:"title"   validate:"omitempty,min=1,max=100"`
	Content *string `json:"content"`
}
