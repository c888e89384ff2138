package http

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type uploadResponse struct {
	Filename string `json:"filename"`
	Path     string `json:"path"`
	Size     int    `json:"size"`
}

type listFilesResponse struct {
	Directory string   `json:"directory"`
	Files     []string `json:"files"`
}

type contentResponse struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
}

type saveContentRequest struct {
	Content string `json:"content"`
}

type saveContentResponse struct {
	Filename string `json:"filename"`
	Path     string `json:"path"`
}

type ingestResponse struct {
	Filename   string `json:"filename"`
	DocumentID string `json:"document_id"`
}

type hybridSearchRequest struct {
	Question string `json:"question"`
}

type searchResultItem struct {
	ID         string  `json:"id"`
	Score      float64 `json:"score"`
	Content    string  `json:"content"`
	SourceName string  `json:"source_name,omitempty"`
	FileName   string  `json:"file_name,omitempty"`
}

type hybridSearchResponse struct {
	Answer  string             `json:"answer"`
	Sources []searchResultItem `json:"sources"`
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
