package handler

// errorResponse is the standard error envelope returned on all 4xx/5xx
// responses (rendered by the central error handler).
type errorResponse struct {
	Error string `json:"error"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type createResponse struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

type searchResponse struct {
	Results []map[string]any `json:"results"`
	Count   int              `json:"count"`
}

type listRequirementsResponse struct {
	Requirements []map[string]any `json:"requirements"`
	Total        int64            `json:"total"`
	Page         int              `json:"page"`
	PerPage      int              `json:"per_page"`
	TotalPages   int              `json:"total_pages"`
}

type listClientsResponse struct {
	Clients    []map[string]any `json:"clients"`
	Total      int64            `json:"total"`
	Page       int              `json:"page"`
	PerPage    int              `json:"per_page"`
	TotalPages int              `json:"total_pages"`
}

type listReviewsResponse struct {
	Reviews []map[string]any `json:"reviews"`
	Count   int              `json:"count"`
}
