package types

// APIResponse — единый конверт всех HTTP-ответов сервиса.
type APIResponse struct {
	Status  bool        `json:"status"`
	Body    interface{} `json:"body,omitempty"`
	Message string      `json:"message"`
	Code    string      `json:"code,omitempty"`
}

// ListBody — тело ответа для постраничных списков.
type ListBody struct {
	List       interface{} `json:"list"`
	Pagination Pagination  `json:"pagination"`
}
