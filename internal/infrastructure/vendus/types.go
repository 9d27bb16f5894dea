package vendus

// errorCodeNoRecords is returned with a 404 when a collection is empty.
const errorCodeNoRecords = "A001"

// apiError is one entry of the provider error envelope
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// errorResponse is the provider error envelope
type errorResponse struct {
	Errors []apiError `json:"errors"`
}

func (r *errorResponse) codes() []string {
	out := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		out = append(out, e.Code)
	}
	return out
}

func (r *errorResponse) messages() []string {
	out := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		if e.Message != "" {
			out = append(out, e.Message)
		}
	}
	return out
}

func (r *errorResponse) firstCode() string {
	if len(r.Errors) == 0 {
		return ""
	}
	return r.Errors[0].Code
}
