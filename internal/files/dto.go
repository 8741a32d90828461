package files

type confirmRequest struct {
	OriginalName string   `json:"originalName"`
	Path         string   `json:"path"`
	MimeType     string   `json:"mimetype"`
	Size         *int64   `json:"size"`
	Extension    string   `json:"extension"`
	IsPublic     bool     `json:"isPublic"`
	Description  string   `json:"description"`
	Tags         []string `json:"tags"`
}

// missing names the first required field absent from the request.
func (r confirmRequest) missing() string {
	switch {
	case r.OriginalName == "":
		return "originalName"
	case r.Path == "":
		return "path"
	case r.MimeType == "":
		return "mimetype"
	case r.Size == nil:
		return "size"
	}
	return ""
}

type pagination struct {
	Total   int  `json:"total"`
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"hasMore"`
}

type listResponse struct {
	Files      []UploadedFile `json:"files"`
	Pagination pagination     `json:"pagination"`
}
