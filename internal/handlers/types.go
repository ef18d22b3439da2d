package handlers

// URLView is the wire representation of a redirect record.
type URLView struct {
	ID  int64  `doc:"Record identifier"  example:"1"                json:"id"`
	URL string `doc:"Stored target path" example:"/path/some/path" json:"url"`
}

// ListURLsResponse is the response for listing redirect records.
type ListURLsResponse struct {
	Body []URLView
}

// CreateURLRequest is the request body for creating a redirect
// record. The pattern mirrors entity.URLPattern; keep the two in
// sync.
type CreateURLRequest struct {
	Body struct {
		URL string `doc:"Target path to store" example:"/employee?age=10&prof='super'" json:"url" maxLength:"256" minLength:"1" pattern:"^/[/.a-zA-Z0-9?&='\"-]+$"`
	}
}

// CreateURLResponse is the response for a successfully created
// redirect record.
type CreateURLResponse struct {
	Body URLView
}

// RedirectRequest addresses a single record by id. Non-positive and
// non-integer ids fail schema validation before reaching the store.
type RedirectRequest struct {
	ID int64 `doc:"Record identifier" example:"1" minimum:"1" path:"id"`
}

// RedirectResponse is a temporary redirect to the stored path.
type RedirectResponse struct {
	Status   int
	Location string `header:"Location"`
}

// DeleteURLResponse is the empty body of a successful delete.
type DeleteURLResponse struct{}
