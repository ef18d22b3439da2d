package entity

// URLPattern is the allowed shape of a stored redirect path: a leading
// slash followed by alphanumerics and a constrained punctuation set.
// Angle brackets are deliberately outside the set so markup can never
// be smuggled into a stored path.
const URLPattern = `^/[/.a-zA-Z0-9?&='"-]+$`

// URLMaxLength caps stored paths, matching the column definition.
const URLMaxLength = 256

// RedirectURL is a stored redirect target. The path is unique across
// all records; the id is assigned by the store on insert and never
// changes.
type RedirectURL struct {
	ID  int64
	URL string
}

// Column names for redirecturls, for use with dao filters and fields.
const (
	RedirectColID  = "id"
	RedirectColURL = "url"
)

// RedirectURLMeta maps RedirectURL onto the redirecturls table.
var RedirectURLMeta = Meta[RedirectURL]{
	Table:    "redirecturls",
	IDColumn: RedirectColID,
	Columns:  []string{RedirectColID, RedirectColURL},
	Scan: func(row RowScanner) (*RedirectURL, error) {
		var r RedirectURL
		if err := row.Scan(&r.ID, &r.URL); err != nil {
			return nil, err
		}

		return &r, nil
	},
	ID: func(r *RedirectURL) int64 { return r.ID },
}
