package model

// RepositoryIdentifier names one repository reachable by the authenticated identity
type RepositoryIdentifier struct {
	Owner string `json:"owner"`
	Name  string `json:"name"`

	// MostUsedLanguage is the main language reported by the listing, nil when nothing was detected
	MostUsedLanguage *string `json:"-"`
}

func (r RepositoryIdentifier) String() string {
	return r.Owner + "/" + r.Name
}

// LanguageByteMap is the language -> bytes mapping of a single repository as reported upstream
type LanguageByteMap map[string]int

// RepositoryLanguages is the outcome of one language fetch
// Index is the position of the repository in the enumeration, used to fold in a stable order
type RepositoryLanguages struct {
	Index      int
	Repository RepositoryIdentifier
	Languages  LanguageByteMap
	Err        error
}

// RepositoryFailure reports a repository left out of the statistics
type RepositoryFailure struct {
	Repository string `json:"repository"`
	Code       string `json:"code"`
}
